// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package llm provides a provider-agnostic client for chat-completion
// Large Language Model APIs with streaming support.
//
// The primary abstraction is [Provider], which supports both blocking
// completion and streaming responses. Provider implementations translate
// between the common types in this package and the vendor's wire format.
//
// All HTTP requests go through a caller-supplied [net/http.Client], so
// the caller controls timeouts and transport configuration. Streaming
// uses Server-Sent Events (SSE), parsed by [SSEScanner]. The
// [EventStream] type wraps a streaming response, yielding [StreamEvent]
// values as they arrive while accumulating the complete [Response]
// internally.
//
// Current provider implementations:
//   - [OpenAI]: any server speaking the OpenAI Chat Completions wire
//     format (OpenAI, OpenRouter, vLLM, Ollama, llama.cpp, etc.)
package llm
