// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package history

import "strings"

// modelWindows maps model identifiers to their context window sizes
// in tokens. This is a best-effort lookup for the context-usage
// display — models not in the registry fall back to
// defaultContextWindow.
//
// Values are from provider and model-card documentation as of early
// 2026. Ollama-style tags ("qwen2.5:0.5b") are matched on the name
// before the colon.
var modelWindows = map[string]int{
	// Qwen (common Ollama deployments).
	"qwen2.5":       32_768,
	"qwen2.5-coder": 32_768,
	"qwen3":         40_960,

	// Meta Llama.
	"llama3.1": 128_000,
	"llama3.2": 128_000,
	"llama3":   8_192,

	// Mistral.
	"mistral":              32_768,
	"mistral-large-latest": 128_000,
	"mistral-small-latest": 32_000,

	// DeepSeek.
	"deepseek-chat":     64_000,
	"deepseek-reasoner": 64_000,
	"deepseek-r1":       128_000,

	// Google Gemma.
	"gemma2": 8_192,
	"gemma3": 128_000,

	// OpenAI GPT family.
	"gpt-4o":      128_000,
	"gpt-4o-mini": 128_000,
	"gpt-4-turbo": 128_000,
	"gpt-4":       8_192,
	"o1":          200_000,
	"o3-mini":     200_000,
}

// defaultContextWindow is used when a model is not in the registry.
// 32k is a conservative middle ground for the small local models this
// tool is typically pointed at; operators running larger models just
// see a pessimistic usage percentage.
const defaultContextWindow = 32_768

// ContextWindowForModel returns the context window size in tokens for
// the given model identifier. Ollama tags have their size suffix
// stripped before lookup ("qwen2.5:0.5b" matches "qwen2.5"). Returns
// defaultContextWindow if the model is not in the registry.
func ContextWindowForModel(model string) int {
	if window, found := modelWindows[model]; found {
		return window
	}
	if base, _, found := strings.Cut(model, ":"); found {
		if window, ok := modelWindows[base]; ok {
			return window
		}
	}
	return defaultContextWindow
}
