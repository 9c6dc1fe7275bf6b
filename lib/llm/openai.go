// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAI implements [Provider] for the OpenAI Chat Completions API.
// Requests go to {baseURL}/chat/completions with the API key, when
// set, supplied as a bearer token. This is compatible with any server
// that implements the OpenAI chat completions wire format (OpenAI,
// Azure OpenAI, OpenRouter, vLLM, Ollama, llama.cpp, etc.); local
// servers commonly run without an API key.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewOpenAI creates an OpenAI-compatible provider. The httpClient
// carries the request timeout and transport configuration. baseURL is
// the API root including the version prefix (e.g.
// "http://127.0.0.1:11434/v1"). apiKey may be empty for servers that
// do not authenticate.
func NewOpenAI(httpClient *http.Client, baseURL, apiKey string) *OpenAI {
	return &OpenAI{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Complete sends a non-streaming request and returns the full response.
func (provider *OpenAI) Complete(ctx context.Context, request Request) (*Response, error) {
	wireRequest := provider.buildRequest(request, false)

	httpResponse, err := doProviderRequest(ctx, provider.httpClient,
		provider.endpoint(), wireRequest, "llm/openai", false, provider.headers())
	if err != nil {
		return nil, err
	}
	defer httpResponse.Body.Close()

	var wireResponse openaiResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&wireResponse); err != nil {
		return nil, fmt.Errorf("llm/openai: decoding response: %w", err)
	}

	return wireResponse.toResponse(), nil
}

// Stream sends a streaming request and returns an [EventStream].
func (provider *OpenAI) Stream(ctx context.Context, request Request) (*EventStream, error) {
	wireRequest := provider.buildRequest(request, true)

	httpResponse, err := doProviderRequest(ctx, provider.httpClient,
		provider.endpoint(), wireRequest, "llm/openai", true, provider.headers())
	if err != nil {
		return nil, err
	}

	return newOpenAIEventStream(httpResponse.Body), nil
}

// endpoint returns the chat completions URL under the configured base.
func (provider *OpenAI) endpoint() string {
	return provider.baseURL + "/chat/completions"
}

// headers returns the per-request headers. The bearer token is
// omitted entirely when no API key is configured, which keeps local
// OpenAI-compatible servers that reject unknown auth happy.
func (provider *OpenAI) headers() map[string]string {
	if provider.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + provider.apiKey}
}

// buildRequest converts our types to the OpenAI wire format. Sampling
// parameters are always sent: they are pass-through configuration and
// the backend should see exactly what the operator configured.
func (provider *OpenAI) buildRequest(request Request, stream bool) openaiRequest {
	wireRequest := openaiRequest{
		Model:       request.Model,
		MaxTokens:   request.Sampling.MaxTokens,
		Temperature: request.Sampling.Temperature,
		TopP:        request.Sampling.TopP,
	}

	for _, message := range request.Messages {
		wireRequest.Messages = append(wireRequest.Messages, openaiMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	if stream {
		wireRequest.Stream = true
		wireRequest.StreamOptions = &openaiStreamOptions{IncludeUsage: true}
	}

	return wireRequest
}

// newOpenAIEventStream creates an EventStream that parses OpenAI SSE
// chunks. OpenAI terminates the stream with a "data: [DONE]" sentinel
// after the final chunk; when stream_options.include_usage is set,
// the chunk before the sentinel carries usage with an empty choices
// array.
func newOpenAIEventStream(body io.ReadCloser) *EventStream {
	sseScanner := NewSSEScanner(body)
	var modelSet bool

	stream := NewEventStream(nil, body)

	stream.next = func() (StreamEvent, error) {
		for {
			if !sseScanner.Next() {
				if err := sseScanner.Err(); err != nil {
					return StreamEvent{}, fmt.Errorf("llm/openai: reading SSE: %w", err)
				}
				return StreamEvent{}, io.EOF
			}

			sseEvent := sseScanner.Event()
			if sseEvent.Data == "[DONE]" {
				return StreamEvent{Type: EventDone}, nil
			}

			var chunk openaiStreamChunk
			if err := json.Unmarshal([]byte(sseEvent.Data), &chunk); err != nil {
				return StreamEvent{}, fmt.Errorf("llm/openai: parsing stream chunk: %w", err)
			}

			// OpenAI sends errors as regular data lines with an
			// "error" field instead of using SSE event types. Detect
			// them when the chunk has no choices, no usage, and no
			// model (all signs it's not a normal completion chunk).
			if len(chunk.Choices) == 0 && chunk.Usage == nil && chunk.Model == "" {
				var errorChunk struct {
					Error struct {
						Type    string `json:"type"`
						Message string `json:"message"`
					} `json:"error"`
				}
				if json.Unmarshal([]byte(sseEvent.Data), &errorChunk) == nil && errorChunk.Error.Message != "" {
					return StreamEvent{
						Type:  EventError,
						Error: fmt.Errorf("llm/openai: stream error: %s: %s", errorChunk.Error.Type, errorChunk.Error.Message),
					}, nil
				}
			}

			// Set model from the first chunk that carries it.
			if !modelSet && chunk.Model != "" {
				stream.SetModel(chunk.Model)
				modelSet = true
			}

			if chunk.Usage != nil {
				stream.SetUsage(Usage{
					InputTokens:  chunk.Usage.PromptTokens,
					OutputTokens: chunk.Usage.CompletionTokens,
				})
			}

			if len(chunk.Choices) == 0 {
				continue
			}

			choice := chunk.Choices[0]
			if choice.FinishReason != nil {
				stream.SetStopReason(mapOpenAIFinishReason(*choice.FinishReason))
			}

			if choice.Delta.Content != "" {
				return StreamEvent{
					Type: EventTextDelta,
					Text: choice.Delta.Content,
				}, nil
			}
		}
	}

	return stream
}

// --- OpenAI wire types ---
//
// These map directly to the OpenAI Chat Completions API JSON format.
// They are separate from the public types because the wire format
// uses different field names and conventions. Content is a plain JSON
// string: this client sends text-only messages.

type openaiRequest struct {
	Model         string               `json:"model"`
	Messages      []openaiMessage      `json:"messages"`
	MaxTokens     int                  `json:"max_tokens"`
	Temperature   float64              `json:"temperature"`
	TopP          float64              `json:"top_p"`
	Stream        bool                 `json:"stream,omitempty"`
	StreamOptions *openaiStreamOptions `json:"stream_options,omitempty"`
}

type openaiStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

// Streaming-specific types. The streaming format uses "delta" instead
// of "message" in choices, and finish_reason is null until the final
// content chunk.

type openaiStreamChunk struct {
	ID      string               `json:"id"`
	Model   string               `json:"model"`
	Choices []openaiStreamChoice `json:"choices"`
	Usage   *openaiUsage         `json:"usage,omitempty"`
}

type openaiStreamChoice struct {
	Index        int               `json:"index"`
	Delta        openaiStreamDelta `json:"delta"`
	FinishReason *string           `json:"finish_reason"`
}

type openaiStreamDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

func (wireResponse *openaiResponse) toResponse() *Response {
	response := &Response{
		Model: wireResponse.Model,
		Usage: Usage{
			InputTokens:  wireResponse.Usage.PromptTokens,
			OutputTokens: wireResponse.Usage.CompletionTokens,
		},
	}

	if len(wireResponse.Choices) == 0 {
		return response
	}

	choice := wireResponse.Choices[0]
	response.StopReason = mapOpenAIFinishReason(choice.FinishReason)
	response.Text = choice.Message.Content
	return response
}

func mapOpenAIFinishReason(reason string) StopReason {
	switch reason {
	case "stop":
		return StopReasonEndTurn
	case "length":
		return StopReasonMaxTokens
	default:
		// Preserve unknown reasons (e.g., "content_filter") as-is
		// rather than silently mapping to a default.
		return StopReason(reason)
	}
}
