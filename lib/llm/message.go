// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package llm

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn in provider-neutral form. Content is
// plain text; multimodal content is out of scope for this client.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage constructs a system-role message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage constructs a user-role message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage constructs an assistant-role message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// Sampling carries the pass-through sampling parameters for a
// completion request. The values are owned by configuration, not by
// this package; they are forwarded to the backend unchanged.
type Sampling struct {
	// Temperature controls randomness. Always sent, so a zero value
	// means deterministic sampling rather than "use the default".
	Temperature float64

	// MaxTokens bounds the length of the generated reply.
	MaxTokens int

	// TopP is the nucleus-sampling cutoff.
	TopP float64
}

// Request is a provider-neutral completion request. Messages carries
// the full ordered conversation, including any leading system message.
type Request struct {
	// Model is the backend model identifier.
	Model string

	// Messages is the ordered conversation to complete.
	Messages []Message

	// Sampling holds the pass-through sampling parameters.
	Sampling Sampling
}

// StopReason reports why the backend stopped generating.
type StopReason string

const (
	// StopReasonEndTurn means the model finished its reply naturally.
	StopReasonEndTurn StopReason = "end_turn"

	// StopReasonMaxTokens means generation hit the MaxTokens limit.
	StopReasonMaxTokens StopReason = "max_tokens"
)

// Usage reports token accounting from the backend.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Response is a complete (non-streaming or fully accumulated) reply.
type Response struct {
	// Text is the assistant's reply text.
	Text string

	// Model is the model that produced the reply, as reported by the
	// backend (may differ from the requested model, e.g. aliases).
	Model string

	// StopReason reports why generation stopped.
	StopReason StopReason

	// Usage carries the backend's token accounting, when reported.
	Usage Usage
}

// EventType identifies a streaming event variant.
type EventType string

const (
	// EventTextDelta carries an incremental fragment of reply text.
	EventTextDelta EventType = "text_delta"

	// EventDone signals successful end of the stream.
	EventDone EventType = "done"

	// EventError carries a mid-stream failure reported by the backend
	// inside the event stream (as opposed to transport errors, which
	// surface from [EventStream.Next] directly).
	EventError EventType = "error"
)

// StreamEvent is one event from a streaming response.
type StreamEvent struct {
	Type EventType

	// Text is the fragment payload for EventTextDelta.
	Text string

	// Error is the failure for EventError.
	Error error
}
