// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/parley-foundation/parley/lib/llm"
)

// EventType discriminates the events of a streaming turn.
type EventType string

const (
	// EventContent carries one incremental fragment of assistant text.
	EventContent EventType = "content"

	// EventDone is the terminal event of a successful stream: the
	// accumulated reply has been appended to the context and a
	// snapshot persisted.
	EventDone EventType = "done"

	// EventError is the terminal event of a failed stream. It replaces
	// EventDone; a stream never produces both. Nothing is appended and
	// nothing is persisted.
	EventError EventType = "error"
)

// StreamEvent is one event from a streaming chat turn. Every event
// carries the role whose prompt seeded the turn and its emission time;
// Role is empty when the turn failed on an invalid role override.
type StreamEvent struct {
	Type EventType
	Text string // fragment text for EventContent
	Err  error  // failure for EventError
	Role string
	Time time.Time
}

// Stream delivers the events of one streaming turn in arrival order.
// Each backend fragment is forwarded as its own EventContent before the
// next one is requested; nothing is buffered beyond the transport's
// own buffering. The assistant message is appended and a snapshot
// persisted only when the backend stream completes, so a consumer that
// stops early leaves the context with its user message but no partial
// reply. Next returns io.EOF after the terminal event. Abandoning a
// stream before its terminal event requires Close.
type Stream struct {
	engine          *Engine
	userID          string
	role            string
	requestMessages []llm.Message

	events   *llm.EventStream
	seeded   *StreamEvent
	accum    strings.Builder
	finished bool
	closed   bool
}

// ChatStream runs one streaming turn for userID. The head of the turn
// (role override, prompt refresh, truncation, user append) is the same
// as Chat; the backend call is not retried. ChatStream never returns
// nil — setup failures surface as an EventError from the first Next
// call.
func (engine *Engine) ChatStream(ctx context.Context, userID, message, roleOverride string) *Stream {
	role, messages, err := engine.beginTurn(userID, message, roleOverride)
	if err != nil {
		return &Stream{
			engine: engine,
			userID: userID,
			seeded: &StreamEvent{Type: EventError, Err: err, Time: engine.clock.Now()},
		}
	}

	events, err := engine.provider.Stream(ctx, llm.Request{
		Model:    engine.model,
		Messages: messages,
		Sampling: engine.sampling,
	})
	if err != nil {
		return &Stream{
			engine: engine,
			userID: userID,
			role:   role,
			seeded: &StreamEvent{Type: EventError, Err: engine.wrapError(KindBackend, err), Role: role, Time: engine.clock.Now()},
		}
	}

	return &Stream{
		engine:          engine,
		userID:          userID,
		role:            role,
		requestMessages: messages,
		events:          events,
	}
}

// Next returns the next event. After the terminal event (done or
// error) it returns io.EOF.
func (stream *Stream) Next() (StreamEvent, error) {
	if stream.finished {
		return StreamEvent{}, io.EOF
	}
	if stream.seeded != nil {
		event := *stream.seeded
		stream.finished = true
		return event, nil
	}

	for {
		event, err := stream.events.Next()
		if err == io.EOF {
			// Stream closed without an explicit done marker; the
			// reply is whatever arrived.
			return stream.finish(), nil
		}
		if err != nil {
			return stream.fail(err), nil
		}

		switch event.Type {
		case llm.EventTextDelta:
			stream.accum.WriteString(event.Text)
			return stream.stamp(StreamEvent{Type: EventContent, Text: event.Text}), nil
		case llm.EventDone:
			return stream.finish(), nil
		case llm.EventError:
			return stream.fail(event.Error), nil
		default:
			// Unknown event types are skipped, not surfaced.
		}
	}
}

// stamp fills the fields every event carries: the turn's role and the
// emission time.
func (stream *Stream) stamp(event StreamEvent) StreamEvent {
	event.Role = stream.role
	event.Time = stream.engine.clock.Now()
	return event
}

// finish commits the accumulated reply: append to the context, persist
// a snapshot, calibrate the token estimator. A persistence failure
// turns the terminal event into an error event — the reply is in the
// context either way.
func (stream *Stream) finish() StreamEvent {
	stream.finished = true
	stream.closeEvents()

	usage := stream.events.Response().Usage
	snapshot := stream.engine.commitAssistant(stream.userID, stream.requestMessages, stream.accum.String(), usage.InputTokens)
	if err := stream.engine.log.Append(stream.userID, snapshot); err != nil {
		wrapped := stream.engine.wrapError(KindStorage, fmt.Errorf("saving conversation: %w", err))
		return stream.stamp(StreamEvent{Type: EventError, Err: wrapped})
	}
	return stream.stamp(StreamEvent{Type: EventDone})
}

// fail ends the stream without committing anything.
func (stream *Stream) fail(err error) StreamEvent {
	stream.finished = true
	stream.closeEvents()

	if !IsBackend(err) {
		err = stream.engine.wrapError(KindBackend, err)
	}
	return stream.stamp(StreamEvent{Type: EventError, Err: err})
}

// Role returns the role whose prompt seeded this turn. Empty when the
// turn failed on an invalid role override.
func (stream *Stream) Role() string {
	return stream.role
}

// Usage returns the backend's token accounting. Valid after the
// terminal event; zero if the backend never reported usage.
func (stream *Stream) Usage() llm.Usage {
	if stream.events == nil {
		return llm.Usage{}
	}
	return stream.events.Response().Usage
}

// Close releases the underlying network stream. Safe to call at any
// time, including after Next returned io.EOF. Closing before the
// terminal event abandons the turn: no assistant message is appended
// and no snapshot is persisted.
func (stream *Stream) Close() error {
	stream.finished = true
	return stream.closeEvents()
}

func (stream *Stream) closeEvents() error {
	if stream.events == nil || stream.closed {
		return nil
	}
	stream.closed = true
	return stream.events.Close()
}
