// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"bufio"
	"io"
	"strings"
)

// SSEEvent is a single Server-Sent Event parsed from an SSE stream.
type SSEEvent struct {
	// Type is the event type from the "event:" field. Empty when no
	// event type was specified (the SSE default event type).
	Type string

	// Data is the event payload, assembled from one or more "data:"
	// lines. Multiple data lines are joined with newlines per the SSE
	// specification.
	Data string
}

// SSEScanner reads Server-Sent Events from an [io.Reader] according
// to the W3C Server-Sent Events specification.
//
// Events are delimited by blank lines. Within an event, "data:" lines
// carry the payload and "event:" lines set the event type. Comment
// lines (starting with ":") and unrecognized fields are ignored, as
// are the "id" and "retry" fields. A final event left unterminated at
// EOF is still delivered.
//
// Usage:
//
//	scanner := NewSSEScanner(reader)
//	for scanner.Next() {
//	    event := scanner.Event()
//	    // process event.Type and event.Data
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type SSEScanner struct {
	reader  *bufio.Reader
	current SSEEvent
	err     error
}

// NewSSEScanner creates a scanner that reads SSE events from reader.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	return &SSEScanner{
		reader: bufio.NewReaderSize(reader, 64*1024),
	}
}

// Next advances to the next event. Returns false when the stream ends
// (EOF) or an error occurs. After Next returns false, call
// [SSEScanner.Err] to distinguish a clean EOF from an error.
func (scanner *SSEScanner) Next() bool {
	if scanner.err != nil {
		return false
	}

	var pending sseFields
	for {
		line, err := scanner.reader.ReadString('\n')

		// A line is complete when ReadString found the delimiter
		// (err == nil). At EOF the unterminated remainder is still
		// parsed so a final event without a trailing blank line is
		// delivered.
		if trimmed := strings.TrimRight(line, "\r\n"); trimmed != "" {
			pending.addLine(trimmed)
		} else if err == nil {
			// Blank line terminates the event. Blocks with no data
			// lines (e.g. comment-only keepalives) are skipped.
			if pending.hasData {
				scanner.current = pending.event()
				return true
			}
			pending = sseFields{}
		}

		if err != nil {
			scanner.err = err
			if err == io.EOF && pending.hasData {
				scanner.current = pending.event()
				return true
			}
			return false
		}
	}
}

// Event returns the most recently parsed event. Only valid after
// [SSEScanner.Next] returns true.
func (scanner *SSEScanner) Event() SSEEvent {
	return scanner.current
}

// Err returns the first error encountered during scanning. Returns
// nil if scanning ended due to a clean EOF.
func (scanner *SSEScanner) Err() error {
	if scanner.err == io.EOF {
		return nil
	}
	return scanner.err
}

// sseFields accumulates the fields of one in-progress event.
type sseFields struct {
	eventType string
	dataLines []string
	hasData   bool
}

// addLine parses one non-blank SSE line into the pending fields.
func (pending *sseFields) addLine(line string) {
	// Comment lines start with ":".
	if strings.HasPrefix(line, ":") {
		return
	}

	field, value, hasColon := strings.Cut(line, ":")
	if hasColon {
		// Per spec: if the value starts with a space, remove exactly
		// one space.
		value = strings.TrimPrefix(value, " ")
	}
	// Lines without a colon are a field name with an empty value.

	switch field {
	case "data":
		pending.dataLines = append(pending.dataLines, value)
		pending.hasData = true
	case "event":
		pending.eventType = value
	default:
		// "id", "retry", and unknown fields are ignored per spec.
	}
}

// event assembles the accumulated fields into an SSEEvent.
func (pending *sseFields) event() SSEEvent {
	return SSEEvent{
		Type: pending.eventType,
		Data: strings.Join(pending.dataLines, "\n"),
	}
}
