// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"fmt"

	"github.com/parley-foundation/parley/lib/llm"
)

// Mode selects the truncation strategy applied when a conversation
// exceeds the turn limit.
type Mode string

const (
	// ModeSliding keeps the system message plus the most recent
	// maxTurns complete turns, discarding older ones. Recent context
	// is preserved; the conversation loses its oldest exchanges first.
	ModeSliding Mode = "sliding"

	// ModeClear discards all turns once the limit is exceeded,
	// leaving only the system message. The next exchange starts from
	// a clean context.
	ModeClear Mode = "clear"
)

// ParseMode validates a truncation mode string from configuration or
// a runtime settings update.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModeSliding, ModeClear:
		return Mode(value), nil
	default:
		return "", fmt.Errorf("unknown truncate mode %q (valid: sliding, clear)", value)
	}
}

// Truncate windows the conversation according to the given mode and
// turn limit, returning the number of messages evicted. When the turn
// count is within the limit the history is returned untouched — the
// check is cheap, so callers run it on every turn rather than
// tracking threshold crossings, which also means limit changes take
// effect on the very next exchange.
//
// Sliding mode keeps index 0 plus the trailing maxTurns*2 messages.
// The window is purely positional: with an unpaired trailing message
// the window may open on an assistant message, which the backend
// tolerates.
func (history *History) Truncate(mode Mode, maxTurns int) int {
	if history.Turns() <= maxTurns {
		return 0
	}

	switch mode {
	case ModeClear:
		evicted := len(history.messages) - 1
		history.messages = []llm.Message{history.messages[0]}
		return evicted

	case ModeSliding:
		keep := maxTurns * 2
		evicted := len(history.messages) - 1 - keep
		windowed := make([]llm.Message, 0, keep+1)
		windowed = append(windowed, history.messages[0])
		windowed = append(windowed, history.messages[len(history.messages)-keep:]...)
		history.messages = windowed
		return evicted
	}

	return 0
}
