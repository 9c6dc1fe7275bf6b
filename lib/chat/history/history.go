// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"github.com/parley-foundation/parley/lib/llm"
)

// History holds one conversation's ordered message sequence. When
// non-empty, index 0 is always the system message for the active
// role. History is not safe for concurrent use; the chat engine
// serializes access per user.
type History struct {
	messages []llm.Message
}

// New creates a History seeded with a system message carrying the
// given prompt.
func New(systemPrompt string) *History {
	return &History{
		messages: []llm.Message{llm.SystemMessage(systemPrompt)},
	}
}

// SetSystemPrompt replaces the content of the system message at index
// 0, preserving all conversation turns after it. If the history does
// not start with a system message (which only happens if a caller
// bypassed New), one is inserted at position 0 instead.
func (history *History) SetSystemPrompt(text string) {
	if len(history.messages) > 0 && history.messages[0].Role == llm.RoleSystem {
		history.messages[0] = llm.SystemMessage(text)
		return
	}
	history.messages = append([]llm.Message{llm.SystemMessage(text)}, history.messages...)
}

// Append adds a message to the end of the conversation.
func (history *History) Append(message llm.Message) {
	history.messages = append(history.messages, message)
}

// Messages returns a copy of the message sequence. The copy shares no
// structure with the live history, so callers can hold it across
// subsequent mutations.
func (history *History) Messages() []llm.Message {
	snapshot := make([]llm.Message, len(history.messages))
	copy(snapshot, history.messages)
	return snapshot
}

// Len returns the total message count, including the system message.
func (history *History) Len() int {
	return len(history.messages)
}

// Turns returns the number of completed user/assistant exchanges.
// The system message is excluded, and an unpaired trailing message
// (a user message whose backend call failed mid-turn) does not count
// as a turn — integer division absorbs it.
func (history *History) Turns() int {
	if len(history.messages) == 0 {
		return 0
	}
	return (len(history.messages) - 1) / 2
}

// Clear discards all conversation turns, leaving only the system
// message. Clearing an empty history is a no-op.
func (history *History) Clear() {
	if len(history.messages) == 0 {
		return
	}
	history.messages = []llm.Message{history.messages[0]}
}
