// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"testing"

	"github.com/parley-foundation/parley/lib/llm"
)

func TestHistory_NewStartsWithSystem(t *testing.T) {
	t.Parallel()

	conversation := New("You are a helpful assistant.")

	messages := conversation.Messages()
	if len(messages) != 1 {
		t.Fatalf("Messages() returned %d messages, want 1", len(messages))
	}
	if messages[0].Role != llm.RoleSystem {
		t.Errorf("messages[0].Role = %q, want system", messages[0].Role)
	}
	if messages[0].Content != "You are a helpful assistant." {
		t.Errorf("messages[0].Content = %q, want prompt", messages[0].Content)
	}
	if conversation.Turns() != 0 {
		t.Errorf("Turns() = %d, want 0", conversation.Turns())
	}
}

func TestHistory_SetSystemPromptOverwritesInPlace(t *testing.T) {
	t.Parallel()

	conversation := New("old prompt")
	conversation.Append(llm.UserMessage("hello"))
	conversation.Append(llm.AssistantMessage("hi there"))

	conversation.SetSystemPrompt("new prompt")

	messages := conversation.Messages()
	if len(messages) != 3 {
		t.Fatalf("Messages() returned %d messages, want 3 (turns preserved)", len(messages))
	}
	if messages[0].Role != llm.RoleSystem {
		t.Errorf("messages[0].Role = %q, want system", messages[0].Role)
	}
	if messages[0].Content != "new prompt" {
		t.Errorf("messages[0].Content = %q, want 'new prompt'", messages[0].Content)
	}
	if messages[1].Content != "hello" {
		t.Errorf("messages[1].Content = %q, want 'hello'", messages[1].Content)
	}
}

func TestHistory_SetSystemPromptInsertsWhenMissing(t *testing.T) {
	t.Parallel()

	// A zero-value History has no system message; SetSystemPrompt must
	// insert one at position 0 rather than overwrite the first turn.
	var conversation History
	conversation.Append(llm.UserMessage("orphaned"))

	conversation.SetSystemPrompt("restored prompt")

	messages := conversation.Messages()
	if len(messages) != 2 {
		t.Fatalf("Messages() returned %d messages, want 2", len(messages))
	}
	if messages[0].Role != llm.RoleSystem || messages[0].Content != "restored prompt" {
		t.Errorf("messages[0] = %+v, want inserted system message", messages[0])
	}
	if messages[1].Role != llm.RoleUser || messages[1].Content != "orphaned" {
		t.Errorf("messages[1] = %+v, want preserved user message", messages[1])
	}
}

func TestHistory_Turns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		appends  int // user/assistant messages appended after the system message
		expected int
	}{
		{name: "system only", appends: 0, expected: 0},
		{name: "dangling user", appends: 1, expected: 0},
		{name: "one complete turn", appends: 2, expected: 1},
		{name: "one turn plus dangling", appends: 3, expected: 1},
		{name: "three complete turns", appends: 6, expected: 3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			conversation := New("system")
			for i := 0; i < test.appends; i++ {
				if i%2 == 0 {
					conversation.Append(llm.UserMessage("u"))
				} else {
					conversation.Append(llm.AssistantMessage("a"))
				}
			}
			if turns := conversation.Turns(); turns != test.expected {
				t.Errorf("Turns() = %d, want %d", turns, test.expected)
			}
		})
	}
}

func TestHistory_TurnsEmptyHistory(t *testing.T) {
	t.Parallel()

	var conversation History
	if turns := conversation.Turns(); turns != 0 {
		t.Errorf("Turns() = %d, want 0", turns)
	}
}

func TestHistory_MessagesReturnsCopy(t *testing.T) {
	t.Parallel()

	conversation := New("system")
	conversation.Append(llm.UserMessage("hello"))

	snapshot := conversation.Messages()
	conversation.Append(llm.AssistantMessage("hi"))

	// The snapshot must not grow with the live history.
	if len(snapshot) != 2 {
		t.Errorf("snapshot length = %d, want 2", len(snapshot))
	}

	// Writing into the snapshot must not corrupt the live history.
	snapshot[0] = llm.SystemMessage("tampered")
	if got := conversation.Messages()[0].Content; got != "system" {
		t.Errorf("live system prompt = %q, want 'system'", got)
	}
}

func TestHistory_Clear(t *testing.T) {
	t.Parallel()

	conversation := New("system prompt")
	conversation.Append(llm.UserMessage("hello"))
	conversation.Append(llm.AssistantMessage("hi"))
	conversation.Append(llm.UserMessage("more"))
	conversation.Append(llm.AssistantMessage("sure"))

	conversation.Clear()

	messages := conversation.Messages()
	if len(messages) != 1 {
		t.Fatalf("Messages() returned %d messages after Clear, want 1", len(messages))
	}
	if messages[0].Role != llm.RoleSystem || messages[0].Content != "system prompt" {
		t.Errorf("messages[0] = %+v, want original system message", messages[0])
	}
	if conversation.Turns() != 0 {
		t.Errorf("Turns() = %d after Clear, want 0", conversation.Turns())
	}
}

func TestHistory_ClearEmptyIsNoOp(t *testing.T) {
	t.Parallel()

	var conversation History
	conversation.Clear()
	if conversation.Len() != 0 {
		t.Errorf("Len() = %d, want 0", conversation.Len())
	}
}
