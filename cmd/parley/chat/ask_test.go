// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"strings"
	"testing"
)

func TestAskRequiresMessage(t *testing.T) {
	err := AskCommand().Execute(context.Background(), nil)
	if err == nil {
		t.Fatal("Execute() = nil, want error without a message")
	}
	if !strings.Contains(err.Error(), "message argument required") {
		t.Errorf("error = %q, want message-required", err.Error())
	}
}

func TestRenderReplyPlain(t *testing.T) {
	rendered := renderReply("# Heading\n\nSome **bold** text.", true)

	if strings.Contains(rendered, "\x1b[") {
		t.Errorf("plain rendering should carry no ANSI sequences: %q", rendered)
	}
	if !strings.Contains(rendered, "Heading") {
		t.Errorf("rendered output missing heading text: %q", rendered)
	}
	if !strings.Contains(rendered, "Some bold text.") {
		t.Errorf("rendered output missing paragraph: %q", rendered)
	}
}

func TestRenderReplyPreservesCode(t *testing.T) {
	rendered := renderReply("```\nfunc main() {}\n```", true)

	if !strings.Contains(rendered, "func main() {}") {
		t.Errorf("rendered output missing code: %q", rendered)
	}
}
