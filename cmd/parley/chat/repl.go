// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/parley-foundation/parley/lib/chat"
	"github.com/parley-foundation/parley/lib/convlog"
	"github.com/parley-foundation/parley/lib/llm"
)

const replHelp = `Commands:
  help                  show this help
  clear                 clear the conversation context
  context               show context status
  role                  show the active role
  role <name>           switch the active role
  roles                 list available roles
  set_turns <n>         set the retained-turn limit
  set_truncate <mode>   set the truncation mode (sliding or clear)
  history               show saved conversations
  exit, quit            leave the chat

Anything else is sent to the assistant.`

// repl is one interactive session: a line-oriented loop that treats a
// small command vocabulary specially and streams everything else to
// the assistant. Input and output are plain io interfaces so tests can
// script a whole session.
type repl struct {
	assistant chat.Assistant
	userID    string
	in        io.Reader
	out       io.Writer

	// noStream switches chat turns to single-shot completion. render,
	// when set, formats each completed reply (markdown for terminals);
	// nil prints the raw text.
	noStream bool
	render   func(string) string
}

func newREPL(assistant chat.Assistant, userID string, in io.Reader, out io.Writer) *repl {
	return &repl{assistant: assistant, userID: userID, in: in, out: out}
}

// Run reads lines until exit/quit, end of input, or context
// cancellation. Input is read on its own goroutine so Ctrl-C is
// honored even while the prompt is waiting.
func (r *repl) Run(ctx context.Context) error {
	fmt.Fprintf(r.out, "Current role: %s\n", r.assistant.ActiveRole())
	fmt.Fprintln(r.out, "Type a message and press Enter. 'help' lists commands, 'exit' leaves.")

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(r.out, "\nYou: ")

		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out, "\nGoodbye!")
			return nil
		case line, ok := <-lines:
			if !ok {
				// End of input (Ctrl-D or a script running dry).
				fmt.Fprintln(r.out, "\nGoodbye!")
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if quit := r.dispatch(ctx, line); quit {
				fmt.Fprintln(r.out, "Goodbye!")
				return nil
			}
		}
	}
}

// dispatch runs one line. Command words match only when the line has
// the expected shape; "help me with this" is a chat message, not the
// help command. Returns true when the session should end.
func (r *repl) dispatch(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	rest := strings.Join(fields[1:], " ")

	switch fields[0] {
	case "exit", "quit":
		if len(fields) == 1 {
			return true
		}
	case "help":
		if len(fields) == 1 {
			fmt.Fprintln(r.out, replHelp)
			return false
		}
	case "clear":
		if len(fields) == 1 {
			r.assistant.ClearContext(r.userID)
			fmt.Fprintln(r.out, "Conversation context cleared.")
			return false
		}
	case "context":
		if len(fields) == 1 {
			r.printSummary()
			return false
		}
	case "roles":
		if len(fields) == 1 {
			r.printRoles()
			return false
		}
	case "history":
		if len(fields) == 1 {
			writeSnapshots(r.out, r.assistant.History(r.userID))
			return false
		}
	case "role":
		if len(fields) == 1 {
			fmt.Fprintf(r.out, "Active role: %s\n", r.assistant.ActiveRole())
		} else {
			r.switchRole(rest)
		}
		return false
	case "set_turns":
		r.setTurns(rest)
		return false
	case "set_truncate":
		r.setTruncate(rest)
		return false
	}

	r.chatTurn(ctx, line)
	return false
}

// chatTurn streams one reply, printing fragments as they arrive.
// Errors are printed and the loop continues; a canceled context stays
// quiet because the loop is about to say goodbye anyway.
func (r *repl) chatTurn(ctx context.Context, message string) {
	start := time.Now()
	if r.noStream {
		r.singleShotTurn(ctx, message, start)
		return
	}
	stream := r.assistant.ChatStream(ctx, r.userID, message, "")
	defer stream.Close()

	fmt.Fprint(r.out, "\nAI: ")
	for {
		event, err := stream.Next()
		if err != nil {
			return
		}
		switch event.Type {
		case chat.EventContent:
			fmt.Fprint(r.out, event.Text)
		case chat.EventDone:
			fmt.Fprintf(r.out, "\n(%.2fs)\n", time.Since(start).Seconds())
			return
		case chat.EventError:
			fmt.Fprintln(r.out)
			if ctx.Err() == nil {
				fmt.Fprintf(r.out, "Error: %v\n", event.Err)
				fmt.Fprintln(r.out, "Please try again.")
			}
			return
		}
	}
}

// singleShotTurn waits for the whole reply and prints it at once. A
// reply paired with an error means the backend call succeeded but
// saving failed; the text is shown either way, with a warning.
func (r *repl) singleShotTurn(ctx context.Context, message string, start time.Time) {
	reply, err := r.assistant.Chat(ctx, r.userID, message, "")
	if reply == nil {
		if ctx.Err() == nil {
			fmt.Fprintf(r.out, "\nError: %v\n", err)
			fmt.Fprintln(r.out, "Please try again.")
		}
		return
	}

	text := reply.Text
	if r.render != nil {
		text = r.render(text)
	}
	fmt.Fprintf(r.out, "\nAI: %s\n", text)
	fmt.Fprintf(r.out, "(%.2fs)\n", time.Since(start).Seconds())
	if err != nil {
		fmt.Fprintf(r.out, "Warning: %v\n", err)
	}
}

func (r *repl) printSummary() {
	summary := r.assistant.Summary(r.userID)
	fmt.Fprintln(r.out, "Context status:")
	fmt.Fprintf(r.out, "  Messages: %d\n", summary.MessageCount)
	fmt.Fprintf(r.out, "  Role: %s\n", summary.CurrentRole)
	fmt.Fprintf(r.out, "  Turns: %d/%d\n", summary.CurrentTurns, summary.MaxTurns)
	if summary.ContextWindow > 0 {
		fmt.Fprintf(r.out, "  Estimated tokens: ~%d of %d\n",
			summary.EstimatedTokens, summary.ContextWindow)
	}
	if summary.HasContext {
		fmt.Fprintf(r.out, "  Last update: %s\n",
			summary.LastMessageTime.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintln(r.out, "  No active context.")
	}
}

func (r *repl) printRoles() {
	active := r.assistant.ActiveRole()
	fmt.Fprintln(r.out, "Available roles:")
	for _, name := range r.assistant.Roles() {
		if name == active {
			fmt.Fprintf(r.out, "  - %s (active)\n", name)
		} else {
			fmt.Fprintf(r.out, "  - %s\n", name)
		}
	}
}

func (r *repl) switchRole(name string) {
	if err := r.assistant.SetRole(name); err != nil {
		fmt.Fprintf(r.out, "Switch failed: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Switched to role: %s\n", name)
}

func (r *repl) setTurns(value string) {
	if value == "" {
		fmt.Fprintln(r.out, "Usage: set_turns <number>")
		return
	}
	turns, err := strconv.Atoi(value)
	if err != nil {
		fmt.Fprintln(r.out, "Enter a valid number.")
		return
	}
	if err := r.assistant.Settings().SetMaxTurns(turns); err != nil {
		fmt.Fprintf(r.out, "Set failed: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Max turns set to %d.\n", turns)
}

func (r *repl) setTruncate(value string) {
	if value == "" {
		fmt.Fprintln(r.out, "Usage: set_truncate <sliding|clear>")
		return
	}
	if err := r.assistant.Settings().SetTruncateMode(value); err != nil {
		fmt.Fprintf(r.out, "Set failed: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Truncate mode set to %s.\n", value)
}

// writeSnapshots prints saved conversations, oldest first, skipping
// system messages. Shared by the in-session history command and
// "parley history".
func writeSnapshots(w io.Writer, snapshots []convlog.Snapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintln(w, "No saved conversations.")
		return
	}
	for _, snapshot := range snapshots {
		fmt.Fprintf(w, "\nTime: %s\n", snapshot.Timestamp.Format("2006-01-02 15:04:05"))
		for _, message := range snapshot.Messages {
			switch message.Role {
			case llm.RoleUser:
				fmt.Fprintf(w, "  You: %s\n", message.Content)
			case llm.RoleAssistant:
				fmt.Fprintf(w, "  AI: %s\n", message.Content)
			}
		}
	}
}
