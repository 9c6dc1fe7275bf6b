// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parley-foundation/parley/lib/chat"
	"github.com/parley-foundation/parley/lib/markdown"
)

// Options configures a chat session model.
type Options struct {
	// UserID is the conversation owner passed to the assistant.
	UserID string

	// ModelName is the backend model label shown in the header bar.
	ModelName string

	// Context bounds in-flight backend requests. Nil means
	// context.Background(); the request then ends with the process.
	Context context.Context

	// Theme overrides DefaultTheme when non-nil.
	Theme *Theme
}

// entryKind discriminates transcript entries.
type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entryNotice
	entryError
)

// transcriptEntry is one completed block in the transcript: a user
// message, a finished assistant reply, a session notice, or a failed
// turn.
type transcriptEntry struct {
	kind    entryKind
	text    string
	role    string        // assistant entries: the role that answered
	latency time.Duration // assistant entries: time to the full reply
}

// pendingTurn tracks the in-flight streaming reply. The stream field
// is nil between submission and the streamOpenedMsg.
type pendingTurn struct {
	stream  *chat.Stream
	reply   strings.Builder
	started time.Time
}

// streamOpenedMsg delivers the stream handle created off the UI
// goroutine (opening a stream performs the backend round trip up to
// response headers).
type streamOpenedMsg struct {
	seq    int
	stream *chat.Stream
}

// streamEventMsg delivers one stream event to the model.
type streamEventMsg struct {
	seq   int
	event chat.StreamEvent
}

// streamEOFMsg signals stream exhaustion after its terminal event.
type streamEOFMsg struct {
	seq int
}

// noticeFadeMsg clears the status-bar notice after a delay.
type noticeFadeMsg struct {
	seq int
}

// noticeFadeDelay is how long status-bar notices stay visible before
// fading back to the keyboard help line.
const noticeFadeDelay = 5 * time.Second

// Model is the bubbletea model for one chat session. State lives in
// the value; Update returns the modified copy per the Elm
// architecture.
type Model struct {
	assistant chat.Assistant
	userID    string
	modelName string
	theme     Theme
	keys      KeyMap
	ctx       context.Context
	renderer  *markdown.Renderer

	width  int
	height int
	ready  bool

	viewport viewport.Model
	spinner  spinner.Model

	// input is the prompt line under edit.
	input string

	entries []transcriptEntry
	pending *pendingTurn

	// picker is non-nil while the role picker overlay captures input.
	picker *RolePicker

	summary chat.Summary

	notice        string
	noticeIsError bool
	noticeSeq     int

	// streamSeq identifies the current turn. Events from canceled
	// streams carry a stale sequence and are dropped.
	streamSeq int
}

// New creates a chat session model over the assistant. The model
// renders a loading placeholder until the program delivers the first
// WindowSizeMsg.
func New(assistant chat.Assistant, options Options) Model {
	theme := DefaultTheme
	if options.Theme != nil {
		theme = *options.Theme
	}
	ctx := options.Context
	if ctx == nil {
		ctx = context.Background()
	}

	waitSpinner := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.FaintText)),
	)

	return Model{
		assistant: assistant,
		userID:    options.UserID,
		modelName: options.ModelName,
		theme:     theme,
		keys:      DefaultKeyMap,
		ctx:       ctx,
		renderer:  markdown.New(markdown.DefaultTheme),
		spinner:   waitSpinner,
		summary:   assistant.Summary(options.UserID),
	}
}

// Init implements tea.Model. All startup state is loaded in New; the
// first WindowSizeMsg completes initialization.
func (model Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		return model.handleResize(message), nil

	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.MouseMsg:
		// The viewport handles wheel scrolling of the transcript.
		var command tea.Cmd
		model.viewport, command = model.viewport.Update(message)
		return model, command

	case streamOpenedMsg:
		return model.handleStreamOpened(message)

	case streamEventMsg:
		return model.handleStreamEvent(message)

	case streamEOFMsg:
		return model, nil

	case spinner.TickMsg:
		// The spinner runs only between submission and the first
		// fragment.
		if model.pending == nil || model.pending.reply.Len() > 0 {
			return model, nil
		}
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		model.refreshTranscript()
		return model, command

	case noticeFadeMsg:
		if message.seq == model.noticeSeq {
			model.notice = ""
			model.noticeIsError = false
		}
		return model, nil
	}

	return model, nil
}

// chromeHeight is the number of rows used by fixed chrome around the
// transcript viewport: header, two separators, prompt line, status
// bar.
const chromeHeight = 5

func (model Model) handleResize(message tea.WindowSizeMsg) Model {
	model.width = message.Width
	model.height = message.Height

	viewportHeight := message.Height - chromeHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	if !model.ready {
		model.viewport = viewport.New(message.Width, viewportHeight)
		model.ready = true
	} else {
		model.viewport.Width = message.Width
		model.viewport.Height = viewportHeight
	}
	model.refreshTranscript()
	model.viewport.GotoBottom()
	return model
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit works in every state. An in-flight stream is closed so its
	// pump goroutine unblocks before the program tears down.
	if key.Matches(message, model.keys.Quit) {
		if model.pending != nil && model.pending.stream != nil {
			model.pending.stream.Close()
		}
		return model, tea.Quit
	}

	if model.picker != nil {
		return model.handlePickerKey(message)
	}

	switch {
	case key.Matches(message, model.keys.Send):
		return model.submitPrompt()

	case key.Matches(message, model.keys.Cancel):
		return model.cancel(), nil

	case key.Matches(message, model.keys.RolePicker):
		model.picker = NewRolePicker(model.assistant.Roles(), model.assistant.ActiveRole())
		return model, nil

	case key.Matches(message, model.keys.ClearContext):
		model.assistant.ClearContext(model.userID)
		model.summary = model.assistant.Summary(model.userID)
		model.appendEntry(transcriptEntry{kind: entryNotice, text: "context cleared"})
		return model, nil

	case key.Matches(message, model.keys.Up):
		model.scrollLines(-1)
		return model, nil

	case key.Matches(message, model.keys.Down):
		model.scrollLines(1)
		return model, nil

	case key.Matches(message, model.keys.PageUp):
		model.viewport.HalfViewUp()
		return model, nil

	case key.Matches(message, model.keys.PageDown):
		model.viewport.HalfViewDown()
		return model, nil
	}

	switch message.Type {
	case tea.KeyRunes:
		model.input += sanitizePrompt(string(message.Runes))
	case tea.KeySpace:
		model.input += " "
	case tea.KeyBackspace:
		if len(model.input) > 0 {
			runes := []rune(model.input)
			model.input = string(runes[:len(runes)-1])
		}
	}
	return model, nil
}

func (model Model) handlePickerKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.picker = nil
		return model, nil

	case key.Matches(message, model.keys.Up):
		model.picker.MoveUp()
		return model, nil

	case key.Matches(message, model.keys.Down):
		model.picker.MoveDown()
		return model, nil

	case key.Matches(message, model.keys.Send):
		name, ok := model.picker.Selected()
		model.picker = nil
		if !ok {
			return model, nil
		}
		if err := model.assistant.SetRole(name); err != nil {
			command := model.setNotice(fmt.Sprintf("switch failed: %v", err), true)
			return model, command
		}
		model.summary = model.assistant.Summary(model.userID)
		model.appendEntry(transcriptEntry{kind: entryNotice, text: "role switched to " + name})
		return model, nil
	}

	switch message.Type {
	case tea.KeyRunes:
		for _, character := range message.Runes {
			model.picker.HandleRune(character)
		}
	case tea.KeySpace:
		model.picker.HandleRune(' ')
	case tea.KeyBackspace:
		model.picker.HandleBackspace()
	}
	return model, nil
}

// submitPrompt turns the prompt line into a streaming chat turn. The
// user message is shown immediately; the reply streams in through
// streamEventMsg deliveries.
func (model Model) submitPrompt() (tea.Model, tea.Cmd) {
	message := strings.TrimSpace(model.input)
	if message == "" {
		return model, nil
	}
	if model.pending != nil {
		command := model.setNotice("a reply is still streaming, esc to cancel it", false)
		return model, command
	}

	model.input = ""
	model.streamSeq++
	model.pending = &pendingTurn{started: time.Now()}
	model.appendEntry(transcriptEntry{kind: entryUser, text: message})

	return model, tea.Batch(model.openStream(model.streamSeq, message), model.spinner.Tick)
}

// openStream starts the streaming turn off the UI goroutine: opening
// a stream blocks on the backend until response headers arrive.
func (model Model) openStream(seq int, message string) tea.Cmd {
	assistant := model.assistant
	ctx := model.ctx
	userID := model.userID
	return func() tea.Msg {
		return streamOpenedMsg{seq: seq, stream: assistant.ChatStream(ctx, userID, message, "")}
	}
}

// waitForStreamEvent blocks on the next stream event and delivers it
// to the model. Re-issued after each delivery until the terminal
// event arrives.
func waitForStreamEvent(seq int, stream *chat.Stream) tea.Cmd {
	return func() tea.Msg {
		event, err := stream.Next()
		if err != nil {
			return streamEOFMsg{seq: seq}
		}
		return streamEventMsg{seq: seq, event: event}
	}
}

func (model Model) handleStreamOpened(message streamOpenedMsg) (tea.Model, tea.Cmd) {
	if message.seq != model.streamSeq || model.pending == nil {
		// The turn was canceled before the stream opened; release the
		// backend connection.
		message.stream.Close()
		return model, nil
	}
	model.pending.stream = message.stream
	return model, waitForStreamEvent(message.seq, message.stream)
}

func (model Model) handleStreamEvent(message streamEventMsg) (tea.Model, tea.Cmd) {
	if message.seq != model.streamSeq || model.pending == nil {
		return model, nil
	}

	switch message.event.Type {
	case chat.EventContent:
		model.pending.reply.WriteString(message.event.Text)
		model.refreshTranscript()
		model.viewport.GotoBottom()
		return model, waitForStreamEvent(message.seq, model.pending.stream)

	case chat.EventDone:
		entry := transcriptEntry{
			kind:    entryAssistant,
			text:    model.pending.reply.String(),
			role:    model.pending.stream.Role(),
			latency: time.Since(model.pending.started),
		}
		model.pending.stream.Close()
		model.pending = nil
		model.summary = model.assistant.Summary(model.userID)
		model.appendEntry(entry)
		return model, nil

	case chat.EventError:
		model.pending.stream.Close()
		model.pending = nil
		model.appendEntry(transcriptEntry{
			kind: entryError,
			text: message.event.Err.Error(),
		})
		command := model.setNotice("request failed, try again", true)
		return model, command
	}
	return model, nil
}

// cancel backs out of the current activity: an in-flight reply first,
// then the prompt line. Closing a stream before its terminal event
// leaves the context with the user message but no partial reply.
func (model Model) cancel() Model {
	if model.pending != nil {
		if model.pending.stream != nil {
			model.pending.stream.Close()
		}
		model.streamSeq++
		model.pending = nil
		model.appendEntry(transcriptEntry{kind: entryNotice, text: "reply canceled"})
		return model
	}
	model.input = ""
	return model
}

// appendEntry adds a transcript block and follows the tail.
func (model *Model) appendEntry(entry transcriptEntry) {
	model.entries = append(model.entries, entry)
	model.refreshTranscript()
	model.viewport.GotoBottom()
}

// setNotice shows a transient status-bar message and schedules its
// fade.
func (model *Model) setNotice(text string, isError bool) tea.Cmd {
	model.notice = text
	model.noticeIsError = isError
	model.noticeSeq++
	seq := model.noticeSeq
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{seq: seq}
	})
}

// scrollLines moves the viewport by delta lines, clamped to content.
func (model *Model) scrollLines(delta int) {
	offset := model.viewport.YOffset + delta
	maxOffset := model.viewport.TotalLineCount() - model.viewport.Height
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	model.viewport.SetYOffset(offset)
}

// sanitizePrompt flattens control characters from pasted text so the
// prompt stays a single line.
func sanitizePrompt(text string) string {
	return strings.Map(func(character rune) rune {
		switch character {
		case '\n', '\r', '\t':
			return ' '
		}
		return character
	}, text)
}
