// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the chat interface.
type KeyMap struct {
	// Send submits the prompt line as a chat turn.
	Send key.Binding

	// Cancel is context-sensitive: dismiss the role picker, abort an
	// in-flight reply, or clear the prompt line, in that order.
	Cancel key.Binding

	// Overlays and session actions.
	RolePicker   key.Binding // Open the role picker overlay.
	ClearContext key.Binding // Drop the conversation context.

	// Transcript scrolling (the prompt line owns plain characters, so
	// scrolling uses dedicated keys).
	Up       key.Binding // Line up; role picker cursor when open.
	Down     key.Binding // Line down; role picker cursor when open.
	PageUp   key.Binding
	PageDown key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Plain characters go
// to the prompt line, so every action is on a control key.
var DefaultKeyMap = KeyMap{
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	RolePicker: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "roles"),
	),
	ClearContext: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("C-l", "clear context"),
	),
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "scroll up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "scroll down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}
