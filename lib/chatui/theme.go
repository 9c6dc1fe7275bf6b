// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the chat interface. All colors
// use lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Speaker labels in the transcript.
	UserLabel      lipgloss.Color
	AssistantLabel lipgloss.Color

	// Errors shown in the transcript and status bar.
	ErrorText lipgloss.Color

	// Selected row in the role picker.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Role picker overlay.
	OverlayBackground lipgloss.Color
	MatchForeground   lipgloss.Color // Fuzzy-matched characters in option labels.
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed for
// 256-color terminals with a dark background (the common case for
// development environments and tmux sessions).
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	UserLabel:      lipgloss.Color("75"),  // blue
	AssistantLabel: lipgloss.Color("114"), // green
	ErrorText:      lipgloss.Color("196"), // bright red

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	OverlayBackground: lipgloss.Color("237"), // slightly lighter than terminal background
	MatchForeground:   lipgloss.Color("220"), // yellow/amber
}
