// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width))

	view := strings.Join([]string{
		model.renderHeader(),
		separator,
		model.viewport.View(),
		separator,
		model.renderPrompt(),
		model.renderStatusBar(),
	}, "\n")

	if model.picker != nil {
		overlayLines := model.picker.Render(model.theme)
		anchorX := (model.width - model.picker.Width()) / 2
		if anchorX < 0 {
			anchorX = 0
		}
		// Center vertically within the viewport region, which starts
		// below the header and first separator.
		anchorY := 2 + (model.viewport.Height-model.picker.Height())/2
		if anchorY < 2 {
			anchorY = 2
		}
		view = spliceOverlay(view, overlayLines, anchorX, anchorY)
	}

	return view
}

func (model Model) renderHeader() string {
	left := lipgloss.NewStyle().
		Foreground(model.theme.HeaderForeground).
		Bold(true).
		Render(" Parley")
	if model.modelName != "" {
		left += lipgloss.NewStyle().
			Foreground(model.theme.FaintText).
			Render(" · " + model.modelName)
	}

	right := lipgloss.NewStyle().
		Foreground(model.theme.NormalText).
		Render("role: " + model.summary.CurrentRole + " ")

	gap := model.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderPrompt draws the editable prompt line. When the input
// overflows the terminal width it is truncated from the left so the
// cursor end stays visible.
func (model Model) renderPrompt() string {
	marker := lipgloss.NewStyle().
		Foreground(model.theme.UserLabel).
		Bold(true).
		Render(" > ")
	cursor := lipgloss.NewStyle().
		Foreground(model.theme.HeaderForeground).
		Bold(true).
		Render("▎")
	text := lipgloss.NewStyle().
		Foreground(model.theme.NormalText).
		Render(model.input)

	line := marker + text + cursor
	if overflow := ansi.StringWidth(line) - model.width; overflow > 0 {
		line = ansi.TruncateLeft(line, overflow+1, "…")
	}
	return line
}

func (model Model) renderStatusBar() string {
	helpStyle := lipgloss.NewStyle().Foreground(model.theme.HelpText)

	left := helpStyle.Render(" " + model.helpLine())
	if model.notice != "" {
		noticeColor := model.theme.FaintText
		if model.noticeIsError {
			noticeColor = model.theme.ErrorText
		}
		left = lipgloss.NewStyle().
			Foreground(noticeColor).
			Render(" " + model.notice)
	}

	right := helpStyle.Render(model.contextStats() + " ")

	gap := model.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (model Model) helpLine() string {
	bindings := []key.Binding{
		model.keys.Send,
		model.keys.RolePicker,
		model.keys.ClearContext,
		model.keys.PageUp,
		model.keys.Quit,
	}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}

// contextStats summarizes the conversation state for the status bar.
func (model Model) contextStats() string {
	parts := []string{
		fmt.Sprintf("turns %d/%d", model.summary.CurrentTurns, model.summary.MaxTurns),
	}
	if model.summary.ContextWindow > 0 {
		parts = append(parts, fmt.Sprintf("~%d of %d tokens",
			model.summary.EstimatedTokens, model.summary.ContextWindow))
	}
	parts = append(parts, string(model.assistant.Settings().TruncateMode()))
	return strings.Join(parts, " · ")
}

// transcriptPadding keeps transcript text off the terminal edge.
const transcriptPadding = 1

// refreshTranscript re-renders the transcript into the viewport.
// Called whenever entries, the pending reply, or the layout change.
func (model *Model) refreshTranscript() {
	if !model.ready {
		return
	}
	model.viewport.SetContent(model.transcriptContent())
}

func (model *Model) transcriptContent() string {
	width := model.viewport.Width - 2*transcriptPadding
	if width < 10 {
		width = model.viewport.Width
	}

	var blocks []string
	for _, entry := range model.entries {
		blocks = append(blocks, model.renderEntry(entry, width))
	}
	if model.pending != nil {
		blocks = append(blocks, model.renderPending(width))
	}
	if len(blocks) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(model.theme.FaintText).
			Render("No messages yet. Type a prompt and press enter.")
		return "\n" + empty
	}

	content := strings.Join(blocks, "\n\n")
	return lipgloss.NewStyle().PaddingLeft(transcriptPadding).Render(content)
}

func (model *Model) renderEntry(entry transcriptEntry, width int) string {
	switch entry.kind {
	case entryUser:
		label := lipgloss.NewStyle().
			Foreground(model.theme.UserLabel).
			Bold(true).
			Render("you")
		body := lipgloss.NewStyle().
			Foreground(model.theme.NormalText).
			Width(width).
			Render(entry.text)
		return label + "\n" + body

	case entryAssistant:
		label := lipgloss.NewStyle().
			Foreground(model.theme.AssistantLabel).
			Bold(true).
			Render(entry.role)
		latency := lipgloss.NewStyle().
			Foreground(model.theme.FaintText).
			Render(fmt.Sprintf(" (%.2fs)", entry.latency.Seconds()))
		body := strings.TrimRight(model.renderer.Render(entry.text, width), "\n")
		return label + latency + "\n" + body

	case entryNotice:
		return lipgloss.NewStyle().
			Foreground(model.theme.FaintText).
			Render("· " + entry.text)

	case entryError:
		return lipgloss.NewStyle().
			Foreground(model.theme.ErrorText).
			Width(width).
			Render("✗ " + entry.text)
	}
	return ""
}

// renderPending draws the in-flight reply: a spinner until the first
// fragment, then the raw accumulating text. Markdown rendering waits
// for the completed reply so fragments display without re-parsing.
func (model *Model) renderPending(width int) string {
	label := lipgloss.NewStyle().
		Foreground(model.theme.AssistantLabel).
		Bold(true).
		Render(model.assistant.ActiveRole())

	if model.pending.reply.Len() == 0 {
		return label + " " + model.spinner.View()
	}

	body := lipgloss.NewStyle().
		Foreground(model.theme.NormalText).
		Width(width).
		Render(model.pending.reply.String())
	return label + "\n" + body
}
