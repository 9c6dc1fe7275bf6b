// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"
)

// activeSuffix marks the currently active role in the picker list.
const activeSuffix = " (active)"

// rankedOption is one role in the picker's filtered view, carrying
// its fuzzy score and matched character positions for highlighting.
type rankedOption struct {
	Name      string
	Active    bool
	Score     int
	Positions []int
}

// RolePicker is a floating overlay for switching the assistant role.
// It captures all keyboard input while open: typed characters narrow
// the list with fuzzy matching, up/down move the cursor (wrapping),
// enter selects, and escape dismisses. The model owns the picker
// instance and routes input to it when it is non-nil.
type RolePicker struct {
	// Input is the current fuzzy filter query.
	Input string

	// Cursor is the highlighted index within the filtered view.
	Cursor int

	roles    []rankedOption // Full option set in original order.
	filtered []rankedOption // Fuzzy-ranked view of roles.

	// Scratch arena reused across fuzzy matches. Sized per fzf's own
	// defaults.
	slab *util.Slab
}

// NewRolePicker creates a picker over the given role names, marking
// the active role. The names keep their given order until a filter
// query reorders them by score.
func NewRolePicker(names []string, active string) *RolePicker {
	picker := &RolePicker{
		slab: util.MakeSlab(100*1024, 2048),
	}
	for _, name := range names {
		picker.roles = append(picker.roles, rankedOption{
			Name:   name,
			Active: name == active,
		})
	}
	picker.refilter()
	return picker
}

// options returns the current filtered view.
func (picker *RolePicker) options() []rankedOption {
	return picker.filtered
}

// HandleRune appends a typed character to the filter query.
func (picker *RolePicker) HandleRune(character rune) {
	picker.Input += string(character)
	picker.refilter()
}

// HandleBackspace removes the last character from the filter query.
func (picker *RolePicker) HandleBackspace() {
	if len(picker.Input) == 0 {
		return
	}
	runes := []rune(picker.Input)
	picker.Input = string(runes[:len(runes)-1])
	picker.refilter()
}

// refilter rebuilds the filtered view from the current query. An
// empty query shows every role in original order. A non-empty query
// keeps only fuzzy matches, ordered by descending score (ties keep
// their original order). The cursor resets to the top.
func (picker *RolePicker) refilter() {
	picker.Cursor = 0

	if picker.Input == "" {
		picker.filtered = slices.Clone(picker.roles)
		for index := range picker.filtered {
			picker.filtered[index].Score = 0
			picker.filtered[index].Positions = nil
		}
		return
	}

	pattern := []rune(picker.Input)
	picker.filtered = picker.filtered[:0]
	for _, option := range picker.roles {
		result := FuzzyMatch(option.Name, pattern, picker.slab)
		if result.Score <= 0 {
			continue
		}
		option.Score = result.Score
		option.Positions = result.Positions
		picker.filtered = append(picker.filtered, option)
	}
	slices.SortStableFunc(picker.filtered, func(a, b rankedOption) int {
		return b.Score - a.Score
	})
}

// MoveUp moves the cursor up by one, wrapping to the bottom.
func (picker *RolePicker) MoveUp() {
	if len(picker.filtered) == 0 {
		return
	}
	picker.Cursor--
	if picker.Cursor < 0 {
		picker.Cursor = len(picker.filtered) - 1
	}
}

// MoveDown moves the cursor down by one, wrapping to the top.
func (picker *RolePicker) MoveDown() {
	if len(picker.filtered) == 0 {
		return
	}
	picker.Cursor++
	if picker.Cursor >= len(picker.filtered) {
		picker.Cursor = 0
	}
}

// Selected returns the highlighted role name. The second return is
// false when the filter has no matches.
func (picker *RolePicker) Selected() (string, bool) {
	if len(picker.filtered) == 0 {
		return "", false
	}
	return picker.filtered[picker.Cursor].Name, true
}

// pickerTitle is the header line of the rendered overlay.
const pickerTitle = "Switch role"

// noMatchesLabel replaces the option list when the filter excludes
// every role.
const noMatchesLabel = "(no matching roles)"

// Width returns the total visible width of the rendered picker in
// columns. This matches the width used by Render and is needed to
// center the overlay.
func (picker *RolePicker) Width() int {
	maxContentWidth := ansi.StringWidth(pickerTitle)

	// Input line: "/ " prefix, query, cursor block.
	inputWidth := 2 + ansi.StringWidth(picker.Input) + 1
	if inputWidth > maxContentWidth {
		maxContentWidth = inputWidth
	}

	if len(picker.filtered) == 0 {
		if width := ansi.StringWidth(noMatchesLabel); width > maxContentWidth {
			maxContentWidth = width
		}
	}
	for _, option := range picker.filtered {
		labelWidth := ansi.StringWidth(option.Name)
		if option.Active {
			labelWidth += ansi.StringWidth(activeSuffix)
		}
		if labelWidth > maxContentWidth {
			maxContentWidth = labelWidth
		}
	}

	// Layout: " > LABEL  " — 3 chars prefix (space + marker + space),
	// then content, then 1 char padding on each side.
	return 3 + maxContentWidth + 2
}

// Height returns the number of lines Render produces.
func (picker *RolePicker) Height() int {
	optionLines := len(picker.filtered)
	if optionLines == 0 {
		optionLines = 1 // "(no matching roles)"
	}
	return 2 + optionLines // title + input + options
}

// Render produces the picker lines for overlay splicing. Each line
// has the same visible width and a solid background for visual
// separation from the underlying transcript. The highlighted option
// uses a contrasting background; fuzzy-matched characters within
// option labels are emphasized.
func (picker *RolePicker) Render(theme Theme) []string {
	totalWidth := picker.Width()
	innerWidth := totalWidth - 2

	backgroundStyle := lipgloss.NewStyle().
		Background(theme.OverlayBackground)
	titleStyle := lipgloss.NewStyle().
		Background(theme.OverlayBackground).
		Foreground(theme.HeaderForeground).
		Bold(true)
	faintStyle := lipgloss.NewStyle().
		Background(theme.OverlayBackground).
		Foreground(theme.FaintText)
	inputStyle := lipgloss.NewStyle().
		Background(theme.OverlayBackground).
		Foreground(theme.NormalText)
	cursorStyle := lipgloss.NewStyle().
		Background(theme.OverlayBackground).
		Foreground(theme.HeaderForeground).
		Bold(true)

	pad := func(styledContent string, style lipgloss.Style) string {
		contentWidth := ansi.StringWidth(styledContent)
		rightPad := totalWidth - 1 - contentWidth
		if rightPad < 0 {
			rightPad = 0
		}
		return style.Render(" ") + styledContent + style.Render(strings.Repeat(" ", rightPad))
	}

	lines := []string{
		pad(titleStyle.Render(pickerTitle), backgroundStyle),
		pad(inputStyle.Render("/ "+picker.Input)+cursorStyle.Render("▎"), backgroundStyle),
	}

	if len(picker.filtered) == 0 {
		lines = append(lines, pad(faintStyle.Render(noMatchesLabel), backgroundStyle))
		return lines
	}

	for index, option := range picker.filtered {
		selected := index == picker.Cursor

		rowBackground := theme.OverlayBackground
		rowForeground := theme.NormalText
		if selected {
			rowBackground = theme.SelectedBackground
			rowForeground = theme.SelectedForeground
		}
		rowStyle := lipgloss.NewStyle().
			Background(rowBackground).
			Foreground(rowForeground)
		matchStyle := lipgloss.NewStyle().
			Background(rowBackground).
			Foreground(theme.MatchForeground).
			Bold(true)
		suffixStyle := lipgloss.NewStyle().
			Background(rowBackground).
			Foreground(theme.FaintText)

		marker := "  "
		if selected {
			marker = "> "
		}

		content := rowStyle.Render(marker) +
			highlightLabel(option.Name, option.Positions, rowStyle, matchStyle)
		if option.Active {
			content += suffixStyle.Render(activeSuffix)
		}

		// Pad every row to the shared inner width so the overlay is a
		// solid rectangle.
		contentWidth := ansi.StringWidth(content)
		rightPad := innerWidth - contentWidth
		if rightPad < 0 {
			rightPad = 0
		}
		line := rowStyle.Render(" ") + content +
			rowStyle.Render(strings.Repeat(" ", rightPad)+" ")
		lines = append(lines, line)
	}

	return lines
}

// highlightLabel renders a label with the fuzzy-matched rune
// positions emphasized. Contiguous runs share one styled segment to
// keep the escape-sequence count down.
func highlightLabel(label string, positions []int, base, match lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(label)
	}

	matched := make(map[int]bool, len(positions))
	for _, position := range positions {
		matched[position] = true
	}

	var builder strings.Builder
	runes := []rune(label)
	for start := 0; start < len(runes); {
		end := start
		for end < len(runes) && matched[end] == matched[start] {
			end++
		}
		segment := string(runes[start:end])
		if matched[start] {
			builder.WriteString(match.Render(segment))
		} else {
			builder.WriteString(base.Render(segment))
		}
		start = end
	}
	return builder.String()
}
