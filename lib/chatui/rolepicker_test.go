// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func testRoleNames() []string {
	return []string{"code", "creative", "default", "professional"}
}

func pickerNames(picker *RolePicker) []string {
	var names []string
	for _, option := range picker.options() {
		names = append(names, option.Name)
	}
	return names
}

func TestRolePickerShowsAllWithoutFilter(t *testing.T) {
	picker := NewRolePicker(testRoleNames(), "default")

	names := pickerNames(picker)
	if len(names) != 4 {
		t.Fatalf("expected 4 options, got %d: %v", len(names), names)
	}
	// Original order is preserved and scores are zero with no query.
	for index, expected := range testRoleNames() {
		if names[index] != expected {
			t.Errorf("option %d should be %s, got %s", index, expected, names[index])
		}
	}
	for _, option := range picker.options() {
		if option.Score != 0 {
			t.Errorf("option %s should have zero score without a query, got %d", option.Name, option.Score)
		}
	}
}

func TestRolePickerFilterNarrows(t *testing.T) {
	picker := NewRolePicker(testRoleNames(), "default")

	// "c" keeps only the roles containing a c.
	picker.HandleRune('c')
	names := pickerNames(picker)
	if len(names) != 2 {
		t.Fatalf("expected 2 matches for 'c', got %v", names)
	}

	// "cre" narrows to creative alone.
	picker.HandleRune('r')
	picker.HandleRune('e')
	names = pickerNames(picker)
	if len(names) != 1 || names[0] != "creative" {
		t.Fatalf("expected [creative] for 'cre', got %v", names)
	}

	selected, ok := picker.Selected()
	if !ok || selected != "creative" {
		t.Errorf("expected creative selected, got %q ok=%v", selected, ok)
	}
}

func TestRolePickerFilterRanksByScore(t *testing.T) {
	// A prefix match should rank above a scattered match for the
	// same query.
	picker := NewRolePicker([]string{"code review", "creative"}, "creative")

	for _, character := range "creat" {
		picker.HandleRune(character)
	}
	names := pickerNames(picker)
	if len(names) != 2 {
		t.Fatalf("expected both roles to match 'creat', got %v", names)
	}
	if names[0] != "creative" {
		t.Errorf("prefix match should rank first, got %v", names)
	}
}

func TestRolePickerBackspaceRestores(t *testing.T) {
	picker := NewRolePicker(testRoleNames(), "default")

	picker.HandleRune('z')
	if len(picker.options()) != 0 {
		t.Fatalf("expected no matches for 'z', got %v", pickerNames(picker))
	}

	picker.HandleBackspace()
	if len(picker.options()) != 4 {
		t.Errorf("expected full list after backspace, got %v", pickerNames(picker))
	}

	// Backspace on an empty query is a no-op.
	picker.HandleBackspace()
	if picker.Input != "" {
		t.Errorf("expected empty input, got %q", picker.Input)
	}
}

func TestRolePickerCursorWraps(t *testing.T) {
	picker := NewRolePicker(testRoleNames(), "default")

	picker.MoveUp()
	if picker.Cursor != 3 {
		t.Errorf("MoveUp from top should wrap to last, got %d", picker.Cursor)
	}
	picker.MoveDown()
	if picker.Cursor != 0 {
		t.Errorf("MoveDown from last should wrap to first, got %d", picker.Cursor)
	}

	picker.MoveDown()
	picker.MoveDown()
	selected, ok := picker.Selected()
	if !ok || selected != "default" {
		t.Errorf("expected default at cursor 2, got %q ok=%v", selected, ok)
	}
}

func TestRolePickerNoMatches(t *testing.T) {
	picker := NewRolePicker(testRoleNames(), "default")

	for _, character := range "zzz" {
		picker.HandleRune(character)
	}

	if _, ok := picker.Selected(); ok {
		t.Error("Selected should report no match for an excluding filter")
	}

	// Cursor movement on an empty view must not panic.
	picker.MoveUp()
	picker.MoveDown()

	rendered := strings.Join(picker.Render(DefaultTheme), "\n")
	if !strings.Contains(rendered, noMatchesLabel) {
		t.Errorf("render should show the no-match placeholder, got %q", rendered)
	}
}

func TestRolePickerRender(t *testing.T) {
	picker := NewRolePicker(testRoleNames(), "creative")

	lines := picker.Render(DefaultTheme)
	if len(lines) != picker.Height() {
		t.Fatalf("expected %d lines, got %d", picker.Height(), len(lines))
	}

	rendered := strings.Join(lines, "\n")
	if !strings.Contains(rendered, pickerTitle) {
		t.Error("render should include the title")
	}
	for _, name := range testRoleNames() {
		if !strings.Contains(rendered, name) {
			t.Errorf("render should include role %s", name)
		}
	}
	if !strings.Contains(rendered, activeSuffix) {
		t.Error("render should mark the active role")
	}
}

func TestRolePickerRenderWidthUniform(t *testing.T) {
	picker := NewRolePicker(testRoleNames(), "default")
	picker.HandleRune('c')

	assertUniformWidth(t, picker)

	// The no-match placeholder keeps the rectangle solid too.
	picker.HandleRune('z')
	picker.HandleRune('z')
	assertUniformWidth(t, picker)
}

// assertUniformWidth checks that every rendered line has the visible
// width the picker reports, so the overlay splices as a solid
// rectangle.
func assertUniformWidth(t *testing.T, picker *RolePicker) {
	t.Helper()
	expected := picker.Width()
	for index, line := range picker.Render(DefaultTheme) {
		if width := ansi.StringWidth(line); width != expected {
			t.Errorf("line %d width = %d, want %d", index, width, expected)
		}
	}
}
