// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package markdown

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

var testRenderer = New(DefaultTheme)

// stripped renders markdown and returns ANSI-stripped visible text.
func stripped(input string, width int) string {
	return ansi.Strip(testRenderer.Render(input, width))
}

// raw renders markdown and returns the ANSI-styled output.
func raw(input string, width int) string {
	return testRenderer.Render(input, width)
}

func TestRenderEmpty(t *testing.T) {
	if result := testRenderer.Render("", 80); result != "" {
		t.Errorf("expected empty string for empty input, got %q", result)
	}
}

func TestRenderParagraphReflow(t *testing.T) {
	// Source text hard-wrapped at ~40 columns joins into one line at
	// width 120.
	input := "This is a paragraph that was\nwritten at a narrow width with\nhard line breaks embedded in it."
	result := stripped(input, 120)

	if strings.Contains(result, "\n") {
		t.Errorf("expected no newlines at width=120, got:\n%s", result)
	}
	if !strings.Contains(result, "was written at") {
		t.Errorf("expected soft break converted to space, got:\n%s", result)
	}
}

func TestRenderParagraphWrapsAtWidth(t *testing.T) {
	input := "This is a paragraph that should be wrapped at the target width."
	result := stripped(input, 30)

	for _, line := range strings.Split(result, "\n") {
		if len(line) > 30 {
			t.Errorf("line exceeds width 30: %q (len=%d)", line, len(line))
		}
	}
}

func TestRenderHardLineBreak(t *testing.T) {
	// Two trailing spaces force a hard break in CommonMark.
	input := "Line one  \nLine two"
	result := stripped(input, 80)

	if !strings.Contains(result, "Line one\nLine two") {
		t.Errorf("expected hard line break preserved, got:\n%s", result)
	}
}

func TestRenderHeadings(t *testing.T) {
	input := "# Heading One\n\n## Heading Two\n\n### Heading Three"
	result := stripped(input, 80)

	for _, heading := range []string{"Heading One", "Heading Two", "Heading Three"} {
		if !strings.Contains(result, heading) {
			t.Errorf("missing heading text %q", heading)
		}
	}

	if raw(input, 80) == result {
		t.Error("expected ANSI styling in heading output")
	}
}

func TestRenderEmphasis(t *testing.T) {
	input := "This is *italic* and **bold** text."
	result := stripped(input, 80)

	if !strings.Contains(result, "italic") || !strings.Contains(result, "bold") {
		t.Errorf("missing emphasis text, got:\n%s", result)
	}
	if raw(input, 80) == result {
		t.Error("expected ANSI styling in emphasis output")
	}
}

func TestRenderNestedEmphasis(t *testing.T) {
	input := "***bold and italic***"
	result := stripped(input, 80)

	if !strings.Contains(result, "bold and italic") {
		t.Errorf("expected combined bold+italic text, got:\n%s", result)
	}
}

func TestRenderCodeSpan(t *testing.T) {
	input := "Use the `reply()` function."
	result := stripped(input, 80)

	if !strings.Contains(result, "reply()") {
		t.Errorf("missing code span text, got:\n%s", result)
	}
}

func TestRenderFencedCodeBlock(t *testing.T) {
	input := "Text before.\n\n```go\nfunc main() {\n\tfmt.Println(\"hello\")\n}\n```\n\nText after."
	result := stripped(input, 80)

	// Code lines are preserved exactly, never reflowed.
	if !strings.Contains(result, "func main()") {
		t.Error("missing code block content")
	}
	if !strings.Contains(result, "fmt.Println") {
		t.Error("missing code block content")
	}
	if !strings.Contains(result, "Text before.") {
		t.Error("missing text before code block")
	}
	if !strings.Contains(result, "Text after.") {
		t.Error("missing text after code block")
	}
}

func TestRenderFencedCodeBlockHighlighted(t *testing.T) {
	input := "```go\npackage main\n```"

	// Chroma emits ANSI escapes for Go syntax.
	if !strings.Contains(raw(input, 80), "\x1b[") {
		t.Error("expected ANSI escapes from syntax highlighting")
	}
}

func TestRenderFencedCodeBlockNoLanguage(t *testing.T) {
	input := "```\nplain code\n```"
	result := stripped(input, 80)

	if !strings.Contains(result, "plain code") {
		t.Errorf("missing code block content, got:\n%s", result)
	}
}

func TestRenderCodeBlockNotReflowed(t *testing.T) {
	input := "```\nshort\nlines\nhere\n```"
	result := stripped(input, 80)

	if !strings.Contains(result, "short\nlines\nhere") {
		t.Errorf("expected code block lines preserved, got:\n%s", result)
	}
}

func TestRenderBlockquote(t *testing.T) {
	input := "> This is a quoted paragraph."
	result := stripped(input, 80)

	if !strings.Contains(result, "│") {
		t.Errorf("expected blockquote prefix, got:\n%s", result)
	}
	if !strings.Contains(result, "This is a quoted paragraph.") {
		t.Error("missing blockquote content")
	}
}

func TestRenderBlockquotePrefixesEveryLine(t *testing.T) {
	input := "> This is a long quoted paragraph that\n> was written at a narrow width with\n> hard line breaks."
	result := stripped(input, 40)

	for _, line := range strings.Split(result, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "│") {
			t.Errorf("expected blockquote prefix on every line, got: %q", line)
		}
	}
}

func TestRenderUnorderedList(t *testing.T) {
	input := "- Item one\n- Item two\n- Item three"
	result := stripped(input, 80)

	for _, item := range []string{"- Item one", "- Item two", "- Item three"} {
		if !strings.Contains(result, item) {
			t.Errorf("missing list item %q, got:\n%s", item, result)
		}
	}
}

func TestRenderOrderedList(t *testing.T) {
	input := "1. First\n2. Second\n3. Third"
	result := stripped(input, 80)

	for _, item := range []string{"1. First", "2. Second", "3. Third"} {
		if !strings.Contains(result, item) {
			t.Errorf("missing ordered list item %q, got:\n%s", item, result)
		}
	}
}

func TestRenderNestedList(t *testing.T) {
	input := "- Outer\n  - Inner\n- Outer two"
	result := stripped(input, 80)

	var outerIndent, innerIndent int
	for _, line := range strings.Split(result, "\n") {
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if strings.Contains(line, "Inner") {
			innerIndent = indent
		}
		if strings.Contains(line, "Outer") && !strings.Contains(line, "two") {
			outerIndent = indent
		}
	}
	if innerIndent <= outerIndent {
		t.Errorf("expected inner list more indented: outer=%d, inner=%d", outerIndent, innerIndent)
	}
}

func TestRenderListItemReflow(t *testing.T) {
	input := "- This is a long list item that\n  was written at a narrow width."
	result := stripped(input, 80)

	if !strings.Contains(result, "long list item that was written") {
		t.Errorf("expected list item text reflowed, got:\n%s", result)
	}
}

func TestRenderTaskCheckbox(t *testing.T) {
	input := "- [x] Done task\n- [ ] Pending task"
	result := stripped(input, 80)

	if !strings.Contains(result, "[x]") {
		t.Errorf("missing checked checkbox, got:\n%s", result)
	}
	if !strings.Contains(result, "[ ]") {
		t.Error("missing unchecked checkbox")
	}
	if !strings.Contains(result, "Done task") {
		t.Error("missing checkbox label")
	}
}

func TestRenderStrikethrough(t *testing.T) {
	input := "This is ~~deleted~~ text."
	result := stripped(input, 80)

	if !strings.Contains(result, "deleted") {
		t.Error("missing strikethrough text")
	}
	if raw(input, 80) == result {
		t.Error("expected ANSI styling for strikethrough")
	}
}

func TestRenderLink(t *testing.T) {
	input := "See [the docs](https://example.com) for details."
	result := stripped(input, 80)

	if !strings.Contains(result, "the docs") {
		t.Error("missing link text")
	}
	if !strings.Contains(result, "(https://example.com)") {
		t.Errorf("missing link URL, got:\n%s", result)
	}
}

func TestRenderAutoLink(t *testing.T) {
	input := "Visit https://example.com for info."
	result := stripped(input, 80)

	if !strings.Contains(result, "https://example.com") {
		t.Errorf("missing autolink URL, got:\n%s", result)
	}
}

func TestRenderImage(t *testing.T) {
	input := "![alt text](https://example.com/image.png)"
	result := stripped(input, 80)

	if !strings.Contains(result, "[alt text]") {
		t.Errorf("missing image alt text, got:\n%s", result)
	}
	if !strings.Contains(result, "(https://example.com/image.png)") {
		t.Error("missing image URL")
	}
}

func TestRenderThematicBreak(t *testing.T) {
	input := "Before.\n\n---\n\nAfter."
	result := stripped(input, 40)

	if !strings.Contains(result, "Before.") || !strings.Contains(result, "After.") {
		t.Error("missing text around break")
	}
	if !strings.Contains(result, "───") {
		t.Errorf("expected horizontal rule, got:\n%s", result)
	}
}

func TestRenderTable(t *testing.T) {
	input := "| Name | Age |\n|------|-----|\n| Alice | 30 |\n| Bob | 25 |"
	result := stripped(input, 80)

	for _, cell := range []string{"Name", "Alice", "Bob"} {
		if !strings.Contains(result, cell) {
			t.Errorf("missing table content %q, got:\n%s", cell, result)
		}
	}
	if !strings.Contains(result, "───") {
		t.Error("missing table header separator")
	}
}

func TestRenderTableShrinksToWidth(t *testing.T) {
	input := "| Column one with a long header | Column two also long |\n|---|---|\n| left value here | right value here |"
	result := stripped(input, 30)

	for _, line := range strings.Split(result, "\n") {
		if len([]rune(line)) > 30 {
			t.Errorf("table line exceeds width 30: %q", line)
		}
	}
}

func TestRenderMultipleParagraphs(t *testing.T) {
	input := "First paragraph.\n\nSecond paragraph."
	result := stripped(input, 80)

	if !strings.Contains(result, "First paragraph.") || !strings.Contains(result, "Second paragraph.") {
		t.Error("missing paragraph text")
	}
	if !strings.Contains(result, "\n\n") {
		t.Error("expected blank line between paragraphs")
	}
}

func TestRenderPlain(t *testing.T) {
	plain := NewPlain()
	input := "# Title\n\nSome **bold** text with `code`.\n\n```go\npackage main\n```\n\n- item"
	result := plain.Render(input, 80)

	if strings.Contains(result, "\x1b[") {
		t.Errorf("expected no ANSI escapes in plain output, got:\n%q", result)
	}
	for _, content := range []string{"Title", "bold", "code", "package main", "- item"} {
		if !strings.Contains(result, content) {
			t.Errorf("missing content %q in plain output, got:\n%s", content, result)
		}
	}
}

func TestRenderZeroWidthFallsBack(t *testing.T) {
	result := stripped("Some text to render.", 0)

	if !strings.Contains(result, "Some text to render.") {
		t.Errorf("expected content at fallback width, got:\n%s", result)
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"<p>hello</p>", "hello"},
		{"no tags", "no tags"},
		{"<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"<br/>", ""},
		{"", ""},
	}
	for _, test := range tests {
		if result := stripTags(test.input); result != test.expected {
			t.Errorf("stripTags(%q) = %q, want %q", test.input, result, test.expected)
		}
	}
}
