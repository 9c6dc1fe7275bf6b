// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package markdown renders assistant replies as styled terminal text.
//
// Replies arrive as CommonMark with GFM extensions (tables, task
// lists, strikethrough, autolinks) and are rendered by walking the
// goldmark AST directly. Paragraph text is accumulated and word-wrapped
// as a unit so source wrapped at one width reflows cleanly at the
// terminal's width; code blocks keep their lines verbatim and are
// syntax-highlighted with chroma. A [Renderer] is configured once with
// a [Theme] and reused across replies; [NewPlain] produces a renderer
// with no ANSI styling for piped output.
package markdown

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// wrapBreakpoints are the characters ansi.Wrap may break a line at, in
// addition to spaces.
const wrapBreakpoints = " ,.;-+|"

// Theme is the color palette for rendered markdown. All colors are
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors body copy, Heading colors level 1-2 headings.
	Text    lipgloss.Color
	Heading lipgloss.Color

	// Faint colors secondary material: code spans, link URLs,
	// unhighlighted code, stripped HTML.
	Faint lipgloss.Color

	// Rule colors horizontal rules and table separators.
	Rule lipgloss.Color

	// Accent colors checked task boxes.
	Accent lipgloss.Color
}

// DefaultTheme is a dark-terminal palette.
var DefaultTheme = Theme{
	Text:    lipgloss.Color("252"),
	Heading: lipgloss.Color("255"),
	Faint:   lipgloss.Color("245"),
	Rule:    lipgloss.Color("240"),
	Accent:  lipgloss.Color("114"),
}

// parserInstance is shared by all renderers. The parser configuration
// never changes and goldmark parsers are safe for concurrent use;
// per-parse state lives in the reader passed to Parse.
var (
	parserInstance goldmark.Markdown
	parserOnce     sync.Once
)

func parser() goldmark.Markdown {
	parserOnce.Do(func() {
		parserInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return parserInstance
}

// Renderer turns markdown into terminal text. It is cheap to keep
// around and safe to reuse; construct one per output destination.
type Renderer struct {
	theme Theme
	plain bool
	lip   *lipgloss.Renderer
}

// New returns a Renderer producing ANSI-styled output with the given
// theme. The color profile is pinned to ANSI256 rather than detected
// from the environment: rendered replies are always for terminal
// display, and detection would strip the styling under a test harness
// or inside the TUI's alternate screen.
func New(theme Theme) *Renderer {
	lip := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI256))
	lip.SetColorProfile(termenv.ANSI256)
	return &Renderer{theme: theme, lip: lip}
}

// NewPlain returns a Renderer producing unstyled output: same layout,
// wrapping, and prefixes, no escape sequences. Used when stdout is not
// a terminal.
func NewPlain() *Renderer {
	lip := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.Ascii))
	lip.SetColorProfile(termenv.Ascii)
	return &Renderer{plain: true, lip: lip}
}

// Render parses input and renders it wrapped to width columns. A
// non-positive width falls back to 80.
func (renderer *Renderer) Render(input string, width int) string {
	if input == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	source := []byte(input)
	document := parser().Parser().Parse(text.NewReader(source))

	state := &renderState{
		renderer: renderer,
		source:   source,
		width:    width,
	}
	ast.Walk(document, state.walk)

	return strings.TrimRight(state.out.String(), "\n")
}

func (renderer *Renderer) style() lipgloss.Style {
	return renderer.lip.NewStyle()
}

// renderState is the per-call walk state. Block content is gathered in
// the inline buffer and flushed with word-wrap when the block closes;
// nested containers (blockquotes, list items) contribute line prefixes
// through the indent stack.
type renderState struct {
	renderer *Renderer
	source   []byte
	width    int

	out strings.Builder

	// trailing counts consecutive newlines at the end of out, so block
	// handlers can request "at least one" or "at least two" without
	// re-reading the buffer.
	trailing int

	// inline accumulates styled fragments of the current paragraph,
	// heading, or list item text.
	inline strings.Builder

	// indent holds one entry per open container. bullet, when set,
	// replaces the whole prefix for the next emitted line and then
	// clears; list items use it for their marker.
	indent []indentLevel
	bullet string

	// Style nesting depth for inline runs. Counters rather than
	// booleans so nested emphasis unwinds correctly.
	bold   int
	italic int
	strike int

	lists []listLevel
}

type indentLevel struct {
	text  string
	width int
}

type listLevel struct {
	ordered bool
	next    int
	tight   bool
}

// write appends to the output and keeps the trailing-newline count
// current.
func (state *renderState) write(s string) {
	if s == "" {
		return
	}
	state.out.WriteString(s)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			state.trailing++
		} else {
			state.trailing = 0
		}
	}
}

func (state *renderState) endLine() {
	if state.trailing < 1 {
		state.write("\n")
	}
}

func (state *renderState) blankLine() {
	for state.trailing < 2 {
		state.write("\n")
	}
}

func (state *renderState) prefix() string {
	var joined strings.Builder
	for _, level := range state.indent {
		joined.WriteString(level.text)
	}
	return joined.String()
}

func (state *renderState) prefixWidth() int {
	total := 0
	for _, level := range state.indent {
		total += level.width
	}
	return total
}

func (state *renderState) pushIndent(text string, width int) {
	state.indent = append(state.indent, indentLevel{text: text, width: width})
}

func (state *renderState) popIndent() {
	if len(state.indent) > 0 {
		state.indent = state.indent[:len(state.indent)-1]
	}
}

// contentWidth is the wrap width left after indentation, clamped so
// deeply nested content still gets a usable column.
func (state *renderState) contentWidth() int {
	width := state.width - state.prefixWidth()
	if width < 10 {
		width = 10
	}
	return width
}

// linePrefix returns the prefix for the next emitted line, consuming
// the pending bullet if one is set.
func (state *renderState) linePrefix() string {
	if state.bullet != "" {
		bullet := state.bullet
		state.bullet = ""
		return bullet
	}
	return state.prefix()
}

// prefixed prepends line prefixes to every line of content. The first
// line gets the pending bullet when one is set.
func (state *renderState) prefixed(content string) string {
	lines := strings.Split(content, "\n")
	var result strings.Builder
	for i, line := range lines {
		if i == 0 {
			result.WriteString(state.linePrefix())
		} else {
			result.WriteString(state.prefix())
		}
		result.WriteString(line)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// flushInline wraps the accumulated inline content to the current
// width and prefixes each line. Resets the buffer.
func (state *renderState) flushInline() string {
	content := state.inline.String()
	state.inline.Reset()
	if content == "" {
		return ""
	}
	return state.prefixed(ansi.Wrap(content, state.contentWidth(), wrapBreakpoints))
}

// styled applies the current inline emphasis state to a fragment.
func (state *renderState) styled(content string) string {
	style := state.renderer.style().Foreground(state.renderer.theme.Text)
	if state.bold > 0 {
		style = style.Bold(true)
	}
	if state.italic > 0 {
		style = style.Italic(true)
	}
	if state.strike > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

func (state *renderState) faint(content string) string {
	return state.renderer.style().Foreground(state.renderer.theme.Faint).Render(content)
}

// inlineText renders a node's children to a string without touching
// the surrounding inline buffer or emphasis state.
func (state *renderState) inlineText(node ast.Node) string {
	savedInline := state.inline.String()
	savedBold, savedItalic, savedStrike := state.bold, state.italic, state.strike

	state.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		ast.Walk(child, state.walk)
	}
	result := state.inline.String()

	state.inline.Reset()
	state.inline.WriteString(savedInline)
	state.bold, state.italic, state.strike = savedBold, savedItalic, savedStrike

	return result
}

func (state *renderState) inTightList() bool {
	if len(state.lists) == 0 {
		return false
	}
	return state.lists[len(state.lists)-1].tight
}

// walk dispatches on node kind. Inline content collects in the inline
// buffer; block handlers flush it.
func (state *renderState) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {

	case ast.KindDocument:

	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			state.inline.Reset()
		} else if flushed := state.flushInline(); flushed != "" {
			state.write(flushed)
			state.endLine()
			if !state.inTightList() {
				state.blankLine()
			}
		}

	case ast.KindHeading:
		if entering {
			state.inline.Reset()
		} else {
			state.closeHeading(node.(*ast.Heading))
		}

	case ast.KindFencedCodeBlock:
		if entering {
			block := node.(*ast.FencedCodeBlock)
			state.codeBlock(state.blockSource(node), string(block.Language(state.source)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			state.codeBlock(state.blockSource(node), "")
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			state.pushIndent("│ ", 2)
		} else {
			state.popIndent()
			state.blankLine()
		}

	case ast.KindList:
		if entering {
			state.enterList(node.(*ast.List))
		} else {
			state.leaveList()
		}

	case ast.KindListItem:
		if entering {
			state.enterListItem()
		} else {
			state.leaveListItem()
		}

	case ast.KindThematicBreak:
		if entering {
			state.horizontalRule()
		}

	case ast.KindHTMLBlock:
		if entering {
			state.htmlBlock(node)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindText:
		if entering {
			state.textNode(node.(*ast.Text))
		}

	case ast.KindString:
		if entering {
			state.inline.WriteString(state.styled(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		state.emphasis(node.(*ast.Emphasis), entering)

	case ast.KindCodeSpan:
		if entering {
			state.codeSpan(node)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			state.link(node.(*ast.Link))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			state.inline.WriteString(state.faint(string(node.(*ast.AutoLink).URL(state.source))))
		}

	case ast.KindImage:
		if entering {
			state.image(node.(*ast.Image))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindRawHTML:
		if entering {
			state.rawHTML(node.(*ast.RawHTML))
		}

	case extast.KindStrikethrough:
		if entering {
			state.strike++
		} else {
			state.strike--
		}

	case extast.KindTable:
		if entering {
			state.table(node.(*extast.Table))
			return ast.WalkSkipChildren, nil
		}

	case extast.KindTaskCheckBox:
		if entering {
			state.taskCheckBox(node.(*extast.TaskCheckBox))
		}
	}

	return ast.WalkContinue, nil
}

// blockSource collects the raw source lines of a code or HTML block.
func (state *renderState) blockSource(node ast.Node) string {
	var content strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		content.Write(segment.Value(state.source))
	}
	return content.String()
}

func (state *renderState) closeHeading(heading *ast.Heading) {
	// Headings carry their own style, so the per-fragment text styling
	// applied while walking the children is stripped first.
	content := ansi.Strip(state.inline.String())
	state.inline.Reset()
	if content == "" {
		return
	}

	style := state.renderer.style().Bold(true)
	if heading.Level <= 2 {
		style = style.Foreground(state.renderer.theme.Heading)
	} else {
		style = style.Foreground(state.renderer.theme.Text)
	}

	wrapped := ansi.Wrap(style.Render(content), state.contentWidth(), wrapBreakpoints)
	state.blankLine()
	state.write(state.prefixed(wrapped))
	state.endLine()
	state.blankLine()
}

// codeBlock emits code lines verbatim, never reflowed. Fenced blocks
// with a known language get chroma highlighting; everything else is
// faint.
func (state *renderState) codeBlock(code, language string) {
	state.blankLine()
	for _, line := range strings.Split(strings.TrimRight(state.highlight(code, language), "\n"), "\n") {
		state.write(state.linePrefix() + line)
		state.endLine()
	}
	state.blankLine()
}

// highlight syntax-highlights code with chroma, falling back to faint
// plain text when there is no language, the language is unknown, or
// the renderer is plain.
func (state *renderState) highlight(code, language string) string {
	if state.renderer.plain {
		return code
	}
	if language == "" {
		return state.faint(code)
	}
	var highlighted strings.Builder
	if err := quick.Highlight(&highlighted, code, language, "terminal256", "monokai"); err != nil {
		return state.faint(code)
	}
	return highlighted.String()
}

func (state *renderState) enterList(list *ast.List) {
	start := 0
	if list.IsOrdered() {
		start = list.Start
	}
	state.lists = append(state.lists, listLevel{
		ordered: list.IsOrdered(),
		next:    start,
		tight:   list.IsTight,
	})
}

func (state *renderState) leaveList() {
	if len(state.lists) > 0 {
		state.lists = state.lists[:len(state.lists)-1]
	}
	if !state.inTightList() {
		state.blankLine()
	}
}

func (state *renderState) enterListItem() {
	if len(state.lists) == 0 {
		return
	}
	level := &state.lists[len(state.lists)-1]

	marker := "- "
	if level.ordered {
		marker = fmt.Sprintf("%d. ", level.next)
		level.next++
	}

	// The pending bullet carries the full current prefix so it stands
	// in for the whole indent on the item's first line; continuation
	// lines align under the marker.
	width := len(marker) // markers are ASCII, byte length is visual width
	state.bullet = state.prefix() + marker
	state.pushIndent(strings.Repeat(" ", width), width)
}

func (state *renderState) leaveListItem() {
	state.popIndent()
	if state.inTightList() {
		state.endLine()
	} else {
		state.blankLine()
	}
}

func (state *renderState) horizontalRule() {
	rule := state.renderer.style().
		Foreground(state.renderer.theme.Rule).
		Render(strings.Repeat("─", state.contentWidth()))
	state.blankLine()
	state.write(state.prefixed(rule))
	state.endLine()
	state.blankLine()
}

func (state *renderState) htmlBlock(node ast.Node) {
	stripped := strings.TrimSpace(stripTags(state.blockSource(node)))
	if stripped == "" {
		return
	}
	state.write(state.prefixed(state.faint(stripped)))
	state.endLine()
	state.blankLine()
}

func (state *renderState) textNode(node *ast.Text) {
	state.inline.WriteString(state.styled(string(node.Segment.Value(state.source))))

	// Soft breaks become spaces so hard-wrapped source reflows at the
	// terminal's width; hard breaks stay.
	if node.SoftLineBreak() {
		state.inline.WriteString(" ")
	}
	if node.HardLineBreak() {
		state.inline.WriteString("\n")
	}
}

func (state *renderState) emphasis(node *ast.Emphasis, entering bool) {
	delta := 1
	if !entering {
		delta = -1
	}
	if node.Level >= 2 {
		state.bold += delta
	} else {
		state.italic += delta
	}
}

func (state *renderState) codeSpan(node ast.Node) {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			code.Write(child.Segment.Value(state.source))
		case *ast.String:
			code.Write(child.Value)
		}
	}
	state.inline.WriteString(state.faint(code.String()))
}

func (state *renderState) link(node *ast.Link) {
	// inlineText already styles the label, so it is written as-is.
	state.inline.WriteString(state.inlineText(node))
	if url := string(node.Destination); url != "" {
		state.inline.WriteString(" " + state.faint("("+url+")"))
	}
}

func (state *renderState) image(node *ast.Image) {
	state.inline.WriteString(state.faint("[" + ansi.Strip(state.inlineText(node)) + "]"))
	if url := string(node.Destination); url != "" {
		state.inline.WriteString(" " + state.faint("("+url+")"))
	}
}

func (state *renderState) rawHTML(node *ast.RawHTML) {
	var html strings.Builder
	for i := 0; i < node.Segments.Len(); i++ {
		segment := node.Segments.At(i)
		html.Write(segment.Value(state.source))
	}
	if stripped := stripTags(html.String()); stripped != "" {
		state.inline.WriteString(state.faint(stripped))
	}
}

func (state *renderState) taskCheckBox(checkbox *extast.TaskCheckBox) {
	if checkbox.IsChecked {
		checked := state.renderer.style().Foreground(state.renderer.theme.Accent)
		state.inline.WriteString(checked.Render("[x]") + " ")
		return
	}
	state.inline.WriteString(state.styled("[ ] "))
}

// table renders a GFM table with padded columns. Columns size to their
// widest cell, then shrink proportionally (with a 3-column floor) when
// the table would overflow the available width.
func (state *renderState) table(table *extast.Table) {
	var header []string
	var rows [][]string
	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Kind() {
		case extast.KindTableHeader:
			header = state.tableRow(child)
		case extast.KindTableRow:
			rows = append(rows, state.tableRow(child))
		}
	}

	columns := len(header)
	if columns == 0 && len(rows) > 0 {
		columns = len(rows[0])
	}
	if columns == 0 {
		return
	}

	widths := make([]int, columns)
	measure := func(row []string) {
		for i, cell := range row {
			if i < columns && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}

	const gap = "  "
	total := len(gap) * (columns - 1)
	for _, width := range widths {
		total += width
	}
	if available := state.contentWidth(); total > available {
		usable := available - len(gap)*(columns-1)
		if usable < columns*3 {
			usable = columns * 3
		}
		for i := range widths {
			widths[i] = widths[i] * usable / total
			if widths[i] < 3 {
				widths[i] = 3
			}
		}
	}

	state.blankLine()

	if len(header) > 0 {
		bold := state.renderer.style().Bold(true).Foreground(state.renderer.theme.Text)
		state.write(state.linePrefix() + state.tableLine(header, widths, table.Alignments, bold))
		state.endLine()

		separators := make([]string, columns)
		for i, width := range widths {
			separators[i] = strings.Repeat("─", width)
		}
		rule := state.renderer.style().Foreground(state.renderer.theme.Rule)
		state.write(state.prefix() + rule.Render(strings.Join(separators, gap)))
		state.endLine()
	}

	for _, row := range rows {
		state.write(state.prefix() + state.tableLine(row, widths, table.Alignments, state.renderer.style()))
		state.endLine()
	}

	state.blankLine()
}

func (state *renderState) tableRow(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if cell.Kind() == extast.KindTableCell {
			cells = append(cells, state.inlineText(cell))
		}
	}
	return cells
}

func (state *renderState) tableLine(cells []string, widths []int, alignments []extast.Alignment, style lipgloss.Style) string {
	const gap = "  "
	parts := make([]string, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if lipgloss.Width(cell) > width {
			cell = ansi.Truncate(cell, width, "…")
		}

		padding := width - lipgloss.Width(cell)
		if padding < 0 {
			padding = 0
		}

		var alignment extast.Alignment
		if i < len(alignments) {
			alignment = alignments[i]
		}
		switch alignment {
		case extast.AlignRight:
			cell = strings.Repeat(" ", padding) + cell
		case extast.AlignCenter:
			left := padding / 2
			cell = strings.Repeat(" ", left) + cell + strings.Repeat(" ", padding-left)
		default:
			cell += strings.Repeat(" ", padding)
		}
		parts[i] = cell
	}
	return style.Render(strings.Join(parts, gap))
}

// stripTags drops HTML tags, keeping only text content.
func stripTags(html string) string {
	var result strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}
	return result.String()
}
