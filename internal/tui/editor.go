package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"

	"github.com/csheth/promptasm/internal/document"
	"github.com/csheth/promptasm/internal/library"
)

// renderDocument draws every block, hard wrapped to width, and returns the
// lines plus the row holding the caret.
func (m *model) renderDocument(width int) ([]string, int) {
	doc := m.session.Document()
	sel := m.session.Selection()
	showCaret := m.focus == focusEditor
	start, end := sel.Edges()
	hasSelection := !sel.Collapsed()

	if doc.Empty() {
		line := helperStyle.Render(editorPlaceholder)
		if showCaret {
			line = caretStyle.Render(" ") + line
		}
		return hardWrap(line, width), 0
	}

	var lines []string
	caretRow := 0
	for bi, block := range doc.Blocks() {
		var (
			b        strings.Builder
			plain    strings.Builder
			offset   int
			caretCol = -1
		)
		write := func(label string, style *lipgloss.Style) {
			p := document.Point{Block: bi, Offset: offset}
			atCaret := showCaret && p == sel.Focus
			if atCaret {
				caretCol = ansi.PrintableRuneWidth(plain.String())
			}
			switch {
			case atCaret:
				b.WriteString(caretStyle.Render(label))
			case hasSelection && p.Compare(start) >= 0 && p.Compare(end) < 0:
				b.WriteString(selectionStyle.Render(label))
			case style != nil:
				b.WriteString(style.Render(label))
			default:
				b.WriteString(label)
			}
			plain.WriteString(label)
			offset++
		}
		for _, in := range block.Inlines {
			if in.Atomic() {
				style := m.mentionStyle(in)
				write(mentionLabel(in), &style)
				continue
			}
			for _, r := range in.Text {
				if r == '\t' {
					r = ' '
				}
				write(string(r), nil)
			}
		}
		if showCaret && sel.Focus == (document.Point{Block: bi, Offset: offset}) {
			caretCol = ansi.PrintableRuneWidth(plain.String())
			b.WriteString(caretStyle.Render(" "))
		}
		if caretCol >= 0 {
			caretRow = len(lines) + caretCol/width
		}
		lines = append(lines, hardWrap(b.String(), width)...)
	}
	return lines, caretRow
}

func mentionLabel(in document.Inline) string {
	if in.Kind == document.KindURLMention {
		return "@" + in.FileName + " ↗"
	}
	return "@" + in.FileName
}

func (m *model) mentionStyle(in document.Inline) lipgloss.Style {
	if !m.session.Store().Has(in.FileName) {
		return danglingMentionStyle
	}
	if in.Kind == document.KindURLMention {
		return urlMentionStyle
	}
	return fileMentionStyle
}

// editorView renders the visible window of the document, scrolled so the
// caret stays on screen.
func (m *model) editorView() string {
	width := m.layout.textWidth()
	lines, caretRow := m.renderDocument(width)
	height := m.layout.editorHeight
	if caretRow < m.editorOffset {
		m.editorOffset = caretRow
	}
	if caretRow >= m.editorOffset+height {
		m.editorOffset = caretRow - height + 1
	}
	if maxOffset := len(lines) - height; m.editorOffset > maxOffset {
		m.editorOffset = maxOffset
	}
	if m.editorOffset < 0 {
		m.editorOffset = 0
	}
	endRow := m.editorOffset + height
	if endRow > len(lines) {
		endRow = len(lines)
	}
	body := strings.Join(lines[m.editorOffset:endRow], "\n")

	style := editorBlurredStyle
	if m.focus == focusEditor {
		style = editorBoxStyle
	}
	title := sectionHeaderStyle.Render("Prompt")
	if len(lines) > height {
		title += helperStyle.Render(fmt.Sprintf("  lines %d-%d of %d", m.editorOffset+1, endRow, len(lines)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, style.Width(m.layout.contentWidth).Render(body))
}

// pickerView lists the candidates for the active trigger. It records which
// slice of candidates is on screen so mouse clicks can be mapped back.
func (m *model) pickerView() string {
	m.pickerStart, m.pickerRows = 0, 0
	if !m.session.PickerActive() {
		return ""
	}
	candidates := m.session.Candidates()
	selected := m.session.SelectedIndex()
	start := 0
	if selected >= maxPickerRows {
		start = selected - maxPickerRows + 1
	}
	end := start + maxPickerRows
	if end > len(candidates) {
		end = len(candidates)
	}
	m.pickerStart, m.pickerRows = start, end-start

	rows := []string{sectionHeaderStyle.Render(fmt.Sprintf("Files matching @%s", m.session.Trigger().SearchTerm))}
	for i := start; i < end; i++ {
		label := fmt.Sprintf("%s  %s", candidates[i].FileName, sourceBadge(candidates[i]))
		if i == selected {
			rows = append(rows, currentLineStyle.Render("▸ "+label))
			continue
		}
		rows = append(rows, "  "+label)
	}
	if end < len(candidates) {
		rows = append(rows, helperStyle.Render(fmt.Sprintf("  … %d more", len(candidates)-end)))
	}
	return pickerBoxStyle.Render(strings.Join(rows, "\n"))
}

// pickerIndexAt maps a screen row to a candidate index.
func (m *model) pickerIndexAt(row int) (int, bool) {
	if m.pickerRows == 0 {
		return 0, false
	}
	// top border and header line precede the first candidate
	rel := row - m.pickerTop - 2
	if rel < 0 || rel >= m.pickerRows {
		return 0, false
	}
	return m.pickerStart + rel, true
}

func sourceBadge(record library.FileRecord) string {
	switch record.Source {
	case library.SourceURL:
		return sourceBadgeStyle.Render("[url]")
	case library.SourceRestored:
		return sourceBadgeStyle.Render("[saved]")
	default:
		return sourceBadgeStyle.Render("[upload]")
	}
}
