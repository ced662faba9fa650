package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	above := []string{m.heroView()}
	var below []string

	switch m.focus {
	case focusURL:
		above = append(above, m.editorView(), m.inputView("Fetch a page", m.urlInput.View()))
	case focusUpload:
		above = append(above, m.editorView(), m.inputView("Upload files", m.uploadInput.View()))
	case focusFiles:
		above = append(above, m.filesView())
	case focusPreview:
		above = append(above, m.previewView())
	case focusPalette:
		above = append(above, m.editorView(), m.paletteView())
	default:
		above = append(above, m.editorView())
		if picker := m.pickerView(); picker != "" {
			top := joinNonEmpty(above)
			m.pickerTop = lipgloss.Height(top) + 1
			below = append(below, picker)
		}
	}

	below = append(below, m.messageView(), m.sessionMeterView())
	if m.helpVisible {
		below = append(below, m.keyLegendView())
	}
	return joinNonEmpty(append(above, below...))
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(lipgloss.Left, renderLogo(), taglineStyle.Render(heroTagline))
}

func (m *model) inputView(title, field string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		sectionHeaderStyle.Render(title),
		field,
		helperStyle.Render("Enter to submit • Esc to cancel"),
	)
}

func (m *model) messageView() string {
	if m.errorMessage != "" {
		return errorStyle.Render("Error: " + m.errorMessage)
	}
	if m.infoMessage != "" {
		return helperStyle.Render(m.infoMessage)
	}
	return ""
}

func (m *model) filesView() string {
	records := m.session.Store().Records()
	rows := []string{sectionHeaderStyle.Render(fmt.Sprintf("Library (%d files)", len(records)))}
	if len(records) == 0 {
		rows = append(rows, helperStyle.Render("No files yet. Ctrl+O uploads, Ctrl+U fetches a URL."))
		return strings.Join(rows, "\n")
	}

	start := 0
	if m.fileCursor >= maxFileRows {
		start = m.fileCursor - maxFileRows + 1
	}
	end := start + maxFileRows
	if end > len(records) {
		end = len(records)
	}
	width := m.layout.contentWidth - 4
	for i := start; i < end; i++ {
		record := records[i]
		label := fmt.Sprintf("%s  %s  %s", record.FileName, sourceBadge(record),
			helperStyle.Render(fmt.Sprintf("%d chars", len([]rune(record.Content)))))
		if i == m.fileCursor {
			rows = append(rows, currentLineStyle.Render("▸ ")+label)
			excerpt := previewText(record.Content, width)
			if record.URL != "" {
				rows = append(rows, helperStyle.Render("    "+record.URL))
			}
			if excerpt != "" {
				rows = append(rows, helperStyle.Render("    "+excerpt))
			}
			continue
		}
		rows = append(rows, "  "+label)
	}
	if end < len(records) {
		rows = append(rows, helperStyle.Render(fmt.Sprintf("  … %d more", len(records)-end)))
	}
	return strings.Join(rows, "\n")
}

func (m *model) previewView() string {
	title := sectionHeaderStyle.Render("Preview")
	if pct := m.preview.ScrollPercent(); m.preview.TotalLineCount() > m.preview.Height {
		title += helperStyle.Render(fmt.Sprintf("  %3.f%%", pct*100))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, m.preview.View())
}

func (m *model) paletteView() string {
	rows := []string{sectionHeaderStyle.Render("Command Palette"), m.paletteInput.View()}
	if len(m.paletteMatches) == 0 {
		rows = append(rows, helperStyle.Render("No matching commands."))
	}
	for i, cmd := range m.paletteMatches {
		line := cmd.title
		if cmd.shortcut != "" {
			line += "  " + keyStyle.Render(cmd.shortcut)
		}
		if i == m.paletteCursor {
			rows = append(rows, currentLineStyle.Render("▸ "+cmd.title)+strings.TrimPrefix(line, cmd.title))
			rows = append(rows, helperStyle.Render("    "+cmd.description))
			continue
		}
		rows = append(rows, "  "+line)
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) sessionMeterView() string {
	stats := m.session.Stats()
	parts := []string{
		fmt.Sprintf("Files %d", m.session.Store().Len()),
		fmt.Sprintf("Mentions %d", stats.Mentions),
	}
	if stats.Dangling > 0 {
		parts = append(parts, fmt.Sprintf("Missing %d", stats.Dangling))
	}
	parts = append(parts, fmt.Sprintf("Chars %d", stats.Chars))
	if pending := m.session.Pending(); len(pending) > 0 {
		parts = append(parts, fmt.Sprintf("Pending %d", len(pending)))
	}
	parts = append(parts, m.jobStatusBadges()...)
	return statusBarStyle.Render(strings.Join(parts, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	if len(m.running) == 0 {
		return nil
	}
	counts := map[jobKind]int{}
	for _, snap := range m.running {
		counts[snap.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	badges := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		badge := fmt.Sprintf("%s %s", m.spinner.View(), kind)
		if n := counts[jobKind(kind)]; n > 1 {
			badge += fmt.Sprintf(" ×%d", n)
		}
		badges = append(badges, badge)
	}
	return badges
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"@", "Mention a file"},
		{"↑/↓ Enter", "Pick mention"},
		{"Esc", "Dismiss picker"},
		{"Ctrl+O", "Upload files"},
		{"Ctrl+U", "Fetch URL"},
		{"Ctrl+F", "Manage files"},
		{"Ctrl+P", "Preview"},
		{"Ctrl+Y", "Copy prompt"},
		{"Ctrl+S", "Save prompt.md"},
		{"Ctrl+A", "Select all"},
		{"Ctrl+K", "Command palette"},
		{"F1", "Toggle cheatsheet"},
	}
	rows := []string{sectionHeaderStyle.Render("Cheatsheet")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

// renderLogo draws the wordmark with a one cell drop shadow.
func renderLogo() string {
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		lineRunes[i] = []rune(line)
		if len(lineRunes[i]) > width {
			width = len(lineRunes[i])
		}
	}
	width++
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}
	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y][x] = cell{r: r, style: logoFaceStyle}
			}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}
