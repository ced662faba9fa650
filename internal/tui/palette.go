package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type paletteAction int

const (
	actionFetchURL paletteAction = iota
	actionUpload
	actionFiles
	actionPreview
	actionCopy
	actionExport
	actionClear
	actionHelp
	actionQuit
)

type paletteCommand struct {
	action      paletteAction
	title       string
	shortcut    string
	description string
}

var paletteCommands = []paletteCommand{
	{actionFetchURL, "Fetch URL", "Ctrl+U", "Convert a web page to markdown and add it to the library."},
	{actionUpload, "Upload files", "Ctrl+O", "Add local .txt, .md, .json or .pdf files to the library."},
	{actionFiles, "Manage files", "Ctrl+F", "Browse and remove library files."},
	{actionPreview, "Preview prompt", "Ctrl+P", "Render the assembled prompt."},
	{actionCopy, "Copy prompt", "Ctrl+Y", "Copy the assembled prompt to the clipboard."},
	{actionExport, "Save prompt.md", "Ctrl+S", "Write the assembled prompt to disk."},
	{actionClear, "Clear prompt", "", "Empty the editor. Library files are kept."},
	{actionHelp, "Toggle cheatsheet", "F1", "Show or hide the key legend."},
	{actionQuit, "Quit", "Ctrl+C", "Leave promptasm."},
}

func (m *model) commandAvailable(action paletteAction) bool {
	switch action {
	case actionFiles:
		return m.session.Store().Len() > 0
	case actionPreview, actionCopy, actionExport, actionClear:
		return !m.session.Document().Empty()
	case actionFetchURL:
		return m.config.Fetcher != nil
	default:
		return true
	}
}

func (m *model) openPalette() tea.Cmd {
	m.focus = focusPalette
	m.paletteInput.SetValue("")
	m.paletteCursor = 0
	m.filterPalette("")
	return m.paletteInput.Focus()
}

func (m *model) filterPalette(query string) {
	query = strings.ToLower(strings.TrimSpace(query))
	m.paletteMatches = m.paletteMatches[:0]
	for _, cmd := range paletteCommands {
		if !m.commandAvailable(cmd.action) {
			continue
		}
		if query == "" || strings.Contains(strings.ToLower(cmd.title), query) || strings.Contains(strings.ToLower(cmd.description), query) {
			m.paletteMatches = append(m.paletteMatches, cmd)
		}
	}
	if m.paletteCursor >= len(m.paletteMatches) {
		m.paletteCursor = len(m.paletteMatches) - 1
	}
	if m.paletteCursor < 0 {
		m.paletteCursor = 0
	}
}

func (m *model) handlePaletteKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.paletteInput.Blur()
		m.focus = focusEditor
		return m, nil
	case "up", "ctrl+k":
		if m.paletteCursor > 0 {
			m.paletteCursor--
		}
		return m, nil
	case "down", "ctrl+j":
		if m.paletteCursor < len(m.paletteMatches)-1 {
			m.paletteCursor++
		}
		return m, nil
	case "enter":
		if len(m.paletteMatches) == 0 {
			return m, nil
		}
		action := m.paletteMatches[m.paletteCursor].action
		m.paletteInput.Blur()
		m.focus = focusEditor
		return m, m.runAction(action)
	}
	var cmd tea.Cmd
	m.paletteInput, cmd = m.paletteInput.Update(key)
	m.filterPalette(m.paletteInput.Value())
	return m, cmd
}

func (m *model) runAction(action paletteAction) tea.Cmd {
	if !m.commandAvailable(action) {
		m.infoMessage = "Nothing to do yet."
		return nil
	}
	switch action {
	case actionFetchURL:
		return m.openInput(focusURL)
	case actionUpload:
		return m.openInput(focusUpload)
	case actionFiles:
		m.openFiles()
	case actionPreview:
		m.openPreview()
	case actionCopy:
		return m.copyPrompt()
	case actionExport:
		return m.exportPrompt()
	case actionClear:
		m.session.Reset()
		m.editorOffset = 0
		m.infoMessage = "Prompt cleared."
	case actionHelp:
		m.helpVisible = !m.helpVisible
	case actionQuit:
		return tea.Quit
	}
	return nil
}
