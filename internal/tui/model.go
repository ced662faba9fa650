package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/csheth/promptasm/internal/document"
	"github.com/csheth/promptasm/internal/ingest"
	"github.com/csheth/promptasm/internal/library"
	"github.com/csheth/promptasm/internal/prompt"
	"github.com/csheth/promptasm/internal/session"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Session      *session.Session
	Fetcher      Fetcher
	FetchTimeout time.Duration
	Upload       ingest.ReadOptions
	ExportDir    string
	ExportName   string
	// LibraryPath receives a snapshot after every library change. Empty
	// disables autosave.
	LibraryPath string
	Clipboard   func(string) error
	Logger      *zap.Logger
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Session == nil {
		config.Session = session.New(nil, session.Options{BlockSeparator: prompt.DefaultBlockSeparator})
	}
	if config.Clipboard == nil {
		config.Clipboard = prompt.CopyToClipboard
	}
	if config.ExportName == "" {
		config.ExportName = prompt.DefaultFileName
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	urlInput := textinput.New()
	urlInput.Placeholder = urlPlaceholder
	urlInput.Prompt = "URL › "
	urlInput.CharLimit = 2048
	urlInput.Width = 70

	uploadInput := textinput.New()
	uploadInput.Placeholder = uploadPlaceholder
	uploadInput.Prompt = "Files › "
	uploadInput.CharLimit = 4096
	uploadInput.Width = 70

	paletteInput := textinput.New()
	paletteInput.Placeholder = "Type to filter commands…"
	paletteInput.CharLimit = 80
	paletteInput.Width = 60

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 16)
	vp.MouseWheelEnabled = true

	info := "Type to write your prompt. Ctrl+O uploads files, Ctrl+U fetches a URL."
	if n := config.Session.Store().Len(); n > 0 {
		info = fmt.Sprintf("Loaded %d file(s) from the library. Type @ to mention one.", n)
	}

	return &model{
		config:       config,
		session:      config.Session,
		focus:        focusEditor,
		jobs:         newJobBus(config.Logger),
		urlInput:     urlInput,
		uploadInput:  uploadInput,
		paletteInput: paletteInput,
		spinner:      spin,
		preview:      vp,
		layout:       newPageLayout(),
		running:      map[string]jobSnapshot{},
		infoMessage:  info,
	}
}

type model struct {
	config  Config
	session *session.Session
	focus   focus
	jobs    *jobBus

	urlInput     textinput.Model
	uploadInput  textinput.Model
	paletteInput textinput.Model
	spinner      spinner.Model
	preview      viewport.Model
	layout       pageLayout

	editorOffset   int
	pickerTop      int
	pickerStart    int
	pickerRows     int
	fileCursor     int
	paletteMatches []paletteCommand
	paletteCursor  int
	running        map[string]jobSnapshot
	infoMessage    string
	errorMessage   string
	helpVisible    bool
	saving         bool
	saveQueued     bool
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if len(m.running) > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		m.running[msg.Snapshot.ID] = msg.Snapshot
		if len(m.running) == 1 {
			return m, m.spinner.Tick
		}
		return m, nil
	case jobResultEnvelope:
		delete(m.running, msg.Snapshot.ID)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case fetchResultMsg:
		return m, m.applyFetchResult(msg)
	case uploadResultMsg:
		return m, m.applyUploadResult(msg)
	case exportResultMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("save failed: %v", msg.err)
			return m, nil
		}
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Prompt saved to %s", msg.path)
		return m, nil
	case copyResultMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("copy failed: %v", msg.err)
			return m, nil
		}
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Copied %d characters to the clipboard.", msg.chars)
		return m, nil
	case librarySavedMsg:
		m.saving = false
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("library not saved: %v", msg.err)
		}
		if m.saveQueued {
			m.saveQueued = false
			return m, m.autosave()
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.preview.Width = m.layout.contentWidth
		m.preview.Height = m.layout.previewHeight
		m.urlInput.Width = m.layout.contentWidth - 10
		m.uploadInput.Width = m.layout.contentWidth - 10
		if m.focus == focusPreview {
			m.refreshPreview()
		}
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusURL, focusUpload:
		return m.handleInputKey(key)
	case focusFiles:
		return m.handleFilesKey(key)
	case focusPreview:
		return m.handlePreviewKey(key)
	case focusPalette:
		return m.handlePaletteKey(key)
	default:
		return m.handleEditorKey(key)
	}
}

func (m *model) handleEditorKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	if key.Type == tea.KeyRunes && !key.Alt {
		// terminals deliver pasted text as one multi-rune key
		if len(key.Runes) > 1 {
			s.Paste(string(key.Runes))
		} else {
			s.Insert(string(key.Runes))
		}
		return m, nil
	}
	if s.PickerActive() {
		switch key.String() {
		case "up", "ctrl+p":
			s.PickerPrev()
			return m, nil
		case "down", "ctrl+n":
			s.PickerNext()
			return m, nil
		case "enter", "tab":
			if s.CommitSelected() {
				m.errorMessage = ""
			}
			return m, nil
		case "esc":
			s.DismissTrigger()
			return m, nil
		}
	}

	switch key.String() {
	case "ctrl+u":
		return m, m.runAction(actionFetchURL)
	case "ctrl+o":
		return m, m.runAction(actionUpload)
	case "ctrl+f":
		return m, m.runAction(actionFiles)
	case "ctrl+p":
		return m, m.runAction(actionPreview)
	case "ctrl+y":
		return m, m.runAction(actionCopy)
	case "ctrl+s":
		return m, m.runAction(actionExport)
	case "ctrl+k":
		return m, m.openPalette()
	case "f1":
		m.helpVisible = !m.helpVisible
		return m, nil
	case "esc":
		m.errorMessage = ""
		return m, nil
	case "ctrl+a":
		s.SelectAll()
	case "enter":
		s.Split()
	case "backspace":
		s.Backspace()
	case "delete":
		s.Delete()
	case "left":
		s.MoveLeft(false)
	case "right":
		s.MoveRight(false)
	case "up":
		s.MoveUp(false)
	case "down":
		s.MoveDown(false)
	case "home":
		s.MoveHome(false)
	case "end":
		s.MoveEnd(false)
	case "shift+left":
		s.MoveLeft(true)
	case "shift+right":
		s.MoveRight(true)
	case "shift+up":
		s.MoveUp(true)
	case "shift+down":
		s.MoveDown(true)
	case "shift+home":
		s.MoveHome(true)
	case "shift+end":
		s.MoveEnd(true)
	default:
		if key.Type == tea.KeySpace {
			s.Insert(" ")
		}
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusPreview:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	case focusEditor:
		idx, ok := m.pickerIndexAt(msg.Y)
		if !ok {
			return m, nil
		}
		switch msg.Type {
		case tea.MouseMotion:
			m.session.Select(idx)
		case tea.MouseLeft:
			m.session.Commit(idx)
		}
	}
	return m, nil
}

func (m *model) openInput(target focus) tea.Cmd {
	m.focus = target
	m.errorMessage = ""
	if target == focusURL {
		m.urlInput.SetValue("")
		m.infoMessage = "Enter a page URL. It is converted to markdown and added to the library."
		return m.urlInput.Focus()
	}
	m.uploadInput.SetValue("")
	m.infoMessage = fmt.Sprintf("Enter file paths. Allowed: %s", strings.Join(ingest.AllowedExtensions, ", "))
	return m.uploadInput.Focus()
}

func (m *model) closeInput() {
	m.urlInput.Blur()
	m.uploadInput.Blur()
	m.focus = focusEditor
}

func (m *model) handleInputKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	input := &m.urlInput
	if m.focus == focusUpload {
		input = &m.uploadInput
	}
	switch key.Type {
	case tea.KeyEsc:
		m.closeInput()
		m.infoMessage = "Canceled."
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(input.Value())
		if m.focus == focusURL {
			return m, m.submitURL(value)
		}
		return m, m.submitUpload(value)
	}
	var cmd tea.Cmd
	*input, cmd = input.Update(key)
	return m, cmd
}

func (m *model) submitURL(value string) tea.Cmd {
	f, err := m.session.BeginFetch(value)
	if err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	m.closeInput()
	m.urlInput.SetValue("")
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Fetching %s…", f.URL)
	m.config.Logger.Debug("fetch queued", zap.String("url", f.URL), zap.String("file", f.FileName))
	return m.jobs.Start(jobKindFetch, fetchPageJob(m.config.Fetcher, f, m.config.FetchTimeout))
}

func (m *model) submitUpload(value string) tea.Cmd {
	paths := splitPaths(value)
	if len(paths) == 0 {
		m.errorMessage = "Enter at least one file path."
		return nil
	}
	m.closeInput()
	m.uploadInput.SetValue("")
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Reading %d file(s)…", len(paths))
	return m.jobs.Start(jobKindUpload, readUploadsJob(paths, m.config.Upload))
}

func (m *model) applyFetchResult(msg fetchResultMsg) tea.Cmd {
	if msg.err != nil {
		record, stored := m.session.AbortFetch(msg.fetch, msg.err)
		m.errorMessage = msg.err.Error()
		if stored {
			m.infoMessage = fmt.Sprintf("Stored an error placeholder as %s.", record.FileName)
			return m.autosave()
		}
		var fe *ingest.FetchError
		if errors.As(msg.err, &fe) && fe.Status != 0 {
			m.infoMessage = "The content service rejected the page."
		} else {
			m.infoMessage = "Could not reach the content service."
		}
		return nil
	}
	record := m.session.CompleteFetch(msg.fetch, msg.markdown)
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Added %s (%d chars). Type @ to mention it.", record.FileName, len([]rune(record.Content)))
	return m.autosave()
}

func (m *model) applyUploadResult(msg uploadResultMsg) tea.Cmd {
	var (
		entries []library.Entry
		errs    []error
	)
	for _, res := range msg.results {
		if res.Err != nil {
			errs = append(errs, res.Err)
			continue
		}
		entries = append(entries, res.Entry)
	}
	added, rejected := m.session.AddUploads(entries)
	errs = append(errs, rejected...)

	switch {
	case len(errs) == 1:
		m.errorMessage = errs[0].Error()
	case len(errs) > 1:
		m.errorMessage = fmt.Sprintf("%s (and %d more)", errs[0].Error(), len(errs)-1)
	default:
		m.errorMessage = ""
	}
	summary := uploadSummary(len(added), errs)
	if len(added) == 0 {
		m.infoMessage = "No files added" + summary + "."
		return nil
	}
	m.infoMessage = fmt.Sprintf("Added %d file(s)%s. Type @ to mention one.", len(added), summary)
	return m.autosave()
}

// uploadSummary splits upload failures into rejected files, which broke a
// naming or type rule, and files that could not be read at all.
func uploadSummary(added int, errs []error) string {
	var rejected, unreadable int
	for _, err := range errs {
		if ingest.IsValidation(err) {
			rejected++
		} else {
			unreadable++
		}
	}
	var parts []string
	if rejected > 0 {
		parts = append(parts, fmt.Sprintf("%d rejected", rejected))
	}
	if unreadable > 0 {
		parts = append(parts, fmt.Sprintf("%d unreadable", unreadable))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// autosave persists the library. Only one save runs at a time; a request
// made while one is in flight is folded into a single follow-up save that
// snapshots the store when it starts.
func (m *model) autosave() tea.Cmd {
	if m.config.LibraryPath == "" {
		return nil
	}
	if m.saving {
		m.saveQueued = true
		return nil
	}
	m.saving = true
	return m.jobs.Start(jobKindSave, saveLibraryJob(m.config.LibraryPath, m.session.Store().Records()))
}

func (m *model) copyPrompt() tea.Cmd {
	text := m.session.Serialize()
	m.infoMessage = "Copying prompt…"
	return m.jobs.Start(jobKindCopy, copyPromptJob(m.config.Clipboard, text))
}

func (m *model) exportPrompt() tea.Cmd {
	text := m.session.Serialize()
	m.infoMessage = "Saving prompt…"
	return m.jobs.Start(jobKindExport, exportFileJob(m.config.ExportDir, m.config.ExportName, text))
}

func (m *model) openFiles() {
	m.focus = focusFiles
	records := m.session.Store().Records()
	if name, ok := m.mentionNearCaret(); ok {
		for i, record := range records {
			if record.FileName == name {
				m.fileCursor = i
			}
		}
	}
	if m.fileCursor >= len(records) {
		m.fileCursor = len(records) - 1
	}
	if m.fileCursor < 0 {
		m.fileCursor = 0
	}
	m.infoMessage = "↑/↓ to browse, d to remove, Esc to return."
}

// mentionNearCaret returns the file named by the mention right after the
// caret, or right before it when nothing follows.
func (m *model) mentionNearCaret() (string, bool) {
	doc := m.session.Document()
	caret := m.session.Caret()
	for _, p := range []document.Point{caret, doc.Before(caret)} {
		if in, ok := doc.InlineAt(p); ok && in.Kind == document.KindFileMention {
			return in.FileName, true
		}
	}
	return "", false
}

func (m *model) handleFilesKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	records := m.session.Store().Records()
	switch key.String() {
	case "esc", "ctrl+f", "q":
		m.focus = focusEditor
		m.infoMessage = ""
	case "up", "k":
		if m.fileCursor > 0 {
			m.fileCursor--
		}
	case "down", "j":
		if m.fileCursor < len(records)-1 {
			m.fileCursor++
		}
	case "d", "delete", "backspace":
		if len(records) == 0 {
			return m, nil
		}
		record := records[m.fileCursor]
		if !m.session.RemoveFile(record.ID) {
			return m, nil
		}
		m.infoMessage = fmt.Sprintf("Removed %s. Existing mentions now resolve to nothing.", record.FileName)
		if m.fileCursor >= len(records)-1 && m.fileCursor > 0 {
			m.fileCursor--
		}
		if m.session.Store().Len() == 0 {
			m.focus = focusEditor
		}
		return m, m.autosave()
	}
	return m, nil
}

func (m *model) openPreview() {
	m.focus = focusPreview
	m.refreshPreview()
	m.preview.GotoTop()
	m.infoMessage = "Previewing the assembled prompt. Esc to return."
}

func (m *model) refreshPreview() {
	text := m.session.Serialize()
	m.preview.SetContent(renderMarkdown(text, m.layout.contentWidth))
}

func (m *model) handlePreviewKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc", "ctrl+p", "q":
		m.focus = focusEditor
		m.infoMessage = ""
		return m, nil
	case "ctrl+y":
		return m, m.copyPrompt()
	case "ctrl+s":
		return m, m.exportPrompt()
	}
	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(key)
	return m, cmd
}

// renderMarkdown falls back to the raw text when glamour cannot render it.
func renderMarkdown(text string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
