package tui

import (
	"github.com/csheth/promptasm/internal/ingest"
	"github.com/csheth/promptasm/internal/session"
)

// focus is the component receiving key presses.
type focus int

const (
	focusEditor focus = iota
	focusURL
	focusUpload
	focusFiles
	focusPreview
	focusPalette
)

const heroTagline = "Assemble prompts from your files with @mentions."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	maxPickerRows             = 8
	maxFileRows               = 10
)

const (
	urlPlaceholder    = "https://example.com/article"
	uploadPlaceholder = "notes.md ~/docs/spec.pdf (space separated)"
	editorPlaceholder = "Type your prompt. Use @ to mention a file."
)

type fetchResultMsg struct {
	fetch    session.Fetch
	markdown string
	err      error
}

type uploadResultMsg struct {
	results []ingest.FileResult
}

type exportResultMsg struct {
	path string
	err  error
}

type copyResultMsg struct {
	chars int
	err   error
}

type librarySavedMsg struct {
	count int
	err   error
}
