package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/promptasm/internal/ingest"
	"github.com/csheth/promptasm/internal/library"
	"github.com/csheth/promptasm/internal/prompt"
	"github.com/csheth/promptasm/internal/session"
)

const defaultFetchTimeout = 45 * time.Second

// Fetcher turns a page URL into markdown.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

func fetchPageJob(fetcher Fetcher, f session.Fetch, timeout time.Duration) jobRunner {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		markdown, err := fetcher.Fetch(ctx, f.URL)
		return fetchResultMsg{fetch: f, markdown: markdown, err: err}, err
	}
}

func readUploadsJob(paths []string, opts ingest.ReadOptions) jobRunner {
	toRead := append([]string(nil), paths...)
	return func(parent context.Context) (tea.Msg, error) {
		results := ingest.ReadFiles(parent, toRead, opts)
		for _, res := range results {
			if res.Err != nil {
				return uploadResultMsg{results: results}, res.Err
			}
		}
		return uploadResultMsg{results: results}, nil
	}
}

func exportFileJob(dir, name, text string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		path, err := prompt.WriteFile(dir, name, text)
		return exportResultMsg{path: path, err: err}, err
	}
}

func copyPromptJob(copyFn func(string) error, text string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		err := copyFn(text)
		return copyResultMsg{chars: len([]rune(text)), err: err}, err
	}
}

func saveLibraryJob(path string, records []library.FileRecord) jobRunner {
	toPersist := append([]library.FileRecord(nil), records...)
	return func(context.Context) (tea.Msg, error) {
		if err := library.Save(path, toPersist); err != nil {
			return librarySavedMsg{err: err}, err
		}
		return librarySavedMsg{count: len(toPersist)}, nil
	}
}

// splitPaths breaks the upload field into paths. Double quotes group a path
// containing spaces and a leading ~ expands to the home directory.
func splitPaths(value string) []string {
	var (
		paths   []string
		current strings.Builder
		quoted  bool
	)
	flush := func() {
		if current.Len() > 0 {
			paths = append(paths, expandHome(current.String()))
			current.Reset()
		}
	}
	for _, r := range value {
		switch {
		case r == '"':
			quoted = !quoted
		case !quoted && (r == ' ' || r == '\t'):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return paths
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func previewText(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
