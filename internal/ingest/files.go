package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/sync/errgroup"

	"github.com/csheth/promptasm/internal/library"
)

// DefaultMaxBytes caps a single upload.
const DefaultMaxBytes = 5 << 20

// AllowedExtensions lists the upload types accepted by ReadFiles.
var AllowedExtensions = []string{".txt", ".md", ".json", ".pdf"}

var extraneousWhitespace = regexp.MustCompile(`\s+`)

// ReadOptions controls ReadFiles.
type ReadOptions struct {
	// MarkdownToHTML converts .md uploads to HTML before they are stored.
	MarkdownToHTML bool
	// MaxBytes rejects larger files. Zero means DefaultMaxBytes.
	MaxBytes int64
	// Concurrency bounds parallel reads. Zero means no limit.
	Concurrency int
}

// FileResult is the outcome for one submitted path.
type FileResult struct {
	Path  string
	Entry library.Entry
	Err   error
}

// ReadFiles loads every path concurrently. Results come back in submission
// order, one per path; a failing file does not stop the rest of the batch.
func ReadFiles(ctx context.Context, paths []string, opts ReadOptions) []FileResult {
	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = FileResult{Path: path}
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			entry, err := ReadFile(path, opts)
			results[i].Entry = entry
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ReadFile loads one upload and returns it as a library entry named after the
// file's base name.
func ReadFile(path string, opts ReadOptions) (library.Entry, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	if !allowed(ext) {
		return library.Entry{}, invalid("file", "%s: unsupported file type (allowed: %s)", name, strings.Join(AllowedExtensions, ", "))
	}

	info, err := os.Stat(path)
	if err != nil {
		return library.Entry{}, fmt.Errorf("read %s: %w", name, err)
	}
	if info.IsDir() {
		return library.Entry{}, invalid("file", "%s is a directory", name)
	}
	limit := opts.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if info.Size() > limit {
		return library.Entry{}, invalid("file", "%s is larger than %d bytes", name, limit)
	}

	var content string
	switch ext {
	case ".pdf":
		content, err = pdfText(path)
	default:
		var data []byte
		data, err = os.ReadFile(path)
		content = string(data)
	}
	if err != nil {
		return library.Entry{}, fmt.Errorf("read %s: %w", name, err)
	}
	if ext == ".md" && opts.MarkdownToHTML {
		content, err = MarkdownToHTML(content)
		if err != nil {
			return library.Entry{}, fmt.Errorf("convert %s: %w", name, err)
		}
	}
	return library.Entry{FileName: name, Content: content, Source: library.SourceUpload}, nil
}

// MarkdownToHTML renders GitHub flavoured markdown.
func MarkdownToHTML(src string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func allowed(ext string) bool {
	for _, candidate := range AllowedExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

func pdfText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return strings.TrimSpace(extraneousWhitespace.ReplaceAllString(builder.String(), " ")), nil
}
