package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/csheth/promptasm/internal/library"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://www.example.com"},
		{"  example.com/docs  ", "https://www.example.com/docs"},
		{"http://example.com/a", "http://www.example.com/a"},
		{"https://docs.example.com/a", "https://docs.example.com/a"},
		{"www.example.com", "https://www.example.com"},
		{"localhost:3000/x", "https://localhost:3000/x"},
		{"http://127.0.0.1:8080/x", "http://127.0.0.1:8080/x"},
	}
	for _, tt := range tests {
		got, err := NormalizeURL(tt.in)
		if err != nil {
			t.Fatalf("NormalizeURL(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeURLRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := NormalizeURL("   ")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateURL(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"https://www.example.com", "https://www.example.com/a/b?c=d", "http://docs.go.dev/ref"} {
		if err := ValidateURL(ok); err != nil {
			t.Errorf("ValidateURL(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"https://nodot", "ftp://example.com", "example.com"} {
		if err := ValidateURL(bad); !IsValidation(err) {
			t.Errorf("ValidateURL(%q) = %v, want validation error", bad, err)
		}
	}
}

func TestFilenameFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://Example.com/Path/To/Page", "example.com-path-to-page.md"},
		{"https://www.example.com/", "example.com-.md"},
		{"https://www.example.com", "example.com-.md"},
		{"https://WWW.Example.com/a_b", "example.com-a-b.md"},
		{"https://a.io/x?y=1", "a.io-x.md"},
	}
	for _, tt := range tests {
		got, err := FilenameFromURL(tt.in)
		if err != nil {
			t.Fatalf("FilenameFromURL(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("FilenameFromURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
		again, _ := FilenameFromURL(tt.in)
		if again != got {
			t.Errorf("FilenameFromURL(%q) unstable: %q vs %q", tt.in, got, again)
		}
	}
}

func TestPrepareURL(t *testing.T) {
	t.Parallel()

	got, err := PrepareURL("example.com/blog")
	if err != nil {
		t.Fatalf("PrepareURL() error = %v", err)
	}
	if got.URL != "https://www.example.com/blog" || got.FileName != "example.com-blog.md" {
		t.Fatalf("unexpected result %+v", got)
	}

	if _, err := PrepareURL("not a url"); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFetchErrorUnwraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := error(&FetchError{URL: "https://www.example.com", Err: cause})
	if !errors.Is(err, cause) {
		t.Fatal("FetchError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	withStatus := &FetchError{URL: "https://www.example.com", Status: 502, Message: "upstream down"}
	if !strings.Contains(withStatus.Error(), "502") {
		t.Fatalf("status missing from %q", withStatus.Error())
	}
}

func TestPlaceholderMarkdown(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got := PlaceholderMarkdown("https://www.example.com/page", errors.New("boom"), at)
	for _, want := range []string{"# Content from example.com", "- Source: https://www.example.com/page", "2024-03-01T12:00:00Z", "Failed to fetch content: boom"} {
		if !strings.Contains(got, want) {
			t.Errorf("placeholder missing %q:\n%s", want, got)
		}
	}
}

func TestReadFilesPreservesOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	paths := []string{
		write("notes.txt", "plain notes"),
		write("readme.md", "# Title"),
		write("tool.exe", "MZ"),
		write("data.json", `{"a":1}`),
		filepath.Join(dir, "missing.txt"),
	}

	results := ReadFiles(context.Background(), paths, ReadOptions{Concurrency: 2})
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Fatalf("result %d path = %s, want %s", i, res.Path, paths[i])
		}
	}
	if results[0].Err != nil || results[0].Entry.Content != "plain notes" || results[0].Entry.Source != library.SourceUpload {
		t.Fatalf("unexpected first result %+v", results[0])
	}
	if results[1].Entry.Content != "# Title" {
		t.Fatalf("markdown should be stored raw, got %q", results[1].Entry.Content)
	}
	if !IsValidation(results[2].Err) {
		t.Fatalf("expected validation error for .exe, got %v", results[2].Err)
	}
	if results[3].Err != nil || results[3].Entry.FileName != "data.json" {
		t.Fatalf("unexpected json result %+v", results[3])
	}
	if results[4].Err == nil || IsValidation(results[4].Err) {
		t.Fatalf("expected read error for missing file, got %v", results[4].Err)
	}
}

func TestReadFileMarkdownToHTML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("# Title\n\n~~gone~~"), 0o644); err != nil {
		t.Fatal(err)
	}
	entry, err := ReadFile(path, ReadOptions{MarkdownToHTML: true})
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(entry.Content, "<h1>Title</h1>") || !strings.Contains(entry.Content, "<del>gone</del>") {
		t.Fatalf("unexpected html %q", entry.Content)
	}
}

func TestReadFileRejectsOversize(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path, ReadOptions{MaxBytes: 4}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
