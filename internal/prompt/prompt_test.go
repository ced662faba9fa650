package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/csheth/promptasm/internal/document"
	"github.com/csheth/promptasm/internal/library"
)

func TestSerializeSubstitutesMentions(t *testing.T) {
	t.Parallel()

	store := library.NewStore()
	store.AddFiles([]library.Entry{
		{FileName: "doc1.md", Content: "DOC ONE"},
		{FileName: "example.com-.md", Content: "# Example", Source: library.SourceURL},
	})
	doc := document.FromBlocks(
		document.Paragraph(document.Text("Hello "), document.FileMention("doc1.md"), document.Text("!")),
		document.Paragraph(document.URLMention("https://www.example.com/", "example.com-.md")),
	)

	got := Serialize(doc, store, Options{BlockSeparator: DefaultBlockSeparator})
	want := "Hello DOC ONE!\n# Example"
	if got != want {
		t.Fatalf("Serialize = %q, want %q", got, want)
	}
	if again := Serialize(doc, store, Options{BlockSeparator: DefaultBlockSeparator}); again != got {
		t.Fatalf("Serialize is not deterministic: %q vs %q", again, got)
	}
}

func TestSerializeWithoutSeparatorConcatenatesBlocks(t *testing.T) {
	t.Parallel()

	doc := document.FromBlocks(document.Paragraph(document.Text("a")), document.Paragraph(document.Text("b")))
	if got := Serialize(doc, nil, Options{}); got != "ab" {
		t.Fatalf("Serialize = %q, want %q", got, "ab")
	}
}

func TestSerializeDanglingMentionIsEmpty(t *testing.T) {
	t.Parallel()

	store := library.NewStore()
	added := store.AddFiles([]library.Entry{{FileName: "gone.txt", Content: "bye"}})
	doc := document.FromBlocks(document.Paragraph(document.Text("["), document.FileMention("gone.txt"), document.Text("]")))

	store.Remove(added[0].ID)
	if len(doc.Mentions()) != 1 {
		t.Fatal("removing a file must not remove the mention")
	}
	if got := Serialize(doc, store, Options{}); got != "[]" {
		t.Fatalf("Serialize = %q, want %q", got, "[]")
	}
	stats := Measure(doc, store, Options{})
	if stats.Mentions != 1 || stats.Dangling != 1 || stats.Chars != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteFile(dir, "", "hello")
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if filepath.Base(path) != DefaultFileName {
		t.Fatalf("unexpected file name %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Fatalf("file content = %q", data)
	}
}
