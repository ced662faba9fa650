package mention

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/csheth/promptasm/internal/document"
	"github.com/csheth/promptasm/internal/library"
)

func caretAtEnd(doc *document.Document) document.Range {
	return document.Caret(doc.End())
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		text       string
		wantActive bool
		wantTerm   string
		wantStart  int
	}{
		{"word after space", "Hello @doc", true, "doc", 6},
		{"bare at sign", "Hello @", true, "", 6},
		{"start of block", "@readme", true, "readme", 0},
		{"tab before", "x\t@a_1", true, "a_1", 2},
		{"space breaks pattern", "Hello @doc ", false, "", 0},
		{"glued to word", "mail@doc", false, "", 0},
		{"punctuation ends word", "Hello @doc.md", false, "", 0},
		{"no trigger", "plain text", false, "", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := document.FromBlocks(document.Paragraph(document.Text(tt.text)))
			got := Detect(doc, caretAtEnd(doc))
			if got.Active != tt.wantActive {
				t.Fatalf("Active = %v, want %v", got.Active, tt.wantActive)
			}
			if !got.Active {
				return
			}
			if got.SearchTerm != tt.wantTerm {
				t.Fatalf("SearchTerm = %q, want %q", got.SearchTerm, tt.wantTerm)
			}
			wantRange := document.Range{
				Anchor: document.Point{Offset: tt.wantStart},
				Focus:  doc.End(),
			}
			if got.Range != wantRange {
				t.Fatalf("Range = %+v, want %+v", got.Range, wantRange)
			}
			if got.SelectedIndex != 0 {
				t.Fatalf("SelectedIndex = %d, want 0", got.SelectedIndex)
			}
		})
	}
}

func TestDetectAfterMentionNode(t *testing.T) {
	t.Parallel()

	doc := document.FromBlocks(document.Paragraph(document.FileMention("a.md"), document.Text("@b")))
	got := Detect(doc, caretAtEnd(doc))
	if !got.Active || got.SearchTerm != "b" {
		t.Fatalf("expected trigger right after a mention, got %+v", got)
	}
	if got.Range.Anchor != (document.Point{Offset: 1}) {
		t.Fatalf("range should start after the mention, got %+v", got.Range)
	}
}

func TestDetectClearsOnRangeSelection(t *testing.T) {
	t.Parallel()

	doc := document.FromBlocks(document.Paragraph(document.Text("Hello @doc")))
	sel := document.Range{Anchor: document.Point{Offset: 2}, Focus: doc.End()}
	if got := Detect(doc, sel); got.Active {
		t.Fatalf("range selection should clear the trigger, got %+v", got)
	}
}

func TestDetectClearsWhenCaretMovesAway(t *testing.T) {
	t.Parallel()

	doc := document.FromBlocks(document.Paragraph(document.Text("Hello @doc")))
	if got := Detect(doc, document.Caret(document.Point{Offset: 3})); got.Active {
		t.Fatalf("caret inside plain text should not trigger, got %+v", got)
	}
}

func records(names ...string) []library.FileRecord {
	out := make([]library.FileRecord, 0, len(names))
	for i, name := range names {
		out = append(out, library.FileRecord{ID: string(rune('a' + i)), FileName: name})
	}
	return out
}

func names(records []library.FileRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.FileName)
	}
	return out
}

func TestFilterIsCaseInsensitiveAndOrdered(t *testing.T) {
	t.Parallel()

	all := records("Doc1.md", "notes.txt", "my-DOC.json", "doc1.md")
	got := names(Filter(all, "doc"))
	want := []string{"Doc1.md", "my-DOC.json", "doc1.md"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Filter mismatch (-want +got):\n%s", diff)
	}
	if got := Filter(all, ""); len(got) != len(all) {
		t.Fatalf("empty term should keep everything, got %d", len(got))
	}
	if got := Filter(all, "zzz"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", names(got))
	}
}

func TestPickerNavigationWraps(t *testing.T) {
	t.Parallel()

	trigger := Trigger{Active: true, SearchTerm: ""}
	p := NewPicker(trigger, records("a", "b", "c"))
	if !p.Active() {
		t.Fatal("picker should be active")
	}
	p.Prev()
	if p.Trigger.SelectedIndex != 2 {
		t.Fatalf("Prev from 0 = %d, want 2", p.Trigger.SelectedIndex)
	}
	p.Next()
	if p.Trigger.SelectedIndex != 0 {
		t.Fatalf("Next from 2 = %d, want 0", p.Trigger.SelectedIndex)
	}
	p.Next()
	selected, ok := p.Selected()
	if !ok || selected.FileName != "b" {
		t.Fatalf("Selected = %+v %v", selected, ok)
	}
}

func TestPickerInactiveWithoutCandidates(t *testing.T) {
	t.Parallel()

	p := NewPicker(Trigger{Active: true, SearchTerm: "zzz"}, records("a"))
	if p.Active() {
		t.Fatal("picker should hide when nothing matches")
	}
	if _, ok := p.Selected(); ok {
		t.Fatal("no selection expected")
	}
	p = NewPicker(Trigger{}, records("a"))
	if p.Active() {
		t.Fatal("picker should hide without a trigger")
	}
}

func TestPickerClampsSelection(t *testing.T) {
	t.Parallel()

	p := NewPicker(Trigger{Active: true, SearchTerm: "a", SelectedIndex: 5}, records("a1", "a2"))
	if p.Trigger.SelectedIndex != 1 {
		t.Fatalf("SelectedIndex = %d, want clamped 1", p.Trigger.SelectedIndex)
	}
}

func TestCommitReplacesTriggerWithMention(t *testing.T) {
	t.Parallel()

	doc := document.FromBlocks(document.Paragraph(document.Text("Hello @doc")))
	trigger := Detect(doc, caretAtEnd(doc))

	caret, ok := Commit(doc, trigger, "doc1.md")
	if !ok {
		t.Fatal("commit should succeed")
	}
	want := []document.Block{{Inlines: []document.Inline{
		document.Text("Hello "),
		document.FileMention("doc1.md"),
	}}}
	if diff := cmp.Diff(want, doc.Blocks()); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}
	if caret != (document.Point{Offset: 7}) {
		t.Fatalf("caret = %v, want right after the mention", caret)
	}
	if again := Detect(doc, document.Caret(caret)); again.Active {
		t.Fatalf("trigger should be gone after commit, got %+v", again)
	}
}

func TestCommitWithoutTrigger(t *testing.T) {
	t.Parallel()

	doc := document.New()
	if _, ok := Commit(doc, Trigger{}, "x"); ok {
		t.Fatal("commit without trigger should fail")
	}
}
