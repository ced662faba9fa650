package mention

import (
	"strings"

	"github.com/csheth/promptasm/internal/document"
	"github.com/csheth/promptasm/internal/library"
)

// Filter keeps records whose name contains term, ignoring case, in their
// store order.
func Filter(records []library.FileRecord, term string) []library.FileRecord {
	needle := strings.ToLower(term)
	out := make([]library.FileRecord, 0, len(records))
	for _, record := range records {
		if strings.Contains(strings.ToLower(record.FileName), needle) {
			out = append(out, record)
		}
	}
	return out
}

// Picker pairs a trigger with its candidate list.
type Picker struct {
	Trigger    Trigger
	Candidates []library.FileRecord
}

// NewPicker filters records for the trigger search term and clamps the
// selection into the candidate list.
func NewPicker(trigger Trigger, records []library.FileRecord) Picker {
	p := Picker{Trigger: trigger}
	if trigger.Active {
		p.Candidates = Filter(records, trigger.SearchTerm)
	}
	p.clamp()
	return p
}

// Active reports whether the picker should be shown.
func (p Picker) Active() bool {
	return p.Trigger.Active && len(p.Candidates) > 0
}

// Next moves the selection down, wrapping at the end.
func (p *Picker) Next() {
	n := len(p.Candidates)
	if n == 0 {
		return
	}
	p.Trigger.SelectedIndex = (p.Trigger.SelectedIndex + 1) % n
}

// Prev moves the selection up, wrapping at the start.
func (p *Picker) Prev() {
	n := len(p.Candidates)
	if n == 0 {
		return
	}
	p.Trigger.SelectedIndex = (p.Trigger.SelectedIndex - 1 + n) % n
}

// Selected returns the highlighted candidate.
func (p Picker) Selected() (library.FileRecord, bool) {
	if !p.Active() {
		return library.FileRecord{}, false
	}
	return p.Candidates[p.Trigger.SelectedIndex], true
}

func (p *Picker) clamp() {
	n := len(p.Candidates)
	switch {
	case n == 0:
		p.Trigger.SelectedIndex = 0
	case p.Trigger.SelectedIndex >= n:
		p.Trigger.SelectedIndex = n - 1
	case p.Trigger.SelectedIndex < 0:
		p.Trigger.SelectedIndex = 0
	}
}

// Commit replaces the trigger text with a file mention and returns the caret
// placed right after the new node.
func Commit(doc *document.Document, trigger Trigger, fileName string) (document.Point, bool) {
	if !trigger.Active {
		return document.Point{}, false
	}
	start := doc.Delete(trigger.Range)
	return doc.InsertInline(start, document.FileMention(fileName)), true
}
