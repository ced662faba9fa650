package session

import (
	"github.com/csheth/promptasm/internal/library"
	"github.com/csheth/promptasm/internal/mention"
)

// Candidates lists the files matching the active trigger.
func (s *Session) Candidates() []library.FileRecord {
	return s.picker.Candidates
}

// PickerActive reports whether the picker has something to show.
func (s *Session) PickerActive() bool {
	return s.picker.Active()
}

// SelectedIndex is the highlighted candidate.
func (s *Session) SelectedIndex() int {
	return s.picker.Trigger.SelectedIndex
}

func (s *Session) PickerNext() { s.picker.Next() }
func (s *Session) PickerPrev() { s.picker.Prev() }

// Select highlights candidate index without committing it.
func (s *Session) Select(index int) bool {
	if !s.picker.Active() || index < 0 || index >= len(s.picker.Candidates) {
		return false
	}
	s.picker.Trigger.SelectedIndex = index
	return true
}

// Commit replaces the trigger with a mention of candidate index and moves the
// caret after it.
func (s *Session) Commit(index int) bool {
	if !s.picker.Active() || index < 0 || index >= len(s.picker.Candidates) {
		return false
	}
	record := s.picker.Candidates[index]
	caret, ok := mention.Commit(s.doc, s.picker.Trigger, record.FileName)
	if !ok {
		return false
	}
	s.setCaret(caret)
	return true
}

// CommitSelected commits the highlighted candidate.
func (s *Session) CommitSelected() bool {
	return s.Commit(s.picker.Trigger.SelectedIndex)
}

// DismissTrigger hides the picker until the trigger text changes.
func (s *Session) DismissTrigger() {
	if s.picker.Trigger.Active {
		r := s.picker.Trigger.Range
		s.dismissed = &r
	}
	s.picker = mention.Picker{}
}
