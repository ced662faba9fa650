package session

import "github.com/csheth/promptasm/internal/document"

// Insert types text at the caret, replacing any selection.
func (s *Session) Insert(text string) {
	if text == "" {
		return
	}
	at := s.deleteSelection()
	s.setCaret(s.doc.InsertText(at, text))
}

// Paste inserts clipboard text. Line breaks become new blocks.
func (s *Session) Paste(text string) {
	s.Insert(text)
}

// Split breaks the current block at the caret.
func (s *Session) Split() {
	at := s.deleteSelection()
	s.setCaret(s.doc.SplitBlock(at))
}

// Backspace deletes the selection, or the unit before the caret. A mention is
// removed whole.
func (s *Session) Backspace() {
	if !s.sel.Collapsed() {
		s.setCaret(s.deleteSelection())
		return
	}
	s.setCaret(s.doc.DeleteBackward(s.sel.Focus))
}

// Delete deletes the selection, or the unit after the caret.
func (s *Session) Delete() {
	if !s.sel.Collapsed() {
		s.setCaret(s.deleteSelection())
		return
	}
	s.setCaret(s.doc.DeleteForward(s.sel.Focus))
}

func (s *Session) MoveLeft(extend bool)  { s.move(s.doc.Before, extend, true) }
func (s *Session) MoveRight(extend bool) { s.move(s.doc.After, extend, false) }
func (s *Session) MoveUp(extend bool)    { s.move(s.doc.Above, extend, true) }
func (s *Session) MoveDown(extend bool)  { s.move(s.doc.Below, extend, false) }
func (s *Session) MoveHome(extend bool)  { s.move(s.doc.LineStart, extend, true) }
func (s *Session) MoveEnd(extend bool)   { s.move(s.doc.LineEnd, extend, false) }

// SelectAll selects the whole document.
func (s *Session) SelectAll() {
	s.sel = document.Range{Anchor: s.doc.Start(), Focus: s.doc.End()}
	s.Refresh()
}

// SetCaret places a collapsed caret at p, clamped into the document.
func (s *Session) SetCaret(p document.Point) {
	s.setCaret(s.doc.Clamp(p))
}

// SetSelection replaces the selection.
func (s *Session) SetSelection(r document.Range) {
	s.sel = document.Range{Anchor: s.doc.Clamp(r.Anchor), Focus: s.doc.Clamp(r.Focus)}
	s.Refresh()
}

// move collapses an existing selection toward the direction of travel unless
// extending it.
func (s *Session) move(step func(document.Point) document.Point, extend, backward bool) {
	if extend {
		s.sel.Focus = step(s.sel.Focus)
		s.Refresh()
		return
	}
	if !s.sel.Collapsed() {
		start, end := s.sel.Edges()
		if backward {
			s.setCaret(start)
		} else {
			s.setCaret(end)
		}
		return
	}
	s.setCaret(step(s.sel.Focus))
}

func (s *Session) deleteSelection() document.Point {
	if s.sel.Collapsed() {
		return s.doc.Clamp(s.sel.Focus)
	}
	return s.doc.Delete(s.sel)
}

func (s *Session) setCaret(p document.Point) {
	s.sel = document.Caret(p)
	s.Refresh()
}
