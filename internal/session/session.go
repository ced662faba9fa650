// Package session ties the document being edited, the file library and the
// mention picker together. The TUI owns one Session and calls it from its
// update loop only.
package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/csheth/promptasm/internal/document"
	"github.com/csheth/promptasm/internal/ingest"
	"github.com/csheth/promptasm/internal/library"
	"github.com/csheth/promptasm/internal/mention"
	"github.com/csheth/promptasm/internal/prompt"
)

// DuplicatePolicy decides what happens when a file name is already taken.
type DuplicatePolicy string

const (
	DuplicatesReject DuplicatePolicy = "reject"
	DuplicatesAllow  DuplicatePolicy = "allow"
)

// Options configures a Session.
type Options struct {
	BlockSeparator     string
	Duplicates         DuplicatePolicy
	AutoMention        bool
	PlaceholderOnError bool
	Now                func() time.Time
}

// Session is the editing state for one prompt.
type Session struct {
	doc       *document.Document
	sel       document.Range
	store     *library.Store
	picker    mention.Picker
	dismissed *document.Range
	pending   map[string]Fetch
	opts      Options
}

// New returns an empty session backed by store. A nil store gets a fresh one.
func New(store *library.Store, opts Options) *Session {
	if store == nil {
		store = library.NewStore()
	}
	if opts.Duplicates == "" {
		opts.Duplicates = DuplicatesReject
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Session{
		doc:     document.New(),
		store:   store,
		pending: make(map[string]Fetch),
		opts:    opts,
	}
	s.Refresh()
	return s
}

func (s *Session) Document() *document.Document { return s.doc }
func (s *Session) Selection() document.Range    { return s.sel }
func (s *Session) Caret() document.Point        { return s.sel.Focus }
func (s *Session) Store() *library.Store        { return s.store }
func (s *Session) Options() Options             { return s.opts }

// Trigger returns the current trigger state.
func (s *Session) Trigger() mention.Trigger { return s.picker.Trigger }

// Refresh re-runs trigger detection against the current caret. Every match
// starts with the first candidate highlighted.
func (s *Session) Refresh() {
	next := mention.Detect(s.doc, s.sel)
	if next.Active && s.dismissed != nil && next.Range == *s.dismissed {
		next = mention.Trigger{}
	} else {
		s.dismissed = nil
	}
	next.SelectedIndex = 0
	s.picker = mention.NewPicker(next, s.store.Records())
}

// Serialize flattens the document with mentions resolved against the library.
func (s *Session) Serialize() string {
	return prompt.Serialize(s.doc, s.store, prompt.Options{BlockSeparator: s.opts.BlockSeparator})
}

// Stats measures the current prompt.
func (s *Session) Stats() prompt.Stats {
	return prompt.Measure(s.doc, s.store, prompt.Options{BlockSeparator: s.opts.BlockSeparator})
}

// Reset clears the document but keeps the library.
func (s *Session) Reset() {
	s.doc = document.New()
	s.sel = document.Range{}
	s.dismissed = nil
	s.Refresh()
}

func duplicateError(field, name string) error {
	return &ingest.ValidationError{Field: field, Message: fmt.Sprintf("a file named %s already exists", name)}
}

// Fetch is a URL ingestion in flight. Its FileName stays reserved until the
// fetch completes or is aborted.
type Fetch struct {
	URL      string
	FileName string
}

// Pending lists reserved fetches by file name.
func (s *Session) Pending() []Fetch {
	out := make([]Fetch, 0, len(s.pending))
	for _, f := range s.pending {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileName < out[j].FileName })
	return out
}
