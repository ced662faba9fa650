package session

import (
	"strings"

	"github.com/csheth/promptasm/internal/document"
	"github.com/csheth/promptasm/internal/ingest"
	"github.com/csheth/promptasm/internal/library"
)

// AddUploads stores a batch of uploaded files in order. Under the reject
// policy a name already in the library, reserved by a fetch, or repeated
// earlier in the batch is skipped with a ValidationError.
func (s *Session) AddUploads(entries []library.Entry) ([]library.FileRecord, []error) {
	var errs []error
	accepted := make([]library.Entry, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.FileName)
		if name == "" {
			errs = append(errs, &ingest.ValidationError{Field: "file", Message: "file name is empty"})
			continue
		}
		if _, reserved := s.pending[name]; reserved {
			errs = append(errs, duplicateError("file", name))
			continue
		}
		if s.opts.Duplicates == DuplicatesReject && (s.store.Has(name) || seen[name]) {
			errs = append(errs, duplicateError("file", name))
			continue
		}
		seen[name] = true
		if entry.Source == "" {
			entry.Source = library.SourceUpload
		}
		entry.FileName = name
		accepted = append(accepted, entry)
	}
	added := s.store.AddFiles(accepted)
	s.Refresh()
	return added, errs
}

// BeginFetch validates raw, derives the file name and reserves it. Nothing
// is stored until CompleteFetch.
func (s *Session) BeginFetch(raw string) (Fetch, error) {
	prepared, err := ingest.PrepareURL(raw)
	if err != nil {
		return Fetch{}, err
	}
	if _, reserved := s.pending[prepared.FileName]; reserved {
		return Fetch{}, duplicateError("url", prepared.FileName)
	}
	if s.opts.Duplicates == DuplicatesReject && s.store.Has(prepared.FileName) {
		return Fetch{}, duplicateError("url", prepared.FileName)
	}
	f := Fetch{URL: prepared.URL, FileName: prepared.FileName}
	s.pending[f.FileName] = f
	return f, nil
}

// CompleteFetch stores fetched markdown and releases the reservation. With
// AutoMention set, a URL mention is inserted at the caret.
func (s *Session) CompleteFetch(f Fetch, markdown string) library.FileRecord {
	delete(s.pending, f.FileName)
	added := s.store.AddFiles([]library.Entry{{
		FileName: f.FileName,
		Content:  markdown,
		Source:   library.SourceURL,
		URL:      f.URL,
	}})
	if s.opts.AutoMention {
		at := s.deleteSelection()
		s.setCaret(s.doc.InsertInline(at, document.URLMention(f.URL, f.FileName)))
	} else {
		s.Refresh()
	}
	return added[0]
}

// AbortFetch releases the reservation after a failed fetch. When the session
// keeps placeholders, an error document is stored under the reserved name and
// returned.
func (s *Session) AbortFetch(f Fetch, cause error) (library.FileRecord, bool) {
	delete(s.pending, f.FileName)
	if !s.opts.PlaceholderOnError {
		return library.FileRecord{}, false
	}
	added := s.store.AddFiles([]library.Entry{{
		FileName: f.FileName,
		Content:  ingest.PlaceholderMarkdown(f.URL, cause, s.opts.Now()),
		Source:   library.SourceURL,
		URL:      f.URL,
	}})
	s.Refresh()
	return added[0], true
}

// RemoveFile deletes a record from the library. Mentions of it stay in the
// document and serialize to nothing.
func (s *Session) RemoveFile(id string) bool {
	ok := s.store.Remove(id)
	if ok {
		s.Refresh()
	}
	return ok
}
