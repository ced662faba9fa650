package library

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record id is unknown.
var ErrNotFound = errors.New("file not found")

// Source records how a file entered the library.
type Source string

const (
	SourceUpload   Source = "upload"
	SourceURL      Source = "url"
	SourceRestored Source = "restored"
)

// FileRecord is an immutable piece of stored content that mentions refer to by
// FileName.
type FileRecord struct {
	ID       string    `json:"id"`
	FileName string    `json:"fileName"`
	Content  string    `json:"content"`
	Source   Source    `json:"source,omitempty"`
	URL      string    `json:"url,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
}

// Entry is the input to AddFiles.
type Entry struct {
	FileName string
	Content  string
	Source   Source
	URL      string
}

// Store keeps records in insertion order. It is not safe for concurrent use;
// callers mutate it from a single goroutine.
type Store struct {
	records []FileRecord
	newID   func() string
	now     func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
}

// AddFiles appends one record per entry in input order and returns them. Names
// are not de-duplicated here.
func (s *Store) AddFiles(entries []Entry) []FileRecord {
	added := make([]FileRecord, 0, len(entries))
	for _, entry := range entries {
		source := entry.Source
		if source == "" {
			source = SourceUpload
		}
		record := FileRecord{
			ID:       s.newID(),
			FileName: entry.FileName,
			Content:  entry.Content,
			Source:   source,
			URL:      entry.URL,
			AddedAt:  s.now().UTC(),
		}
		s.records = append(s.records, record)
		added = append(added, record)
	}
	return added
}

// Restore appends previously saved records, keeping their ids. Records whose id
// already exists are skipped.
func (s *Store) Restore(records []FileRecord) int {
	restored := 0
	for _, record := range records {
		if record.ID == "" {
			record.ID = s.newID()
		}
		if _, ok := s.Get(record.ID); ok {
			continue
		}
		if record.Source == "" {
			record.Source = SourceRestored
		}
		s.records = append(s.records, record)
		restored++
	}
	return restored
}

// Remove deletes the record with id. Mentions that point at its name are left
// alone.
func (s *Store) Remove(id string) bool {
	for i, record := range s.records {
		if record.ID == id {
			s.records = append(s.records[:i:i], s.records[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup returns the most recently added record named fileName.
func (s *Store) Lookup(fileName string) (FileRecord, bool) {
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].FileName == fileName {
			return s.records[i], true
		}
	}
	return FileRecord{}, false
}

// Content resolves a mention to the stored content.
func (s *Store) Content(fileName string) (string, bool) {
	record, ok := s.Lookup(fileName)
	if !ok {
		return "", false
	}
	return record.Content, true
}

// Has reports whether any record carries fileName.
func (s *Store) Has(fileName string) bool {
	_, ok := s.Lookup(fileName)
	return ok
}

// Get returns the record with id.
func (s *Store) Get(id string) (FileRecord, bool) {
	for _, record := range s.records {
		if record.ID == id {
			return record, true
		}
	}
	return FileRecord{}, false
}

// Records returns a copy of all records in insertion order.
func (s *Store) Records() []FileRecord {
	return append([]FileRecord(nil), s.records...)
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}
