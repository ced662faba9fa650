package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const snapshotVersion = 1

// saveMu orders concurrent writers so the last Save call wins the rename.
var saveMu sync.Mutex

type snapshot struct {
	Version int          `json:"version"`
	SavedAt time.Time    `json:"savedAt"`
	Records []FileRecord `json:"records"`
}

// Save writes the records to path as a JSON snapshot, creating parent
// directories when necessary.
func Save(path string, records []FileRecord) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload := snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Records: append([]FileRecord{}, records...),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	saveMu.Lock()
	defer saveMu.Unlock()
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".library-*.part")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a snapshot written by Save. A bare JSON array of records is also
// accepted. Missing files surface os.ErrNotExist.
func Load(path string) ([]FileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var records []FileRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode library %s: %w", path, err)
		}
		return records, nil
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode library %s: %w", path, err)
	}
	if snap.Version > snapshotVersion {
		return nil, fmt.Errorf("library %s has unsupported version %d", path, snap.Version)
	}
	return snap.Records, nil
}

// LoadInto restores the snapshot at path into store. A missing file is not an
// error.
func LoadInto(path string, store *Store) (int, error) {
	if path == "" {
		return 0, nil
	}
	records, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return store.Restore(records), nil
}
