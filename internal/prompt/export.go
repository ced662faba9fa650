package prompt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
)

// DefaultFileName is the name used when downloading the prompt.
const DefaultFileName = "prompt.md"

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard unavailable on this system")
	}
	return clipboard.WriteAll(text)
}

// WriteFile stores text as dir/name and returns the written path.
func WriteFile(dir, name, text string) (string, error) {
	if name == "" {
		name = DefaultFileName
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
