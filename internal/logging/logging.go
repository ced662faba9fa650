// Package logging builds the zap logger shared by the TUI and the CLI.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where logs go.
type Options struct {
	Verbose bool
	// Path appends JSON logs to a file. The TUI owns the terminal, so this is
	// the only sink used in interactive mode.
	Path string
	// Stderr also writes to standard error.
	Stderr bool
}

// New returns a production zap logger, or a no-op logger when no sink is
// configured.
func New(opts Options) (*zap.Logger, error) {
	if opts.Path == "" && !opts.Stderr {
		return zap.NewNop(), nil
	}

	config := zap.NewProductionConfig()
	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = nil
	config.ErrorOutputPaths = []string{"stderr"}
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("log directory: %w", err)
		}
		config.OutputPaths = append(config.OutputPaths, opts.Path)
		config.ErrorOutputPaths = []string{opts.Path}
	}
	if opts.Stderr {
		config.OutputPaths = append(config.OutputPaths, "stderr")
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
