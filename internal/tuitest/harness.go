// Package tuitest drives a terminal program inside a pseudo terminal and
// records what it draws, so end-to-end tests can assert on screen content.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 120
	defaultHeight  = 32
	defaultTimeout = 5 * time.Second
)

// Step is one scripted interaction: wait Delay, then write Input.
type Step struct {
	Delay time.Duration
	Input []byte
}

// Pause waits without sending input.
func Pause(d time.Duration) Step { return Step{Delay: d} }

// Press sends a key sequence immediately.
func Press(key []byte) Step { return Step{Input: key} }

// Type sends text as typed input, one step per rune so the program sees
// separate key events.
func Type(text string, gap time.Duration) []Step {
	steps := make([]Step, 0, len(text))
	for _, r := range text {
		steps = append(steps, Step{Delay: gap, Input: []byte(string(r))})
	}
	return steps
}

// Script flattens steps and step groups into a single sequence.
func Script(parts ...any) []Step {
	var steps []Step
	for _, part := range parts {
		switch v := part.(type) {
		case Step:
			steps = append(steps, v)
		case []Step:
			steps = append(steps, v...)
		default:
			panic(fmt.Sprintf("tuitest: unsupported script part %T", part))
		}
	}
	return steps
}

// Config describes the program to launch and how to drive it.
type Config struct {
	Command          []string
	Dir              string
	Env              []string
	Width            int
	Height           int
	Steps            []Step
	Timeout          time.Duration
	AllowedExitCodes []int
	AllowInterrupt   bool
}

// Recording is the captured terminal stream and its frames.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// Run starts the command in a PTY, replays the steps and waits for exit.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	cfg = withDefaults(cfg)
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(cfg.Height), Cols: uint16(cfg.Width)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	var (
		mu     sync.Mutex
		output bytes.Buffer
	)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		answers := newResponder(ptmx)
		buf := make([]byte, 4096)
		for {
			n, readErr := ptmx.Read(buf)
			if n > 0 {
				answers.Observe(buf[:n])
				mu.Lock()
				output.Write(buf[:n])
				mu.Unlock()
			}
			if readErr != nil {
				return
			}
		}
	}()

	start := time.Now()
	if err := replay(ctx, ptmx, cfg.Steps); err != nil {
		return nil, err
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	select {
	case err := <-exited:
		if err := checkExit(err, cfg); err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}

	_ = ptmx.Close()
	<-drained

	mu.Lock()
	raw := append([]byte(nil), output.Bytes()...)
	mu.Unlock()
	return &Recording{Raw: raw, Frames: ParseFrames(raw), Duration: time.Since(start)}, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

func replay(ctx context.Context, w interface{ Write([]byte) (int, error) }, steps []Step) error {
	for _, step := range steps {
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("tuitest: context cancelled before script finished: %w", ctx.Err())
			case <-time.After(step.Delay):
			}
		}
		if len(step.Input) == 0 {
			continue
		}
		if _, err := w.Write(step.Input); err != nil {
			return fmt.Errorf("tuitest: write input: %w", err)
		}
	}
	return nil
}

func checkExit(err error, cfg Config) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		for _, code := range cfg.AllowedExitCodes {
			if exitErr.ExitCode() == code {
				return nil
			}
		}
	}
	if cfg.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt") {
		return nil
	}
	return fmt.Errorf("tuitest: program exited with error: %w", err)
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

// Key sequences as a terminal would send them.
var (
	KeyEnter     = []byte{'\r'}
	KeyTab       = []byte{'\t'}
	KeyEsc       = []byte{27}
	KeyBackspace = []byte{127}
	KeyUp        = []byte("\x1b[A")
	KeyDown      = []byte("\x1b[B")
	KeyRight     = []byte("\x1b[C")
	KeyLeft      = []byte("\x1b[D")
	KeyF1        = []byte("\x1bOP")
	KeyCtrlC     = Ctrl('c')
)

// Ctrl returns the control code for a letter, eg Ctrl('u') for Ctrl+U.
func Ctrl(letter byte) []byte {
	return []byte{letter & 0x1f}
}
