package tuitest

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseFramesSplitsOnClearScreen(t *testing.T) {
	t.Parallel()

	raw := []byte("\x1b[2J\x1b[H\x1b[1mfirst\x1b[0m   \r\n\r\n\x1b[2Jsecond\x1b]0;title\x07 frame\n\x1b[J\x1b[?25l   ")
	frames := ParseFrames(raw)

	got := make([]string, 0, len(frames))
	for _, f := range frames {
		got = append(got, f.Plain)
	}
	if diff := cmp.Diff([]string{"first", "second frame"}, got); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
	if frames[1].Index != 1 {
		t.Fatalf("index = %d, want 1", frames[1].Index)
	}
}

func TestParseFramesWithoutClearKeepsStream(t *testing.T) {
	t.Parallel()

	frames := ParseFrames([]byte("plain output\n"))
	if len(frames) != 1 || frames[0].Plain != "plain output" {
		t.Fatalf("unexpected frames %+v", frames)
	}
}

func TestLastFrameContaining(t *testing.T) {
	t.Parallel()

	rec := &Recording{Frames: []Frame{
		{Index: 0, Plain: "Prompt\n@doc.md"},
		{Index: 1, Plain: "Prompt\nFiles matching @"},
		{Index: 2, Plain: "Prompt"},
	}}
	frame, ok := rec.LastFrameContaining("Prompt", "@")
	if !ok || frame.Index != 1 {
		t.Fatalf("got frame %d (ok=%v), want 1", frame.Index, ok)
	}
	if _, ok := rec.LastFrameContaining("missing"); ok {
		t.Fatal("no frame should match")
	}
	final, ok := rec.FinalFrame()
	if !ok || final.Index != 2 {
		t.Fatalf("final frame = %d", final.Index)
	}
}

func TestResponderAnswersSplitQueries(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := newResponder(&out)
	r.Observe([]byte("hello\x1b]11"))
	r.Observe([]byte(";?\x07 and \x1b[6n"))

	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if out.String() != want {
		t.Fatalf("replies = %q, want %q", out.String(), want)
	}
	if r.answered != 2 {
		t.Fatalf("answered = %d", r.answered)
	}
}

func TestScriptHelpers(t *testing.T) {
	t.Parallel()

	steps := Script(Pause(time.Second), Type("@d", 0), Press(KeyEnter), Press(Ctrl('u')))
	want := []Step{
		{Delay: time.Second},
		{Input: []byte("@")},
		{Input: []byte("d")},
		{Input: []byte{'\r'}},
		{Input: []byte{21}},
	}
	if diff := cmp.Diff(want, steps); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
}
