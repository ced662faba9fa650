package tuitest

import (
	"bytes"
	"io"
)

// queryReply pairs a terminal capability query with the answer a real
// terminal would send back. Bubble Tea and termenv block on some of these.
type queryReply struct {
	query []byte
	reply []byte
}

var queryReplies = []queryReply{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

const (
	responderMaxBuffer = 256
	responderKeepTail  = 64
)

// responder watches program output and answers capability queries on w.
type responder struct {
	w        io.Writer
	pending  []byte
	answered int
}

func newResponder(w io.Writer) *responder {
	return &responder{w: w, pending: make([]byte, 0, responderMaxBuffer)}
}

// Observe feeds a chunk of program output. Queries split across chunks are
// still recognized because a short tail of earlier output is retained.
func (r *responder) Observe(chunk []byte) {
	r.pending = append(r.pending, chunk...)
	for r.answerNext() {
	}
	if len(r.pending) > responderMaxBuffer {
		r.pending = append(r.pending[:0], r.pending[len(r.pending)-responderKeepTail:]...)
	}
}

// answerNext replies to the earliest query in the buffer.
func (r *responder) answerNext() bool {
	first, at := -1, -1
	for i, qr := range queryReplies {
		idx := bytes.Index(r.pending, qr.query)
		if idx >= 0 && (at < 0 || idx < at) {
			first, at = i, idx
		}
	}
	if first < 0 {
		return false
	}
	qr := queryReplies[first]
	r.pending = r.pending[at+len(qr.query):]
	_, _ = r.w.Write(qr.reply)
	r.answered++
	return true
}
