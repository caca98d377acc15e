package treedelta

import (
	"bytes"
	"context"
	"io"

	"github.com/pmezard/go-difflib/difflib"
)

// TextDeltaWindow is one window of a text delta: a chunk of target
// content, in order, that the handler chain delivers to the Editor.
// TreeDelta treats a window's bytes as opaque; it never inspects or
// recombines them itself. A nil *TextDeltaWindow (passed to the
// TextDeltaHandler, never returned from WindowStream.Next without a
// matching io.EOF-style nil,nil) terminates the stream.
type TextDeltaWindow struct {
	NewData []byte
}

// WindowStream yields the windows of one text delta in order. Next
// returns (nil, nil) once the stream is exhausted; Close releases any
// resources the stream holds regardless of whether it was drained.
type WindowStream interface {
	Next() (*TextDeltaWindow, error)
	Close() error
}

// TextDeltaSource is the interface TreeDelta calls into to turn an
// ancestor content stream and a target content stream into a sequence
// of windows. TreeDelta never generates byte-level diffs itself — that
// is named as an excluded external collaborator — it only depends on
// this interface.
type TextDeltaSource interface {
	Windows(ctx context.Context, ancestor io.Reader, target io.Reader) (WindowStream, error)
}

// DifflibTextDeltaSource is a reference TextDeltaSource built on
// github.com/pmezard/go-difflib. It line-splits both streams and emits
// one window per equal, replace or insert opcode from the line-level
// diff, each carrying that opcode's target lines; delete opcodes carry
// no target lines and produce no window, so replaying every window in
// order reconstructs the target verbatim.
type DifflibTextDeltaSource struct{}

func (DifflibTextDeltaSource) Windows(ctx context.Context, ancestor io.Reader, target io.Reader) (WindowStream, error) {
	ancestorLines, err := readLines(ancestor)
	if err != nil {
		return nil, err
	}
	targetLines, err := readLines(target)
	if err != nil {
		return nil, err
	}

	matcher := difflib.NewMatcher(ancestorLines, targetLines)
	opcodes := matcher.GetOpCodes()

	windows := make([]*TextDeltaWindow, 0, len(opcodes))
	for _, op := range opcodes {
		if op.Tag == 'd' {
			continue
		}
		chunk := bytes.Join(toByteLines(targetLines[op.J1:op.J2]), nil)
		if len(chunk) == 0 {
			continue
		}
		windows = append(windows, &TextDeltaWindow{NewData: chunk})
	}
	return &sliceWindowStream{windows: windows}, nil
}

// readLines splits r into lines, each carrying its own terminating "\n"
// when the input actually had one. The final line keeps whatever it
// was followed by — nothing, if the input has no trailing newline — so
// replaying every window in order reproduces the input byte for byte
// instead of always gaining a newline at the end.
func readLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i+1]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines, nil
}

func toByteLines(lines []string) [][]byte {
	out := make([][]byte, len(lines))
	for i, l := range lines {
		out[i] = []byte(l)
	}
	return out
}

type sliceWindowStream struct {
	windows []*TextDeltaWindow
	pos     int
}

func (s *sliceWindowStream) Next() (*TextDeltaWindow, error) {
	if s.pos >= len(s.windows) {
		return nil, nil
	}
	w := s.windows[s.pos]
	s.pos++
	return w, nil
}

func (s *sliceWindowStream) Close() error { return nil }
