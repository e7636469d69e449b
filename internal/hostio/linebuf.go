package hostio

import (
	"strings"
	"unicode"
)

// Terminator ends every dispatched line.
const Terminator = "\n"

// SplitLines splits text on "\r\n" or "\n" into dispatchable lines. Each
// segment has trailing whitespace trimmed and ends in exactly one
// Terminator. Empty segments, including a trailing one after a final
// terminator, become blank lines, so SplitLines("") returns one blank line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	segments := strings.Split(text, "\n")
	for i, s := range segments {
		segments[i] = strings.TrimRightFunc(s, unicode.IsSpace) + Terminator
	}
	return segments
}

// LineBuffer accumulates fragment writes until a line write completes them.
// The zero value is an empty buffer. LineBuffer is not safe for concurrent
// use; the interceptor serializes access.
type LineBuffer struct {
	b strings.Builder
}

// Append adds a fragment to the pending text.
func (lb *LineBuffer) Append(text string) {
	lb.b.WriteString(text)
}

// Pending returns the unterminated text accumulated so far.
func (lb *LineBuffer) Pending() string {
	return lb.b.String()
}

// Len returns the number of pending bytes.
func (lb *LineBuffer) Len() int {
	return lb.b.Len()
}

// Complete appends text, splits everything pending into lines and empties
// the buffer.
func (lb *LineBuffer) Complete(text string) []string {
	lb.b.WriteString(text)
	lines := SplitLines(lb.b.String())
	lb.b.Reset()
	return lines
}

// Drain empties the buffer and returns its lines. A terminator at the very
// end of the pending text closes the last line rather than starting a blank
// one. It returns nil when nothing is pending.
func (lb *LineBuffer) Drain() []string {
	if lb.b.Len() == 0 {
		return nil
	}
	text := lb.b.String()
	lb.b.Reset()
	text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
	return SplitLines(text)
}
