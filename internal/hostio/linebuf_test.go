package hostio_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/Iron-Ham/hostlog/internal/hostio"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single line", input: "hello", want: []string{"hello\n"}},
		{name: "empty", input: "", want: []string{"\n"}},
		{name: "lf", input: "line1\nline2", want: []string{"line1\n", "line2\n"}},
		{name: "crlf", input: "line1\r\nline2", want: []string{"line1\n", "line2\n"}},
		{name: "mixed", input: "a\r\nb\nc", want: []string{"a\n", "b\n", "c\n"}},
		{name: "trailing terminator yields blank line", input: "a\n", want: []string{"a\n", "\n"}},
		{name: "trailing whitespace trimmed", input: "a  \t\nb ", want: []string{"a\n", "b\n"}},
		{name: "leading whitespace kept", input: "  indented", want: []string{"  indented\n"}},
		{name: "blank lines kept", input: "a\n\nb", want: []string{"a\n", "\n", "b\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hostio.SplitLines(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SplitLines(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitLinesTerminatorInvariant(t *testing.T) {
	inputs := []string{"x", "x\r\ny\r\n", "\n\n\n", "a\rb", "tab\t\r\n"}
	for _, in := range inputs {
		for _, line := range hostio.SplitLines(in) {
			if !strings.HasSuffix(line, "\n") || strings.HasSuffix(line, "\n\n") || strings.Contains(strings.TrimSuffix(line, "\n"), "\n") {
				t.Errorf("SplitLines(%q) produced %q, want exactly one trailing terminator", in, line)
			}
			if strings.HasSuffix(line, "\r\n") {
				t.Errorf("SplitLines(%q) produced CRLF line %q", in, line)
			}
		}
	}
}

func TestLineBuffer(t *testing.T) {
	t.Run("fragments concatenate", func(t *testing.T) {
		var lb hostio.LineBuffer
		lb.Append("a")
		lb.Append("b")
		lb.Append("c")

		if lb.Pending() != "abc" {
			t.Errorf("Pending() = %q, want %q", lb.Pending(), "abc")
		}
		if lb.Len() != 3 {
			t.Errorf("Len() = %d, want 3", lb.Len())
		}
	})

	t.Run("complete joins pending and empties", func(t *testing.T) {
		var lb hostio.LineBuffer
		lb.Append("Hello ")

		got := lb.Complete("World")
		if !slices.Equal(got, []string{"Hello World\n"}) {
			t.Errorf("Complete() = %q", got)
		}
		if lb.Len() != 0 {
			t.Errorf("buffer not empty after Complete: %q", lb.Pending())
		}
	})

	t.Run("terminator split across fragments", func(t *testing.T) {
		var lb hostio.LineBuffer
		lb.Append("one\r")
		lb.Append("\ntwo")

		got := lb.Complete("")
		if !slices.Equal(got, []string{"one\n", "two\n"}) {
			t.Errorf("Complete() = %q", got)
		}
	})

	t.Run("drain", func(t *testing.T) {
		var lb hostio.LineBuffer
		if got := lb.Drain(); got != nil {
			t.Errorf("Drain() on empty buffer = %q, want nil", got)
		}

		lb.Append("tail\r\n")
		if got := lb.Drain(); !slices.Equal(got, []string{"tail\n"}) {
			t.Errorf("Drain() = %q, want one line", got)
		}
		if lb.Len() != 0 {
			t.Error("Drain should empty the buffer")
		}
	})
}
