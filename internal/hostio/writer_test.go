package hostio_test

import (
	"fmt"
	"io"
	"slices"
	"testing"

	"github.com/Iron-Ham/hostlog/internal/stream"
)

func TestOutputWriter(t *testing.T) {
	ic, ui, rec := attached(t)
	w := ic.Writer(stream.Output)

	chunks := []string{"Hel", "lo\nWor", "ld\r\n", "tail"}
	for _, c := range chunks {
		n, err := io.WriteString(w, c)
		if err != nil || n != len(c) {
			t.Fatalf("Write(%q) = %d, %v", c, n, err)
		}
	}

	if got := rec.Lines("output"); !slices.Equal(got, []string{"Hello\n", "World\n"}) {
		t.Errorf("before Close output lines = %q", got)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := rec.Lines("output"); !slices.Equal(got, []string{"Hello\n", "World\n", "tail\n"}) {
		t.Errorf("after Close output lines = %q", got)
	}
	if ui.Transcript() != "Hello\nWorld\ntail" {
		t.Errorf("transcript = %q", ui.Transcript())
	}
}

func TestCategoryWriter(t *testing.T) {
	tests := []struct {
		class stream.Class
		kind  string
	}{
		{stream.Error, "error"},
		{stream.Warning, "warning"},
		{stream.Verbose, "verbose"},
		{stream.Debug, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			ic, _, rec := attached(t)
			w := ic.Writer(tt.class)

			_, _ = io.WriteString(w, "first\nsec")
			_, _ = io.WriteString(w, "ond\nthi")
			_, _ = io.WriteString(w, "rd")

			if got := rec.Lines(tt.kind); !slices.Equal(got, []string{"first\n", "second\n"}) {
				t.Errorf("before Close lines = %q", got)
			}
			_ = w.Close()
			if got := rec.Lines(tt.kind); !slices.Equal(got, []string{"first\n", "second\n", "third\n"}) {
				t.Errorf("after Close lines = %q", got)
			}
			if ic.Pending() != "" {
				t.Errorf("category writer used the output buffer: %q", ic.Pending())
			}
		})
	}
}

func TestCategoryWriterMultipleLinesInOneWrite(t *testing.T) {
	ic, ui, rec := attached(t)
	w := ic.Writer(stream.Error)

	_, _ = fmt.Fprint(w, "a\r\nb\nc\n")
	_ = w.Close()

	if got := rec.Lines("error"); !slices.Equal(got, []string{"a\n", "b\n", "c\n"}) {
		t.Errorf("error lines = %q", got)
	}
	if ui.Transcript() != "a\r\nb\nc\n" {
		t.Errorf("transcript = %q", ui.Transcript())
	}
}

func TestWriterRejectsCompositeClass(t *testing.T) {
	ic, _, _ := attached(t)
	defer func() {
		if recover() == nil {
			t.Error("Writer(Output|Error) should panic")
		}
	}()
	_ = ic.Writer(stream.Output | stream.Error)
}
