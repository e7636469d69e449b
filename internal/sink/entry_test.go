package sink

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/hostlog/internal/stream"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Entry
		wantOK bool
	}{
		{
			name:   "output",
			line:   stamp + " - hello",
			want:   Entry{Timestamp: stamp, Class: stream.Output, Text: "hello"},
			wantOK: true,
		},
		{
			name:   "warning",
			line:   stamp + " - [W] disk almost full",
			want:   Entry{Timestamp: stamp, Class: stream.Warning, Text: "disk almost full"},
			wantOK: true,
		},
		{
			name:   "padded timestamp",
			line:   "14:07" + strings.Repeat(" ", 24) + " - [D] x",
			want:   Entry{Timestamp: "14:07", Class: stream.Debug, Text: "x"},
			wantOK: true,
		},
		{
			name:   "separator in text",
			line:   stamp + " - [E] a - b",
			want:   Entry{Timestamp: stamp, Class: stream.Error, Text: "a - b"},
			wantOK: true,
		},
		{
			name:   "unknown tag is text",
			line:   stamp + " - [X] y",
			want:   Entry{Timestamp: stamp, Class: stream.Output, Text: "[X] y"},
			wantOK: true,
		},
		{name: "blank", line: "", wantOK: false},
		{name: "no prefix", line: "continued text", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseEntry(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ParseEntry(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseEntry(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseEntryReadsFormat(t *testing.T) {
	lf := NewLogFile("unused", WithClock(fixedClock))

	for tag, class := range tagClasses {
		line := strings.TrimSuffix(lf.Format(tag, "payload\n"), "\n")
		got, ok := ParseEntry(line)
		if !ok || got.Class != class || got.Text != "payload" || got.Timestamp != stamp {
			t.Errorf("ParseEntry(%q) = %+v, %v", line, got, ok)
		}
	}
}
