package sink

import (
	"regexp"

	"github.com/Iron-Ham/hostlog/internal/stream"
)

// Entry is one line read back from a log file.
type Entry struct {
	Timestamp string
	Class     stream.Class
	Text      string
}

var tagClasses = map[string]stream.Class{
	"[V] ": stream.Verbose,
	"[W] ": stream.Warning,
	"[E] ": stream.Error,
	"[D] ": stream.Debug,
}

var entryPattern = regexp.MustCompile(`^(.*?\S)\s* - (\[[VWED]\] )?(.*)$`)

// ParseEntry splits a line written by LogFile into its timestamp, category
// and text. Untagged lines are Output. Lines without a timestamp prefix,
// such as blank lines, are not entries.
func ParseEntry(line string) (Entry, bool) {
	m := entryPattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	class := stream.Output
	if c, ok := tagClasses[m[2]]; ok {
		class = c
	}
	return Entry{Timestamp: m[1], Class: class, Text: m[3]}, true
}
