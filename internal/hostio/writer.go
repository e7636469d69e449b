package hostio

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Iron-Ham/hostlog/internal/stream"
)

// Writer returns an io.WriteCloser feeding a byte stream into the
// interceptor as writes of one category, so output from a child process or
// a library logger can be broadcast like direct console writes.
//
// Output is written as fragments and completed lines, sharing the
// interceptor's pending buffer. Close dispatches an unterminated tail.
// Other categories are line oriented: the writer holds an unterminated tail
// itself and Close writes it as a final line.
//
// Writer panics unless class is exactly one category.
func (ic *Interceptor) Writer(class stream.Class) io.WriteCloser {
	switch class {
	case stream.Output:
		return &outputWriter{ic: ic}
	case stream.Error:
		return &lineWriter{emit: ic.WriteErrorLine}
	case stream.Warning:
		return &lineWriter{emit: ic.WriteWarningLine}
	case stream.Verbose:
		return &lineWriter{emit: ic.WriteVerboseLine}
	case stream.Debug:
		return &lineWriter{emit: ic.WriteDebugLine}
	}
	panic(fmt.Sprintf("hostio: Writer needs a single stream class, got %v", class))
}

type outputWriter struct {
	ic *Interceptor
}

func (w *outputWriter) Write(p []byte) (int, error) {
	text := string(p)
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		if err := w.ic.WriteLine(strings.TrimSuffix(text[:i], "\r")); err != nil {
			return 0, err
		}
		text = text[i+1:]
	}
	if text != "" {
		if err := w.ic.Write(text); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (w *outputWriter) Close() error {
	w.ic.Flush()
	return nil
}

type lineWriter struct {
	mu   sync.Mutex
	tail strings.Builder
	emit func(string) error
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	text := string(p)
	i := strings.LastIndexByte(text, '\n')
	if i < 0 {
		w.tail.WriteString(text)
		return len(p), nil
	}

	w.tail.WriteString(text[:i])
	lines := strings.TrimSuffix(w.tail.String(), "\r")
	w.tail.Reset()
	w.tail.WriteString(text[i+1:])
	if err := w.emit(lines); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *lineWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tail.Len() == 0 {
		return nil
	}
	rest := w.tail.String()
	w.tail.Reset()
	return w.emit(rest)
}
