// Package sink provides the concrete subscribers hostlog ships with: a file
// sink that appends timestamped console lines to a log file, and a callback
// sink that forwards each category to a function.
package sink

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/hostlog/internal/errors"
	"github.com/Iron-Ham/hostlog/internal/hostio"
	"github.com/Iron-Ham/hostlog/internal/logging"
	"github.com/Iron-Ham/hostlog/internal/stream"
)

// DefaultTimeFormat is RFC 1123 with a literal GMT zone; timestamps in this
// format are rendered in UTC.
const DefaultTimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Suspender pauses broadcasting for a scope. *hostio.Interceptor implements it.
type Suspender interface {
	Suspend() func()
}

// ErrorHandler is told about a failed write. It runs with broadcasting
// suspended, so it may report the failure on the console. Panics raised by the
// handler are swallowed.
type ErrorHandler func(lf *LogFile, err error)

// LogFileOption configures a LogFile.
type LogFileOption func(*LogFile)

// WithStreams restricts the file to the given categories. The default is
// stream.All.
func WithStreams(c stream.Class) LogFileOption {
	return func(lf *LogFile) { lf.streams = c }
}

// WithErrorHandler sets the handler told about failed writes.
func WithErrorHandler(fn ErrorHandler) LogFileOption {
	return func(lf *LogFile) { lf.onError = fn }
}

// WithSuspender sets what is suspended while the error handler runs.
func WithSuspender(s Suspender) LogFileOption {
	return func(lf *LogFile) { lf.suspender = s }
}

// WithTimeFormat sets the layout of the timestamp prefix.
func WithTimeFormat(layout string) LogFileOption {
	return func(lf *LogFile) {
		if layout != "" {
			lf.timeFormat = layout
		}
	}
}

// WithStripANSI controls whether ANSI escape sequences are removed before
// lines are persisted. Enabled by default.
func WithStripANSI(strip bool) LogFileOption {
	return func(lf *LogFile) { lf.stripANSI = strip }
}

// WithRotation rotates the file by size. Rotation is off by default.
func WithRotation(config logging.RotationConfig) LogFileOption {
	return func(lf *LogFile) { lf.rotation = config }
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) LogFileOption {
	return func(lf *LogFile) {
		if now != nil {
			lf.now = now
		}
	}
}

// LogFile is a subscriber appending every line of the selected categories to
// a file. The file and its directory are created on first write and the file
// is reopened on the write after a failure.
type LogFile struct {
	path       string
	onError    ErrorHandler
	suspender  Suspender
	timeFormat string
	stripANSI  bool
	rotation   logging.RotationConfig
	now        func() time.Time

	mu      sync.Mutex
	streams stream.Class
	out     *fileHandle
	closed  bool
	cleanup runtime.Cleanup
}

// fileHandle owns the open file. It is separate from LogFile so a cleanup can
// close it once the LogFile is unreachable.
type fileHandle struct {
	mu sync.Mutex
	w  *logging.RotatingWriter
}

func (h *fileHandle) close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.w == nil {
		return nil
	}
	err := h.w.Close()
	h.w = nil
	return err
}

// NewLogFile returns a LogFile writing to path. Nothing is opened until the
// first line arrives.
func NewLogFile(path string, opts ...LogFileOption) *LogFile {
	lf := &LogFile{
		path:       path,
		timeFormat: DefaultTimeFormat,
		stripANSI:  true,
		now:        time.Now,
		streams:    stream.All,
		out:        &fileHandle{},
	}
	for _, opt := range opts {
		opt(lf)
	}
	lf.cleanup = runtime.AddCleanup(lf, func(h *fileHandle) { _ = h.close() }, lf.out)
	return lf
}

var _ hostio.Subscriber = (*LogFile)(nil)

// Path returns the file path.
func (lf *LogFile) Path() string {
	return lf.path
}

// Streams returns the categories written to the file.
func (lf *LogFile) Streams() stream.Class {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	return lf.streams
}

// SetStreams changes the categories written to the file.
func (lf *LogFile) SetStreams(c stream.Class) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	lf.streams = c
}

func (lf *LogFile) WriteOutputLine(line string) error {
	return lf.append(stream.Output, "", line)
}

func (lf *LogFile) WriteVerboseLine(line string) error {
	return lf.append(stream.Verbose, "[V] ", line)
}

func (lf *LogFile) WriteWarningLine(line string) error {
	return lf.append(stream.Warning, "[W] ", line)
}

func (lf *LogFile) WriteErrorLine(line string) error {
	return lf.append(stream.Error, "[E] ", line)
}

func (lf *LogFile) WriteDebugLine(line string) error {
	return lf.append(stream.Debug, "[D] ", line)
}

// Format renders one line the way it is written to the file. Blank lines
// are returned unchanged.
func (lf *LogFile) Format(tag, line string) string {
	if lf.stripANSI {
		line = ansi.Strip(line)
	}
	if strings.TrimSpace(line) == "" {
		return line
	}
	t := lf.now()
	if lf.timeFormat == DefaultTimeFormat {
		t = t.UTC()
	}
	return fmt.Sprintf("%-29s - %s%s", t.Format(lf.timeFormat), tag, line)
}

func (lf *LogFile) append(class stream.Class, tag, line string) error {
	lf.mu.Lock()
	if !lf.streams.Has(class) {
		lf.mu.Unlock()
		return nil
	}
	if lf.closed {
		lf.mu.Unlock()
		return errors.NewSinkError("append", lf.path, errors.ErrSinkClosed)
	}
	err := lf.write(lf.Format(tag, line))
	lf.mu.Unlock()

	if err != nil {
		lf.report(err)
	}
	return err
}

// write must be called with lf.mu held.
func (lf *LogFile) write(text string) error {
	h := lf.out
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.w == nil {
		w, err := logging.NewRotatingWriter(lf.path, lf.rotation)
		if err != nil {
			return errors.NewSinkError("open", lf.path, err)
		}
		h.w = w
	}
	if _, err := h.w.Write([]byte(text)); err != nil {
		_ = h.w.Close()
		h.w = nil
		return errors.NewSinkError("append", lf.path, err)
	}
	return nil
}

func (lf *LogFile) report(err error) {
	if lf.onError == nil {
		return
	}
	if lf.suspender != nil {
		defer lf.suspender.Suspend()()
	}
	defer func() { _ = recover() }()
	lf.onError(lf, err)
}

// Close closes the file. Later writes fail with ErrSinkClosed.
func (lf *LogFile) Close() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if lf.closed {
		return nil
	}
	lf.closed = true
	lf.cleanup.Stop()
	return lf.out.close()
}

func (lf *LogFile) String() string {
	return "LogFile(" + lf.path + ", " + lf.Streams().String() + ")"
}
