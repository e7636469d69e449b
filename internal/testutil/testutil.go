// Package testutil provides shared fakes for hostlog tests.
package testutil

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/Iron-Ham/hostlog/internal/hostio"
	"github.com/Iron-Ham/hostlog/internal/stream"
)

// ErrInjected is returned by fakes configured to fail.
var ErrInjected = errors.New("injected failure")

// Event is one observation made by a Recorder.
type Event struct {
	// Kind is a stream class name ("output", "error", ...) or one of
	// "prompt", "choice", "credential", "read line", "progress".
	Kind string
	Text string
}

// Recorder is a subscriber that records everything it receives. Set FailOn
// or PanicOn before registering it to make handlers of those classes return
// ErrInjected or panic.
type Recorder struct {
	hostio.NopSubscriber

	FailOn  stream.Class
	PanicOn stream.Class
	// OnEvent, when set, runs after each event is recorded.
	OnEvent func(Event)

	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) line(class stream.Class, line string) error {
	r.record(Event{Kind: class.String(), Text: line})
	if r.PanicOn&class != 0 {
		panic(fmt.Sprintf("recorder panic on %s", class))
	}
	if r.FailOn&class != 0 {
		return ErrInjected
	}
	return nil
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	hook := r.OnEvent
	r.mu.Unlock()
	if hook != nil {
		hook(e)
	}
}

func (r *Recorder) WriteOutputLine(line string) error  { return r.line(stream.Output, line) }
func (r *Recorder) WriteErrorLine(line string) error   { return r.line(stream.Error, line) }
func (r *Recorder) WriteWarningLine(line string) error { return r.line(stream.Warning, line) }
func (r *Recorder) WriteVerboseLine(line string) error { return r.line(stream.Verbose, line) }
func (r *Recorder) WriteDebugLine(line string) error   { return r.line(stream.Debug, line) }

func (r *Recorder) OnPrompt(result map[string]string) error {
	r.record(Event{Kind: "prompt", Text: formatMap(result)})
	return nil
}

func (r *Recorder) OnChoicePrompt(choice hostio.ChoiceDescription) error {
	r.record(Event{Kind: "choice", Text: choice.Label})
	return nil
}

func (r *Recorder) OnCredentialPrompt(cred hostio.Credential) error {
	r.record(Event{Kind: "credential", Text: cred.UserName + "@" + cred.TargetName + ":" + string(cred.Password)})
	return nil
}

func (r *Recorder) OnReadLine(line string) error {
	r.record(Event{Kind: "read line", Text: line})
	return nil
}

func (r *Recorder) OnProgress(sourceID int64, rec hostio.ProgressRecord) error {
	r.record(Event{Kind: "progress", Text: fmt.Sprintf("%d:%s:%d", sourceID, rec.Activity, rec.PercentComplete)})
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Lines returns the text of recorded events of one kind.
func (r *Recorder) Lines(kind string) []string {
	var out []string
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e.Text)
		}
	}
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func formatMap(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, ",")
}
