package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Iron-Ham/hostlog/internal/hostio"
)

// FakeSurface is an in-memory console. Writes are rendered into a
// transcript; interactive reads return the canned answers set on the struct.
type FakeSurface struct {
	// WriteErr, when set, is returned by every write method.
	WriteErr error

	PromptResult map[string]string
	Choice       int
	Credential   hostio.Credential
	Lines        []string
	Secret       []byte
	ReadErr      error

	mu         sync.Mutex
	transcript strings.Builder
	calls      []string
}

// NewFakeSurface returns an empty FakeSurface.
func NewFakeSurface() *FakeSurface {
	return &FakeSurface{}
}

var _ hostio.Surface = (*FakeSurface)(nil)

func (f *FakeSurface) emit(call, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.transcript.WriteString(text)
	return nil
}

func (f *FakeSurface) called(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *FakeSurface) Write(text string) error {
	return f.emit("Write", text)
}

func (f *FakeSurface) WriteColor(fg, bg hostio.Color, text string) error {
	return f.emit(fmt.Sprintf("WriteColor(%v,%v)", fg, bg), text)
}

func (f *FakeSurface) WriteLine(text string) error {
	return f.emit("WriteLine", text+"\n")
}

func (f *FakeSurface) WriteColorLine(fg, bg hostio.Color, text string) error {
	return f.emit(fmt.Sprintf("WriteColorLine(%v,%v)", fg, bg), text+"\n")
}

func (f *FakeSurface) WriteErrorLine(message string) error {
	return f.emit("WriteErrorLine", message+"\n")
}

func (f *FakeSurface) WriteWarningLine(message string) error {
	return f.emit("WriteWarningLine", "WARNING: "+message+"\n")
}

func (f *FakeSurface) WriteVerboseLine(message string) error {
	return f.emit("WriteVerboseLine", "VERBOSE: "+message+"\n")
}

func (f *FakeSurface) WriteDebugLine(message string) error {
	return f.emit("WriteDebugLine", "DEBUG: "+message+"\n")
}

func (f *FakeSurface) WriteProgress(sourceID int64, record hostio.ProgressRecord) error {
	f.called("WriteProgress")
	return f.WriteErr
}

func (f *FakeSurface) Prompt(caption, message string, fields []hostio.FieldDescription) (map[string]string, error) {
	f.called("Prompt")
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	return f.PromptResult, nil
}

func (f *FakeSurface) PromptForChoice(caption, message string, choices []hostio.ChoiceDescription, defaultChoice int) (int, error) {
	f.called("PromptForChoice")
	if f.ReadErr != nil {
		return -1, f.ReadErr
	}
	return f.Choice, nil
}

func (f *FakeSurface) PromptForCredential(caption, message, userName, targetName string) (hostio.Credential, error) {
	f.called("PromptForCredential")
	if f.ReadErr != nil {
		return hostio.Credential{}, f.ReadErr
	}
	return f.Credential, nil
}

// ReadLine returns the queued Lines in order.
func (f *FakeSurface) ReadLine() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ReadLine")
	if f.ReadErr != nil {
		return "", f.ReadErr
	}
	if len(f.Lines) == 0 {
		return "", nil
	}
	line := f.Lines[0]
	f.Lines = f.Lines[1:]
	return line, nil
}

func (f *FakeSurface) ReadLineSecret() ([]byte, error) {
	f.called("ReadLineSecret")
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	return f.Secret, nil
}

// Transcript returns everything written so far.
func (f *FakeSurface) Transcript() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transcript.String()
}

// Calls returns the names of the methods invoked so far, in order.
func (f *FakeSurface) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
