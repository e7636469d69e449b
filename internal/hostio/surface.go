package hostio

import (
	"strconv"
	"sync"
)

// Color is a console color. ColorDefault leaves the surface's current color
// unchanged.
type Color int8

// Console colors.
const (
	ColorDefault Color = -1

	Black Color = iota - 1
	DarkBlue
	DarkGreen
	DarkCyan
	DarkRed
	DarkMagenta
	DarkYellow
	Gray
	DarkGray
	Blue
	Green
	Cyan
	Red
	Magenta
	Yellow
	White
)

var colorNames = [...]string{
	"Black", "DarkBlue", "DarkGreen", "DarkCyan", "DarkRed", "DarkMagenta",
	"DarkYellow", "Gray", "DarkGray", "Blue", "Green", "Cyan", "Red",
	"Magenta", "Yellow", "White",
}

func (c Color) String() string {
	if c == ColorDefault {
		return "Default"
	}
	if c >= 0 && int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "Color(" + strconv.Itoa(int(c)) + ")"
}

// FieldDescription describes one input requested by Prompt.
type FieldDescription struct {
	Name         string
	Label        string
	HelpMessage  string
	DefaultValue string
	// Secret fields are read without echo and masked before results are
	// offered to subscribers.
	Secret bool
}

// ChoiceDescription is one option offered by PromptForChoice.
type ChoiceDescription struct {
	Label       string
	HelpMessage string
}

// Credential is the result of PromptForCredential.
type Credential struct {
	UserName   string
	TargetName string
	Password   []byte
}

// ProgressRecord describes the state of a long-running activity.
type ProgressRecord struct {
	ActivityID        int
	ParentActivityID  int
	Activity          string
	StatusDescription string
	CurrentOperation  string
	// PercentComplete is -1 when unknown.
	PercentComplete  int
	SecondsRemaining int
	Completed        bool
}

// Surface is the console a host writes to and reads from.
type Surface interface {
	// Write emits text without a terminator.
	Write(text string) error
	// WriteColor emits text without a terminator in the given colors.
	WriteColor(fg, bg Color, text string) error
	// WriteLine emits text followed by a line terminator.
	WriteLine(text string) error
	// WriteColorLine emits text followed by a line terminator in the given colors.
	WriteColorLine(fg, bg Color, text string) error

	WriteErrorLine(message string) error
	WriteWarningLine(message string) error
	WriteVerboseLine(message string) error
	WriteDebugLine(message string) error

	WriteProgress(sourceID int64, record ProgressRecord) error

	Prompt(caption, message string, fields []FieldDescription) (map[string]string, error)
	PromptForChoice(caption, message string, choices []ChoiceDescription, defaultChoice int) (int, error)
	PromptForCredential(caption, message, userName, targetName string) (Credential, error)
	ReadLine() (string, error)
	ReadLineSecret() ([]byte, error)
}

// Host owns the slot through which a program reaches its console surface.
// Interceptors attach by replacing the slot's content and detach by
// restoring it.
type Host struct {
	mu sync.Mutex
	ui Surface
}

// NewHost returns a Host whose slot holds ui.
func NewHost(ui Surface) *Host {
	return &Host{ui: ui}
}

// UI returns the surface currently in the slot.
func (h *Host) UI() Surface {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ui
}

// SetUI replaces the surface in the slot.
func (h *Host) SetUI(ui Surface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ui = ui
}
