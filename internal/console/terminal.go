// Package console provides the terminal surface hostlog attaches its
// interceptor in front of.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/Iron-Ham/hostlog/internal/errors"
	"github.com/Iron-Ham/hostlog/internal/hostio"
)

// Terminal is a hostio.Surface over a reader and two writers, normally the
// process's standard streams.
type Terminal struct {
	in     *bufio.Reader
	inFile *os.File

	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	renderer *lipgloss.Renderer
	color    bool
	verbose  bool
	debug    bool
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithColor enables or disables coloured output. Colour is also dropped when
// the output is not a terminal.
func WithColor(enabled bool) Option {
	return func(t *Terminal) { t.color = enabled }
}

// WithVerbose shows verbose lines.
func WithVerbose(enabled bool) Option {
	return func(t *Terminal) { t.verbose = enabled }
}

// WithDebug shows debug lines.
func WithDebug(enabled bool) Option {
	return func(t *Terminal) { t.debug = enabled }
}

// New returns a Terminal reading from in and writing regular output to out
// and errors and progress to errOut.
func New(in io.Reader, out, errOut io.Writer, opts ...Option) *Terminal {
	t := &Terminal{
		in:       bufio.NewReader(in),
		out:      out,
		errOut:   errOut,
		renderer: lipgloss.NewRenderer(out),
		color:    true,
	}
	if f, ok := in.(*os.File); ok {
		t.inFile = f
	}
	for _, opt := range opts {
		opt(t)
	}
	if !t.color {
		t.renderer.SetColorProfile(termenv.Ascii)
	}
	return t
}

// Stdio returns a Terminal over os.Stdin, os.Stdout and os.Stderr.
func Stdio(opts ...Option) *Terminal {
	return New(os.Stdin, os.Stdout, os.Stderr, opts...)
}

var _ hostio.Surface = (*Terminal)(nil)

func (t *Terminal) emit(w io.Writer, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(w, text)
	return err
}

func (t *Terminal) Write(text string) error {
	return t.emit(t.out, text)
}

func (t *Terminal) WriteColor(fg, bg hostio.Color, text string) error {
	return t.emit(t.out, t.colorize(fg, bg, text))
}

func (t *Terminal) WriteLine(text string) error {
	return t.emit(t.out, text+"\n")
}

func (t *Terminal) WriteColorLine(fg, bg hostio.Color, text string) error {
	return t.emit(t.out, t.colorize(fg, bg, text)+"\n")
}

func (t *Terminal) WriteErrorLine(message string) error {
	return t.emit(t.errOut, t.colorize(hostio.Red, hostio.ColorDefault, message)+"\n")
}

func (t *Terminal) WriteWarningLine(message string) error {
	return t.emit(t.out, t.colorize(hostio.Yellow, hostio.ColorDefault, "WARNING: "+message)+"\n")
}

// WriteVerboseLine writes message only when verbose output is enabled.
func (t *Terminal) WriteVerboseLine(message string) error {
	if !t.verbose {
		return nil
	}
	return t.emit(t.out, t.colorize(hostio.Yellow, hostio.ColorDefault, "VERBOSE: "+message)+"\n")
}

// WriteDebugLine writes message only when debug output is enabled.
func (t *Terminal) WriteDebugLine(message string) error {
	if !t.debug {
		return nil
	}
	return t.emit(t.out, t.colorize(hostio.Yellow, hostio.ColorDefault, "DEBUG: "+message)+"\n")
}

// WriteProgress prints one status line per update to errOut. Completed
// records print nothing.
func (t *Terminal) WriteProgress(sourceID int64, record hostio.ProgressRecord) error {
	if record.Completed {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(record.Activity)
	if record.StatusDescription != "" {
		sb.WriteString(": " + record.StatusDescription)
	}
	if record.PercentComplete >= 0 {
		fmt.Fprintf(&sb, " [%d%%]", record.PercentComplete)
	}
	if record.CurrentOperation != "" {
		sb.WriteString(" " + record.CurrentOperation)
	}
	return t.emit(t.errOut, t.colorize(hostio.Cyan, hostio.ColorDefault, sb.String())+"\n")
}

// -----------------------------------------------------------------------------
// Input
// -----------------------------------------------------------------------------

// ReadLine reads one line and strips its terminator. A final line without a
// terminator is returned without error; io.EOF is returned only when nothing
// was read.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// ReadLineSecret reads one line without echo when the input is a terminal.
func (t *Terminal) ReadLineSecret() ([]byte, error) {
	if t.inFile != nil && term.IsTerminal(int(t.inFile.Fd())) {
		secret, err := term.ReadPassword(int(t.inFile.Fd()))
		_ = t.emit(t.out, "\n")
		return secret, err
	}
	line, err := t.ReadLine()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func (t *Terminal) header(caption, message string) error {
	var sb strings.Builder
	if caption != "" {
		if t.color {
			caption = t.renderer.NewStyle().Bold(true).Render(caption)
		}
		sb.WriteString(caption + "\n")
	}
	if message != "" {
		sb.WriteString(message + "\n")
	}
	return t.emit(t.out, sb.String())
}

// Prompt asks for every field in turn. An empty answer takes the field's
// default value.
func (t *Terminal) Prompt(caption, message string, fields []hostio.FieldDescription) (map[string]string, error) {
	if err := t.header(caption, message); err != nil {
		return nil, err
	}

	result := make(map[string]string, len(fields))
	for _, f := range fields {
		label := f.Label
		if label == "" {
			label = f.Name
		}
		if f.DefaultValue != "" && !f.Secret {
			label += " [" + f.DefaultValue + "]"
		}
		if err := t.emit(t.out, label+": "); err != nil {
			return nil, err
		}

		var value string
		if f.Secret {
			secret, err := t.ReadLineSecret()
			if err != nil {
				return nil, err
			}
			value = string(secret)
		} else {
			line, err := t.ReadLine()
			if err != nil {
				return nil, err
			}
			value = line
		}
		if value == "" {
			value = f.DefaultValue
		}
		result[f.Name] = value
	}
	return result, nil
}

// choiceLabel strips the "&" hotkey marker from a choice label.
func choiceLabel(label string) string {
	return strings.Replace(label, "&", "", 1)
}

// PromptForChoice lists the choices numbered from 1 and reads a selection
// by number or label. An empty answer selects defaultChoice; invalid answers
// are asked again.
func (t *Terminal) PromptForChoice(caption, message string, choices []hostio.ChoiceDescription, defaultChoice int) (int, error) {
	if len(choices) == 0 {
		return -1, errors.Wrap(errors.ErrInvalidInput, "no choices")
	}
	if defaultChoice >= len(choices) {
		return -1, errors.Wrapf(errors.ErrInvalidInput, "default choice %d out of range", defaultChoice)
	}
	if err := t.header(caption, message); err != nil {
		return -1, err
	}

	var sb strings.Builder
	for i, c := range choices {
		fmt.Fprintf(&sb, "  [%d] %s", i+1, choiceLabel(c.Label))
		if c.HelpMessage != "" {
			sb.WriteString(" - " + c.HelpMessage)
		}
		sb.WriteString("\n")
	}
	prompt := "Choice: "
	if defaultChoice >= 0 {
		prompt = fmt.Sprintf("Choice [%d]: ", defaultChoice+1)
	}
	if err := t.emit(t.out, sb.String()); err != nil {
		return -1, err
	}

	for {
		if err := t.emit(t.out, prompt); err != nil {
			return -1, err
		}
		answer, err := t.ReadLine()
		if err != nil {
			return -1, err
		}
		if idx, ok := parseChoice(strings.TrimSpace(answer), choices, defaultChoice); ok {
			return idx, nil
		}
		if err := t.WriteErrorLine(fmt.Sprintf("invalid choice %q", answer)); err != nil {
			return -1, err
		}
	}
}

func parseChoice(answer string, choices []hostio.ChoiceDescription, defaultChoice int) (int, bool) {
	if answer == "" {
		return defaultChoice, defaultChoice >= 0
	}
	if n, err := strconv.Atoi(answer); err == nil {
		return n - 1, n >= 1 && n <= len(choices)
	}
	for i, c := range choices {
		if strings.EqualFold(answer, choiceLabel(c.Label)) {
			return i, true
		}
	}
	return -1, false
}

// PromptForCredential asks for a user name, unless one is given, and a
// password read without echo.
func (t *Terminal) PromptForCredential(caption, message, userName, targetName string) (hostio.Credential, error) {
	if err := t.header(caption, message); err != nil {
		return hostio.Credential{}, err
	}

	if userName == "" {
		if err := t.emit(t.out, "User: "); err != nil {
			return hostio.Credential{}, err
		}
		name, err := t.ReadLine()
		if err != nil {
			return hostio.Credential{}, err
		}
		userName = name
	}

	label := "Password"
	if targetName != "" {
		label += " for " + userName + "@" + targetName
	} else {
		label += " for " + userName
	}
	if err := t.emit(t.out, label+": "); err != nil {
		return hostio.Credential{}, err
	}
	password, err := t.ReadLineSecret()
	if err != nil {
		return hostio.Credential{}, err
	}
	return hostio.Credential{UserName: userName, TargetName: targetName, Password: password}, nil
}
