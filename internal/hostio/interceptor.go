package hostio

import (
	"maps"
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/hostlog/internal/errors"
	"github.com/Iron-Ham/hostlog/internal/logging"
	"github.com/Iron-Ham/hostlog/internal/stream"
)

// secretMask replaces secret prompt values offered to subscribers.
const secretMask = "********"

// Interceptor decorates a host's console surface, broadcasting everything
// written to it to the registered subscribers.
type Interceptor struct {
	// mu serializes line buffering and dispatch.
	mu      sync.Mutex
	pending LineBuffer
	subs    *Registry

	// Broadcasting is paused while paused is set or any Suspend scope is
	// open. The two are kept apart so closing a scope never undoes a
	// SetPaused made inside it.
	paused   atomic.Bool
	suspends atomic.Int32

	attachMu sync.RWMutex
	host     *Host
	ui       Surface

	logger  atomic.Pointer[logging.Logger]
	onFault FaultHandler
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(logger *logging.Logger) Option {
	return func(ic *Interceptor) {
		if logger != nil {
			ic.logger.Store(logger)
		}
	}
}

// WithFaultHandler sets the handler notified of contained subscriber faults.
func WithFaultHandler(fn FaultHandler) Option {
	return func(ic *Interceptor) {
		ic.onFault = fn
	}
}

// WithRegistry makes the interceptor broadcast to subscribers of an existing
// registry.
func WithRegistry(r *Registry) Option {
	return func(ic *Interceptor) {
		if r != nil {
			ic.subs = r
		}
	}
}

// New returns a detached, unpaused Interceptor with no subscribers.
func New(opts ...Option) *Interceptor {
	ic := &Interceptor{subs: NewRegistry()}
	ic.logger.Store(logging.NopLogger())
	for _, opt := range opts {
		opt(ic)
	}
	return ic
}

var defaultInterceptor = sync.OnceValue(func() *Interceptor { return New() })

// Default returns the process-wide interceptor, creating it on first use.
func Default() *Interceptor {
	return defaultInterceptor()
}

// SetLogger replaces the diagnostic logger.
func (ic *Interceptor) SetLogger(logger *logging.Logger) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	ic.logger.Store(logger)
}

func (ic *Interceptor) log() *logging.Logger {
	return ic.logger.Load()
}

// SetFaultHandler replaces the fault handler. A nil handler only logs.
func (ic *Interceptor) SetFaultHandler(fn FaultHandler) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.onFault = fn
}

// -----------------------------------------------------------------------------
// Attachment
// -----------------------------------------------------------------------------

// Attach installs the interceptor in front of the host's current surface.
// Attaching while already attached does nothing.
func (ic *Interceptor) Attach(h *Host) error {
	if h == nil {
		return errors.NewConfigurationError("attach", errors.ErrNoHost)
	}

	ic.attachMu.Lock()
	defer ic.attachMu.Unlock()
	if ic.host != nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	orig := h.ui
	if orig == nil {
		return errors.NewConfigurationError("attach", errors.ErrNoSurface)
	}
	if self, ok := orig.(*Interceptor); ok && self == ic {
		return errors.NewConfigurationError("attach", errors.ErrNoSurface)
	}

	ic.host, ic.ui = h, orig
	h.ui = ic
	ic.log().Debug("interceptor attached", "surface", typeName(orig))
	return nil
}

// Detach restores the host's original surface if the interceptor still
// occupies the slot. Detaching while detached does nothing.
func (ic *Interceptor) Detach() {
	ic.attachMu.Lock()
	defer ic.attachMu.Unlock()
	if ic.host == nil {
		return
	}

	h := ic.host
	h.mu.Lock()
	restored := false
	if self, ok := h.ui.(*Interceptor); ok && self == ic {
		h.ui = ic.ui
		restored = true
	}
	h.mu.Unlock()

	ic.host, ic.ui = nil, nil
	ic.log().Debug("interceptor detached", "restored", restored)
}

// Attached reports whether the interceptor is attached to a host.
func (ic *Interceptor) Attached() bool {
	ic.attachMu.RLock()
	defer ic.attachMu.RUnlock()
	return ic.host != nil
}

func (ic *Interceptor) surface() Surface {
	ic.attachMu.RLock()
	defer ic.attachMu.RUnlock()
	return ic.ui
}

// forward passes a non-interactive call to the real surface. Without one
// the call is dropped.
func (ic *Interceptor) forward(fn func(Surface) error) error {
	ui := ic.surface()
	if ui == nil {
		return nil
	}
	return fn(ui)
}

// -----------------------------------------------------------------------------
// Subscribers and pausing
// -----------------------------------------------------------------------------

// AddSubscriber registers s. The interceptor does not keep s alive.
func (ic *Interceptor) AddSubscriber(s Subscriber) bool {
	added := ic.subs.Add(s)
	if added {
		ic.log().Debug("subscriber added", "subscriber", typeName(s))
	}
	return added
}

// RemoveSubscriber unregisters s and returns the number of entries removed.
func (ic *Interceptor) RemoveSubscriber(s Subscriber) int {
	n := ic.subs.Remove(s)
	if n > 0 {
		ic.log().Debug("subscriber removed", "subscriber", typeName(s))
	}
	return n
}

// RemoveAllSubscribers unregisters every subscriber.
func (ic *Interceptor) RemoveAllSubscribers() {
	ic.subs.Clear()
	ic.log().Debug("all subscribers removed")
}

// Subscribers returns the live subscribers in registration order.
func (ic *Interceptor) Subscribers() []Subscriber {
	return ic.subs.Snapshot()
}

// Registry returns the registry backing the interceptor.
func (ic *Interceptor) Registry() *Registry {
	return ic.subs
}

// SetPaused turns broadcasting off (true) or on (false). Pass-through to the
// real surface is unaffected.
func (ic *Interceptor) SetPaused(paused bool) {
	ic.paused.Store(paused)
}

// Paused reports whether broadcasting is paused, either by SetPaused or by
// an open Suspend scope.
func (ic *Interceptor) Paused() bool {
	return ic.paused.Load() || ic.suspends.Load() > 0
}

// Suspend pauses broadcasting until the returned func is called. Use it as:
//
//	defer ic.Suspend()()
//
// Scopes nest. Calls to SetPaused inside a scope take effect once the last
// scope closes. Calling the returned func more than once has no effect.
func (ic *Interceptor) Suspend() func() {
	ic.suspends.Add(1)
	var once sync.Once
	return func() { once.Do(func() { ic.suspends.Add(-1) }) }
}

// -----------------------------------------------------------------------------
// Surface
// -----------------------------------------------------------------------------

var _ Surface = (*Interceptor)(nil)

// write forwards a call and, unless paused, records it under the lock.
func (ic *Interceptor) write(pass func(Surface) error, record func()) error {
	if ic.Paused() {
		return ic.forward(pass)
	}

	ic.mu.Lock()
	defer ic.mu.Unlock()
	if err := ic.forward(pass); err != nil {
		return err
	}
	record()
	return nil
}

func (ic *Interceptor) Write(text string) error {
	return ic.write(
		func(ui Surface) error { return ui.Write(text) },
		func() { ic.pending.Append(text) },
	)
}

func (ic *Interceptor) WriteColor(fg, bg Color, text string) error {
	return ic.write(
		func(ui Surface) error { return ui.WriteColor(fg, bg, text) },
		func() { ic.pending.Append(text) },
	)
}

func (ic *Interceptor) WriteLine(text string) error {
	return ic.write(
		func(ui Surface) error { return ui.WriteLine(text) },
		func() { ic.dispatch(stream.Output, ic.pending.Complete(text)) },
	)
}

func (ic *Interceptor) WriteColorLine(fg, bg Color, text string) error {
	return ic.write(
		func(ui Surface) error { return ui.WriteColorLine(fg, bg, text) },
		func() { ic.dispatch(stream.Output, ic.pending.Complete(text)) },
	)
}

func (ic *Interceptor) WriteErrorLine(message string) error {
	return ic.write(
		func(ui Surface) error { return ui.WriteErrorLine(message) },
		func() { ic.dispatch(stream.Error, SplitLines(message)) },
	)
}

func (ic *Interceptor) WriteWarningLine(message string) error {
	return ic.write(
		func(ui Surface) error { return ui.WriteWarningLine(message) },
		func() { ic.dispatch(stream.Warning, SplitLines(message)) },
	)
}

func (ic *Interceptor) WriteVerboseLine(message string) error {
	return ic.write(
		func(ui Surface) error { return ui.WriteVerboseLine(message) },
		func() { ic.dispatch(stream.Verbose, SplitLines(message)) },
	)
}

func (ic *Interceptor) WriteDebugLine(message string) error {
	return ic.write(
		func(ui Surface) error { return ui.WriteDebugLine(message) },
		func() { ic.dispatch(stream.Debug, SplitLines(message)) },
	)
}

// WriteProgress offers the record to interactive subscribers, then forwards it.
func (ic *Interceptor) WriteProgress(sourceID int64, record ProgressRecord) error {
	ic.observe("progress", func(s InteractiveSubscriber) error {
		return s.OnProgress(sourceID, record)
	})
	return ic.forward(func(ui Surface) error { return ui.WriteProgress(sourceID, record) })
}

// Flush dispatches any pending fragment text as Output lines without
// writing anything to the surface. Use it when a fragment stream ends
// without a final terminator.
func (ic *Interceptor) Flush() {
	if ic.Paused() {
		return
	}
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.dispatch(stream.Output, ic.pending.Drain())
}

// Pending returns the buffered fragment text not yet dispatched.
func (ic *Interceptor) Pending() string {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.pending.Pending()
}

// observe offers an interactive event under the lock unless paused.
func (ic *Interceptor) observe(event string, fn func(InteractiveSubscriber) error) {
	if ic.Paused() {
		return
	}
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.offer(event, fn)
}

// interactive returns the real surface for an interactive operation.
func (ic *Interceptor) interactive(op string) (Surface, error) {
	ui := ic.surface()
	if ui == nil {
		return nil, errors.NewConfigurationError(op, errors.ErrNotAttached)
	}
	return ui, nil
}

// Prompt delegates to the real surface and offers the result. Values of
// secret fields are masked in the copy subscribers receive.
func (ic *Interceptor) Prompt(caption, message string, fields []FieldDescription) (map[string]string, error) {
	ui, err := ic.interactive("prompt")
	if err != nil {
		return nil, err
	}
	result, err := ui.Prompt(caption, message, fields)
	if err != nil {
		return result, err
	}

	offered := maps.Clone(result)
	for _, f := range fields {
		if _, ok := offered[f.Name]; ok && f.Secret {
			offered[f.Name] = secretMask
		}
	}
	ic.observe("prompt", func(s InteractiveSubscriber) error { return s.OnPrompt(offered) })
	return result, nil
}

// PromptForChoice delegates to the real surface and offers the chosen option.
func (ic *Interceptor) PromptForChoice(caption, message string, choices []ChoiceDescription, defaultChoice int) (int, error) {
	ui, err := ic.interactive("prompt for choice")
	if err != nil {
		return -1, err
	}
	choice, err := ui.PromptForChoice(caption, message, choices, defaultChoice)
	if err != nil {
		return choice, err
	}
	if choice >= 0 && choice < len(choices) {
		chosen := choices[choice]
		ic.observe("choice", func(s InteractiveSubscriber) error { return s.OnChoicePrompt(chosen) })
	}
	return choice, nil
}

// PromptForCredential delegates to the real surface and offers the
// credential without its password.
func (ic *Interceptor) PromptForCredential(caption, message, userName, targetName string) (Credential, error) {
	ui, err := ic.interactive("prompt for credential")
	if err != nil {
		return Credential{}, err
	}
	cred, err := ui.PromptForCredential(caption, message, userName, targetName)
	if err != nil {
		return cred, err
	}
	offered := Credential{UserName: cred.UserName, TargetName: cred.TargetName}
	ic.observe("credential", func(s InteractiveSubscriber) error { return s.OnCredentialPrompt(offered) })
	return cred, nil
}

// ReadLine delegates to the real surface and offers the line read.
func (ic *Interceptor) ReadLine() (string, error) {
	ui, err := ic.interactive("read line")
	if err != nil {
		return "", err
	}
	line, err := ui.ReadLine()
	if err != nil {
		return line, err
	}
	ic.observe("read line", func(s InteractiveSubscriber) error { return s.OnReadLine(line) })
	return line, nil
}

// ReadLineSecret delegates to the real surface. The result is never offered.
func (ic *Interceptor) ReadLineSecret() ([]byte, error) {
	ui, err := ic.interactive("read secret line")
	if err != nil {
		return nil, err
	}
	return ui.ReadLineSecret()
}
