package sink

import (
	"sync"

	"github.com/Iron-Ham/hostlog/internal/hostio"
	"github.com/Iron-Ham/hostlog/internal/stream"
)

// Callbacks holds one optional function per category. Nil entries ignore
// their category.
type Callbacks struct {
	Output  func(line string) error
	Error   func(line string) error
	Warning func(line string) error
	Verbose func(line string) error
	Debug   func(line string) error
}

// Callback is a subscriber forwarding each category to a function. Errors
// returned by the functions are handed to the dispatcher, which contains
// them.
//
// With a suspender set, every function runs inside a Suspend scope and may
// write back to the console it is observing.
type Callback struct {
	mu        sync.RWMutex
	cb        Callbacks
	suspender Suspender
}

// CallbackOption configures a Callback.
type CallbackOption func(*Callback)

// WithCallbackSuspender sets what is suspended while a function runs.
func WithCallbackSuspender(s Suspender) CallbackOption {
	return func(c *Callback) { c.suspender = s }
}

// NewCallback returns a Callback invoking cb.
func NewCallback(cb Callbacks, opts ...CallbackOption) *Callback {
	c := &Callback{cb: cb}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ hostio.Subscriber = (*Callback)(nil)

// Callbacks returns the functions currently installed.
func (c *Callback) Callbacks() Callbacks {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cb
}

// SetCallbacks replaces the installed functions.
func (c *Callback) SetCallbacks(cb Callbacks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb = cb
}

// Suspender returns what is suspended while a function runs, or nil.
func (c *Callback) Suspender() Suspender {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.suspender
}

// SetSuspender replaces what is suspended while a function runs.
func (c *Callback) SetSuspender(s Suspender) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspender = s
}

// invoke calls the function selected by pick. The lock is not held during
// the call so a function may replace the callbacks.
func (c *Callback) invoke(pick func(Callbacks) func(string) error, line string) error {
	c.mu.RLock()
	fn, s := pick(c.cb), c.suspender
	c.mu.RUnlock()
	if fn == nil {
		return nil
	}
	if s != nil {
		defer s.Suspend()()
	}
	return fn(line)
}

func (c *Callback) WriteOutputLine(line string) error {
	return c.invoke(func(cb Callbacks) func(string) error { return cb.Output }, line)
}

func (c *Callback) WriteErrorLine(line string) error {
	return c.invoke(func(cb Callbacks) func(string) error { return cb.Error }, line)
}

func (c *Callback) WriteWarningLine(line string) error {
	return c.invoke(func(cb Callbacks) func(string) error { return cb.Warning }, line)
}

func (c *Callback) WriteVerboseLine(line string) error {
	return c.invoke(func(cb Callbacks) func(string) error { return cb.Verbose }, line)
}

func (c *Callback) WriteDebugLine(line string) error {
	return c.invoke(func(cb Callbacks) func(string) error { return cb.Debug }, line)
}

// Streams returns the categories that have a function installed.
func (c *Callback) Streams() stream.Class {
	cb := c.Callbacks()
	var class stream.Class
	for _, e := range []struct {
		fn    func(string) error
		class stream.Class
	}{
		{cb.Output, stream.Output},
		{cb.Error, stream.Error},
		{cb.Warning, stream.Warning},
		{cb.Verbose, stream.Verbose},
		{cb.Debug, stream.Debug},
	} {
		if e.fn != nil {
			class |= e.class
		}
	}
	return class
}

func (c *Callback) String() string {
	return "Callback(" + c.Streams().String() + ")"
}
