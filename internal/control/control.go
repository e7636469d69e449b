// Package control implements the registration commands of hostlog: adding,
// listing and removing log files and callback subscribers, and suspending or
// resuming logging.
//
// A Controller never retains the subscribers it creates. The interceptor
// holds them weakly, so callers keep every returned subscriber reachable for
// as long as it should receive lines.
package control

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/hostlog/internal/errors"
	"github.com/Iron-Ham/hostlog/internal/hostio"
	"github.com/Iron-Ham/hostlog/internal/logging"
	"github.com/Iron-Ham/hostlog/internal/sink"
)

// Controller registers subscribers with an interceptor, attaching it to the
// host on first use.
type Controller struct {
	ic     *hostio.Interceptor
	host   *hostio.Host
	getwd  func() (string, error)
	logger *logging.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithWorkingDir sets the function used to resolve relative paths. The
// default is os.Getwd.
func WithWorkingDir(getwd func() (string, error)) Option {
	return func(c *Controller) {
		if getwd != nil {
			c.getwd = getwd
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Controller for ic. host is where ic is attached when a
// subscriber is added; it may be nil if ic is already attached.
func New(ic *hostio.Interceptor, host *hostio.Host, opts ...Option) *Controller {
	c := &Controller{
		ic:     ic,
		host:   host,
		getwd:  os.Getwd,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Interceptor returns the interceptor the controller registers with.
func (c *Controller) Interceptor() *hostio.Interceptor {
	return c.ic
}

// attach makes sure the interceptor sits in front of the host.
func (c *Controller) attach() error {
	if c.ic.Attached() {
		return nil
	}
	return c.ic.Attach(c.host)
}

func (c *Controller) enable(s hostio.Subscriber) error {
	if err := c.attach(); err != nil {
		return err
	}
	if c.ic.AddSubscriber(s) {
		c.logger.Debug("subscriber enabled", "subscriber", fmt.Sprint(s))
	}
	return nil
}

// resolve makes path absolute against the working directory.
func (c *Controller) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	wd, err := c.getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve working directory")
	}
	return filepath.Join(wd, path), nil
}

// -----------------------------------------------------------------------------
// Log files
// -----------------------------------------------------------------------------

// AddLogFile creates a log file at path, relative paths resolved against the
// working directory, and enables it. The log file suspends the interceptor
// while its error handler runs.
func (c *Controller) AddLogFile(path string, opts ...sink.LogFileOption) (*sink.LogFile, error) {
	if path == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "log file path is empty")
	}
	abs, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	opts = append([]sink.LogFileOption{sink.WithSuspender(c.ic)}, opts...)
	lf := sink.NewLogFile(abs, opts...)
	if err := c.EnableLogFile(lf); err != nil {
		return nil, err
	}
	return lf, nil
}

// EnableLogFile registers an existing log file. Enabling one that is already
// registered does nothing.
func (c *Controller) EnableLogFile(lf *sink.LogFile) error {
	if lf == nil {
		return errors.Wrap(errors.ErrInvalidInput, "log file is nil")
	}
	return c.enable(lf)
}

// LogFiles returns the registered log files whose absolute path matches the
// glob pattern, in registration order. Relative patterns are resolved against
// the working directory and an empty pattern matches every log file.
func (c *Controller) LogFiles(pattern string) ([]*sink.LogFile, error) {
	var g glob.Glob
	if pattern != "" {
		abs, err := c.resolve(pattern)
		if err != nil {
			return nil, err
		}
		g, err = glob.Compile(filepath.ToSlash(abs), '/')
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid pattern %q: %v", pattern, err)
		}
	}

	var out []*sink.LogFile
	for s := range c.ic.Registry().Live() {
		lf, ok := s.(*sink.LogFile)
		if !ok {
			continue
		}
		if g == nil || g.Match(filepath.ToSlash(lf.Path())) {
			out = append(out, lf)
		}
	}
	return out, nil
}

// DisableLogFile unregisters log files. The files stay open; Close them when
// they are no longer needed.
func (c *Controller) DisableLogFile(files ...*sink.LogFile) {
	for _, lf := range files {
		if lf == nil {
			continue
		}
		if c.ic.RemoveSubscriber(lf) > 0 {
			c.logger.Debug("log file disabled", "path", lf.Path())
		}
	}
}

// -----------------------------------------------------------------------------
// Callback subscribers
// -----------------------------------------------------------------------------

// AddOutputSubscriber creates a callback subscriber and enables it. The
// callbacks run with broadcasting suspended, so they may write to the
// console.
func (c *Controller) AddOutputSubscriber(cb sink.Callbacks) (*sink.Callback, error) {
	s := sink.NewCallback(cb, sink.WithCallbackSuspender(c.ic))
	if err := c.EnableOutputSubscriber(s); err != nil {
		return nil, err
	}
	return s, nil
}

// EnableOutputSubscriber registers an existing callback subscriber. One
// without a suspender gets the controller's interceptor.
func (c *Controller) EnableOutputSubscriber(s *sink.Callback) error {
	if s == nil {
		return errors.Wrap(errors.ErrInvalidInput, "subscriber is nil")
	}
	if s.Suspender() == nil {
		s.SetSuspender(c.ic)
	}
	return c.enable(s)
}

// OutputSubscribers returns the registered callback subscribers in
// registration order.
func (c *Controller) OutputSubscribers() []*sink.Callback {
	var out []*sink.Callback
	for s := range c.ic.Registry().Live() {
		if cb, ok := s.(*sink.Callback); ok {
			out = append(out, cb)
		}
	}
	return out
}

// DisableOutputSubscriber unregisters callback subscribers.
func (c *Controller) DisableOutputSubscriber(subs ...*sink.Callback) {
	for _, s := range subs {
		if s != nil {
			c.ic.RemoveSubscriber(s)
		}
	}
}

// -----------------------------------------------------------------------------
// Pause
// -----------------------------------------------------------------------------

// SuspendLogging stops broadcasting to every subscriber. The console is
// unaffected.
func (c *Controller) SuspendLogging() {
	c.ic.SetPaused(true)
	c.logger.Info("logging suspended")
}

// ResumeLogging restarts broadcasting.
func (c *Controller) ResumeLogging() {
	c.ic.SetPaused(false)
	c.logger.Info("logging resumed")
}
