// Package runner runs a child command with its output routed through an
// interceptor, which is how "hostlog run" places a console in front of an
// arbitrary program.
package runner

import (
	"context"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/term"

	"github.com/Iron-Ham/hostlog/internal/errors"
	"github.com/Iron-Ham/hostlog/internal/logging"
	"github.com/Iron-Ham/hostlog/internal/stream"
)

// Streams opens a writer for one category. *hostio.Interceptor implements it.
type Streams interface {
	Writer(class stream.Class) io.WriteCloser
}

// Config describes the command to run.
type Config struct {
	// Command is the program and its arguments.
	Command []string
	Dir     string
	// Env is the child's environment. Nil inherits the current one.
	Env []string
	// Stdin feeds the child. Nil means no input.
	Stdin io.Reader
	// StderrClass is the category stderr lines are written as. Zero means
	// stream.Error.
	StderrClass stream.Class
	// PTY runs the child in a pseudo-terminal. Its stdout and stderr are
	// merged into Output.
	PTY bool
	// Logger receives diagnostics. Nil discards them.
	Logger *logging.Logger
}

func (c *Config) validate() error {
	if len(c.Command) == 0 || c.Command[0] == "" {
		return errors.Wrap(errors.ErrInvalidInput, "no command given")
	}
	if c.StderrClass == stream.None {
		c.StderrClass = stream.Error
	}
	if !c.StderrClass.Single() {
		return errors.Wrapf(errors.ErrInvalidInput, "stderr stream must be a single category, got %v", c.StderrClass)
	}
	if c.Logger == nil {
		c.Logger = logging.NopLogger()
	}
	return nil
}

// Run starts the command, copies its output into streams until it exits and
// returns its exit code. A non-zero exit is not an error. If ctx is canceled
// the child is killed and ctx's error is returned with the exit code.
func Run(ctx context.Context, cfg Config, streams Streams) (int, error) {
	if err := cfg.validate(); err != nil {
		return -1, err
	}

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = cfg.Env

	var err error
	if cfg.PTY {
		err = runPTY(cmd, cfg, streams)
	} else {
		err = runPipes(cmd, cfg, streams)
	}
	if err != nil {
		return -1, err
	}

	code := exitCode(cmd.Wait())
	cfg.Logger.Info("command exited", "command", cfg.Command[0], "exit_code", code)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return code, errors.Join(errors.ErrCanceled, ctxErr)
	}
	return code, nil
}

// exitCode maps the result of cmd.Wait to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
	}
	return 1
}

// runPipes starts cmd with separate stdout and stderr pipes and pumps both
// until they close.
func runPipes(cmd *exec.Cmd, cfg Config, streams Streams) error {
	cmd.Stdin = cfg.Stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "failed to create stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "failed to create stderr pipe")
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start %s", cfg.Command[0])
	}
	cfg.Logger.Info("command started", "command", cfg.Command[0], "pid", cmd.Process.Pid)

	p := pool.New().WithErrors()
	p.Go(func() error { return pump(streams.Writer(stream.Output), stdout) })
	p.Go(func() error { return pump(streams.Writer(cfg.StderrClass), stderr) })
	if err := p.Wait(); err != nil {
		cfg.Logger.Warn("output copy failed", "error", err.Error())
	}
	return nil
}

// runPTY starts cmd in a pseudo-terminal and pumps the merged output.
func runPTY(cmd *exec.Cmd, cfg Config, streams Streams) error {
	master, err := pty.Start(cmd)
	if err != nil {
		return errors.Wrapf(err, "failed to start %s in a pty", cfg.Command[0])
	}
	defer func() { _ = master.Close() }()
	cfg.Logger.Info("command started", "command", cfg.Command[0], "pid", cmd.Process.Pid, "pty", true)

	if in, ok := cfg.Stdin.(*os.File); ok && term.IsTerminal(int(in.Fd())) {
		_ = pty.InheritSize(in, master)
		if state, err := term.MakeRaw(int(in.Fd())); err == nil {
			defer func() { _ = term.Restore(int(in.Fd()), state) }()
		}
	}
	if cfg.Stdin != nil {
		// Blocks on the reader until the process exits; never waited for.
		go func() { _, _ = io.Copy(master, cfg.Stdin) }()
	}

	p := pool.New().WithErrors()
	p.Go(func() error { return pump(streams.Writer(stream.Output), master) })
	if err := p.Wait(); err != nil {
		cfg.Logger.Warn("output copy failed", "error", err.Error())
	}
	return nil
}

// pump copies r into w and closes w. The EIO a pty master returns once the
// child has exited counts as end of input.
func pump(w io.WriteCloser, r io.Reader) error {
	_, err := io.Copy(w, r)
	if errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed) {
		err = nil
	}
	return errors.Join(err, w.Close())
}
