package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/hostlog/internal/config"
	"github.com/Iron-Ham/hostlog/internal/console"
	"github.com/Iron-Ham/hostlog/internal/control"
	"github.com/Iron-Ham/hostlog/internal/errors"
	"github.com/Iron-Ham/hostlog/internal/hostio"
	"github.com/Iron-Ham/hostlog/internal/logging"
	"github.com/Iron-Ham/hostlog/internal/runner"
	"github.com/Iron-Ham/hostlog/internal/sink"
	"github.com/Iron-Ham/hostlog/internal/stream"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- command [args...]",
	Short: "Run a command and mirror its output into log files",
	Long: `Run a command with the console interceptor attached. Every complete line
the command writes is shown on the console and appended to each log file.

Stdout lines are logged as output and stderr lines as errors, unless
--stderr-stream names another category. With --pty the command runs in a
pseudo-terminal and both streams are logged as output.

Send SIGUSR1 to suspend logging and SIGUSR2 to resume it; the console keeps
showing output while logging is suspended.

Examples:
  # Log a build to build.log
  hostlog run -l build.log -- make all

  # Keep only warnings and errors
  hostlog run -l problems.log -s warning,error -- ./deploy.sh

  # Two files with the same settings
  hostlog run -l a.log -l b.log -- go test ./...`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var (
	runLogFiles     []string
	runStreams      stream.Class
	runStderrStream stream.Class
	runPTY          bool
	runVerbose      bool
	runDebug        bool
	runNoColor      bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArrayVarP(&runLogFiles, "log-file", "l", nil, "Log file to append to (repeatable)")
	runCmd.Flags().VarP(&runStreams, "streams", "s", "Categories written to the log files (default from config: all)")
	runCmd.Flags().Var(&runStderrStream, "stderr-stream", "Category of stderr lines (default from config: error)")
	runCmd.Flags().BoolVar(&runPTY, "pty", false, "Run the command in a pseudo-terminal")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Show verbose lines on the console")
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "Show debug lines on the console")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "Disable coloured console output")
}

// runOptions is everything "hostlog run" needs once flags and config are
// merged.
type runOptions struct {
	Command     []string
	LogFiles    []string
	Streams     stream.Class
	StderrClass stream.Class
	PTY         bool
	TimeFormat  string
	StripANSI   bool
	Rotation    logging.RotationConfig
	Stdin       io.Reader
	Logger      *logging.Logger
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	opts := runOptions{
		Command:    args,
		LogFiles:   runLogFiles,
		PTY:        cfg.Run.PTY || runPTY,
		TimeFormat: cfg.LogFile.TimeFormat,
		StripANSI:  cfg.LogFile.StripANSI,
		Rotation:   cfg.LogFile.Rotation(),
		Stdin:      cmd.InOrStdin(),
	}

	var err error
	if cmd.Flags().Changed("streams") {
		opts.Streams = runStreams
	} else if opts.Streams, err = cfg.LogFile.StreamClass(); err != nil {
		return err
	}
	if cmd.Flags().Changed("stderr-stream") {
		opts.StderrClass = runStderrStream
	} else if opts.StderrClass, err = cfg.Run.StderrClass(); err != nil {
		return err
	}

	logger, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	opts.Logger = logger.WithSession(uuid.NewString())

	term := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(),
		console.WithColor(cfg.Console.Color && !runNoColor),
		console.WithVerbose(cfg.Console.Verbose || runVerbose),
		console.WithDebug(cfg.Console.Debug || runDebug),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := runCommand(ctx, hostio.Default(), hostio.NewHost(term), opts)
	if errors.Is(err, errors.ErrCanceled) {
		// The command was killed; report how it ended rather than the signal.
		return &ExitError{Code: max(code, 1)}
	}
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// runCommand attaches ic to host, adds the log files and runs the command.
// ic is detached and the files are closed before it returns.
func runCommand(ctx context.Context, ic *hostio.Interceptor, host *hostio.Host, opts runOptions) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	ic.SetLogger(logger)
	ctl := control.New(ic, host, control.WithLogger(logger))

	if err := ic.Attach(host); err != nil {
		return -1, err
	}
	defer ic.Detach()

	files := make([]*sink.LogFile, 0, len(opts.LogFiles))
	defer func() {
		ctl.DisableLogFile(files...)
		for _, lf := range files {
			if err := lf.Close(); err != nil {
				logger.Warn("failed to close log file", "path", lf.Path(), "error", err.Error())
			}
		}
	}()
	for _, path := range opts.LogFiles {
		lf, err := ctl.AddLogFile(path,
			sink.WithStreams(opts.Streams),
			sink.WithTimeFormat(opts.TimeFormat),
			sink.WithStripANSI(opts.StripANSI),
			sink.WithRotation(opts.Rotation),
			sink.WithErrorHandler(reportLogFileError(ic)),
		)
		if err != nil {
			return -1, err
		}
		files = append(files, lf)
	}

	stopSignals := handleSignals(ctl)
	defer stopSignals()

	return runner.Run(ctx, runner.Config{
		Command:     opts.Command,
		Stdin:       opts.Stdin,
		StderrClass: opts.StderrClass,
		PTY:         opts.PTY,
		Logger:      logger,
	}, ic)
}

// reportLogFileError shows a failed log file write on the console. The file
// sink calls it with broadcasting paused, so the warning is not logged.
func reportLogFileError(ic *hostio.Interceptor) sink.ErrorHandler {
	return func(lf *sink.LogFile, err error) {
		msg := err.Error()
		var sinkErr *errors.SinkError
		if errors.As(err, &sinkErr) {
			if cause := errors.Unwrap(sinkErr); cause != nil {
				msg = cause.Error()
			}
		}
		_ = ic.WriteWarningLine(fmt.Sprintf("cannot write to log file %s: %s", lf.Path(), msg))
	}
}
