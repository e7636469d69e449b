package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/hostlog/internal/console"
	"github.com/Iron-Ham/hostlog/internal/hostio"
	"github.com/Iron-Ham/hostlog/internal/sink"
	"github.com/Iron-Ham/hostlog/internal/stream"
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Show a log file written by hostlog",
	Long: `Show a log file written by "hostlog run", optionally filtered by category
or pattern.

Examples:
  # Show the whole file
  hostlog view build.log

  # Only warnings and errors from the last 20 matching lines
  hostlog view build.log -s warning,error -n 20

  # Search for a pattern and keep watching for new lines
  hostlog view build.log --grep "timeout|refused" -f`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

var (
	viewStreams stream.Class
	viewGrep    string
	viewTail    int
	viewFollow  bool
	viewNoColor bool
)

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().VarP(&viewStreams, "streams", "s", "Categories to show (default all)")
	viewCmd.Flags().StringVar(&viewGrep, "grep", "", "Show only lines matching pattern (regex)")
	viewCmd.Flags().IntVarP(&viewTail, "tail", "n", 0, "Number of lines to show (0 for all)")
	viewCmd.Flags().BoolVarP(&viewFollow, "follow", "f", false, "Keep showing lines as they are appended")
	viewCmd.Flags().BoolVar(&viewNoColor, "no-color", false, "Disable coloured output")
}

// viewOptions selects and formats the lines shown by "hostlog view".
type viewOptions struct {
	Streams stream.Class
	Grep    *regexp.Regexp
	Tail    int
	Follow  bool
	Color   bool
}

func runView(cmd *cobra.Command, args []string) error {
	opts := viewOptions{
		Streams: stream.All,
		Tail:    viewTail,
		Follow:  viewFollow,
		Color:   !viewNoColor,
	}
	if cmd.Flags().Changed("streams") {
		opts.Streams = viewStreams
	}
	if viewGrep != "" {
		re, err := regexp.Compile(viewGrep)
		if err != nil {
			return fmt.Errorf("invalid grep pattern: %w", err)
		}
		opts.Grep = re
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	return viewLog(cmd.Context(), cmd.OutOrStdout(), path, opts)
}

// viewLog prints the matching lines of the log file at path to out and,
// when following, keeps printing appended lines until ctx is done.
func viewLog(ctx context.Context, out io.Writer, path string, opts viewOptions) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	p := newLinePrinter(out, opts)

	lines, offset, err := readLines(path, 0)
	if err != nil {
		return err
	}
	var shown []string
	for _, line := range lines {
		if text, ok := p.format(line); ok {
			shown = append(shown, text)
		}
	}
	if opts.Tail > 0 && len(shown) > opts.Tail {
		shown = shown[len(shown)-opts.Tail:]
	}
	for _, text := range shown {
		fmt.Fprintln(out, text)
	}

	if !opts.Follow {
		if len(shown) == 0 {
			fmt.Fprintln(out, "No matching log lines found.")
		}
		return nil
	}
	return followLog(ctx, path, offset, p)
}

// readLines returns the complete lines of path starting at offset and the
// offset just past the last one. A file shorter than offset has been
// truncated or rotated and is read from the start.
func readLines(path string, offset int64) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, offset, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("failed to stat log file: %w", err)
	}
	if info.Size() < offset {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("failed to seek log file: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, offset, fmt.Errorf("error reading log file: %w", err)
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, offset, nil
	}
	var lines []string
	for line := range strings.Lines(string(data[:end+1])) {
		line = strings.TrimSuffix(line, "\n")
		lines = append(lines, strings.TrimSuffix(line, "\r"))
	}
	return lines, offset + int64(end) + 1, nil
}

// followLog watches the file's directory and prints lines appended after
// offset until ctx is done.
func followLog(ctx context.Context, path string, offset int64, p *linePrinter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so rotation, which replaces the file, is seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	// Fires once right away to pick up lines appended before the watch began
	debounceTimer := time.NewTimer(0)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounceTimer.Reset(50 * time.Millisecond)

		case <-debounceTimer.C:
			lines, next, err := readLines(path, offset)
			if err != nil {
				// The file may be between rotation steps; retry on the next event
				continue
			}
			offset = next
			for _, line := range lines {
				if text, ok := p.format(line); ok {
					fmt.Fprintln(p.out, text)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher failed: %w", err)
		}
	}
}

// linePrinter filters log lines and renders the ones that pass.
type linePrinter struct {
	out     io.Writer
	opts    viewOptions
	stamp   lipgloss.Style
	classes map[stream.Class]lipgloss.Style
}

func newLinePrinter(out io.Writer, opts viewOptions) *linePrinter {
	r := lipgloss.NewRenderer(out)
	if !opts.Color {
		r.SetColorProfile(termenv.Ascii)
	}
	fg := func(c hostio.Color) lipgloss.Style {
		return r.NewStyle().Foreground(console.TerminalColor(c))
	}
	return &linePrinter{
		out:   out,
		opts:  opts,
		stamp: fg(hostio.DarkGray),
		classes: map[stream.Class]lipgloss.Style{
			stream.Verbose: fg(hostio.Cyan),
			stream.Warning: fg(hostio.Yellow),
			stream.Error:   fg(hostio.Red),
			stream.Debug:   fg(hostio.DarkGray),
		},
	}
}

// format returns the rendered line, or false if the line is filtered out.
// Lines that do not carry a timestamp prefix count as output.
func (p *linePrinter) format(line string) (string, bool) {
	entry, ok := sink.ParseEntry(line)
	if !ok {
		entry = sink.Entry{Class: stream.Output, Text: line}
	}
	if !p.opts.Streams.Has(entry.Class) {
		return "", false
	}
	if p.opts.Grep != nil && !p.opts.Grep.MatchString(entry.Text) {
		return "", false
	}

	var sb strings.Builder
	if entry.Timestamp != "" {
		sb.WriteString(p.stamp.Render(entry.Timestamp))
		sb.WriteString(" ")
	}
	if entry.Class != stream.Output {
		sb.WriteString(p.classes[entry.Class].Render("[" + strings.ToUpper(entry.Class.String()) + "]"))
		sb.WriteString(" ")
	}
	sb.WriteString(entry.Text)
	return sb.String(), true
}
