package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/hostlog/internal/config"
	"github.com/Iron-Ham/hostlog/internal/errors"
	"github.com/Iron-Ham/hostlog/internal/sink"
	"github.com/Iron-Ham/hostlog/internal/stream"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// setupTestEnvironment points the config directory at a temporary directory
// and clears state left by earlier commands.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	reset := func() {
		viper.Reset()
		runLogFiles = nil
		runStreams, runStderrStream = stream.None, stream.None
		runPTY, runVerbose, runDebug, runNoColor = false, false, false, false
		viewStreams, viewGrep, viewTail, viewFollow, viewNoColor = stream.None, "", 0, false, false
		configInitForce = false
		for _, c := range rootCmd.Commands() {
			c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
			for _, sub := range c.Commands() {
				sub.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
			}
		}
	}
	reset()
	t.Cleanup(reset)
	return filepath.Join(dir, "hostlog")
}

// -----------------------------------------------------------------------------
// config
// -----------------------------------------------------------------------------

func TestConfigInitCommand(t *testing.T) {
	configDir := setupTestEnvironment(t)

	output, err := executeCommand(rootCmd, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v\nOutput: %s", err, output)
	}
	configFile := filepath.Join(configDir, "config.yaml")
	if !strings.Contains(output, configFile) {
		t.Errorf("output should name the config file: %q", output)
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid YAML: %v", err)
	}
	if cfg != *config.Default() {
		t.Errorf("config file = %+v, want defaults", cfg)
	}

	// A second init refuses to overwrite
	if _, err := executeCommand(rootCmd, "config", "init"); err == nil {
		t.Error("config init should fail when the file exists")
	}
	if _, err := executeCommand(rootCmd, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}
}

func TestConfigShowCommand(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("HOSTLOG_LOG_FILE_STREAMS", "warning,error")

	output, err := executeCommand(rootCmd, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"(none - using defaults)", "log_file:", "streams: warning,error", "stderr_stream: error"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestConfigSetCommand(t *testing.T) {
	configDir := setupTestEnvironment(t)

	output, err := executeCommand(rootCmd, "config", "set", "log_file.max_size_mb", "50")
	if err != nil {
		t.Fatalf("config set failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Set log_file.max_size_mb = 50") {
		t.Errorf("output = %q", output)
	}

	data, err := os.ReadFile(filepath.Join(configDir, "config.yaml"))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.LogFile.MaxSizeMB != 50 {
		t.Errorf("log_file.max_size_mb = %d, want 50", cfg.LogFile.MaxSizeMB)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"no.such_key", "1"}},
		{"not a bool", []string{"console.color", "maybe"}},
		{"not an int", []string{"logging.max_backups", "many"}},
		{"fails validation", []string{"run.stderr_stream", "all"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"config", "set"}, tt.args...)
			if _, err := executeCommand(rootCmd, args...); err == nil {
				t.Errorf("config set %v should fail", tt.args)
			}
		})
	}
}

func TestConfigPathCommand(t *testing.T) {
	configDir := setupTestEnvironment(t)

	output, err := executeCommand(rootCmd, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.Contains(output, filepath.Join(configDir, "config.yaml")) {
		t.Errorf("output should show the default path: %q", output)
	}
	if !strings.Contains(output, "HOSTLOG_*") {
		t.Errorf("output should mention environment overrides: %q", output)
	}
}

// -----------------------------------------------------------------------------
// run and view
// -----------------------------------------------------------------------------

func TestRunAndViewCommands(t *testing.T) {
	skipWithoutShell(t)
	setupTestEnvironment(t)
	logPath := filepath.Join(t.TempDir(), "build.log")

	_, err := executeCommand(rootCmd, "run", "-l", logPath, "-s", "output,warning",
		"--stderr-stream", "warning", "--no-color", "--",
		"sh", "-c", "echo step one; echo 'slow disk' >&2; exit 3")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Fatalf("run error = %v, want exit status 3", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	classes := map[string]stream.Class{}
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		entry, ok := sink.ParseEntry(line)
		if !ok {
			t.Fatalf("unexpected log line %q", line)
		}
		classes[entry.Text] = entry.Class
	}
	if classes["step one"] != stream.Output || classes["slow disk"] != stream.Warning {
		t.Errorf("log entries = %v", classes)
	}

	output, err := executeCommand(rootCmd, "view", logPath, "--no-color", "-s", "warning")
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if !strings.Contains(output, "[WARNING] slow disk") || strings.Contains(output, "step one") {
		t.Errorf("view output = %q", output)
	}

	if _, err := executeCommand(rootCmd, "view", logPath, "--grep", "("); err == nil {
		t.Error("view should reject an invalid pattern")
	}
}
