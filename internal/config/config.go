package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/hostlog/internal/logging"
	"github.com/Iron-Ham/hostlog/internal/stream"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. HOSTLOG_LOG_FILE_STREAMS for log_file.streams.
const EnvPrefix = "HOSTLOG"

// Config represents the complete hostlog configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	LogFile LogFileConfig `mapstructure:"log_file" yaml:"log_file"`
	Console ConsoleConfig `mapstructure:"console" yaml:"console"`
	Run     RunConfig     `mapstructure:"run" yaml:"run"`
}

// LoggingConfig controls hostlog's own diagnostic log
type LoggingConfig struct {
	// Enabled controls whether the diagnostic log is written (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is where hostlog-debug.log is written. Empty means <config dir>/logs.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated backups (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// LogFileConfig controls the log files added by "hostlog run"
type LogFileConfig struct {
	// Streams selects the categories written, e.g. "all" or "output,error" (default: "all")
	Streams string `mapstructure:"streams" yaml:"streams"`
	// TimeFormat is the Go time layout of the line prefix (default: RFC 1123 in UTC)
	TimeFormat string `mapstructure:"time_format" yaml:"time_format"`
	// StripANSI removes escape sequences before lines are persisted (default: true)
	StripANSI bool `mapstructure:"strip_ansi" yaml:"strip_ansi"`
	// MaxSizeMB rotates log files at this size; 0 disables rotation (default: 0)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// ConsoleConfig controls the terminal surface
type ConsoleConfig struct {
	// Color enables coloured output when stdout is a terminal (default: true)
	Color bool `mapstructure:"color" yaml:"color"`
	// Verbose shows verbose lines on the console (default: false)
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
	// Debug shows debug lines on the console (default: false)
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// RunConfig controls "hostlog run"
type RunConfig struct {
	// StderrStream is the category stderr lines are written as (default: "error")
	StderrStream string `mapstructure:"stderr_stream" yaml:"stderr_stream"`
	// PTY runs the command in a pseudo-terminal, merging stdout and stderr (default: false)
	PTY bool `mapstructure:"pty" yaml:"pty"`
}

// Rotation returns the rotation settings of the diagnostic log.
func (c *LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

// ResolveDir returns the directory of the diagnostic log.
// If Dir is empty, it returns ConfigDir()/logs.
// If Dir starts with ~, it expands to the user's home directory.
func (c *LoggingConfig) ResolveDir() string {
	if c.Dir == "" {
		return filepath.Join(ConfigDir(), "logs")
	}
	return expandHome(c.Dir)
}

// Rotation returns the rotation settings of log files.
func (c *LogFileConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

// StreamClass parses Streams.
func (c *LogFileConfig) StreamClass() (stream.Class, error) {
	return stream.Parse(c.Streams)
}

// StderrClass parses StderrStream.
func (c *RunConfig) StderrClass() (stream.Class, error) {
	return stream.Parse(c.StderrStream)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		LogFile: LogFileConfig{
			Streams:    "all",
			TimeFormat: "Mon, 02 Jan 2006 15:04:05 GMT",
			StripANSI:  true,
			MaxBackups: 3,
		},
		Console: ConsoleConfig{
			Color: true,
		},
		Run: RunConfig{
			StderrStream: "error",
		},
	}
}

// SetDefaults registers default values with viper and enables HOSTLOG_*
// environment overrides.
func SetDefaults() {
	defaults := Default()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	// Log file defaults
	viper.SetDefault("log_file.streams", defaults.LogFile.Streams)
	viper.SetDefault("log_file.time_format", defaults.LogFile.TimeFormat)
	viper.SetDefault("log_file.strip_ansi", defaults.LogFile.StripANSI)
	viper.SetDefault("log_file.max_size_mb", defaults.LogFile.MaxSizeMB)
	viper.SetDefault("log_file.max_backups", defaults.LogFile.MaxBackups)
	viper.SetDefault("log_file.compress", defaults.LogFile.Compress)

	// Console defaults
	viper.SetDefault("console.color", defaults.Console.Color)
	viper.SetDefault("console.verbose", defaults.Console.Verbose)
	viper.SetDefault("console.debug", defaults.Console.Debug)

	// Run defaults
	viper.SetDefault("run.stderr_stream", defaults.Run.StderrStream)
	viper.SetDefault("run.pty", defaults.Run.PTY)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hostlog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hostlog"
	}
	return filepath.Join(home, ".config", "hostlog")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
