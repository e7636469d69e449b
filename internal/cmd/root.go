package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/hostlog/internal/config"
	"github.com/Iron-Ham/hostlog/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "hostlog",
	Short: "Mirror console output into log files",
	Long: `hostlog places an interceptor in front of the console, reassembles
everything written to it into complete lines and fans each line out to
subscribers such as timestamped log files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries the exit code of a command run by "hostlog run".
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/hostlog/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Defaults and HOSTLOG_* environment overrides
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// openLogger returns the diagnostic logger described by cfg, or a no-op
// logger when diagnostics are disabled.
func openLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLoggerWithRotation(cfg.Logging.ResolveDir(), cfg.Logging.Level, cfg.Logging.Rotation())
	if err != nil {
		return nil, fmt.Errorf("failed to open diagnostic log: %w", err)
	}
	return logger, nil
}
