package cli

import (
	"fmt"

	"github.com/agentx-labs/copybridge/internal/branding"
	"github.com/agentx-labs/copybridge/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	configPath string
	logLevel   string
	logFormat  string

	settings config.Settings
	logger   = logrus.New()
)

// skipValidation marks commands that must run even with a broken config,
// so the user can repair it.
const skipValidation = "skip-config-validation"

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` exposes backend file operations to a desktop frontend through a
named-command bridge. Run "serve" to exchange JSON lines over stdin/stdout, or
use "copy" and "invoke" directly from a shell.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(configPath); err != nil {
			return err
		}
		// Explicit flags take precedence over the file and environment.
		flags := cmd.Root().PersistentFlags()
		if err := viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level")); err != nil {
			return err
		}
		if err := viper.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format")); err != nil {
			return err
		}

		s, err := config.Current()
		if err != nil {
			if cmd.Annotations[skipValidation] == "" {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			s.LogLevel, s.LogFormat = "info", "text"
		}

		if err := configureLogger(logger, s); err != nil {
			return err
		}
		settings = s
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/"+branding.HomeDir()+"/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
