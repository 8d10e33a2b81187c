package main

import (
	"fmt"
	"os"

	"odometer/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	AppName    = "Odometer"
	AppID      = "com.example.odometer"
	AppVersion = "1.0.0"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "odometer",
	Short: "A six-digit mechanical odometer",
	Long: `Odometer shows six digit columns that carry and borrow like a
mechanical counter. Run Up and Run Down animate the counter to 999999
or 000000. Without a subcommand the desktop window is opened.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, err := cmd.Flags().GetString("env-file")
		if err != nil {
			return err
		}
		loaded, err := config.FromEnv(envFile)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd.Flags(), &loaded); err != nil {
			return err
		}
		cfg = loaded
		return cfg.Validate()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGUI(cmd.Context(), cfg)
	},
}

func init() {
	defaults := config.Default()

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	flags.String("env-file", config.DefaultEnvFile, "read unset ODOMETER_* variables from this file")
	flags.Bool("json-logs", defaults.JSONLogs, "emit JSON logs")
	flags.String("log-format", defaults.LogFormat, "log backend (zerolog, slog)")
	flags.String("log-file", "", "write logs to this file")
	flags.Duration("up-interval", defaults.UpInterval, "pause between run-up ticks")
	flags.Duration("down-interval", defaults.DownInterval, "pause between run-down ticks")
	flags.Int("start", defaults.Start, "initial odometer value")

	rootCmd.AddCommand(guiCmd, tuiCmd, runCmd, versionCmd)
}

// applyFlags overrides cfg with every flag set on the command line
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	var err error

	if fs.Changed("log-level") {
		if cfg.LogLevel, err = fs.GetString("log-level"); err != nil {
			return err
		}
	}
	if fs.Changed("json-logs") {
		if cfg.JSONLogs, err = fs.GetBool("json-logs"); err != nil {
			return err
		}
	}
	if fs.Changed("log-format") {
		if cfg.LogFormat, err = fs.GetString("log-format"); err != nil {
			return err
		}
	}
	if fs.Changed("log-file") {
		if cfg.LogFile, err = fs.GetString("log-file"); err != nil {
			return err
		}
	}
	if fs.Changed("up-interval") {
		if cfg.UpInterval, err = fs.GetDuration("up-interval"); err != nil {
			return err
		}
	}
	if fs.Changed("down-interval") {
		if cfg.DownInterval, err = fs.GetDuration("down-interval"); err != nil {
			return err
		}
	}
	if fs.Changed("start") {
		if cfg.Start, err = fs.GetInt("start"); err != nil {
			return err
		}
	}

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", AppName, AppVersion)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
