package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/winmirror/winmirror/internal/config"
	"github.com/winmirror/winmirror/internal/logging"
	"github.com/winmirror/winmirror/internal/output"
	"github.com/winmirror/winmirror/internal/version"
)

// cfg holds the loaded configuration for all subcommands.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "winmirror",
	Short: "Mirror input from one window to others",
	Long: `winmirror relays mouse and keyboard input from a source window to a set
of target windows matched by title pattern. Mouse events are forwarded
live with coordinate scaling; keyboard events are batched and replayed
into each target after a quiet period.`,
	RunE: runMirror,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: winmirror.yaml in ProgramData or cwd)")
	rootCmd.PersistentFlags().String("source", "", "Source window title pattern (overrides config)")
	rootCmd.PersistentFlags().StringSlice("target", nil, "Target window title pattern, repeatable (overrides config)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if source, _ := rootCmd.PersistentFlags().GetString("source"); source != "" {
			loaded.Source = source
		}
		if targets, _ := rootCmd.PersistentFlags().GetStringSlice("target"); len(targets) > 0 {
			loaded.Targets = targets
		}
		cfg = loaded

		logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stderr)

		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "", "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		return nil
	}
}
