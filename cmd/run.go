package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/winmirror/winmirror/internal/logging"
	"github.com/winmirror/winmirror/internal/match"
	"github.com/winmirror/winmirror/internal/platform"
	"github.com/winmirror/winmirror/internal/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the mirror loop (default command)",
	Long: `Install the global input hooks and mirror events from the source window
to every matching target until interrupted.`,
	RunE: runMirror,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("debounce-ms", 0, "Quiet period before a key batch flushes (overrides config)")
	runCmd.Flags().Int("settle-ms", 0, "Pause after focusing a target before replay (overrides config)")
	runCmd.Flags().Int("poll-ms", 0, "Flush loop poll interval (overrides config)")
	runCmd.Flags().String("key-strategy", "", "Keyboard delivery: inject or post (overrides config)")
}

func runMirror(cmd *cobra.Command, args []string) error {
	applyRunOverrides(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if provider.Capturer == nil {
		return fmt.Errorf("input capture not available on this platform")
	}

	logger := logging.Component("run")
	set := match.CompileSet(cfg.Source, cfg.Targets)

	// Startup summary: where input comes from and where it goes.
	source, found, err := set.ResolveSource(provider.Directory)
	if err != nil {
		return err
	}
	if found {
		logger.Info("source window",
			logging.KeyHandle, uintptr(source.Handle),
			logging.KeyTitle, source.Title)
	} else {
		logger.Warn("no window currently matches the source pattern; mirroring starts when one gains focus",
			"pattern", set.Source.Pattern())
	}
	targets, err := set.ResolveTargets(provider.Directory)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		logger.Warn("no target windows matched", "patterns", cfg.Targets)
	}
	for _, t := range targets {
		logger.Info("target window",
			logging.KeyHandle, uintptr(t.Handle),
			logging.KeyTitle, t.Title)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := provider.Capturer.Start(ctx)
	if err != nil {
		return fmt.Errorf("installing input hooks: %w", err)
	}
	defer provider.Capturer.Stop()

	sess := session.New(set, provider.Directory, provider.Inputter, session.Options{
		Debounce:    time.Duration(cfg.DebounceMs) * time.Millisecond,
		Settle:      time.Duration(cfg.SettleMs) * time.Millisecond,
		Poll:        time.Duration(cfg.PollMs) * time.Millisecond,
		KeyStrategy: cfg.KeyStrategy,
	})

	logger.Info("mirroring; press Ctrl+C to stop")
	return sess.Run(ctx, events)
}

func applyRunOverrides(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetInt("debounce-ms"); v > 0 {
		cfg.DebounceMs = v
	}
	if v, _ := cmd.Flags().GetInt("settle-ms"); v > 0 {
		cfg.SettleMs = v
	}
	if v, _ := cmd.Flags().GetInt("poll-ms"); v > 0 {
		cfg.PollMs = v
	}
	if v, _ := cmd.Flags().GetString("key-strategy"); v != "" {
		cfg.KeyStrategy = v
	}
}
