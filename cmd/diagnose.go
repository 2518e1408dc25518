package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/winmirror/winmirror/internal/logging"
	"github.com/winmirror/winmirror/internal/match"
	"github.com/winmirror/winmirror/internal/model"
	"github.com/winmirror/winmirror/internal/output"
	"github.com/winmirror/winmirror/internal/platform"
	"github.com/winmirror/winmirror/internal/vk"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Inspect why a target window might not receive input",
	Long: `Report each target window's owning thread and process, its desktop,
whether thread input can be attached, and whether it covers the full
screen (exclusive-input heuristic). Optionally send a probe key so the
delivery path can be verified by watching the target.`,
	RunE: runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
	diagnoseCmd.Flags().Uint64("hwnd", 0, "Inspect a single window by handle")
	diagnoseCmd.Flags().String("title", "", "Inspect windows whose title contains this substring")
	diagnoseCmd.Flags().Bool("probe", false, "Send a probe key press to each inspected window")
	diagnoseCmd.Flags().String("probe-key", "f12", "Key to send with --probe (name or single character)")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if provider.Diagnoser == nil {
		return fmt.Errorf("diagnostics not available on this platform")
	}

	handles, err := diagnoseHandles(cmd, provider.Directory)
	if err != nil {
		return err
	}
	if len(handles) == 0 {
		return fmt.Errorf("no windows to diagnose")
	}

	probe, _ := cmd.Flags().GetBool("probe")
	probeKey, _ := cmd.Flags().GetString("probe-key")

	logger := logging.Component("diagnose")
	var reports []model.DiagReport
	for _, h := range handles {
		report, err := provider.Diagnoser.Inspect(h)
		if err != nil {
			logger.Warn("inspect failed", logging.KeyHandle, uintptr(h), logging.KeyError, err)
			continue
		}
		if probe {
			if err := sendProbe(provider.Inputter, h, probeKey); err != nil {
				report.Findings = append(report.Findings, fmt.Sprintf("probe key %q failed: %v", probeKey, err))
			} else {
				report.Findings = append(report.Findings, fmt.Sprintf("probe key %q sent; check whether the window reacted", probeKey))
			}
		}
		reports = append(reports, report)
	}
	if len(reports) == 0 {
		return fmt.Errorf("all inspections failed")
	}

	return output.Print(reports)
}

// diagnoseHandles picks the windows to inspect: an explicit handle, a
// title substring, or every current target.
func diagnoseHandles(cmd *cobra.Command, dir platform.Directory) ([]model.Handle, error) {
	if hwnd, _ := cmd.Flags().GetUint64("hwnd"); hwnd != 0 {
		return []model.Handle{model.Handle(hwnd)}, nil
	}

	windows, err := dir.ListWindows()
	if err != nil {
		return nil, err
	}

	title, _ := cmd.Flags().GetString("title")
	title = strings.ToLower(title)
	if title != "" {
		var handles []model.Handle
		for _, w := range windows {
			if strings.Contains(strings.ToLower(w.Title), title) {
				handles = append(handles, w.Handle)
			}
		}
		return handles, nil
	}

	set := match.CompileSet(cfg.Source, cfg.Targets)
	var handles []model.Handle
	for _, w := range windows {
		if set.MatchesTarget(w.Title) {
			handles = append(handles, w.Handle)
		}
	}
	return handles, nil
}

// sendProbe injects a down/up pair for the named key.
func sendProbe(in platform.Inputter, h model.Handle, name string) error {
	code, ok := vk.FromName(name)
	if !ok {
		runes := []rune(name)
		if len(runes) != 1 {
			return fmt.Errorf("unknown key name %q", name)
		}
		code, ok = in.VKFromRune(runes[0])
		if !ok {
			return platform.ErrUnsupportedKey
		}
	}
	if err := in.InjectKey(h, h, platform.KeyDown, code); err != nil {
		return err
	}
	return in.InjectKey(h, h, platform.KeyUp, code)
}
