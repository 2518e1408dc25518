package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/winmirror/winmirror/internal/imaging"
	"github.com/winmirror/winmirror/internal/logging"
	"github.com/winmirror/winmirror/internal/match"
	"github.com/winmirror/winmirror/internal/model"
	"github.com/winmirror/winmirror/internal/output"
	"github.com/winmirror/winmirror/internal/platform"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture target windows to PNG files",
	Long: `Capture the client area of each resolved target window (or one chosen
window) to a PNG file, for checking visually that mirrored input reached
the targets.`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().Uint64("hwnd", 0, "Capture a single window by handle")
	snapshotCmd.Flags().String("title", "", "Capture windows whose title contains this substring")
	snapshotCmd.Flags().String("out", ".", "Output directory")
	snapshotCmd.Flags().Float64("scale", 0.5, "Scale factor for the saved images")
}

// snapshotEntry reports one written file.
type snapshotEntry struct {
	Handle uint64 `yaml:"hwnd" json:"hwnd"`
	Title  string `yaml:"title" json:"title"`
	File   string `yaml:"file" json:"file"`
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if provider.Screenshotter == nil {
		return fmt.Errorf("snapshot not supported on this platform")
	}

	windows, err := snapshotWindows(cmd, provider.Directory)
	if err != nil {
		return err
	}
	if len(windows) == 0 {
		return fmt.Errorf("no windows to capture")
	}

	outDir, _ := cmd.Flags().GetString("out")
	scale, _ := cmd.Flags().GetFloat64("scale")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	logger := logging.Component("snapshot")
	entries := []snapshotEntry{}
	for _, w := range windows {
		img, err := provider.Screenshotter.CaptureWindow(w.Handle)
		if err != nil {
			logger.Warn("capture failed",
				logging.KeyHandle, uintptr(w.Handle),
				logging.KeyTitle, w.Title,
				logging.KeyError, err)
			continue
		}
		data, err := imaging.EncodePNG(imaging.Scale(img, scale))
		if err != nil {
			return err
		}
		file := filepath.Join(outDir, fmt.Sprintf("winmirror-%x.png", uintptr(w.Handle)))
		if err := os.WriteFile(file, data, 0o644); err != nil {
			return err
		}
		entries = append(entries, snapshotEntry{
			Handle: uint64(w.Handle),
			Title:  w.Title,
			File:   file,
		})
	}
	if len(entries) == 0 {
		return fmt.Errorf("all captures failed")
	}

	return output.Print(entries)
}

// snapshotWindows picks the windows to capture: an explicit handle, a
// title substring, or every current target.
func snapshotWindows(cmd *cobra.Command, dir platform.Directory) ([]model.Window, error) {
	windows, err := dir.ListWindows()
	if err != nil {
		return nil, err
	}

	if hwnd, _ := cmd.Flags().GetUint64("hwnd"); hwnd != 0 {
		for _, w := range windows {
			if w.Handle == model.Handle(hwnd) {
				return []model.Window{w}, nil
			}
		}
		return []model.Window{{Handle: model.Handle(hwnd)}}, nil
	}

	title, _ := cmd.Flags().GetString("title")
	title = strings.ToLower(title)
	if title != "" {
		var out []model.Window
		for _, w := range windows {
			if strings.Contains(strings.ToLower(w.Title), title) {
				out = append(out, w)
			}
		}
		return out, nil
	}

	set := match.CompileSet(cfg.Source, cfg.Targets)
	var out []model.Window
	for _, w := range windows {
		if set.MatchesTarget(w.Title) {
			out = append(out, w)
		}
	}
	return out, nil
}
