package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/winmirror/winmirror/internal/match"
	"github.com/winmirror/winmirror/internal/output"
	"github.com/winmirror/winmirror/internal/platform"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List visible windows",
	Long:  "List visible titled top-level windows with handle, title, and PID, marking which ones match the target patterns.",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("matched", false, "Only show windows matching a target pattern")
	listCmd.Flags().String("filter", "", "Only show windows whose title contains this substring")
}

// listEntry is the YAML output for one window.
type listEntry struct {
	Handle  uint64   `yaml:"hwnd" json:"hwnd"`
	Title   string   `yaml:"title" json:"title"`
	PID     int      `yaml:"pid" json:"pid"`
	Focused bool     `yaml:"focused,omitempty" json:"focused,omitempty"`
	Matches []string `yaml:"matches,omitempty" json:"matches,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}

	matchedOnly, _ := cmd.Flags().GetBool("matched")
	filter, _ := cmd.Flags().GetString("filter")
	filter = strings.ToLower(filter)

	set := match.CompileSet(cfg.Source, cfg.Targets)

	windows, err := provider.Directory.ListWindows()
	if err != nil {
		return err
	}

	entries := []listEntry{}
	for _, w := range windows {
		if filter != "" && !strings.Contains(strings.ToLower(w.Title), filter) {
			continue
		}
		matches := set.TargetPatterns(w.Title)
		if matchedOnly && len(matches) == 0 {
			continue
		}
		entries = append(entries, listEntry{
			Handle:  uint64(w.Handle),
			Title:   w.Title,
			PID:     w.PID,
			Focused: w.Focused,
			Matches: matches,
		})
	}

	return output.Print(entries)
}
