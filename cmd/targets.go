package cmd

import (
	"github.com/spf13/cobra"

	"github.com/winmirror/winmirror/internal/match"
	"github.com/winmirror/winmirror/internal/model"
	"github.com/winmirror/winmirror/internal/output"
	"github.com/winmirror/winmirror/internal/platform"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Show the resolved source and target windows",
	Long:  "Resolve the source and target patterns against the live window list and print what matched.",
	RunE:  runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

// targetSummary is the resolution report for one pattern set.
type targetSummary struct {
	SourcePattern  string      `yaml:"source_pattern" json:"source_pattern"`
	Source         *listEntry  `yaml:"source,omitempty" json:"source,omitempty"`
	TargetPatterns []string    `yaml:"target_patterns" json:"target_patterns"`
	Targets        []listEntry `yaml:"targets" json:"targets"`
	Note           string      `yaml:"note,omitempty" json:"note,omitempty"`
}

func runTargets(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}

	set := match.CompileSet(cfg.Source, cfg.Targets)
	summary, err := buildTargetSummary(set, provider.Directory)
	if err != nil {
		return err
	}
	return output.Print(summary)
}

func buildTargetSummary(set *match.Set, dir platform.Directory) (targetSummary, error) {
	summary := targetSummary{
		SourcePattern: set.Source.Pattern(),
		Targets:       []listEntry{},
	}
	for _, m := range set.Targets {
		summary.TargetPatterns = append(summary.TargetPatterns, m.Pattern())
	}

	windows, err := dir.ListWindows()
	if err != nil {
		return summary, err
	}

	for _, w := range windows {
		if summary.Source == nil && set.Source.Match(w.Title) {
			e := toListEntry(w, nil)
			summary.Source = &e
		}
		if matches := set.TargetPatterns(w.Title); len(matches) > 0 {
			summary.Targets = append(summary.Targets, toListEntry(w, matches))
		}
	}

	if len(summary.Targets) == 0 {
		summary.Note = "no windows currently match the target patterns"
	}
	return summary, nil
}

func toListEntry(w model.Window, matches []string) listEntry {
	return listEntry{
		Handle:  uint64(w.Handle),
		Title:   w.Title,
		PID:     w.PID,
		Focused: w.Focused,
		Matches: matches,
	}
}
