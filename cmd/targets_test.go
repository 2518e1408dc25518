package cmd

import (
	"testing"

	"github.com/winmirror/winmirror/internal/geom"
	"github.com/winmirror/winmirror/internal/match"
	"github.com/winmirror/winmirror/internal/model"
)

// stubDirectory serves a fixed window list.
type stubDirectory struct {
	windows []model.Window
}

func (d *stubDirectory) ListWindows() ([]model.Window, error)         { return d.windows, nil }
func (d *stubDirectory) Foreground() (model.Window, bool)             { return model.Window{}, false }
func (d *stubDirectory) WindowRect(model.Handle) (geom.Rect, error)   { return geom.Rect{}, nil }
func (d *stubDirectory) ClientSize(model.Handle) (geom.Size, error)   { return geom.Size{}, nil }

func TestBuildTargetSummary(t *testing.T) {
	dir := &stubDirectory{windows: []model.Window{
		{Handle: 1, Title: "RG1 main", PID: 100},
		{Handle: 2, Title: "RG2 - build", PID: 200},
		{Handle: 3, Title: "rg3-dev", PID: 300},
		{Handle: 4, Title: "notepad", PID: 400},
	}}
	set := match.CompileSet("rg1", []string{"rg2", "rg3"})

	summary, err := buildTargetSummary(set, dir)
	if err != nil {
		t.Fatalf("buildTargetSummary: %v", err)
	}

	if summary.Source == nil || summary.Source.Handle != 1 {
		t.Errorf("source: got %+v, want handle 1", summary.Source)
	}
	if len(summary.Targets) != 2 {
		t.Fatalf("targets: got %d, want 2", len(summary.Targets))
	}
	if summary.Targets[0].Handle != 2 || summary.Targets[1].Handle != 3 {
		t.Errorf("target handles: got %+v", summary.Targets)
	}
	if summary.Note != "" {
		t.Errorf("unexpected note: %q", summary.Note)
	}
}

func TestBuildTargetSummary_NoMatches(t *testing.T) {
	dir := &stubDirectory{windows: []model.Window{
		{Handle: 4, Title: "notepad", PID: 400},
	}}
	set := match.CompileSet("rg1", []string{"rg2"})

	summary, err := buildTargetSummary(set, dir)
	if err != nil {
		t.Fatalf("buildTargetSummary: %v", err)
	}
	if summary.Source != nil {
		t.Error("no window should match the source")
	}
	if len(summary.Targets) != 0 {
		t.Errorf("targets: got %d, want 0", len(summary.Targets))
	}
	if summary.Note == "" {
		t.Error("empty target set should carry an explanatory note")
	}
}
