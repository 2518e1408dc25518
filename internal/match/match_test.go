package match

import (
	"strings"
	"testing"

	"github.com/winmirror/winmirror/internal/model"
)

type fakeLister struct {
	windows []model.Window
	err     error
}

func (f *fakeLister) ListWindows() ([]model.Window, error) {
	return f.windows, f.err
}

func TestMatcher_CaseInsensitive(t *testing.T) {
	tests := []struct {
		pattern string
		title   string
		want    bool
	}{
		{"rg2", "RG2 - build", true},
		{"rg2", "rg2 - build", true},
		{"RG2", "rg2 - build", true},
		{"rg2", "rg3-dev", false},
		{`rg\d`, "RG7 console", true},
		{`^notepad`, "Notepad - file.txt", true},
		{`^notepad`, "My Notepad", false},
	}
	for _, tt := range tests {
		m, ok := Compile(tt.pattern)
		if !ok {
			t.Fatalf("pattern %q should compile", tt.pattern)
		}
		if got := m.Match(tt.title); got != tt.want {
			t.Errorf("Compile(%q).Match(%q) = %v, want %v", tt.pattern, tt.title, got, tt.want)
		}
	}
}

func TestMatcher_CaseFoldingIsUniform(t *testing.T) {
	// A pattern must match a title identically to its upper and lower forms.
	m, _ := Compile("build")
	titles := []string{"Build Output", "RG2 - build", "BUILDER"}
	for _, title := range titles {
		base := m.Match(title)
		if m.Match(strings.ToUpper(title)) != base || m.Match(strings.ToLower(title)) != base {
			t.Errorf("matching %q is not case-uniform", title)
		}
	}
}

func TestCompile_InvalidFallsBackToSubstring(t *testing.T) {
	m, ok := Compile("rg1[")
	if ok {
		t.Fatal("invalid regex should report failure")
	}
	// Substring fallback still matches literally, ignoring case.
	if !m.Match("my RG1[ window") {
		t.Error("fallback should match the literal pattern text")
	}
	if m.Match("unrelated") {
		t.Error("fallback should not match unrelated titles")
	}
}

func TestCompileSet_DropsInvalidTargets(t *testing.T) {
	s := CompileSet("rg1", []string{"rg2", "rg3[", "rg4"})
	if len(s.Targets) != 2 {
		t.Fatalf("expected 2 compiled targets, got %d", len(s.Targets))
	}
	if !s.MatchesTarget("RG2") || !s.MatchesTarget("rg4 shell") {
		t.Error("valid patterns should survive an invalid sibling")
	}
}

func TestResolveTargets_ScenarioMixedCase(t *testing.T) {
	dir := &fakeLister{windows: []model.Window{
		{Handle: 1, Title: "RG2 - build"},
		{Handle: 2, Title: "rg3-dev"},
		{Handle: 3, Title: "unrelated editor"},
	}}
	s := CompileSet("rg1", []string{"rg2", "rg3"})

	targets, err := s.ResolveTargets(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected both case-variant windows, got %d", len(targets))
	}
	if targets[0].Handle != 1 || targets[1].Handle != 2 {
		t.Errorf("unexpected handles: %+v", targets)
	}
}

func TestResolveTargets_IdempotentUnderStableState(t *testing.T) {
	dir := &fakeLister{windows: []model.Window{
		{Handle: 10, Title: "rg2"},
		{Handle: 11, Title: "rg3"},
	}}
	s := CompileSet("rg1", []string{"rg2", "rg3"})

	first, err := s.ResolveTargets(dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.ResolveTargets(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Handle != second[i].Handle {
			t.Errorf("handle %d differs between calls", i)
		}
	}
}

func TestResolveTargets_EmptySetIsNotAnError(t *testing.T) {
	dir := &fakeLister{windows: []model.Window{{Handle: 1, Title: "nothing here"}}}
	s := CompileSet("rg1", []string{"rg2"})

	targets, err := s.ResolveTargets(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(targets) != 0 {
		t.Errorf("expected no targets, got %d", len(targets))
	}
}

func TestResolveSource(t *testing.T) {
	dir := &fakeLister{windows: []model.Window{
		{Handle: 1, Title: "rg3-dev"},
		{Handle: 2, Title: "RG1 main"},
	}}
	s := CompileSet("rg1", []string{"rg2"})

	w, found, err := s.ResolveSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !found || w.Handle != 2 {
		t.Errorf("expected handle 2, got found=%v w=%+v", found, w)
	}
}

func TestTargetPatterns_MatchMarks(t *testing.T) {
	s := CompileSet("rg1", []string{"rg2", "build"})
	hits := s.TargetPatterns("RG2 - build")
	if len(hits) != 2 {
		t.Fatalf("expected both patterns to hit, got %v", hits)
	}
	if hits := s.TargetPatterns("plain"); len(hits) != 0 {
		t.Errorf("expected no hits, got %v", hits)
	}
}
