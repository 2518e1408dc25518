// Package match compiles window-title patterns and resolves the current
// source and target windows against a live window listing.
package match

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/winmirror/winmirror/internal/logging"
	"github.com/winmirror/winmirror/internal/model"
)

// Matcher matches window titles case-insensitively, either by compiled
// regular expression or by plain substring containment. Immutable once
// compiled.
type Matcher struct {
	pattern string
	re      *regexp.Regexp // nil means substring fallback
}

// Compile builds a case-insensitive matcher from pattern. On invalid
// regex syntax it returns a matcher that falls back to plain substring
// containment, plus false.
func Compile(pattern string) (Matcher, bool) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return Matcher{pattern: pattern}, false
	}
	return Matcher{pattern: pattern, re: re}, true
}

// Pattern returns the original pattern text.
func (m Matcher) Pattern() string { return m.pattern }

// Match reports whether title matches, ignoring case.
func (m Matcher) Match(title string) bool {
	if m.re != nil {
		return m.re.MatchString(title)
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(m.pattern))
}

// Set holds the compiled source matcher and target matchers for a run.
type Set struct {
	Source  Matcher
	Targets []Matcher

	logger *slog.Logger
}

// CompileSet compiles the source and target patterns. An invalid target
// pattern is reported and dropped; an invalid source pattern is reported
// and degrades to substring containment. Pattern problems never abort
// startup.
func CompileSet(source string, targets []string) *Set {
	s := &Set{logger: logging.Component("match")}

	var ok bool
	s.Source, ok = Compile(source)
	if !ok {
		s.logger.Warn("invalid source pattern, falling back to substring match", "pattern", source)
	}

	for _, p := range targets {
		m, ok := Compile(p)
		if !ok {
			s.logger.Warn("invalid target pattern, dropping", "pattern", p)
			continue
		}
		s.Targets = append(s.Targets, m)
	}
	return s
}

// MatchesTarget reports whether title matches any target pattern.
func (s *Set) MatchesTarget(title string) bool {
	for _, m := range s.Targets {
		if m.Match(title) {
			return true
		}
	}
	return false
}

// TargetPatterns returns the pattern text of every target matcher whose
// pattern matches title. Used by the list command's match marks.
func (s *Set) TargetPatterns(title string) []string {
	var hits []string
	for _, m := range s.Targets {
		if m.Match(title) {
			hits = append(hits, m.Pattern())
		}
	}
	return hits
}

// Lister enumerates visible top-level windows. Satisfied by the platform
// directory; faked in tests.
type Lister interface {
	ListWindows() ([]model.Window, error)
}

// ResolveTargets re-enumerates windows and returns every visible window
// whose title matches a target pattern. Handles are never cached: call
// this immediately before each dispatch so targets that appeared or
// disappeared are tolerated.
func (s *Set) ResolveTargets(dir Lister) ([]model.Window, error) {
	windows, err := dir.ListWindows()
	if err != nil {
		return nil, err
	}
	var targets []model.Window
	for _, w := range windows {
		if s.MatchesTarget(w.Title) {
			targets = append(targets, w)
		}
	}
	return targets, nil
}

// ResolveSource returns the first visible window matching the source
// pattern, or false when none matches.
func (s *Set) ResolveSource(dir Lister) (model.Window, bool, error) {
	windows, err := dir.ListWindows()
	if err != nil {
		return model.Window{}, false, err
	}
	for _, w := range windows {
		if s.Source.Match(w.Title) {
			return w, true, nil
		}
	}
	return model.Window{}, false, nil
}
