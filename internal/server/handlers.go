package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/winmirror/winmirror/internal/imaging"
	"github.com/winmirror/winmirror/internal/match"
	"github.com/winmirror/winmirror/internal/model"
)

// windowEntry is one row of the list_windows response.
type windowEntry struct {
	Handle  uint64   `yaml:"hwnd" json:"hwnd"`
	Title   string   `yaml:"title" json:"title"`
	PID     int      `yaml:"pid" json:"pid"`
	Focused bool     `yaml:"focused,omitempty" json:"focused,omitempty"`
	Matches []string `yaml:"matches,omitempty" json:"matches,omitempty"`
}

func (s *Server) handleListWindows(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	filter := strings.ToLower(stringParam(params, "filter", ""))
	matchedOnly := boolParam(params, "matched", false)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	windows, err := s.cache.List(s.provider.Directory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var entries []windowEntry
	for _, w := range windows {
		if filter != "" && !strings.Contains(strings.ToLower(w.Title), filter) {
			continue
		}
		matches := s.set.TargetPatterns(w.Title)
		if matchedOnly && len(matches) == 0 {
			continue
		}
		entries = append(entries, windowEntry{
			Handle:  uint64(w.Handle),
			Title:   w.Title,
			PID:     w.PID,
			Focused: w.Focused,
			Matches: matches,
		})
	}

	b, _ := yaml.Marshal(entries)
	return mcp.NewToolResultText(string(b)), nil
}

// resolveResult is the resolve_targets response.
type resolveResult struct {
	SourcePattern  string        `yaml:"source_pattern" json:"source_pattern"`
	Source         *windowEntry  `yaml:"source,omitempty" json:"source,omitempty"`
	TargetPatterns []string      `yaml:"target_patterns" json:"target_patterns"`
	Targets        []windowEntry `yaml:"targets" json:"targets"`
}

func (s *Server) handleResolveTargets(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	set := s.set
	source := stringParam(params, "source", "")
	targets := stringParam(params, "targets", "")
	if source != "" || targets != "" {
		if source == "" {
			source = set.Source.Pattern()
		}
		patterns := splitPatterns(targets)
		if len(patterns) == 0 {
			for _, m := range set.Targets {
				patterns = append(patterns, m.Pattern())
			}
		}
		set = match.CompileSet(source, patterns)
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	windows, err := s.cache.List(s.provider.Directory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := resolveResult{
		SourcePattern: set.Source.Pattern(),
		Targets:       []windowEntry{},
	}
	for _, m := range set.Targets {
		res.TargetPatterns = append(res.TargetPatterns, m.Pattern())
	}
	for _, w := range windows {
		if res.Source == nil && set.Source.Match(w.Title) {
			e := toEntry(w, nil)
			res.Source = &e
		}
		if matches := set.TargetPatterns(w.Title); len(matches) > 0 {
			res.Targets = append(res.Targets, toEntry(w, matches))
		}
	}

	b, _ := yaml.Marshal(res)
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleDiagnose(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	hwnd := intParam(params, "hwnd", 0)
	title := strings.ToLower(stringParam(params, "title", ""))

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if s.provider.Diagnoser == nil {
		return mcp.NewToolResultError("diagnostics not available on this platform"), nil
	}

	var handles []model.Handle
	if hwnd != 0 {
		handles = append(handles, model.Handle(hwnd))
	} else {
		windows, err := s.cache.List(s.provider.Directory)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		for _, w := range windows {
			if title != "" {
				if strings.Contains(strings.ToLower(w.Title), title) {
					handles = append(handles, w.Handle)
				}
			} else if s.set.MatchesTarget(w.Title) {
				handles = append(handles, w.Handle)
			}
		}
	}
	if len(handles) == 0 {
		return mcp.NewToolResultError("no windows to diagnose"), nil
	}

	var reports []model.DiagReport
	for _, h := range handles {
		report, err := s.provider.Diagnoser.Inspect(h)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inspect %#x: %v", uintptr(h), err)), nil
		}
		reports = append(reports, report)
	}

	b, _ := yaml.Marshal(reports)
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleSnapshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	hwnd := intParam(params, "hwnd", 0)
	title := strings.ToLower(stringParam(params, "title", ""))
	scale := floatParam(params, "scale", 0.5)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if s.provider.Screenshotter == nil {
		return mcp.NewToolResultError("snapshot not supported on this platform"), nil
	}

	handle := model.Handle(hwnd)
	if handle == 0 {
		if title == "" {
			return mcp.NewToolResultError("hwnd or title is required"), nil
		}
		windows, err := s.cache.List(s.provider.Directory)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		for _, w := range windows {
			if strings.Contains(strings.ToLower(w.Title), title) {
				handle = w.Handle
				break
			}
		}
		if handle == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("no window title contains %q", title)), nil
		}
	}

	img, err := s.provider.Screenshotter.CaptureWindow(handle)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := imaging.EncodePNG(imaging.Scale(img, scale))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(data),
				MIMEType: "image/png",
			},
		},
	}, nil
}

func toEntry(w model.Window, matches []string) windowEntry {
	return windowEntry{
		Handle:  uint64(w.Handle),
		Title:   w.Title,
		PID:     w.PID,
		Focused: w.Focused,
		Matches: matches,
	}
}

// splitPatterns parses a comma-separated pattern list, dropping empties.
func splitPatterns(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
