// Package server exposes the window directory, target resolution, and
// input diagnostics over the Model Context Protocol, so agents can
// inspect a mirroring setup without parsing CLI output.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/winmirror/winmirror/internal/logging"
	"github.com/winmirror/winmirror/internal/match"
	"github.com/winmirror/winmirror/internal/platform"
	"github.com/winmirror/winmirror/internal/version"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration

	// Source and Targets are the default match patterns; tools accept
	// per-call overrides.
	Source  string
	Targets []string
}

// Server wraps the MCP server with the platform provider and the
// window-list cache.
type Server struct {
	provider   *platform.Provider
	set        *match.Set
	cache      *windowCache
	providerMu sync.Mutex
	mcp        *mcpserver.MCPServer
}

// New creates and configures an MCP server with all winmirror tools.
func New(cfg Config) (*Server, error) {
	provider, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}
	return newWithProvider(cfg, provider), nil
}

func newWithProvider(cfg Config, provider *platform.Provider) *Server {
	s := &Server{
		provider: provider,
		set:      match.CompileSet(cfg.Source, cfg.Targets),
		cache:    newWindowCache(cfg.CacheTTL),
	}

	s.mcp = mcpserver.NewMCPServer(
		"winmirror",
		version.Version,
	)

	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	logging.Component("server").Info("starting MCP server",
		"transport", cfg.Transport,
		"source", cfg.Source,
		"targets", cfg.Targets)

	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	// list_windows
	s.mcp.AddTool(
		mcp.NewTool("list_windows",
			mcp.WithDescription("List visible titled top-level windows, annotated with which target patterns they match"),
			mcp.WithString("filter", mcp.Description("Only include windows whose title contains this substring (case-insensitive)")),
			mcp.WithBoolean("matched", mcp.Description("Only include windows matching a target pattern")),
		),
		s.handleListWindows,
	)

	// resolve_targets
	s.mcp.AddTool(
		mcp.NewTool("resolve_targets",
			mcp.WithDescription("Resolve the source window and the current target set from the live window list"),
			mcp.WithString("source", mcp.Description("Override the source title pattern")),
			mcp.WithString("targets", mcp.Description("Override the target patterns (comma-separated)")),
		),
		s.handleResolveTargets,
	)

	// diagnose
	s.mcp.AddTool(
		mcp.NewTool("diagnose",
			mcp.WithDescription("Inspect why a window might not receive mirrored input: owning thread and process, desktop, thread-input attach, fullscreen heuristic"),
			mcp.WithNumber("hwnd", mcp.Description("Window handle to inspect")),
			mcp.WithString("title", mcp.Description("Inspect all windows whose title contains this substring (default: current targets)")),
		),
		s.handleDiagnose,
	)

	// snapshot
	s.mcp.AddTool(
		mcp.NewTool("snapshot",
			mcp.WithDescription("Capture a window's client area as a PNG image"),
			mcp.WithNumber("hwnd", mcp.Description("Window handle to capture")),
			mcp.WithString("title", mcp.Description("Capture the first window whose title contains this substring")),
			mcp.WithNumber("scale", mcp.Description("Scale factor 0.1-1.0 (default: 0.5)")),
		),
		s.handleSnapshot,
	)
}
