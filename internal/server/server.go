// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on them.
// No business logic lives here, only wiring.
package server

import (
	"io"
	"log/slog"

	"github.com/HendryAvila/agentscan/internal/config"
	"github.com/HendryAvila/agentscan/internal/history"
	"github.com/HendryAvila/agentscan/internal/pipeline"
	"github.com/HendryAvila/agentscan/internal/prompts"
	"github.com/HendryAvila/agentscan/internal/resources"
	"github.com/HendryAvila/agentscan/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Options configures New.
type Options struct {
	// Logger receives scan warnings and lifecycle messages. It must not
	// write to stdout, which carries the stdio transport.
	Logger *slog.Logger
	// History configures the scan history database.
	History history.Config
	// DisableHistory skips opening the history database.
	DisableHistory bool
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
//
// The returned cleanup function closes the history database and must be
// called on shutdown (typically via defer). It is always non-nil and safe
// to call even if history init failed.
func New(opts Options) (*server.MCPServer, func(), error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store := config.NewFileStore()

	s := server.NewMCPServer(
		"agentscan",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- History (optional) ---
	//
	// History is an independent subsystem: if it fails to open, scanning
	// keeps working and scan_history is simply not registered.

	cleanup := noop
	var recorder pipeline.Recorder
	var histStore *history.Store
	if !opts.DisableHistory {
		hs, err := history.New(opts.History)
		if err != nil {
			logger.Warn("history subsystem disabled", "error", err)
		} else {
			histStore = hs
			recorder = hs
			cleanup = func() {
				if err := hs.Close(); err != nil {
					logger.Warn("history store close", "error", err)
				}
			}
		}
	}

	runner := pipeline.NewRunner(store, recorder, logger)

	// --- Register tools ---

	addTool := tools.NewAddTool()
	s.AddTool(addTool.Definition(), addTool.Handle)

	echoTool := tools.NewEchoPromptTool()
	s.AddTool(echoTool.Definition(), echoTool.Handle)

	scanTool := tools.NewScanTool(runner)
	s.AddTool(scanTool.Definition(), scanTool.Handle)

	graphTool := tools.NewRenderGraphTool(runner)
	s.AddTool(graphTool.Definition(), graphTool.Handle)

	uiTool := tools.NewGenerateUITool(runner)
	s.AddTool(uiTool.Definition(), uiTool.Handle)

	initTool := tools.NewInitTool(store)
	s.AddTool(initTool.Definition(), initTool.Handle)

	if histStore != nil {
		historyTool := tools.NewHistoryTool(histStore)
		s.AddTool(historyTool.Definition(), historyTool.Handle)
	}

	// --- Register prompts ---

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	changesPrompt := prompts.NewChangesPrompt()
	s.AddPrompt(changesPrompt.Definition(), changesPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResourceTemplate(resourceHandler.GreetingTemplate(), resourceHandler.HandleGreeting)
	s.AddResource(resourceHandler.CatalogResource(), resourceHandler.HandleCatalog)
	s.AddResource(resourceHandler.ConfigResource(), resourceHandler.HandleConfig)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used when history is disabled.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the scanner.
func serverInstructions() string {
	return `You have access to agentscan, a repository agent scanner.

## What it finds

- Python classes and Go structs/interfaces whose name contains "agent"
- Markdown agent definitions with YAML frontmatter (e.g. .claude/agents/*.md)
- Any other source file whose name contains "agent" (best-effort text scan)

## Tools

- scan_agents: scan a directory and write <output>/agents.json (default output: pype/)
- render_agent_graph: scan, then draw agent_graph.png with dependency and connection edges
- generate_agent_ui: scan the project root and write both outputs
- scan_history: previous scans, optionally filtered by agent name
- init_config: create .agentscan.yaml with defaults
- add, echo_prompt: small utilities

## Resources

- agentscan://catalog: the last written agents.json
- agentscan://config: effective settings
- greeting://{name}: a greeting

An empty result ("No agents found") is normal for repositories without agents; it is not an error.`
}
