package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/agentscan/internal/config"
	"github.com/HendryAvila/agentscan/internal/pipeline"
	"github.com/HendryAvila/agentscan/internal/scanner"
	"github.com/mark3labs/mcp-go/mcp"
)

// ScanTool handles the scan_agents MCP tool.
// It walks a directory, extracts agent records and writes agents.json.
type ScanTool struct {
	runner *pipeline.Runner
}

// NewScanTool creates a ScanTool with its dependencies.
func NewScanTool(runner *pipeline.Runner) *ScanTool {
	return &ScanTool{runner: runner}
}

// Definition returns the MCP tool definition for registration.
func (t *ScanTool) Definition() mcp.Tool {
	return mcp.NewTool("scan_agents",
		mcp.WithDescription(
			"Scan a repository for agent definitions. "+
				"Finds agent classes and structs (Python, Go), agent definition files "+
				"(Markdown with frontmatter) and files named after agents, then writes "+
				"the records to <output_dir>/agents.json and returns them.",
		),
		mcp.WithString("root",
			mcp.Description("Directory to scan. Defaults to the project root (nearest .agentscan.yaml) or the working directory."),
		),
		mcp.WithString("output_dir",
			mcp.Description("Output directory, absolute or relative to root. Defaults to the configured output_dir (pype)."),
		),
		mcp.WithBoolean("write_json",
			mcp.Description("Write agents.json. Defaults to true."),
		),
	)
}

// Handle processes the scan_agents tool call.
func (t *ScanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := resolveRoot(req.GetString("root", ""))
	if err != nil {
		return nil, err
	}

	res, err := t.runner.Run(ctx, pipeline.Request{
		Root:      root,
		OutputDir: req.GetString("output_dir", ""),
		WriteJSON: req.GetBool("write_json", true),
	})
	if err != nil {
		return runError(err)
	}

	if res.Empty() {
		return mcp.NewToolResultText(noAgentsMessage(res.Root)), nil
	}

	data, err := res.Catalog.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("# Agent Scan\n\n")
	writeRunSummary(&sb, res)
	sb.WriteString("\n## Agents\n\n")
	for _, rec := range res.Catalog.Records() {
		fmt.Fprintf(&sb, "- **%s** (%s)", rec.Name, rec.SourcePath)
		if rec.Description != "" {
			fmt.Fprintf(&sb, ": %s", firstLine(rec.Description))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n## agents.json\n\n```json\n")
	sb.Write(data)
	sb.WriteString("```\n")

	return mcp.NewToolResultText(sb.String()), nil
}

// runError maps pipeline errors the caller can fix to tool errors.
func runError(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, scanner.ErrRootNotExist),
		errors.Is(err, scanner.ErrRootNotDir),
		errors.Is(err, scanner.ErrInvalidPattern),
		errors.Is(err, config.ErrInvalid),
		errors.Is(err, context.Canceled):
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
