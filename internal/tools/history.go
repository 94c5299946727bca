package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/agentscan/internal/history"
	"github.com/mark3labs/mcp-go/mcp"
)

// HistoryReader is the part of the history store the tool needs.
type HistoryReader interface {
	Recent(limit int) ([]history.Run, error)
	RunsWithAgent(name string, limit int) ([]history.Run, error)
}

// HistoryTool handles the scan_history MCP tool.
type HistoryTool struct {
	store HistoryReader
}

// NewHistoryTool creates a HistoryTool with its dependencies.
func NewHistoryTool(store HistoryReader) *HistoryTool {
	return &HistoryTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("scan_history",
		mcp.WithDescription(
			"List previous agent scans, newest first. "+
				"Pass 'agent' to see only the scans in which that agent was found.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of runs to return (default: 20)"),
		),
		mcp.WithString("agent",
			mcp.Description("Only runs whose results contained this agent name"),
		),
	)
}

// Handle processes the scan_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(req.GetFloat("limit", float64(history.DefaultLimit)))
	agent := strings.TrimSpace(req.GetString("agent", ""))

	var (
		runs []history.Run
		err  error
	)
	if agent != "" {
		runs, err = t.store.RunsWithAgent(agent, limit)
	} else {
		runs, err = t.store.Recent(limit)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading history: %v", err)), nil
	}

	if len(runs) == 0 {
		if agent != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No recorded scan contains agent %q.", agent)), nil
		}
		return mcp.NewToolResultText("No scans recorded yet."), nil
	}

	var sb strings.Builder
	if agent != "" {
		fmt.Fprintf(&sb, "## Scans containing %s (%d)\n\n", agent, len(runs))
	} else {
		fmt.Fprintf(&sb, "## Recent scans (%d)\n\n", len(runs))
	}
	for _, r := range runs {
		fmt.Fprintf(&sb, "### %s\n", r.StartedAt)
		fmt.Fprintf(&sb, "- **Root**: %s\n", r.Root)
		fmt.Fprintf(&sb, "- **Agents**: %d", r.Records)
		if len(r.Agents) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(r.Agents, ", "))
		}
		sb.WriteString("\n")
		if r.Failed > 0 {
			fmt.Fprintf(&sb, "- **Skipped files**: %d\n", r.Failed)
		}
		fmt.Fprintf(&sb, "- **Duration**: %s\n", r.Duration())
		fmt.Fprintf(&sb, "- **ID**: %s\n\n", r.ID)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
