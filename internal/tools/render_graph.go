package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/agentscan/internal/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
)

// RenderGraphTool handles the render_agent_graph MCP tool.
// It scans, writes agents.json and draws agent_graph.png.
type RenderGraphTool struct {
	runner *pipeline.Runner
}

// NewRenderGraphTool creates a RenderGraphTool with its dependencies.
func NewRenderGraphTool(runner *pipeline.Runner) *RenderGraphTool {
	return &RenderGraphTool{runner: runner}
}

// Definition returns the MCP tool definition for registration.
func (t *RenderGraphTool) Definition() mcp.Tool {
	return mcp.NewTool("render_agent_graph",
		mcp.WithDescription(
			"Scan a repository and draw its agent graph. "+
				"Nodes are agents; edges point from an agent to the agents it imports "+
				"(dependency) or mentions (connection). Writes agents.json and "+
				"agent_graph.png into the output directory.",
		),
		mcp.WithString("root",
			mcp.Description("Directory to scan. Defaults to the project root."),
		),
		mcp.WithString("output_dir",
			mcp.Description("Output directory, absolute or relative to root. Defaults to the configured output_dir (pype)."),
		),
	)
}

// Handle processes the render_agent_graph tool call.
func (t *RenderGraphTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := resolveRoot(req.GetString("root", ""))
	if err != nil {
		return nil, err
	}

	res, err := t.runner.Run(ctx, pipeline.Request{
		Root:        root,
		OutputDir:   req.GetString("output_dir", ""),
		RenderGraph: true,
	})
	if err != nil {
		return runError(err)
	}

	if res.GraphPath == "" {
		return mcp.NewToolResultText(noAgentsMessage(res.Root)), nil
	}

	return mcp.NewToolResultText(formatGraph(res)), nil
}

func formatGraph(res *pipeline.Result) string {
	var sb strings.Builder
	sb.WriteString("# Agent Graph\n\n")
	writeRunSummary(&sb, res)

	edges := res.Graph.Edges()
	fmt.Fprintf(&sb, "\n## Nodes (%d)\n\n", res.Graph.Len())
	for _, name := range res.Graph.Nodes() {
		fmt.Fprintf(&sb, "- %s\n", name)
	}

	fmt.Fprintf(&sb, "\n## Edges (%d)\n\n", len(edges))
	if len(edges) == 0 {
		sb.WriteString("_No edges between known agents._\n")
	}
	for _, e := range edges {
		fmt.Fprintf(&sb, "- %s → %s (%s)\n", e.From, e.To, e.Kind)
	}
	return sb.String()
}
