package tools

import (
	"context"

	"github.com/HendryAvila/agentscan/internal/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
)

// GenerateUITool handles the generate_agent_ui MCP tool: a no-argument
// scan of the project root that writes both agents.json and the graph.
type GenerateUITool struct {
	runner *pipeline.Runner
}

// NewGenerateUITool creates a GenerateUITool with its dependencies.
func NewGenerateUITool(runner *pipeline.Runner) *GenerateUITool {
	return &GenerateUITool{runner: runner}
}

// Definition returns the MCP tool definition for registration.
func (t *GenerateUITool) Definition() mcp.Tool {
	return mcp.NewTool("generate_agent_ui",
		mcp.WithDescription("Analyze the project root and generate the agent catalog and graph."),
	)
}

// Handle processes the generate_agent_ui tool call.
func (t *GenerateUITool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := findProjectRoot()
	if err != nil {
		return nil, err
	}

	res, err := t.runner.Run(ctx, pipeline.Request{Root: root, RenderGraph: true})
	if err != nil {
		return runError(err)
	}
	if res.Empty() {
		return mcp.NewToolResultText(noAgentsMessage(res.Root)), nil
	}
	return mcp.NewToolResultText("Agent UI generated successfully\n\n" + formatGraph(res)), nil
}
