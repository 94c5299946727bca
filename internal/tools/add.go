package tools

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// AddTool handles the add MCP tool.
type AddTool struct{}

// NewAddTool creates an AddTool.
func NewAddTool() *AddTool {
	return &AddTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *AddTool) Definition() mcp.Tool {
	return mcp.NewTool("add",
		mcp.WithDescription("Add two numbers."),
		mcp.WithNumber("a",
			mcp.Description("First addend"),
			mcp.Required(),
		),
		mcp.WithNumber("b",
			mcp.Description("Second addend"),
			mcp.Required(),
		),
	)
}

// Handle processes the add tool call.
func (t *AddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := req.RequireFloat("a")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := req.RequireFloat("b")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strconv.FormatFloat(a+b, 'f', -1, 64)), nil
}
