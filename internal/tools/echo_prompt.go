package tools

import (
	"context"
	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
)

//go:embed echo_prompt.txt
var echoPromptText string

// EchoPromptTool handles the echo_prompt MCP tool. It returns a fixed
// block of text.
type EchoPromptTool struct{}

// NewEchoPromptTool creates an EchoPromptTool.
func NewEchoPromptTool() *EchoPromptTool {
	return &EchoPromptTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *EchoPromptTool) Definition() mcp.Tool {
	return mcp.NewTool("echo_prompt",
		mcp.WithDescription("Return the built-in agent review prompt text."),
	)
}

// Handle processes the echo_prompt tool call.
func (t *EchoPromptTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(echoPromptText), nil
}
