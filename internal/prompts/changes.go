package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ChangesPrompt handles the agent-changes MCP prompt.
// It instructs the AI to compare the latest scan with earlier ones.
type ChangesPrompt struct{}

// NewChangesPrompt creates a ChangesPrompt.
func NewChangesPrompt() *ChangesPrompt {
	return &ChangesPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ChangesPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("agent-changes",
		mcp.WithPromptDescription(
			"Show how the set of agents changed across recent scans.",
		),
	)
}

// Handle processes the agent-changes prompt request.
func (p *ChangesPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Agent changes",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `scan_agents` and then `scan_history` with limit=5.\n\n" +
						"Then:\n" +
						"1. List agents that appeared or disappeared between runs\n" +
						"2. Note any jump in skipped files\n" +
						"3. Suggest which new agents deserve a closer look",
				),
			},
		},
	}, nil
}
