// Package prompts implements MCP prompt handlers for the agent scanner.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to call a sequence of tools. Unlike tools (which the
// AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the agent-review MCP prompt.
// It asks the AI to scan a repository, draw the graph and summarize it.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("agent-review",
		mcp.WithPromptDescription(
			"Review the agents in a repository: scan them, draw their graph "+
				"and get a short architectural summary.",
		),
		mcp.WithArgument("root",
			mcp.ArgumentDescription("Directory to review. Default: the current project"),
		),
		mcp.WithArgument("focus",
			mcp.ArgumentDescription("Optional agent name to center the review on"),
		),
	)
}

// Handle processes the agent-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	var root, focus string
	if args := req.Params.Arguments; args != nil {
		root = strings.TrimSpace(args["root"])
		focus = strings.TrimSpace(args["focus"])
	}

	target := "this project"
	rootArg := ""
	if root != "" {
		target = fmt.Sprintf("`%s`", root)
		rootArg = fmt.Sprintf(" with root='%s'", root)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Please review the agents in %s.\n\n", target)
	fmt.Fprintf(&sb, "1. Run `scan_agents`%s and read the returned records\n", rootArg)
	fmt.Fprintf(&sb, "2. Run `render_agent_graph`%s to see how they depend on each other\n", rootArg)
	sb.WriteString("3. Give me a one-line summary per agent and its main methods\n")
	sb.WriteString("4. Point out agents with no edges and any cycles in the graph\n")
	if focus != "" {
		fmt.Fprintf(&sb, "\nFocus on `%s`: what it depends on, who mentions it, and whether it appears in `scan_history`.\n", focus)
	}

	description := "Agent review"
	if focus != "" {
		description = fmt.Sprintf("Agent review: %s", focus)
	}

	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(sb.String()),
			},
		},
	}, nil
}
