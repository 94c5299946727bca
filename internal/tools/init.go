package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/agentscan/internal/config"
	"github.com/mark3labs/mcp-go/mcp"
)

// InitTool handles the init_config MCP tool.
// It writes a .agentscan.yaml with default settings.
type InitTool struct {
	store config.Store
}

// NewInitTool creates an InitTool with the given config store.
func NewInitTool(store config.Store) *InitTool {
	return &InitTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *InitTool) Definition() mcp.Tool {
	return mcp.NewTool("init_config",
		mcp.WithDescription(
			"Create .agentscan.yaml in a project root with default settings "+
				"(output directory, file names, include/exclude globs, layout seed). "+
				"Refuses to overwrite an existing file.",
		),
		mcp.WithString("root",
			mcp.Description("Project root. Defaults to the working directory."),
		),
		mcp.WithString("output_dir",
			mcp.Description("Output directory to store in the new file (default: pype)"),
		),
	)
}

// Handle processes the init_config tool call.
func (t *InitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := resolveRoot(req.GetString("root", ""))
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	if config.Exists(root) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"%s already exists in %s. Edit it directly.", config.FileName, root,
		)), nil
	}

	cfg := config.Default()
	if out := strings.TrimSpace(req.GetString("output_dir", "")); out != "" {
		cfg.OutputDir = out
	}
	if err := t.store.Save(root, cfg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Configuration Created\n\n"+
			"- **File**: %s\n"+
			"- **Output**: %s\n\n"+
			"Run `scan_agents` to build the catalog.",
		config.Path(root), cfg.OutputPath(root),
	)), nil
}
