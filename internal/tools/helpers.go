// Package tools implements MCP tool handlers for the agent scanner.
//
// Each tool is a struct that receives its dependencies at construction
// and exposes Definition (for registration) and Handle (the mcp-go
// handler). Tool failures the caller can act on are returned as
// mcp.NewToolResultError, never as Go errors.
package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/agentscan/internal/config"
	"github.com/HendryAvila/agentscan/internal/pipeline"
)

// findProjectRoot walks up from the current working directory looking
// for a .agentscan.yaml file. If none is found, returns cwd.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		if config.Exists(current) {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}

// resolveRoot returns the explicit root argument, or the detected
// project root when the argument is empty.
func resolveRoot(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg != "" {
		return arg, nil
	}
	return findProjectRoot()
}

// writeRunSummary appends the common scan summary block.
func writeRunSummary(sb *strings.Builder, res *pipeline.Result) {
	fmt.Fprintf(sb, "- **Root**: %s\n", res.Root)
	fmt.Fprintf(sb, "- **Agents**: %d\n", res.Catalog.Len())
	fmt.Fprintf(sb, "- **Files scanned**: %d\n", len(res.Report.Outcomes))
	if failed := res.Report.Failed(); len(failed) > 0 {
		fmt.Fprintf(sb, "- **Skipped files**: %d\n", len(failed))
	}
	if res.JSONPath != "" {
		fmt.Fprintf(sb, "- **Catalog**: %s\n", res.JSONPath)
	}
	if res.GraphPath != "" {
		fmt.Fprintf(sb, "- **Graph**: %s\n", res.GraphPath)
	}
	if res.RunID != "" {
		fmt.Fprintf(sb, "- **Run ID**: %s\n", res.RunID)
	}
}

// noAgentsMessage is the informational reply for an empty scan.
func noAgentsMessage(root string) string {
	return fmt.Sprintf("No agents found in %s.", root)
}
