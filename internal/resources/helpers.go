package resources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/agentscan/internal/config"
)

// findRoot walks up from cwd looking for .agentscan.yaml.
// Shared utility for resource handlers.
func findRoot() (string, error) {
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

// templateArg extracts a URI template variable. mcp-go stores matched
// values as []string; direct calls may pass a plain string.
func templateArg(args map[string]any, name string) string {
	switch v := args[name].(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// nameFromURI is the fallback when the handler is called without
// template arguments: greeting://alice → alice.
func nameFromURI(uri string) string {
	_, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return ""
	}
	return strings.Trim(rest, "/")
}
