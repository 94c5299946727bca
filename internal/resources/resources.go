// Package resources implements MCP resource handlers for the agent scanner.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (agentscan://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HendryAvila/agentscan/internal/catalog"
	"github.com/HendryAvila/agentscan/internal/config"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handler manages resource endpoints.
type Handler struct {
	store config.Store
	root  func() (string, error)
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store config.Store) *Handler {
	return &Handler{store: store, root: findRoot}
}

// GreetingTemplate returns the greeting://{name} template definition.
func (h *Handler) GreetingTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"greeting://{name}",
		"Greeting",
		mcp.WithTemplateDescription("Get a personalized greeting"),
		mcp.WithTemplateMIMEType("text/plain"),
	)
}

// HandleGreeting returns "Hello, {name}!".
func (h *Handler) HandleGreeting(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name := templateArg(req.Params.Arguments, "name")
	if name == "" {
		name = nameFromURI(req.Params.URI)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Hello, %s!", name),
		},
	}, nil
}

// CatalogResource returns the resource definition for the last written
// agents.json of the current project.
func (h *Handler) CatalogResource() mcp.Resource {
	return mcp.NewResource(
		"agentscan://catalog",
		"Agent Catalog",
		mcp.WithResourceDescription("Agent records from the most recent scan (agents.json)"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleCatalog returns the current agents.json content.
func (h *Handler) HandleCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projectRoot, err := h.root()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	cfg, err := h.store.Load(projectRoot)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	path := filepath.Join(cfg.OutputPath(projectRoot), cfg.JSONName)
	store, err := catalog.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return errorResource(req.Params.URI, fmt.Sprintf("no catalog at %s; run scan_agents first", path)), nil
	}
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := store.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// ConfigResource returns the resource definition for effective settings.
func (h *Handler) ConfigResource() mcp.Resource {
	return mcp.NewResource(
		"agentscan://config",
		"Scanner Configuration",
		mcp.WithResourceDescription("Effective .agentscan.yaml settings, defaults applied"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleConfig returns the effective configuration as JSON.
func (h *Handler) HandleConfig(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projectRoot, err := h.root()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	cfg, err := h.store.Load(projectRoot)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
