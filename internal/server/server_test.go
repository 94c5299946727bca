package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/agentscan/internal/history"
)

func TestNew_RegistersTools(t *testing.T) {
	s, cleanup, err := New(Options{History: history.Config{DataDir: t.TempDir()}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()

	for _, name := range []string{"add", "echo_prompt", "scan_agents", "render_agent_graph", "generate_agent_ui", "init_config", "scan_history"} {
		if s.GetTool(name) == nil {
			t.Errorf("tool %s not registered", name)
		}
	}
}

func TestNew_WithoutHistory(t *testing.T) {
	s, cleanup, err := New(Options{DisableHistory: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()

	if s.GetTool("scan_history") != nil {
		t.Error("scan_history should not be registered without history")
	}
	if s.GetTool("scan_agents") == nil {
		t.Error("scan_agents should always be registered")
	}
}

func TestNew_HistoryFailureIsNotFatal(t *testing.T) {
	// A regular file where the data directory should be makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	s, cleanup, err := New(Options{History: history.Config{DataDir: filepath.Join(blocker, "data")}})
	if err != nil {
		t.Fatalf("New should degrade, got: %v", err)
	}
	defer cleanup()

	if s.GetTool("scan_history") != nil {
		t.Error("scan_history should be skipped when history fails to open")
	}
}

func TestServerInstructions_ListsTools(t *testing.T) {
	text := serverInstructions()
	for _, name := range []string{"scan_agents", "render_agent_graph", "scan_history"} {
		if !strings.Contains(text, name) {
			t.Errorf("instructions should mention %s", name)
		}
	}
}
