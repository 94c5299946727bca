package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/agentscan/internal/config"
	"github.com/HendryAvila/agentscan/internal/history"
	"github.com/HendryAvila/agentscan/internal/scanner"
)

type fakeRecorder struct {
	runs []history.Run
	err  error
}

func (f *fakeRecorder) RecordRun(run history.Run) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.runs = append(f.runs, run)
	return "run-1", nil
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const twoAgents = `import requests

class PlannerAgent:
    """Plans work."""

    def plan(self, goal):
        return goal


class WorkerAgent:
    def run(self):
        pass
`

func TestRun_WritesCatalog(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "agents/team.py", twoAgents)

	rec := &fakeRecorder{}
	runner := NewRunner(config.NewFileStore(), rec, nil)

	res, err := runner.Run(context.Background(), Request{Root: root, WriteJSON: true})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "pype"), res.OutputDir)
	assert.Equal(t, filepath.Join(root, "pype", "agents.json"), res.JSONPath)
	assert.FileExists(t, res.JSONPath)
	assert.Empty(t, res.GraphPath)
	assert.Equal(t, 2, res.Catalog.Len())
	assert.False(t, res.Empty())

	require.Len(t, rec.runs, 1)
	assert.Equal(t, []string{"PlannerAgent", "WorkerAgent"}, rec.runs[0].Agents)
	assert.Equal(t, "run-1", res.RunID)
}

func TestRun_RenderGraph(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "team.py", twoAgents)

	res, err := NewRunner(config.NewFileStore(), nil, nil).
		Run(context.Background(), Request{Root: root, RenderGraph: true})
	require.NoError(t, err)

	assert.FileExists(t, res.JSONPath, "rendering implies writing the catalog")
	assert.FileExists(t, filepath.Join(root, "pype", "agent_graph.png"))
	require.NotNil(t, res.Graph)
	assert.Equal(t, 2, res.Graph.Len())
}

func TestRun_EmptyTreeWritesEmptyCatalogAndNoImage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# nothing here\n")

	res, err := NewRunner(config.NewFileStore(), nil, nil).
		Run(context.Background(), Request{Root: root, RenderGraph: true})
	require.NoError(t, err)

	assert.True(t, res.Empty())
	data, err := os.ReadFile(res.JSONPath)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
	assert.Empty(t, res.GraphPath)
	assert.NoFileExists(t, filepath.Join(root, "pype", "agent_graph.png"))
}

func TestRun_OutputDirIsNotRescanned(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "team.py", twoAgents)
	runner := NewRunner(config.NewFileStore(), nil, nil)

	first, err := runner.Run(context.Background(), Request{Root: root, WriteJSON: true})
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), Request{Root: root, WriteJSON: true})
	require.NoError(t, err)

	assert.Equal(t, first.Catalog.Len(), second.Catalog.Len())
	for _, rec := range second.Catalog.Records() {
		assert.NotEqual(t, "agents", rec.Name)
	}
}

func TestRun_OutputDirOverride(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "team.py", twoAgents)

	res, err := NewRunner(config.NewFileStore(), nil, nil).
		Run(context.Background(), Request{Root: root, OutputDir: "build/out", WriteJSON: true})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "build", "out", "agents.json"), res.JSONPath)
}

func TestRun_UsesProjectConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "team.py", twoAgents)
	writeFile(t, root, "legacy/old_agent.py", "class OldAgent:\n    pass\n")

	cfg := config.Default()
	cfg.OutputDir = "reports"
	cfg.JSONName = "catalog.json"
	cfg.Exclude = []string{"legacy"}
	require.NoError(t, config.NewFileStore().Save(root, cfg))

	res, err := NewRunner(config.NewFileStore(), nil, nil).
		Run(context.Background(), Request{Root: root, WriteJSON: true})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "reports", "catalog.json"), res.JSONPath)
	assert.Equal(t, 2, res.Catalog.Len())
}

func TestRun_NoWriteLeavesDiskUntouched(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "team.py", twoAgents)

	res, err := NewRunner(config.NewFileStore(), nil, nil).
		Run(context.Background(), Request{Root: root})
	require.NoError(t, err)

	assert.Empty(t, res.JSONPath)
	assert.NoDirExists(t, filepath.Join(root, "pype"))
}

func TestRun_InvalidRoot(t *testing.T) {
	_, err := NewRunner(config.NewFileStore(), nil, nil).
		Run(context.Background(), Request{Root: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, scanner.ErrRootNotExist)
}

func TestRun_InvalidConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, config.FileName, "max_file_size: 0\n")

	_, err := NewRunner(config.NewFileStore(), nil, nil).
		Run(context.Background(), Request{Root: root})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRun_RecorderFailureIsNotFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "team.py", twoAgents)

	res, err := NewRunner(config.NewFileStore(), &fakeRecorder{err: errors.New("disk full")}, nil).
		Run(context.Background(), Request{Root: root, WriteJSON: true})
	require.NoError(t, err)
	assert.Empty(t, res.RunID)
}

func TestRun_Duration(t *testing.T) {
	orig := timeNow
	t.Cleanup(func() { timeNow = orig })

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	timeNow = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 250 * time.Millisecond)
	}

	root := t.TempDir()
	rec := &fakeRecorder{}
	res, err := NewRunner(config.NewFileStore(), rec, nil).
		Run(context.Background(), Request{Root: root})
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, res.Duration)
	require.Len(t, rec.runs, 1)
	assert.Equal(t, int64(250), rec.runs[0].DurationMS)
}
