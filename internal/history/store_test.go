package history

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNew_CreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New(Config{DataDir: dir})
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "history.db"))
	assert.NoError(t, err)
}

func TestNew_OpenFailure(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(string, string) (*sql.DB, error) {
		return nil, errors.New("boom")
	}

	_, err := New(Config{DataDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history: open database")
}

func TestNew_ReopenKeepsRuns(t *testing.T) {
	dir := t.TempDir()

	s1, err := New(Config{DataDir: dir})
	require.NoError(t, err)
	_, err = s1.RecordRun(Run{Root: "/repo", OutputDir: "/repo/pype", Records: 1, Agents: []string{"PricingAgent"}})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := New(Config{DataDir: dir})
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"PricingAgent"}, runs[0].Agents)
}

func TestRecordRun_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	id, err := s.RecordRun(Run{
		Root:       "/repo",
		OutputDir:  "/repo/pype",
		Records:    2,
		Failed:     1,
		JSONPath:   "/repo/pype/agents.json",
		DurationMS: 1500,
		Agents:     []string{"b_agent", "a_agent", "b_agent"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	run, err := s.Get(id)
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, "/repo", run.Root)
	assert.Equal(t, 2, run.Records)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, "/repo/pype/agents.json", run.JSONPath)
	assert.Empty(t, run.GraphPath)
	assert.NotEmpty(t, run.StartedAt)
	assert.Equal(t, int64(1500), run.Duration().Milliseconds())
	assert.Equal(t, []string{"a_agent", "b_agent"}, run.Agents)
}

func TestRecordRun_KeepsExplicitID(t *testing.T) {
	s := newTestStore(t)

	id, err := s.RecordRun(Run{ID: "fixed", Root: "/r", OutputDir: "/r/out"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)

	_, err = s.RecordRun(Run{ID: "fixed", Root: "/r", OutputDir: "/r/out"})
	assert.Error(t, err, "duplicate ids must be rejected")
}

func TestGet_Unknown(t *testing.T) {
	s := newTestStore(t)

	run, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestRecent_NewestFirstAndLimit(t *testing.T) {
	s := newTestStore(t)

	for _, started := range []string{"2026-01-01 10:00:00", "2026-01-03 10:00:00", "2026-01-02 10:00:00"} {
		_, err := s.RecordRun(Run{Root: started, OutputDir: "out", StartedAt: started})
		require.NoError(t, err)
	}

	runs, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "2026-01-03 10:00:00", runs[0].StartedAt)
	assert.Equal(t, "2026-01-02 10:00:00", runs[1].StartedAt)
}

func TestRecent_SameTimestampUsesInsertOrder(t *testing.T) {
	s := newTestStore(t)

	const ts = "2026-05-05 05:05:05"
	first, err := s.RecordRun(Run{Root: "a", OutputDir: "out", StartedAt: ts})
	require.NoError(t, err)
	second, err := s.RecordRun(Run{Root: "b", OutputDir: "out", StartedAt: ts})
	require.NoError(t, err)

	runs, err := s.Recent(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestRecent_Empty(t *testing.T) {
	s := newTestStore(t)

	runs, err := s.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunsWithAgent(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RecordRun(Run{Root: "/one", OutputDir: "o", StartedAt: "2026-01-01 00:00:00", Agents: []string{"RouterAgent"}})
	require.NoError(t, err)
	_, err = s.RecordRun(Run{Root: "/two", OutputDir: "o", StartedAt: "2026-01-02 00:00:00", Agents: []string{"PricingAgent"}})
	require.NoError(t, err)
	_, err = s.RecordRun(Run{Root: "/three", OutputDir: "o", StartedAt: "2026-01-03 00:00:00", Agents: []string{"RouterAgent", "PricingAgent"}})
	require.NoError(t, err)

	runs, err := s.RunsWithAgent("RouterAgent", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "/three", runs[0].Root)
	assert.Equal(t, "/one", runs[1].Root)

	none, err := s.RunsWithAgent("GhostAgent", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPragmas_WALEnabled(t *testing.T) {
	s := newTestStore(t)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}
