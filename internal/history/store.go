// Package history records scan runs in a local SQLite database.
//
// Every scan started from the MCP server or the CLI can be recorded with
// the agent names it found, so later sessions can ask when an agent first
// appeared or how a repository's agent count changed.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DefaultLimit caps list queries when the caller passes a non-positive limit.
const DefaultLimit = 20

// Run is one recorded scan.
type Run struct {
	ID         string   `json:"id"`
	Root       string   `json:"root"`
	OutputDir  string   `json:"output_dir"`
	Records    int      `json:"records"`
	Failed     int      `json:"failed"`
	JSONPath   string   `json:"json_path,omitempty"`
	GraphPath  string   `json:"graph_path,omitempty"`
	StartedAt  string   `json:"started_at"`
	DurationMS int64    `json:"duration_ms"`
	Agents     []string `json:"agents"`
}

// Duration returns the run's wall time.
func (r Run) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// Config holds history store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig returns the default configuration for the history store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(home, ".agentscan"),
	}
}

// Store persists scan runs in SQLite.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New opens (or creates) the history database under cfg.DataDir.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "history.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scans (
			id          TEXT PRIMARY KEY,
			root        TEXT    NOT NULL,
			output_dir  TEXT    NOT NULL,
			records     INTEGER NOT NULL DEFAULT 0,
			failed      INTEGER NOT NULL DEFAULT 0,
			json_path   TEXT,
			graph_path  TEXT,
			started_at  TEXT    NOT NULL DEFAULT (datetime('now')),
			duration_ms INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS scan_agents (
			scan_id TEXT NOT NULL,
			name    TEXT NOT NULL,
			PRIMARY KEY (scan_id, name),
			FOREIGN KEY (scan_id) REFERENCES scans(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_scans_started ON scans(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_scans_root    ON scans(root);
		CREATE INDEX IF NOT EXISTS idx_agents_name   ON scan_agents(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun stores a run and its agent names in one transaction. An empty
// ID is replaced by a new UUID and an empty StartedAt by the current time.
// It returns the stored run's ID.
func (s *Store) RecordRun(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt == "" {
		run.StartedAt = Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("history: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO scans (id, root, output_dir, records, failed, json_path, graph_path, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.OutputDir, run.Records, run.Failed,
		nullableString(run.JSONPath), nullableString(run.GraphPath),
		run.StartedAt, run.DurationMS,
	)
	if err != nil {
		return "", fmt.Errorf("history: insert scan: %w", err)
	}

	for _, name := range run.Agents {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO scan_agents (scan_id, name) VALUES (?, ?)`,
			run.ID, name,
		); err != nil {
			return "", fmt.Errorf("history: insert agent %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("history: commit: %w", err)
	}
	return run.ID, nil
}

// Recent returns the newest runs first.
func (s *Store) Recent(limit int) ([]Run, error) {
	return s.queryRuns(`SELECT `+scanColumns+` FROM scans
		ORDER BY started_at DESC, rowid DESC LIMIT ?`, clampLimit(limit))
}

// RunsWithAgent returns the newest runs whose results included name.
func (s *Store) RunsWithAgent(name string, limit int) ([]Run, error) {
	return s.queryRuns(`SELECT `+scanColumns+` FROM scans
		WHERE id IN (SELECT scan_id FROM scan_agents WHERE name = ?)
		ORDER BY started_at DESC, rowid DESC LIMIT ?`, name, clampLimit(limit))
}

// Get returns a single run, or nil when id is unknown.
func (s *Store) Get(id string) (*Run, error) {
	runs, err := s.queryRuns(`SELECT `+scanColumns+` FROM scans WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

const scanColumns = `id, root, output_dir, records, failed,
	ifnull(json_path, ''), ifnull(graph_path, ''), started_at, duration_ms`

func (s *Store) queryRuns(query string, args ...any) ([]Run, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Root, &r.OutputDir, &r.Records, &r.Failed,
			&r.JSONPath, &r.GraphPath, &r.StartedAt, &r.DurationMS); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		agents, err := s.agentsFor(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Agents = agents
	}
	return runs, nil
}

func (s *Store) agentsFor(scanID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM scan_agents WHERE scan_id = ? ORDER BY name`, scanID)
	if err != nil {
		return nil, fmt.Errorf("history: query agents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func nullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Now returns the current time formatted for SQLite.
func Now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
