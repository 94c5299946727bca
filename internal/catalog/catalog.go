// Package catalog accumulates agent records and persists them as JSON.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HendryAvila/agentscan/internal/scanner"
)

// DefaultFileName is the catalog file written inside the output directory.
const DefaultFileName = "agents.json"

// Store holds records in insertion order.
type Store struct {
	records []scanner.Record
}

// New creates a Store seeded with records.
func New(records ...scanner.Record) *Store {
	s := &Store{}
	s.Add(records...)
	return s
}

// Add appends records, normalizing their set fields.
func (s *Store) Add(records ...scanner.Record) {
	for _, r := range records {
		r.Normalize()
		s.records = append(s.records, r)
	}
}

// Records returns the ordered record list.
func (s *Store) Records() []scanner.Record {
	return s.records
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// MarshalJSON renders the catalog as an indented JSON array. An empty
// store renders as "[]".
func (s *Store) MarshalJSON() ([]byte, error) {
	records := s.records
	if records == nil {
		records = []scanner.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the catalog to dir/name, creating dir if needed and
// overwriting any existing file. It returns the written path.
func (s *Store) WriteFile(dir, name string) (string, error) {
	if name == "" {
		name = DefaultFileName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	data, err := s.MarshalJSON()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Load reads a catalog previously written by WriteFile.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var records []scanner.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return New(records...), nil
}
