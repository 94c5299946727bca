// Package config loads and saves per-project scanner settings.
//
// Settings live in <root>/.agentscan.yaml. A missing file is not an
// error: the defaults describe a complete, working configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file.
const FileName = ".agentscan.yaml"

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds scanner and output settings for one project root.
type Config struct {
	// OutputDir is where agents.json and the graph image are written.
	// Relative paths resolve against the project root.
	OutputDir string `yaml:"output_dir" json:"output_dir"`
	// JSONName is the catalog file name inside OutputDir.
	JSONName string `yaml:"json_name" json:"json_name"`
	// GraphName is the image file name inside OutputDir.
	GraphName string `yaml:"graph_name" json:"graph_name"`
	// Include limits the scan to matching paths (slash globs, root-relative).
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
	// Exclude drops matching paths.
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	// MaxFileSize is the largest file read, in bytes.
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`
	// LayoutSeed seeds the graph layout.
	LayoutSeed uint64 `yaml:"layout_seed" json:"layout_seed"`
	// LayoutUpdates is the number of layout iterations.
	LayoutUpdates int `yaml:"layout_updates" json:"layout_updates"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		OutputDir:     "pype",
		JSONName:      "agents.json",
		GraphName:     "agent_graph.png",
		MaxFileSize:   1 << 20,
		LayoutSeed:    42,
		LayoutUpdates: 50,
	}
}

// Path returns the configuration file path for a project root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// OutputPath resolves OutputDir against root.
func (c *Config) OutputPath(root string) string {
	if filepath.IsAbs(c.OutputDir) {
		return c.OutputDir
	}
	return filepath.Join(root, c.OutputDir)
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	switch {
	case c.OutputDir == "":
		return fmt.Errorf("%w: output_dir is empty", ErrInvalid)
	case c.JSONName == "" || filepath.Base(c.JSONName) != c.JSONName:
		return fmt.Errorf("%w: json_name %q must be a plain file name", ErrInvalid, c.JSONName)
	case c.GraphName == "" || filepath.Base(c.GraphName) != c.GraphName:
		return fmt.Errorf("%w: graph_name %q must be a plain file name", ErrInvalid, c.GraphName)
	case c.MaxFileSize <= 0:
		return fmt.Errorf("%w: max_file_size must be positive", ErrInvalid)
	case c.LayoutUpdates < 0:
		return fmt.Errorf("%w: layout_updates must not be negative", ErrInvalid)
	}
	return nil
}

// Store abstracts configuration persistence.
type Store interface {
	Load(root string) (*Config, error)
	Save(root string, cfg *Config) error
}

// FileStore reads and writes .agentscan.yaml files.
type FileStore struct{}

// NewFileStore creates a FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load reads the configuration for root. Fields absent from the file keep
// their defaults; a missing file yields Default().
func (s *FileStore) Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(root))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to root, overwriting any existing file.
func (s *FileStore) Save(root string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", root, err)
	}
	if err := os.WriteFile(Path(root), data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists reports whether root has a configuration file.
func Exists(root string) bool {
	_, err := os.Stat(Path(root))
	return err == nil
}
