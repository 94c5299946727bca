package scanner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Mode names an extraction strategy.
type Mode string

const (
	// ModeStructural extracts agents from a syntax tree.
	ModeStructural Mode = "structural"
	// ModeDefinition reads agent definition files (markdown + frontmatter).
	ModeDefinition Mode = "definition"
	// ModeHeuristic scrapes raw text when no structure is available.
	ModeHeuristic Mode = "heuristic"
)

// errUnparseable signals that structural extraction must fall back to the
// heuristic text mode.
var errUnparseable = errors.New("source could not be parsed")

// Extractor turns one file's content into agent records.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the agent records found in content. A file without any
// agent signal yields no records and no error. Files whose structure
// cannot be parsed fall back to the heuristic text mode.
func (x *Extractor) Extract(ctx context.Context, path string, content []byte) ([]Record, error) {
	var (
		records []Record
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		records, err = extractPython(ctx, path, content)
	case ".go":
		records, err = extractGo(ctx, path, content)
	case ".md":
		records, err = extractDefinition(path, content)
	default:
		err = errUnparseable
	}

	if errors.Is(err, errUnparseable) {
		records = extractHeuristic(path, content)
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}

	for i := range records {
		records[i].Normalize()
	}
	return records, nil
}

// firstSegment returns the leading element of an import path, split on
// the given separators. Relative markers are skipped.
func firstSegment(path, seps string) string {
	fields := strings.FieldsFunc(path, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	for _, f := range fields {
		if f == "." || f == ".." {
			continue
		}
		return f
	}
	return ""
}

// addDependency appends dep unless it is empty or in the denylist.
func addDependency(deps []string, dep string) []string {
	if dep == "" || IsExcludedDependency(dep) {
		return deps
	}
	return append(deps, dep)
}
