// Package scanner discovers agent definitions in a directory tree.
//
// The pipeline is deliberately simple and sequential: enumerate candidate
// files, read each one fully, extract zero or more records and aggregate a
// per-file Outcome. A bad file never aborts the scan; it becomes a failed
// outcome and the walk continues.
//
// Extraction is a best-effort heuristic layer, not a code analyzer.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// DefaultMaxFileSize is the largest file the scanner reads (1 MiB).
const DefaultMaxFileSize = 1 << 20

// Status is the result class of processing a single file.
type Status string

const (
	// StatusRecord means the file produced at least one record.
	StatusRecord Status = "record"
	// StatusEmpty means the file was read but carried no agent signal.
	StatusEmpty Status = "empty"
	// StatusFailed means the file could not be read or extracted.
	StatusFailed Status = "failed"
)

// Outcome is the per-file result aggregated by the pipeline.
type Outcome struct {
	Path    string
	Status  Status
	Records int
	Err     error
}

// Report is the result of one scan.
type Report struct {
	Root     string
	Records  []Record
	Outcomes []Outcome
}

// Failed returns the outcomes of files that could not be processed.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// Options configures a Scanner.
type Options struct {
	// Include restricts the scan to files matching one of these globs.
	Include []string
	// Exclude drops files and directories matching any of these globs.
	Exclude []string
	// SkipPaths are directories or files never visited.
	SkipPaths []string
	// MaxFileSize caps the bytes read per file. Zero means DefaultMaxFileSize.
	MaxFileSize int64
	// Logger receives per-file warnings. Nil discards them.
	Logger *slog.Logger
	// Cache, when set, is consulted before parsing a file and filled
	// afterwards. One Cache may be shared by many scanners.
	Cache *Cache
}

// Scanner runs the enumerate → extract → aggregate pipeline.
type Scanner struct {
	enum      *Enumerator
	extractor *Extractor
	maxSize   int64
	log       *slog.Logger
	cache     *Cache
}

// New creates a Scanner. It fails only on invalid glob patterns.
func New(opts Options) (*Scanner, error) {
	enum, err := NewEnumerator(opts.Include, opts.Exclude, opts.SkipPaths)
	if err != nil {
		return nil, err
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scanner{
		enum:      enum,
		extractor: NewExtractor(),
		maxSize:   maxSize,
		log:       logger,
		cache:     opts.Cache,
	}, nil
}

// Scan walks root and returns every discovered record in enumeration
// order. Only an invalid root or a canceled context is an error.
func (s *Scanner) Scan(ctx context.Context, root string) (*Report, error) {
	info, err := os.Stat(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotExist, root)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	report := &Report{Root: root}
	for path, walkErr := range s.enum.Files(root) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan canceled: %w", err)
		}
		if walkErr != nil {
			report.Outcomes = append(report.Outcomes, s.fail(path, walkErr))
			continue
		}

		records, err := s.processFile(ctx, path)
		if err != nil {
			report.Outcomes = append(report.Outcomes, s.fail(path, err))
			continue
		}

		status := StatusEmpty
		if len(records) > 0 {
			status = StatusRecord
		}
		report.Outcomes = append(report.Outcomes, Outcome{Path: path, Status: status, Records: len(records)})
		report.Records = append(report.Records, records...)
	}

	resolveConnections(report.Records)
	return report, nil
}

// processFile reads one file and extracts its records. The handle is
// released before returning, whether or not the read succeeded.
func (s *Scanner) processFile(ctx context.Context, path string) ([]Record, error) {
	content, err := s.readFile(path)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if recs, ok := s.cache.get(path, content); ok {
			return recs, nil
		}
	}
	recs, err := s.extractor.Extract(ctx, path, content)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.put(path, content, recs)
	}
	return recs, nil
}

func (s *Scanner) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > s.maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, path, info.Size(), s.maxSize)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (s *Scanner) fail(path string, err error) Outcome {
	s.log.Warn("skipping file", slog.String("file", path), slog.String("error", err.Error()))
	return Outcome{Path: path, Status: StatusFailed, Err: err}
}
