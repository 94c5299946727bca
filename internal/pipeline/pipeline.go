// Package pipeline runs a complete scan: load settings, walk the tree,
// write agents.json, optionally render the graph and record the run.
//
// The MCP tools, the CLI and watch mode all go through Runner.Run so a
// scan behaves the same no matter which surface started it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/HendryAvila/agentscan/internal/catalog"
	"github.com/HendryAvila/agentscan/internal/config"
	"github.com/HendryAvila/agentscan/internal/graph"
	"github.com/HendryAvila/agentscan/internal/history"
	"github.com/HendryAvila/agentscan/internal/scanner"
)

// Recorder persists finished runs. *history.Store satisfies it.
type Recorder interface {
	RecordRun(run history.Run) (string, error)
}

// Request describes one scan.
type Request struct {
	// Root is the directory to scan. Relative paths resolve against cwd.
	Root string
	// OutputDir overrides the configured output directory when set.
	OutputDir string
	// WriteJSON writes the catalog file.
	WriteJSON bool
	// RenderGraph writes the graph image. It implies WriteJSON.
	RenderGraph bool
}

// Result is everything a caller may want to report about a run.
type Result struct {
	Root      string
	OutputDir string
	Config    *config.Config
	Report    *scanner.Report
	Catalog   *catalog.Store
	Graph     *graph.Graph
	JSONPath  string
	GraphPath string
	RunID     string
	Duration  time.Duration
}

// Empty reports whether the scan found no agents.
func (r *Result) Empty() bool {
	return r.Catalog.Len() == 0
}

// Runner executes scans. Extraction results are cached across runs, so
// reusing one Runner makes rescans cheap. Runs are not serialized; callers
// that need non-overlapping scans (watch mode) run them from a single
// goroutine.
type Runner struct {
	configs config.Store
	history Recorder
	cache   *scanner.Cache
	log     *slog.Logger
}

// NewRunner creates a Runner. rec and logger may be nil.
func NewRunner(configs config.Store, rec Recorder, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		configs: configs,
		history: rec,
		cache:   scanner.NewCache(scanner.DefaultCacheSize),
		log:     logger,
	}
}

// Run performs the scan described by req. Per-file problems never fail
// the run; an invalid root, bad configuration or an output write error do.
// An empty graph is not an error: GraphPath stays empty.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	root, err := filepath.Abs(req.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", req.Root, err)
	}

	cfg, err := r.configs.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	outDir := cfg.OutputPath(root)
	if req.OutputDir != "" {
		outDir = req.OutputDir
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(root, outDir)
		}
	}

	sc, err := scanner.New(scanner.Options{
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
		SkipPaths:   []string{outDir, config.Path(root)},
		MaxFileSize: cfg.MaxFileSize,
		Logger:      r.log,
		Cache:       r.cache,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring scanner: %w", err)
	}

	start := timeNow()
	report, err := sc.Scan(ctx, root)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Root:      root,
		OutputDir: outDir,
		Config:    cfg,
		Report:    report,
		Catalog:   catalog.New(report.Records...),
	}

	if req.WriteJSON || req.RenderGraph {
		res.JSONPath, err = res.Catalog.WriteFile(outDir, cfg.JSONName)
		if err != nil {
			return nil, err
		}
	}

	if req.RenderGraph {
		res.Graph = graph.Build(res.Catalog.Records())
		res.GraphPath, err = res.Graph.Render(outDir, graph.RenderOptions{
			FileName: cfg.GraphName,
			Seed:     cfg.LayoutSeed,
			Updates:  cfg.LayoutUpdates,
		})
		if err != nil && !errors.Is(err, graph.ErrNoAgents) {
			return nil, err
		}
	}

	res.Duration = timeNow().Sub(start)
	r.log.Info("scan finished",
		"root", root,
		"agents", res.Catalog.Len(),
		"failed", len(report.Failed()),
		"duration", res.Duration,
	)

	r.record(res)
	return res, nil
}

// record stores the run in history. Failures are logged, never returned.
func (r *Runner) record(res *Result) {
	if r.history == nil {
		return
	}

	names := make([]string, 0, res.Catalog.Len())
	for _, rec := range res.Catalog.Records() {
		names = append(names, rec.Name)
	}

	id, err := r.history.RecordRun(history.Run{
		Root:       res.Root,
		OutputDir:  res.OutputDir,
		Records:    res.Catalog.Len(),
		Failed:     len(res.Report.Failed()),
		JSONPath:   res.JSONPath,
		GraphPath:  res.GraphPath,
		DurationMS: res.Duration.Milliseconds(),
		Agents:     names,
	})
	if err != nil {
		r.log.Warn("recording scan history", "error", err)
		return
	}
	res.RunID = id
}
