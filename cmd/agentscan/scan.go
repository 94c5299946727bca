package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/agentscan/internal/catalog"
	"github.com/HendryAvila/agentscan/internal/config"
	"github.com/HendryAvila/agentscan/internal/graph"
	"github.com/HendryAvila/agentscan/internal/pipeline"
)

var (
	scanOutput string
	scanDryRun bool

	graphOutput  string
	graphCatalog string
)

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Scan a directory and write agents.json",
	Example: `  agentscan scan
  agentscan scan ./services --output build/agents
  agentscan scan --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		runner, cleanup := newRunner(logger)
		defer cleanup()

		res, err := runner.Run(cmd.Context(), pipeline.Request{
			Root:      rootArg(args),
			OutputDir: scanOutput,
			WriteJSON: !scanDryRun,
		})
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph [root]",
	Short: "Scan a directory and draw agent_graph.png",
	Long: `Scan a directory, write agents.json and draw the agent graph.

With --catalog the scan is skipped and the graph is drawn from an existing
agents.json; the image is written next to it unless --output is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if graphCatalog != "" {
			return renderCatalog(cmd.OutOrStdout(), graphCatalog, graphOutput)
		}

		logger := newLogger()
		runner, cleanup := newRunner(logger)
		defer cleanup()

		res, err := runner.Run(cmd.Context(), pipeline.Request{
			Root:        rootArg(args),
			OutputDir:   graphOutput,
			RenderGraph: true,
		})
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "output directory (default: output_dir from .agentscan.yaml)")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "scan without writing agents.json")

	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "output directory (default: output_dir from .agentscan.yaml)")
	graphCmd.Flags().StringVar(&graphCatalog, "catalog", "", "draw from an existing agents.json instead of scanning")

	rootCmd.AddCommand(scanCmd, graphCmd)
}

func renderCatalog(w io.Writer, path, outDir string) error {
	store, err := catalog.Load(path)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = filepath.Dir(path)
	}

	g := graph.Build(store.Records())
	imgPath, err := g.Render(outDir, graph.RenderOptions{FileName: config.Default().GraphName})
	if errors.Is(err, graph.ErrNoAgents) {
		fmt.Fprintln(w, "No agents found.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d agents, %d edges\ngraph: %s\n", g.Len(), len(g.Edges()), imgPath)
	return nil
}

func printResult(w io.Writer, res *pipeline.Result) {
	for _, o := range res.Report.Failed() {
		fmt.Fprintf(w, "skipped %s: %v\n", o.Path, o.Err)
	}
	if res.Empty() {
		fmt.Fprintf(w, "No agents found in %s.\n", res.Root)
	} else {
		for _, rec := range res.Catalog.Records() {
			rel, err := filepath.Rel(res.Root, rec.SourcePath)
			if err != nil {
				rel = rec.SourcePath
			}
			fmt.Fprintf(w, "%-32s %s\n", rec.Name, rel)
		}
		fmt.Fprintf(w, "\n%d agents\n", res.Catalog.Len())
	}
	if res.JSONPath != "" {
		fmt.Fprintf(w, "catalog: %s\n", res.JSONPath)
	}
	if res.GraphPath != "" {
		fmt.Fprintf(w, "graph:   %s (%d edges)\n", res.GraphPath, len(res.Graph.Edges()))
	}
}
