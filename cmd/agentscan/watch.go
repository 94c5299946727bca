package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/agentscan/internal/pipeline"
	"github.com/HendryAvila/agentscan/internal/watch"
)

var (
	watchOutput   string
	watchGraph    bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Rescan whenever files change",
	Long: `Scan once, then watch the tree and rescan after each burst of changes.
Rescans run one at a time. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		runner, cleanup := newRunner(logger)
		defer cleanup()

		req := pipeline.Request{
			Root:        rootArg(args),
			OutputDir:   watchOutput,
			WriteJSON:   true,
			RenderGraph: watchGraph,
		}

		res, err := runner.Run(cmd.Context(), req)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)

		w, err := watch.New(res.Root, watch.Options{
			Debounce:  watchDebounce,
			SkipPaths: []string{res.OutputDir},
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		defer w.Close()

		logger.Info("watching", "root", res.Root)
		return w.Run(cmd.Context(), func(ctx context.Context, paths []string) {
			logger.Debug("change detected", "paths", len(paths))
			res, err := runner.Run(ctx, req)
			if err != nil {
				logger.Error("rescan failed", "error", err)
				return
			}
			printResult(cmd.OutOrStdout(), res)
		})
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "output directory (default: output_dir from .agentscan.yaml)")
	watchCmd.Flags().BoolVar(&watchGraph, "graph", false, "also redraw agent_graph.png on every rescan")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a rescan")
	rootCmd.AddCommand(watchCmd)
}
