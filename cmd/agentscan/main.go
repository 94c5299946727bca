// agentscan: repository agent scanner
//
// Finds agent definitions in a source tree, writes them to
// pype/agents.json and draws how they relate. Runs as an MCP server
// (stdio) or as a plain CLI.
//
// Usage:
//
//	agentscan serve            # Start MCP server (stdio transport)
//	agentscan scan [root]      # Write agents.json
//	agentscan graph [root]     # Write agents.json and agent_graph.png
//	agentscan watch [root]     # Rescan on every change
//	agentscan history          # List recorded scans
//	agentscan init [root]      # Write .agentscan.yaml with defaults
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/agentscan/internal/config"
	"github.com/HendryAvila/agentscan/internal/history"
	"github.com/HendryAvila/agentscan/internal/pipeline"
	"github.com/HendryAvila/agentscan/internal/server"
)

var (
	flagVerbose   bool
	flagDataDir   string
	flagNoHistory bool
)

var rootCmd = &cobra.Command{
	Use:   "agentscan",
	Short: "Find and map the agents in a repository",
	Long: `agentscan walks a source tree, extracts agent records (classes, structs,
agent definition files) and writes them to <output>/agents.json. It can
also draw the agent graph and run as an MCP server.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "agentscan v%s\n", server.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", history.DefaultConfig().DataDir, "directory holding the scan history database")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "do not record scans")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes to stderr; stdout belongs to command output and,
// under serve, to the MCP transport. Output is text on a terminal and
// JSON otherwise (MCP hosts capture stderr into their own logs).
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// newRunner builds a pipeline runner with history when available. The
// returned cleanup is always non-nil.
func newRunner(logger *slog.Logger) (*pipeline.Runner, func()) {
	if flagNoHistory {
		return pipeline.NewRunner(config.NewFileStore(), nil, logger), func() {}
	}
	hs, err := history.New(history.Config{DataDir: flagDataDir})
	if err != nil {
		logger.Warn("history disabled", "error", err)
		return pipeline.NewRunner(config.NewFileStore(), nil, logger), func() {}
	}
	return pipeline.NewRunner(config.NewFileStore(), hs, logger), func() { _ = hs.Close() }
}

// rootArg returns the optional positional root, defaulting to cwd.
func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
