package main

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/agentscan/internal/history"
	"github.com/HendryAvila/agentscan/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	Long: `Start an MCP server on stdin/stdout. Add it to your AI tool's MCP config:

  {
    "mcpServers": {
      "agentscan": {
        "command": "agentscan",
        "args": ["serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, cleanup, err := server.New(server.Options{
			Logger:         newLogger(),
			History:        history.Config{DataDir: flagDataDir},
			DisableHistory: flagNoHistory,
		})
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		defer cleanup()

		return mcpserver.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
