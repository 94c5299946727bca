package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/agentscan/internal/history"
)

var (
	historyLimit int
	historyAgent string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded scans, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		hs, err := history.New(history.Config{DataDir: flagDataDir})
		if err != nil {
			return err
		}
		defer hs.Close()

		var runs []history.Run
		if historyAgent != "" {
			runs, err = hs.RunsWithAgent(historyAgent, historyLimit)
		} else {
			runs, err = hs.Recent(historyLimit)
		}
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(w, "No scans recorded.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(w, "%s  %3d agents  %-8s %s\n", r.StartedAt, r.Records, r.Duration(), r.Root)
			if len(r.Agents) > 0 {
				fmt.Fprintf(w, "    %s\n", strings.Join(r.Agents, ", "))
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", history.DefaultLimit, "maximum number of runs")
	historyCmd.Flags().StringVar(&historyAgent, "agent", "", "only runs that found this agent")
	rootCmd.AddCommand(historyCmd)
}
