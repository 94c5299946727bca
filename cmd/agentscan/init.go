package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/agentscan/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [root]",
	Short: "Write .agentscan.yaml with default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(rootArg(args))
		if err != nil {
			return err
		}
		if config.Exists(root) && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", config.Path(root))
		}
		if err := config.NewFileStore().Save(root, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", config.Path(root))
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
