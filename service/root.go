// Package service holds the yatube command line: the web server and
// the database and admin tools around it.
package service

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

const cliVersion = "1.0.0"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "yatube <command> [flags]",
		Short:        "Yatube: a small blogging site",
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newInitCmd(),
		newCleanCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newGroupCmd(),
		newUserCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "yatube version %s\n", cliVersion)
		},
	}
}
