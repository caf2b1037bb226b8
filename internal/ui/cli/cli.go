// Package cli implements the refdoc command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const versionString = "1.0.0"

type cliOptions struct {
	configPath string
	verbose    bool
}

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "refdoc",
		Short:         "Generate markdown reference documentation for PHP projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(stderr, opts.verbose)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to refdoc.toml (default: detected project root)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newBuildCommand(opts),
		newWatchCommand(opts),
		newResolveCommand(opts),
		newLinkCommand(opts),
		newVersionCommand(),
	)
	return root
}
