package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"refdoc/internal/core/ports"

	"github.com/spf13/cobra"
)

func newBuildCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Generate documentation once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, opts, coreBuildFactory{})
			if err != nil {
				return err
			}
			defer rt.Close(context.Background())

			result, err := rt.service.Build(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatSummary(result))
			return nil
		},
	}
}

func newWatchCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild whenever a PHP source changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := openRuntime(ctx, opts, coreBuildFactory{})
			if err != nil {
				return err
			}
			defer rt.Close(context.Background())

			if rt.cfg.Observability.Enabled {
				server := NewObservabilityServer(rt.cfg.Observability.Address, rt.health)
				if err := server.Start(ctx); err != nil {
					return err
				}
				defer server.Stop(context.Background())
			}

			out := cmd.OutOrStdout()
			err = rt.service.Watch(ctx, func(update ports.WatchUpdate) {
				if update.Err != nil {
					slog.Error("rebuild failed", "error", update.Err)
					return
				}
				if len(update.Changed) > 0 {
					fmt.Fprintf(out, "%s\n", statusStyle.Render(fmt.Sprintf("changed: %s", strings.Join(update.Changed, ", "))))
				}
				fmt.Fprint(out, formatSummary(update.Result))
			})
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func newResolveCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <symbol> <type>",
		Short: "Resolve a type expression in the alias context of a symbol",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, opts, coreBuildFactory{})
			if err != nil {
				return err
			}
			defer rt.Close(context.Background())

			resolved, err := rt.service.ResolveType(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resolved.Text)
			for _, ref := range resolved.Linkable {
				fmt.Fprintf(out, "  %s\n", ref)
			}
			return nil
		},
	}
}

func newLinkCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "link <from> <to>",
		Short: "Print the relative page path from one symbol to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx, opts, coreBuildFactory{})
			if err != nil {
				return err
			}
			defer rt.Close(context.Background())

			path, ok, err := rt.service.LinkPath(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s is not linkable", args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "refdoc v%s\n", versionString)
		},
	}
}
