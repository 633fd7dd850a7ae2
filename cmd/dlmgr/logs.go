package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newLogsCmd(flags *globalFlags) *cobra.Command {
	var source, user string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print downloader or server logs",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			var (
				text string
				err  error
			)
			switch {
			case user != "":
				text, err = rt.api.UserLogsByName(ctx, user)
			case source == "user":
				text, err = rt.api.UserLogs(ctx)
			case source == "backend":
				text, err = rt.api.BackendLogs(ctx)
			case source == "server":
				text, err = rt.api.ServerLogs(ctx)
			default:
				return fmt.Errorf("unsupported log source %q (use user, backend or server)", source)
			}
			return rt.printResult(text, err)
		})),
	}
	cmd.Flags().StringVar(&source, "source", "user", "log source (user, backend, server)")
	cmd.Flags().StringVar(&user, "user", "", "show another user's downloader log (admin)")
	return cmd
}
