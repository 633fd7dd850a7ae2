package main

import (
	"context"

	"github.com/spf13/cobra"

	"pkt.systems/dlmgr/schema"
)

func newJobsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Start and control download jobs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sources",
		Short: "List startable download sources",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.ListDownloadSources(ctx))
		})),
	})
	cmd.AddCommand(newJobsStartCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "status <id>",
		Short: "Show a job",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}
			return rt.printResult(rt.api.JobStatus(ctx, schema.JobID(id)))
		})),
	})
	cmd.AddCommand(jobActionCmd(flags, "stop <id>", "Stop a job and keep what was fetched", "job stopped",
		func(ctx context.Context, rt *runtime, id schema.JobID) error { return rt.api.StopJob(ctx, id) }))
	cmd.AddCommand(jobActionCmd(flags, "cancel <id>", "Cancel a job", "job cancelled",
		func(ctx context.Context, rt *runtime, id schema.JobID) error { return rt.api.CancelJob(ctx, id) }))
	cmd.AddCommand(&cobra.Command{
		Use:   "stop-all",
		Short: "Stop every job",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			if err := rt.api.StopAllJobs(ctx); err != nil {
				return err
			}
			rt.printer.Message("all jobs stopped")
			return nil
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cancel-all",
		Short: "Cancel every job",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			if err := rt.api.CancelAllJobs(ctx); err != nil {
				return err
			}
			rt.printer.Message("all jobs cancelled")
			return nil
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "running",
		Short: "List running jobs",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.RunningJobs(ctx))
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "List users with a running job",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.UsersWithJobs(ctx))
		})),
	})
	return cmd
}

func newJobsStartCmd(flags *globalFlags) *cobra.Command {
	var symlinks bool
	cmd := &cobra.Command{
		Use:   "start <source>",
		Short: "Start a download source",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.StartDownload(ctx, args[0], symlinks))
		})),
	}
	cmd.Flags().BoolVar(&symlinks, "symlinks", false, "create symlinks for downloaded files")
	return cmd
}

func jobActionCmd(flags *globalFlags, use, short, done string, action func(context.Context, *runtime, schema.JobID) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			id, err := parseID(args[0], "job")
			if err != nil {
				return err
			}
			if err := action(ctx, rt, schema.JobID(id)); err != nil {
				return err
			}
			rt.printer.Message(done)
			return nil
		})),
	}
}
