package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"pkt.systems/dlmgr"
	"pkt.systems/dlmgr/internal/format"
	"pkt.systems/dlmgr/schema"
	"pkt.systems/dlmgr/toast"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var follow int64
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow running jobs until interrupted",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
		out := cmd.OutOrStdout()
		color := isTerminal(out)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var mu sync.Mutex
		seen := map[toast.ID]struct{}{}
		unsubToasts := rt.app.Toasts.Toasts().Subscribe(func(items []toast.Toast) {
			mu.Lock()
			defer mu.Unlock()
			for _, item := range items {
				if _, ok := seen[item.ID]; ok {
					continue
				}
				seen[item.ID] = struct{}{}
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), format.ToastLine(item, color))
			}
		})
		defer unsubToasts()

		if follow > 0 {
			rt.app.Feed.SetCurrentJob(schema.JobID(follow))
		}
		var appeared, primed bool
		unsubJobs := rt.app.Feed.Jobs().Subscribe(func(jobs []schema.RunningJob) {
			mu.Lock()
			defer mu.Unlock()
			// The first delivery is the placeholder list held before the
			// feed has connected.
			if !primed {
				primed = true
				return
			}
			if follow > 0 {
				if containsJob(jobs, schema.JobID(follow)) {
					appeared = true
				} else if appeared {
					cancel()
				}
				return
			}
			_ = rt.printer.Print(jobs)
		})
		defer unsubJobs()

		if err := rt.app.Start(ctx); err != nil {
			return err
		}
		if !rt.app.Session.Authenticated().Get() {
			return schema.ErrNotAuthenticated
		}
		<-ctx.Done()
		if follow > 0 && appeared {
			rt.printer.Message(fmt.Sprintf("job %d finished", follow))
		}
		return nil
	}), dlmgr.WithJobNotices())
	cmd.Flags().Int64Var(&follow, "job", 0, "exit once this job leaves the running list")
	return cmd
}

func containsJob(jobs []schema.RunningJob, id schema.JobID) bool {
	for _, job := range jobs {
		if job.ID == id {
			return true
		}
	}
	return false
}
