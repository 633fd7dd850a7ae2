package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"pkt.systems/dlmgr/schema"
)

func newTasksCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage scheduled tasks",
	}
	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List scheduled tasks",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			if all {
				return rt.printResult(rt.api.AllTasks(ctx))
			}
			return rt.printResult(rt.api.ListTasks(ctx))
		})),
	}
	list.Flags().BoolVar(&all, "all", false, "list every user's tasks (admin)")
	cmd.AddCommand(list)
	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			return rt.printResult(rt.api.GetTask(ctx, schema.TaskID(id)))
		})),
	})
	cmd.AddCommand(newTasksCreateCmd(flags))
	cmd.AddCommand(newTasksUpdateCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			if err := rt.api.DeleteTask(ctx, schema.TaskID(id)); err != nil {
				return err
			}
			rt.printer.Message("task deleted")
			return nil
		})),
	})
	cmd.AddCommand(newCleanupCmd(flags))
	return cmd
}

type taskFlags struct {
	name, taskType, datasource, cron, config string
	active                                   bool
	targetUser                               int64
}

func (f *taskFlags) bind(cmd *cobra.Command, withActive bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "task name")
	cmd.Flags().StringVar(&f.taskType, "type", string(schema.TaskTypeDownload), "task type (download, cleanup)")
	cmd.Flags().StringVar(&f.datasource, "source", "", "download source for download tasks")
	cmd.Flags().StringVar(&f.cron, "cron", "", "cron expression")
	cmd.Flags().StringVar(&f.config, "task-config", "", "task configuration (JSON)")
	if withActive {
		cmd.Flags().BoolVar(&f.active, "active", true, "enable or disable the task")
	}
}

func newTasksCreateCmd(flags *globalFlags) *cobra.Command {
	tf := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule a task",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
		if tf.name == "" || tf.cron == "" {
			return errors.New("--name and --cron are required")
		}
		req := schema.ScheduledTaskCreate{
			Name:           tf.name,
			TaskType:       schema.TaskType(tf.taskType),
			Datasource:     tf.datasource,
			CronExpression: tf.cron,
			Config:         tf.config,
		}
		if cmd.Flags().Changed("user") {
			target := schema.UserID(tf.targetUser)
			req.TargetUserID = &target
		}
		return rt.printResult(rt.api.CreateTask(ctx, req))
	}))
	tf.bind(cmd, false)
	cmd.Flags().Int64Var(&tf.targetUser, "user", 0, "create the task for another user (admin)")
	return cmd
}

func newTasksUpdateCmd(flags *globalFlags) *cobra.Command {
	tf := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a task",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
		id, err := parseID(args[0], "task")
		if err != nil {
			return err
		}
		var update schema.ScheduledTaskUpdate
		changed := cmd.Flags().Changed
		if changed("name") {
			update.Name = &tf.name
		}
		if changed("type") {
			taskType := schema.TaskType(tf.taskType)
			update.TaskType = &taskType
		}
		if changed("source") {
			update.Datasource = &tf.datasource
		}
		if changed("cron") {
			update.CronExpression = &tf.cron
		}
		if changed("task-config") {
			update.Config = &tf.config
		}
		if changed("active") {
			update.IsActive = &tf.active
		}
		if update == (schema.ScheduledTaskUpdate{}) {
			return errors.New("nothing to update")
		}
		return rt.printResult(rt.api.UpdateTask(ctx, schema.TaskID(id), update))
	}))
	tf.bind(cmd, true)
	return cmd
}

func newCleanupCmd(flags *globalFlags) *cobra.Command {
	var days int
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete files older than --days",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			if days <= 0 {
				return errors.New("--days must be positive")
			}
			if dryRun {
				return rt.printResult(rt.api.CleanupCount(ctx, days))
			}
			return rt.printResult(rt.api.Cleanup(ctx, days))
		})),
	}
	cmd.Flags().IntVar(&days, "days", 30, "age threshold in days")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only count what would be deleted")
	return cmd
}
