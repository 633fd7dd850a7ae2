package main

import (
	"context"
	"path"

	"github.com/spf13/cobra"

	"pkt.systems/dlmgr/apiclient"
	"pkt.systems/dlmgr/schema"
)

func newFilesCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Browse downloaded files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list [path]",
		Short: "List files",
		Args:  cobra.MaximumNArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return rt.printResult(rt.api.ListFiles(ctx, dir))
		})),
	})
	cmd.AddCommand(messageCmd(flags, "delete <path>", "Delete a file or folder", cobra.ExactArgs(1),
		func(ctx context.Context, rt *runtime, args []string) (schema.Message, error) {
			return rt.api.DeleteFile(ctx, args[0])
		}))
	cmd.AddCommand(messageCmd(flags, "rename <old-path> <new-path>", "Rename a file or folder", cobra.ExactArgs(2),
		func(ctx context.Context, rt *runtime, args []string) (schema.Message, error) {
			return rt.api.RenameFile(ctx, args[0], args[1])
		}))
	cmd.AddCommand(newFilesAdminCmd(flags))
	return cmd
}

func newFilesAdminCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Browse every user's files",
	}
	var offset, limit int
	list := &cobra.Command{
		Use:   "list [path]",
		Short: "List one page of files",
		Args:  cobra.MaximumNArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			q := apiclient.AdminFilesQuery{Offset: offset, Limit: limit}
			if len(args) == 1 {
				q.Path = args[0]
			}
			return rt.printResult(rt.api.AdminListFiles(ctx, q))
		})),
	}
	list.Flags().IntVar(&offset, "offset", 0, "index of the first entry")
	list.Flags().IntVar(&limit, "limit", apiclient.DefaultAdminPageSize, "page size")
	cmd.AddCommand(list)
	cmd.AddCommand(messageCmd(flags, "delete <path>", "Delete a file or folder", cobra.ExactArgs(1),
		func(ctx context.Context, rt *runtime, args []string) (schema.Message, error) {
			return rt.api.AdminDeleteFile(ctx, args[0])
		}))
	cmd.AddCommand(messageCmd(flags, "rename <old-path> <new-path>", "Rename a file or folder", cobra.ExactArgs(2),
		func(ctx context.Context, rt *runtime, args []string) (schema.Message, error) {
			return rt.api.AdminRenameFile(ctx, args[0], args[1])
		}))
	cmd.AddCommand(&cobra.Command{
		Use:   "download <path> [filename]",
		Short: "Download a file into the download directory",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			name := path.Base(args[0])
			if len(args) == 2 {
				name = args[1]
			}
			saved, err := rt.api.DownloadAdminFile(ctx, args[0], name)
			if err != nil {
				return err
			}
			rt.printer.Message("saved " + saved)
			return nil
		})),
	})
	return cmd
}

// messageCmd runs a call answered with {"message": ...}.
func messageCmd(flags *globalFlags, use, short string, args cobra.PositionalArgs, call func(context.Context, *runtime, []string) (schema.Message, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			msg, err := call(ctx, rt, args)
			if err != nil {
				return err
			}
			rt.printer.Message(msg.Message)
			return nil
		})),
	}
}
