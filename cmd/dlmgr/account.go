package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func newAccountCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the signed-in account",
	}
	cmd.AddCommand(newAccountPasswordCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "username <new-username>",
		Short: "Change the username",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			msg, err := rt.api.ChangeUsername(ctx, args[0])
			if err != nil {
				return err
			}
			rt.printer.Message(msg.Message)
			return nil
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "email <new-email>",
		Short: "Change the email address",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.ChangeEmail(ctx, args[0]))
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "avatar <name>",
		Short: "Select a predefined avatar",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.SetAvatar(ctx, args[0]))
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "avatar-upload <image>",
		Short: "Upload a custom avatar image",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()
			return rt.printResult(rt.api.UploadAvatar(ctx, args[0], file))
		})),
	})
	cmd.AddCommand(newAccountDeleteCmd(flags))
	return cmd
}

func newAccountPasswordCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the password",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
		current, err := readSecret(cmd, "Current password: ")
		if err != nil {
			return err
		}
		next, err := readNewSecret(cmd, "New password: ")
		if err != nil {
			return err
		}
		msg, err := rt.api.ChangePassword(ctx, current, next)
		if err != nil {
			return err
		}
		rt.printer.Message(msg.Message)
		return nil
	}))
	return cmd
}

func newAccountDeleteCmd(flags *globalFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the account and sign out",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			if !yes {
				return errors.New("refusing to delete the account without --yes")
			}
			if err := rt.app.Session.DeleteAccount(ctx); err != nil {
				return err
			}
			rt.printer.Message("account deleted")
			return nil
		})),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
