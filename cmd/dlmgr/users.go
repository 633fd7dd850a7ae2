package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"pkt.systems/dlmgr/schema"
)

func newUsersCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer user accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.ListUsers(ctx))
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Synchronise users with the server's download folders",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.SyncUsers(ctx))
		})),
	})
	cmd.AddCommand(newUsersCreateCmd(flags))
	cmd.AddCommand(newUsersUpdateCmd(flags))
	cmd.AddCommand(newUsersPasswdCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			id, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			if err := rt.api.DeleteUser(ctx, schema.UserID(id)); err != nil {
				return err
			}
			rt.printer.Message("user deleted")
			return nil
		})),
	})
	return cmd
}

func newUsersCreateCmd(flags *globalFlags) *cobra.Command {
	var email string
	var passwordFromStdin bool
	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
		if email == "" {
			return errors.New("--email is required")
		}
		password, err := newPassword(cmd, passwordFromStdin)
		if err != nil {
			return err
		}
		return rt.printResult(rt.api.CreateUser(ctx, schema.RegisterRequest{
			Username: args[0],
			Email:    email,
			Password: password,
		}))
	}))
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().BoolVar(&passwordFromStdin, "password-from-stdin", false, "read password from stdin")
	return cmd
}

func newUsersUpdateCmd(flags *globalFlags) *cobra.Command {
	var username, email string
	var admin bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user's name, email or admin flag",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
		id, err := parseID(args[0], "user")
		if err != nil {
			return err
		}
		var update schema.UserUpdate
		if cmd.Flags().Changed("username") {
			update.Username = &username
		}
		if cmd.Flags().Changed("email") {
			update.Email = &email
		}
		if cmd.Flags().Changed("admin") {
			update.IsAdmin = &admin
		}
		if update == (schema.UserUpdate{}) {
			return errors.New("nothing to update")
		}
		return rt.printResult(rt.api.UpdateUser(ctx, schema.UserID(id), update))
	}))
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&email, "email", "", "new email address")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant or revoke admin rights")
	return cmd
}

func newUsersPasswdCmd(flags *globalFlags) *cobra.Command {
	var passwordFromStdin bool
	cmd := &cobra.Command{
		Use:   "passwd <id>",
		Short: "Set a user's password",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
		id, err := parseID(args[0], "user")
		if err != nil {
			return err
		}
		password, err := newPassword(cmd, passwordFromStdin)
		if err != nil {
			return err
		}
		msg, err := rt.api.SetUserPassword(ctx, schema.UserID(id), password)
		if err != nil {
			return err
		}
		rt.printer.Message(msg.Message)
		return nil
	}))
	cmd.Flags().BoolVar(&passwordFromStdin, "password-from-stdin", false, "read password from stdin")
	return cmd
}
