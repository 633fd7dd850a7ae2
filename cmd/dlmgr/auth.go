package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/dlmgr/internal/credential"
	"pkt.systems/dlmgr/schema"
)

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var passwordFromStdin bool
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and store the access token",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withClient(flags, func(ctx context.Context, rt *runtime, args []string) error {
		var (
			password string
			err      error
		)
		if passwordFromStdin {
			password, err = readLine(cmd.InOrStdin())
		} else {
			password, err = readSecret(cmd, "Password: ")
		}
		if err != nil {
			return err
		}
		if err := rt.app.Session.Login(ctx, args[0], password); err != nil {
			return err
		}
		user := rt.app.Session.User().Get()
		if user == nil {
			return schema.ErrNotAuthenticated
		}
		rt.printer.Message("logged in as " + user.Username)
		return nil
	})
	cmd.Flags().BoolVar(&passwordFromStdin, "password-from-stdin", false, "read password from stdin")
	return cmd
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: withClient(flags, func(ctx context.Context, rt *runtime, args []string) error {
			rt.app.Session.Logout()
			rt.printer.Message("logged out")
			return nil
		}),
	}
}

// whoamiResult adds token details to the user record.
type whoamiResult struct {
	schema.User
	TokenExpires *time.Time `json:"token_expires,omitempty"`
}

func newWhoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			token, _ := rt.app.Credentials.Get()
			if claims, err := credential.ParseClaims(token); err == nil && claims.Expired(time.Now()) {
				return errors.New("stored token has expired (run dlmgr login)")
			}
			if err := rt.app.Session.LoadUser(ctx); err != nil {
				return err
			}
			user := rt.app.Session.User().Get()
			if user == nil {
				return schema.ErrNotAuthenticated
			}
			out := whoamiResult{User: *user}
			if claims, err := credential.ParseClaims(token); err == nil && !claims.ExpiresAt.IsZero() {
				expires := claims.ExpiresAt
				out.TokenExpires = &expires
			}
			return rt.printer.Print(out)
		})),
	}
}

func newRegisterCmd(flags *globalFlags) *cobra.Command {
	var email string
	var passwordFromStdin bool
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withClient(flags, func(ctx context.Context, rt *runtime, args []string) error {
		if strings.TrimSpace(email) == "" {
			return errors.New("--email is required")
		}
		password, err := newPassword(cmd, passwordFromStdin)
		if err != nil {
			return err
		}
		return rt.printResult(rt.api.Register(ctx, schema.RegisterRequest{
			Username: args[0],
			Email:    email,
			Password: password,
		}))
	})
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().BoolVar(&passwordFromStdin, "password-from-stdin", false, "read password from stdin")
	return cmd
}

func newPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		password, err := readLine(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		if password == "" {
			return "", errors.New("password from stdin is empty")
		}
		return password, nil
	}
	return readNewSecret(cmd, "Password: ")
}
