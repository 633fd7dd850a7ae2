package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pkt.systems/dlmgr/internal/version"
	"pkt.systems/dlmgr/schema"
)

func newSystemCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Inspect and control the server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Report downloader tool availability",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.SystemCheck(ctx))
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show application information",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.AppInfo(ctx))
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "server",
		Short: "Show host resources",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.ServerInfo(ctx))
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "env",
		Short: "Show the server environment",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(rt.api.EnvConfig(ctx))
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "env-set <KEY=VALUE>...",
		Short: "Update server environment values",
		Args:  cobra.MinimumNArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			values, err := parseAssignments(args)
			if err != nil {
				return err
			}
			return rt.printResult(rt.api.UpdateEnvConfig(ctx, values))
		})),
	})
	cmd.AddCommand(systemActionCmd(flags, "upgrade", "Upgrade the downloader tool",
		func(ctx context.Context, rt *runtime) (schema.ActionResult, error) {
			return rt.api.UpgradeDownloader(ctx)
		}))
	cmd.AddCommand(systemActionCmd(flags, "restart", "Restart the server",
		func(ctx context.Context, rt *runtime) (schema.ActionResult, error) { return rt.api.RestartServer(ctx) }))
	cmd.AddCommand(systemActionCmd(flags, "shutdown", "Shut the server down",
		func(ctx context.Context, rt *runtime) (schema.ActionResult, error) { return rt.api.ShutdownServer(ctx) }))
	return cmd
}

func systemActionCmd(flags *globalFlags, use, short string, action func(context.Context, *runtime) (schema.ActionResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			result, err := action(ctx, rt)
			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("%s failed: %s", use, result.Message)
			}
			return rt.printer.Print(result)
		})),
	}
}

// parseAssignments turns KEY=VALUE pairs into env values. "true" and "false"
// become booleans; everything else stays a string.
func parseAssignments(args []string) (schema.EnvConfig, error) {
	values := schema.EnvConfig{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q (want KEY=VALUE)", arg)
		}
		switch value {
		case "true":
			values[key] = true
		case "false":
			values[key] = false
		default:
			values[key] = value
		}
	}
	return values, nil
}

// statusReport combines the server's liveness, version and tool check.
type statusReport struct {
	Server   string              `json:"server"`
	Health   string              `json:"health"`
	Version  string              `json:"version,omitempty"`
	Client   string              `json:"client"`
	User     string              `json:"user,omitempty"`
	Tools    *schema.SystemCheck `json:"tools,omitempty"`
	Problems []string            `json:"problems,omitempty"`
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, func(ctx context.Context, rt *runtime, args []string) error {
			report := statusReport{Server: rt.api.BaseURL(), Client: version.Current()}
			var (
				health  schema.Health
				ver     schema.Version
				tools   schema.SystemCheck
				me      schema.User
				verErr  error
				toolErr error
				meErr   error
			)
			loggedIn := rt.app.Credentials.Has()
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				health, err = rt.api.HealthCheck(gctx)
				return err
			})
			g.Go(func() error {
				ver, verErr = rt.api.Version(gctx)
				return nil
			})
			if loggedIn {
				g.Go(func() error {
					tools, toolErr = rt.api.SystemCheck(gctx)
					return nil
				})
				g.Go(func() error {
					me, meErr = rt.api.GetMe(gctx)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			report.Health = health.Status
			if verErr != nil {
				report.Problems = append(report.Problems, "version: "+verErr.Error())
			} else {
				report.Version = ver.Version
			}
			if loggedIn {
				if meErr != nil {
					report.Problems = append(report.Problems, "session: "+meErr.Error())
				} else {
					report.User = me.Username
				}
				if toolErr != nil {
					report.Problems = append(report.Problems, "system check: "+toolErr.Error())
				} else {
					report.Tools = &tools
				}
			}
			return rt.printer.Print(report)
		}),
	}
}
