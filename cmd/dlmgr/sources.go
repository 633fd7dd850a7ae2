package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/dlmgr/apiclient"
	"pkt.systems/dlmgr/schema"
)

// namedFamily binds the list/get/save/delete calls of a named-text resource.
type namedFamily struct {
	noun   string
	list   func(*apiclient.Client, context.Context) ([]schema.NamedItem, error)
	get    func(*apiclient.Client, context.Context, string) (schema.Content, error)
	save   func(*apiclient.Client, context.Context, string, string) error
	delete func(*apiclient.Client, context.Context, string) error
}

var (
	configFamily = namedFamily{
		noun:   "config",
		list:   (*apiclient.Client).ListConfigs,
		get:    (*apiclient.Client).GetConfig,
		save:   (*apiclient.Client).SaveConfig,
		delete: (*apiclient.Client).DeleteConfig,
	}
	urlFamily = namedFamily{
		noun:   "url list",
		list:   (*apiclient.Client).ListURLSources,
		get:    (*apiclient.Client).GetURLSource,
		save:   (*apiclient.Client).SaveURLSource,
		delete: (*apiclient.Client).DeleteURLSource,
	}
)

func newConfigsCmd(flags *globalFlags) *cobra.Command {
	cmd := namedFamilyCmd(flags, "configs", "Manage downloader configs", configFamily)
	cmd.AddCommand(&cobra.Command{
		Use:   "cookies <file>",
		Short: "Upload a cookies file",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()
			msg, err := rt.api.UploadCookies(ctx, args[0], file)
			if err != nil {
				return err
			}
			rt.printer.Message(msg.Message)
			return nil
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset-archive",
		Short: "Forget which items were already downloaded",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			msg, err := rt.api.ResetArchive(ctx)
			if err != nil {
				return err
			}
			rt.printer.Message(msg.Message)
			return nil
		})),
	})
	return cmd
}

func newURLsCmd(flags *globalFlags) *cobra.Command {
	return namedFamilyCmd(flags, "urls", "Manage URL lists", urlFamily)
}

func namedFamilyCmd(flags *globalFlags, use, short string, family namedFamily) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List " + family.noun + "s",
		Args:  cobra.NoArgs,
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			return rt.printResult(family.list(rt.api, ctx))
		})),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Print a " + family.noun,
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			content, err := family.get(rt.api, ctx, args[0])
			if err != nil {
				return err
			}
			if flags.query == "" && (flags.output == "" || flags.output == "table") {
				return rt.printer.Print(content.Content)
			}
			return rt.printer.Print(content)
		})),
	})
	save := &cobra.Command{
		Use:   "save <name> <file|->",
		Short: "Create or replace a " + family.noun,
		Args:  cobra.ExactArgs(2),
	}
	save.RunE = withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
		content, err := readInput(save, args[1])
		if err != nil {
			return err
		}
		if err := family.save(rt.api, ctx, args[0], content); err != nil {
			return err
		}
		rt.printer.Message(family.noun + " saved")
		return nil
	}))
	cmd.AddCommand(save)
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a " + family.noun,
		Args:  cobra.ExactArgs(1),
		RunE: withClient(flags, authed(func(ctx context.Context, rt *runtime, args []string) error {
			if err := family.delete(rt.api, ctx, args[0]); err != nil {
				return err
			}
			rt.printer.Message(family.noun + " deleted")
			return nil
		})),
	})
	return cmd
}
