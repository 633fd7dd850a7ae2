package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/dlmgr/internal/appconfig"
)

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the client config file",
	}
	var overwrite bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := appconfig.WriteDefault(flags.configPath, overwrite)
			if err != nil {
				return err
			}
			printer, err := newPrinter(cmd, flags)
			if err != nil {
				return err
			}
			printer.Message("wrote " + path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&overwrite, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(flags.configPath)
			if err != nil {
				return err
			}
			printer, err := newPrinter(cmd, flags)
			if err != nil {
				return err
			}
			return printer.Print(cfg)
		},
	})
	return cmd
}
