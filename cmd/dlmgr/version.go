package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/dlmgr/internal/version"
)

func newVersionCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, flags)
			if err != nil {
				return err
			}
			return printer.Print(version.Read())
		},
	}
}
