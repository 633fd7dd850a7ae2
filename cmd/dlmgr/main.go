package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/dlmgr/internal/appconfig"
	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	if err := appconfig.LoadDotEnv(); err != nil {
		logger.With("err", err).Error("dlmgr env load failed")
		return 1
	}

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("dlmgr command failed")
		return 1
	}
	return 0
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	output     string
	query      string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "dlmgr",
		Short:         "Command-line client for the download manager",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVarP(&flags.output, "output", "o", "table", "output format (table, json, yaml)")
	root.PersistentFlags().StringVarP(&flags.query, "query", "q", "", "JMESPath query applied to the result")

	root.AddCommand(newLoginCmd(flags))
	root.AddCommand(newLogoutCmd(flags))
	root.AddCommand(newWhoamiCmd(flags))
	root.AddCommand(newRegisterCmd(flags))
	root.AddCommand(newStatusCmd(flags))
	root.AddCommand(newWatchCmd(flags))
	root.AddCommand(newAccountCmd(flags))
	root.AddCommand(newUsersCmd(flags))
	root.AddCommand(newConfigsCmd(flags))
	root.AddCommand(newURLsCmd(flags))
	root.AddCommand(newJobsCmd(flags))
	root.AddCommand(newFilesCmd(flags))
	root.AddCommand(newLogsCmd(flags))
	root.AddCommand(newSystemCmd(flags))
	root.AddCommand(newTasksCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	root.AddCommand(newVersionCmd(flags))

	return root
}
