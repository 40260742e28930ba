package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codearcheologist/codearch-backend/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "worker",
		Short:         "Run the migration pipeline offline against a local legacy file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel, "development")
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")

	root.AddCommand(newMigrateCmd())
	return root
}
