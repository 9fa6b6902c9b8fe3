package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errText(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	registry := criteria.DefaultRegistry()

	rootCmd := &cobra.Command{
		Use:           "schein",
		Short:         "Admin CLI for Schein criteria evaluation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "info"
			if verbose {
				level = "debug"
			}
			slog.SetDefault(logger.New(cmd.ErrOrStderr(), "dev", level))
			if err := godotenv.Load(); err != nil {
				slog.Debug("no .env file loaded", "error", err)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newKindsCmd(registry),
		newValidateCmd(registry),
		newEvaluateCmd(registry),
		newImportCmd(registry),
	)
	return rootCmd
}
