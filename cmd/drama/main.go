// Package main provides the entry point for the drama CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0-dev"
	globalVerbose bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:          "drama",
		Short:        "Download, merge and analyze DraCor play corpora",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Log debug diagnostics to stderr")

	rootCmd.AddCommand(
		newInitCmd(),
		newIngestCmd(),
		newPlaysCmd(),
		newShowCmd(),
		newYearsCmd(),
		newAggregateCmd(),
		newKeynessCmd(),
		newAuditCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
