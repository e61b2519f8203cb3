package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/drama-core/internal/application/handlers"
)

type yearsFlags struct {
	format string
	dryRun bool
}

func newYearsCmd() *cobra.Command {
	var flags yearsFlags

	cmd := &cobra.Command{
		Use:   "years <corpus> <file>",
		Short: "Import play years from JSON or CSV",
		Long:  "Imports a play_id,year table for plays whose corpus listing has no normalized year.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runYears(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")

	return cmd
}

func runYears(cmd *cobra.Command, corpusID, filePath string, flags yearsFlags) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		fmt.Printf("Importing %s...\n", filePath)

		result, err := d.YearsHandler.Handle(ctx, corpusID, filePath, handlers.YearsOptions{
			Format: flags.format,
			DryRun: flags.dryRun,
		})
		if err != nil {
			return fmt.Errorf("importing years: %w", err)
		}

		if flags.dryRun {
			fmt.Printf("Dry run: %d years would be imported", result.Imported)
		} else {
			fmt.Printf("Imported: %d years", result.Imported)
		}
		if len(result.Skipped) > 0 {
			fmt.Printf(", %d skipped (year 0)", len(result.Skipped))
		}
		fmt.Println()

		return nil
	})
}
