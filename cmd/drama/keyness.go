package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/drama-core/internal/application/handlers"
	"github.com/ersonp/drama-core/internal/domain/entities"
)

type keynessFlags struct {
	reference string
	lemmatize bool
	limit     int
	asJSON    bool
	output    string
	target    textFlags
	refText   textFlags
}

func newKeynessCmd() *cobra.Command {
	var flags keynessFlags

	cmd := &cobra.Command{
		Use:   "keyness <corpus>",
		Short: "Find words overused in one part of a corpus",
		Long: "Compares a target text selection against a reference selection with Dunning's " +
			"log-likelihood. Example: drama keyness rus --target by_gender --target-gender female " +
			"--ref by_gender --ref-gender male",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyness(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.reference, "reference-corpus", "", "Reference corpus (default: same corpus)")
	cmd.Flags().BoolVar(&flags.lemmatize, "lemmatize", false, "Compare lemmas instead of surface tokens")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultKeynessLimit, "Maximum number of items to print (0 for all)")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Print items as JSON")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	flags.target.register(cmd, "target", string(entities.TextAllSpoken))
	flags.refText.register(cmd, "ref", string(entities.TextAllStage))

	return cmd
}

func runKeyness(cmd *cobra.Command, corpusID string, flags keynessFlags) error {
	target, err := flags.target.query()
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	reference, err := flags.refText.query()
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}

	ctx := cmd.Context()

	return withAnalysis(ctx, func(_ *handlers.AggregateHandler, keyness *handlers.KeynessHandler) error {
		report, err := keyness.Handle(ctx, handlers.KeynessOptions{
			TargetCorpus:    corpusID,
			ReferenceCorpus: flags.reference,
			Target:          target,
			Reference:       reference,
			Lemmatize:       flags.lemmatize,
			Limit:           flags.limit,
		})
		if err != nil {
			return fmt.Errorf("computing keyness: %w", err)
		}
		printSkipped(os.Stderr, report.Skipped)

		items := report.Items
		if len(items) == 0 {
			fmt.Println("No items found (one of the selections is empty).")
			return nil
		}

		return writeOutput(flags.output, func(w io.Writer) error {
			if flags.asJSON {
				encoder := json.NewEncoder(w)
				encoder.SetIndent("", "  ")
				return encoder.Encode(items)
			}
			return formatKeyItems(w, items)
		}, len(items))
	})
}
