package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ersonp/drama-core/internal/application/handlers"
	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/services"
)

type aggregateFlags struct {
	format  string
	output  string
	workers int
	text    textFlags
}

func newAggregateCmd() *cobra.Command {
	var flags aggregateFlags

	cmd := &cobra.Command{
		Use:   "aggregate <corpus>",
		Short: "Compute per-play part-of-speech shares",
		Long: "Tags the stored text of every dated play and writes one row per play with the " +
			"shares of nouns, verbs, adjectives, adverbs and prepositions, sorted by year.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregate(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "csv", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVar(&flags.workers, "workers", 1, "Plays tagged concurrently")
	flags.text.register(cmd, "text", string(entities.TextAllSpoken))

	return cmd
}

func runAggregate(cmd *cobra.Command, corpusID string, flags aggregateFlags) error {
	if !contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}
	q, err := flags.text.query()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	return withAnalysis(ctx, func(aggregate *handlers.AggregateHandler, _ *handlers.KeynessHandler) error {
		report, err := aggregate.Handle(ctx, corpusID, handlers.AggregateOptions{Query: q, Workers: flags.workers})
		if err != nil {
			return fmt.Errorf("aggregating %s: %w", corpusID, err)
		}
		printSkipped(os.Stderr, report.Skipped)

		records := report.Records
		if len(records) == 0 {
			return fmt.Errorf("no dated plays with text in corpus %s", corpusID)
		}

		return writeOutput(flags.output, func(w io.Writer) error {
			return formatRecords(w, flags.format, records)
		}, len(records))
	})
}

// printSkipped lists plays left out of a result.
func printSkipped(w io.Writer, skipped []services.PlayOutcome) {
	for _, o := range skipped {
		fmt.Fprintf(w, "  skip  %s: %v\n", o.PlayID, o.Err)
	}
	if len(skipped) > 0 {
		fmt.Fprintf(w, "%d plays skipped\n", len(skipped))
	}
}

// writeOutput runs write against stdout or the named file.
func writeOutput(output string, write func(io.Writer) error, rows int) (err error) {
	var w io.Writer = os.Stdout
	var f *os.File

	if output != "" {
		f, err = os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	}

	if err := write(w); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if output != "" {
		fmt.Printf("Exported %d rows to %s\n", rows, output)
	}
	return nil
}

func formatRecords(w io.Writer, format string, records []entities.CorpusRecord) error {
	switch format {
	case "json":
		return formatRecordsJSON(w, records)
	case "csv":
		return formatRecordsCSV(w, records)
	case "markdown":
		return formatRecordsMarkdown(w, records)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func formatRecordsJSON(w io.Writer, records []entities.CorpusRecord) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

func formatRecordsCSV(w io.Writer, records []entities.CorpusRecord) error {
	writer := csv.NewWriter(w)

	header := append([]string{"play_id", "year", "tokens"}, entities.TrackedPOS...)
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{r.PlayID, strconv.Itoa(r.Year), strconv.Itoa(r.Tokens)}
		for _, pos := range entities.TrackedPOS {
			row = append(row, strconv.FormatFloat(r.Share(pos), 'f', 6, 64))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatRecordsMarkdown(w io.Writer, records []entities.CorpusRecord) error {
	if _, err := fmt.Fprint(w, "| Play | Year | Tokens | NOUN | VERB | ADJ | ADVB | PREP |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|------|------|--------|------|------|-----|------|------|\n"); err != nil {
		return err
	}

	for _, r := range records {
		if _, err := fmt.Fprintf(w, "| %s | %d | %d | %.3f | %.3f | %.3f | %.3f | %.3f |\n",
			r.PlayID, r.Year, r.Tokens, r.Noun, r.Verb, r.Adj, r.Advb, r.Prep,
		); err != nil {
			return err
		}
	}
	return nil
}

func formatKeyItems(w io.Writer, items []services.KeyItem) error {
	if _, err := fmt.Fprintf(w, "%-24s %10s %10s %12s\n", "item", "target", "reference", "LL"); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := fmt.Fprintf(w, "%-24s %10d %10d %12.3f\n",
			it.Item, it.TargetFreq, it.ReferenceFreq, it.LogLikelihood); err != nil {
			return err
		}
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
