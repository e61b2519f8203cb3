package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/drama-core/internal/application/handlers"
	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/domain/services"
)

type ingestFlags struct {
	all     bool
	mode    string
	workers int
	plays   []string
}

func newIngestCmd() *cobra.Command {
	var flags ingestFlags

	cmd := &cobra.Command{
		Use:   "ingest [corpus...]",
		Short: "Download and merge the plays of one or more corpora",
		Long: "Downloads spoken text, stage directions and relation graphs from DraCor, " +
			"merges them into one record per play and stores the records in SQLite.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "Ingest every corpus listed in the config")
	cmd.Flags().StringVar(&flags.mode, "mode", string(ports.SaveUpsert), "Save mode (new, upd, upsert)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Plays processed concurrently (default: ingest.workers)")
	cmd.Flags().StringSliceVar(&flags.plays, "play", nil, "Only ingest these play ids")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string, flags ingestFlags) error {
	mode := ports.SaveMode(flags.mode)
	if mode != ports.SaveNew && mode != ports.SaveUpdate && mode != ports.SaveUpsert {
		return fmt.Errorf("invalid --mode value %q (valid: new, upd, upsert)", flags.mode)
	}

	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		corpora := args
		if flags.all {
			corpora = d.Config.Ingest.Corpora
		}
		if len(corpora) == 0 {
			return fmt.Errorf("no corpus given (pass corpus ids or --all)")
		}

		workers := flags.workers
		if workers == 0 {
			workers = d.Config.Ingest.Workers
		}

		for _, corpus := range corpora {
			fmt.Printf("Ingesting corpus %s...\n", corpus)

			report, err := d.IngestHandler.Handle(ctx, corpus, handlers.IngestOptions{
				Workers:  workers,
				Mode:     mode,
				Plays:    flags.plays,
				Progress: printOutcome,
			})
			if err != nil {
				return fmt.Errorf("ingesting %s: %w", corpus, err)
			}

			fmt.Printf("Corpus %s: %d merged, %d failed in %s (run %s)\n",
				corpus, report.Merged(), len(report.Failures()), report.Duration.Round(time.Millisecond), report.RunID)
		}
		return nil
	})
}

func printOutcome(o services.PlayOutcome) {
	switch {
	case o.Status == services.OutcomeMerged:
		fmt.Printf("  ok    %s (%d characters)\n", o.PlayID, len(o.Play.Characters))
	case o.IsMergeInconsistency():
		fmt.Printf("  merge %s: %v\n", o.PlayID, o.Err)
	default:
		fmt.Printf("  fail  %s: %v\n", o.PlayID, o.Err)
	}
}
