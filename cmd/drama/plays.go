package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/drama-core/internal/application/handlers"
	"github.com/ersonp/drama-core/internal/domain/entities"
)

func newPlaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plays <corpus>",
		Short: "List stored plays of a corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				summaries, err := d.PlaysHandler.List(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(summaries) == 0 {
					fmt.Printf("No plays stored for corpus %s.\n", args[0])
					return nil
				}
				displaySummaries(summaries)
				return nil
			})
		},
	}
}

func displaySummaries(summaries []handlers.PlaySummary) {
	fmt.Printf("Showing %d plays:\n\n", len(summaries))
	for _, s := range summaries {
		year := "----"
		if s.Year != 0 {
			year = fmt.Sprintf("%4d", s.Year)
		}
		fmt.Printf("%s  %-40s %3d characters, %4d stage lines", year, s.PlayID, s.Characters, s.Stage)
		if s.Title != "" {
			fmt.Printf("  %s", s.Title)
		}
		fmt.Println()
	}
}

type showFlags struct {
	asJSON bool
	text   textFlags
}

func newShowCmd() *cobra.Command {
	var flags showFlags

	cmd := &cobra.Command{
		Use:   "show <corpus> <play>",
		Short: "Show a stored play record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Print the full record as JSON")
	flags.text.register(cmd, "text", "")

	return cmd
}

func runShow(cmd *cobra.Command, corpusID, playID string, flags showFlags) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		if flags.text.textType != "" {
			q, err := flags.text.query()
			if err != nil {
				return err
			}
			texts, err := d.PlaysHandler.Text(ctx, corpusID, playID, q)
			if err != nil {
				return err
			}
			displayText(texts)
			return nil
		}

		play, err := d.PlaysHandler.Show(ctx, corpusID, playID)
		if err != nil {
			return err
		}

		if flags.asJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(play)
		}
		displayPlay(play)
		return nil
	})
}

func displayPlay(play *entities.Play) {
	fmt.Printf("%s/%s", play.CorpusID, play.PlayID)
	if play.Title != "" {
		fmt.Printf(" - %s", play.Title)
	}
	if play.Year != 0 {
		fmt.Printf(" (%d)", play.Year)
	}
	fmt.Printf("\n\nCharacters (%d):\n", len(play.Characters))

	for _, id := range play.CharacterIDs() {
		c := play.Characters[id]
		group := ""
		if c.IsGroup {
			group = ", group"
		}
		fmt.Printf("  %s [%s%s] %s, %d lines\n", id, c.Gender, group, c.Name, len(c.Spoken))
		if len(c.Relations) > 0 {
			kinds := make([]string, len(c.Relations))
			for i, k := range c.Relations {
				kinds[i] = string(k)
			}
			fmt.Printf("    relations: %s\n", strings.Join(kinds, ", "))
		}
	}

	fmt.Printf("\nStage directions (%d lines)\n", len(play.StageDirections))
	for i, line := range play.StageDirections {
		if i == DefaultShowLines {
			fmt.Println("  ...")
			break
		}
		fmt.Printf("  %s\n", line)
	}
}

func displayText(texts []entities.SpeakerText) {
	for _, t := range texts {
		speaker := t.SpeakerID
		if speaker == "" {
			speaker = "(stage)"
		}
		fmt.Printf("%s:\n", speaker)
		for _, line := range t.Lines {
			fmt.Printf("  %s\n", line)
		}
	}
}

type auditFlags struct {
	action string
	limit  int
}

func newAuditCmd() *cobra.Command {
	var flags auditFlags

	cmd := &cobra.Command{
		Use:   "audit [run-id]",
		Short: "Show the audit log of an ingest run",
		Long: `Show the audit log of an ingest run.

Without a run id, --action lists the latest entries of that action across runs,
e.g. "drama audit --action ingest_summary" for recent ingest runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.action, "action", "a", "", "List the latest entries with this action instead of one run")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultAuditLimit, "Maximum number of entries with --action")

	return cmd
}

func runAudit(cmd *cobra.Command, args []string, flags auditFlags) error {
	if len(args) == 0 && flags.action == "" {
		return errors.New("either a run id or --action is required")
	}
	if len(args) == 1 && flags.action != "" {
		return errors.New("a run id and --action cannot be combined")
	}

	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		var entries []entities.AuditEntry
		var err error
		if flags.action != "" {
			entries, err = d.PlaysHandler.RecentActions(ctx, flags.action, flags.limit)
		} else {
			entries, err = d.PlaysHandler.AuditLog(ctx, args[0])
		}
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			if flags.action != "" {
				fmt.Printf("No audit entries with action %s.\n", flags.action)
			} else {
				fmt.Printf("No audit entries for run %s.\n", args[0])
			}
			return nil
		}
		printAuditEntries(os.Stdout, entries, flags.action != "")
		return nil
	})
}

// printAuditEntries writes one line per entry, with the run id when the
// entries span runs.
func printAuditEntries(w io.Writer, entries []entities.AuditEntry, withRun bool) {
	for _, e := range entries {
		run := ""
		if withRun {
			run = e.RunID + "  "
		}
		fmt.Fprintf(w, "%s  %s%-15s %s/%s  %v\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), run, e.Action, e.CorpusID, e.PlayID, e.Details)
	}
}
