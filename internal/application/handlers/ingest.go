package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/domain/services"
	"github.com/ersonp/drama-core/internal/infrastructure/parsers"
)

// IngestHandler downloads, merges and stores the plays of a corpus.
type IngestHandler struct {
	source ports.Source
	store  ports.PlayStore
	batch  *services.BatchMerger
	logger *slog.Logger

	newRunID func() string
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(source ports.Source, store ports.PlayStore, batch *services.BatchMerger, logger *slog.Logger) *IngestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestHandler{
		source:   source,
		store:    store,
		batch:    batch,
		logger:   logger,
		newRunID: func() string { return uuid.New().String() },
	}
}

// IngestOptions controls ingestion behavior.
type IngestOptions struct {
	Workers int            // Plays processed concurrently (minimum 1)
	Mode    ports.SaveMode // How existing records are treated
	Plays   []string       // Restrict the run to these play ids
	// Progress is called once per finished play, never concurrently.
	Progress func(services.PlayOutcome)
}

// IngestReport contains the per-play outcomes of one run, in corpus order.
type IngestReport struct {
	RunID    string
	Corpus   string
	Outcomes []services.PlayOutcome
	Duration time.Duration
}

// Merged returns the number of plays merged and saved.
func (r *IngestReport) Merged() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == services.OutcomeMerged {
			n++
		}
	}
	return n
}

// Failures returns the failed outcomes.
func (r *IngestReport) Failures() []services.PlayOutcome {
	var failed []services.PlayOutcome
	for _, o := range r.Outcomes {
		if o.Status == services.OutcomeFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Handle ingests a corpus. Per-play failures are reported in the outcomes and
// never stop sibling plays; only listing the corpus or a canceled context
// fails the run as a whole.
func (h *IngestHandler) Handle(ctx context.Context, corpusID string, opts IngestOptions) (*IngestReport, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Mode == "" {
		opts.Mode = ports.SaveUpsert
	}

	started := time.Now()
	report := &IngestReport{RunID: h.newRunID(), Corpus: corpusID}
	logger := h.logger.With("run_id", report.RunID, "corpus", corpusID)

	plays, err := h.source.ListPlays(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("listing corpus %s: %w", corpusID, err)
	}
	plays = filterPlays(plays, opts.Plays)
	logger.Info("ingest started", "plays", len(plays), "workers", opts.Workers)

	for _, meta := range plays {
		if err := h.store.SavePlayInfo(ctx, meta); err != nil {
			return nil, fmt.Errorf("saving play info %s: %w", meta.PlayID, err)
		}
	}

	report.Outcomes = make([]services.PlayOutcome, len(plays))
	var progressMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, meta := range plays {
		i, meta := i, meta
		g.Go(func() error {
			outcome := h.ingestPlay(gctx, logger, report.RunID, meta, opts.Mode)
			report.Outcomes[i] = outcome
			if opts.Progress != nil {
				progressMu.Lock()
				opts.Progress(outcome)
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	report.Duration = time.Since(started)

	failed := len(report.Failures())
	summary := &entities.AuditEntry{
		RunID:    report.RunID,
		Action:   entities.ActionIngestSummary,
		CorpusID: corpusID,
		Details: map[string]any{
			"plays":       len(plays),
			"merged":      report.Merged(),
			"failed":      failed,
			"duration_ms": report.Duration.Milliseconds(),
		},
	}
	if err := h.store.LogAction(ctx, summary); err != nil {
		logger.Warn("writing ingest summary", "error", err)
	}
	logger.Info("ingest finished", "merged", report.Merged(), "failed", failed)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (h *IngestHandler) ingestPlay(ctx context.Context, logger *slog.Logger, runID string, meta entities.PlayMeta, mode ports.SaveMode) services.PlayOutcome {
	logger = logger.With("play", meta.PlayID)

	raw, err := h.fetch(ctx, meta)
	if err != nil {
		logger.Warn("fetch failed", "error", err)
		h.audit(ctx, logger, runID, entities.ActionFetchFailed, meta, map[string]any{"error": err.Error()})
		return services.PlayOutcome{
			CorpusID: meta.CorpusID,
			PlayID:   meta.PlayID,
			Status:   services.OutcomeFailed,
			Err:      err,
		}
	}

	outcome := h.batch.Process(*raw)
	if outcome.Status == services.OutcomeFailed {
		h.audit(ctx, logger, runID, entities.ActionMergeFailed, meta, map[string]any{"error": outcome.Err.Error()})
		return outcome
	}

	if err := h.store.SavePlay(ctx, outcome.Play, mode); err != nil {
		logger.Warn("save failed", "error", err)
		h.audit(ctx, logger, runID, entities.ActionSaveFailed, meta, map[string]any{"error": err.Error()})
		outcome.Status = services.OutcomeFailed
		outcome.Play = nil
		outcome.Err = fmt.Errorf("saving play: %w", err)
		return outcome
	}

	logger.Debug("play merged", "characters", len(outcome.Play.Characters))
	h.audit(ctx, logger, runID, entities.ActionPlayMerged, meta, map[string]any{
		"characters":   len(outcome.Play.Characters),
		"unrecognized": len(outcome.Unrecognized),
	})
	return outcome
}

// fetch downloads and parses the three payloads of a play.
func (h *IngestHandler) fetch(ctx context.Context, meta entities.PlayMeta) (*services.RawPlay, error) {
	spoken, err := h.source.SpokenText(ctx, meta.CorpusID, meta.PlayID)
	if err != nil {
		return nil, fmt.Errorf("fetching spoken text: %w", err)
	}
	characters, err := parsers.ParseSpoken(bytes.NewReader(spoken))
	if err != nil {
		return nil, err
	}

	stage, err := h.source.StageDirections(ctx, meta.CorpusID, meta.PlayID)
	if err != nil {
		return nil, fmt.Errorf("fetching stage directions: %w", err)
	}

	gexf, err := h.source.RelationsGEXF(ctx, meta.CorpusID, meta.PlayID)
	if err != nil {
		return nil, fmt.Errorf("fetching relations: %w", err)
	}
	graph, err := parsers.ParseGEXF(bytes.NewReader(gexf))
	if err != nil {
		return nil, err
	}

	return &services.RawPlay{
		Meta:            meta,
		Characters:      characters,
		StageDirections: parsers.ParseStage(stage),
		Graph:           graph,
	}, nil
}

func (h *IngestHandler) audit(ctx context.Context, logger *slog.Logger, runID, action string, meta entities.PlayMeta, details map[string]any) {
	entry := &entities.AuditEntry{
		RunID:    runID,
		Action:   action,
		CorpusID: meta.CorpusID,
		PlayID:   meta.PlayID,
		Details:  details,
	}
	if err := h.store.LogAction(ctx, entry); err != nil {
		logger.Warn("writing audit entry", "action", action, "error", err)
	}
}

func filterPlays(plays []entities.PlayMeta, only []string) []entities.PlayMeta {
	if len(only) == 0 {
		return plays
	}
	keep := make(map[string]bool, len(only))
	for _, id := range only {
		keep[id] = true
	}
	filtered := make([]entities.PlayMeta, 0, len(only))
	for _, p := range plays {
		if keep[p.PlayID] {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
