package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/domain/services"
)

// AggregateHandler builds the per-play POS share table of a corpus.
type AggregateHandler struct {
	store      ports.PlayStore
	analyzers  ports.AnalyzerRegistry
	aggregator *services.CorpusRecordAggregator
	logger     *slog.Logger
}

// NewAggregateHandler creates a new aggregate handler.
func NewAggregateHandler(store ports.PlayStore, analyzers ports.AnalyzerRegistry, aggregator *services.CorpusRecordAggregator, logger *slog.Logger) *AggregateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AggregateHandler{
		store:      store,
		analyzers:  analyzers,
		aggregator: aggregator,
		logger:     logger,
	}
}

// AggregateOptions controls aggregation.
type AggregateOptions struct {
	Query   entities.TextQuery // Defaults to all spoken text
	Workers int                // Plays tagged concurrently (minimum 1)
}

// AggregateReport holds the share rows and the plays left out because
// their text could not be selected or tagged.
type AggregateReport struct {
	Records []entities.CorpusRecord
	Skipped []services.PlayOutcome
}

// Handle tags the selected text of every stored play with a known year and
// returns the share rows sorted by year. A play that fails is reported in
// Skipped and does not affect the others.
func (h *AggregateHandler) Handle(ctx context.Context, corpusID string, opts AggregateOptions) (*AggregateReport, error) {
	if opts.Query.Type == "" {
		opts.Query.Type = entities.TextAllSpoken
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if err := services.ValidateTextQuery(opts.Query); err != nil {
		return nil, err
	}

	analyzer, err := h.analyzers.For(corpusID)
	if err != nil {
		return nil, err
	}

	years, err := h.store.PlayYears(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("loading years: %w", err)
	}
	plays, err := h.store.ListPlays(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("loading plays: %w", err)
	}

	dated := make([]*entities.Play, 0, len(plays))
	for _, p := range plays {
		if _, ok := years[p.PlayID]; ok {
			dated = append(dated, p)
			continue
		}
		h.logger.Debug("skipping play without year", "corpus", corpusID, "play", p.PlayID)
	}

	tagged := make([]entities.PlayTags, len(dated))
	failed := make([]error, len(dated))
	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, play := range dated {
		i, play := i, play
		g.Go(func() error {
			lines, err := h.tagPlay(ctx, analyzer, play, opts.Query)
			if err != nil {
				failed[i] = err
				return nil
			}
			tagged[i] = entities.PlayTags{PlayID: play.PlayID, Lines: lines}
			return nil
		})
	}
	_ = g.Wait() // workers record failures instead of returning them

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &AggregateReport{}
	ok := make([]entities.PlayTags, 0, len(dated))
	for i, play := range dated {
		if failed[i] != nil {
			h.logger.Warn("skipping play", "corpus", corpusID, "play", play.PlayID, "error", failed[i])
			report.Skipped = append(report.Skipped, services.PlayOutcome{
				CorpusID: corpusID,
				PlayID:   play.PlayID,
				Status:   services.OutcomeFailed,
				Err:      failed[i],
			})
			continue
		}
		ok = append(ok, tagged[i])
	}

	report.Records = h.aggregator.Aggregate(ok, years)
	h.logger.Info("corpus aggregated",
		"corpus", corpusID, "plays", len(plays), "rows", len(report.Records), "skipped", len(report.Skipped))
	return report, nil
}

func (h *AggregateHandler) tagPlay(ctx context.Context, analyzer ports.Analyzer, play *entities.Play, q entities.TextQuery) ([][]string, error) {
	texts, err := services.SelectText(play, q)
	if err != nil {
		return nil, err
	}
	lines := services.FlattenText(texts)
	tags := make([][]string, 0, len(lines))
	for _, line := range lines {
		lt, err := analyzer.Tag(ctx, line)
		if err != nil {
			return nil, fmt.Errorf("tagging %s: %w", play.PlayID, err)
		}
		tags = append(tags, lt)
	}
	return tags, nil
}
