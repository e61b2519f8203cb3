package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/domain/services"
)

// KeynessHandler compares the text of two sub-corpora.
type KeynessHandler struct {
	store     ports.PlayStore
	analyzers ports.AnalyzerRegistry
	stopWords map[string][]string
	logger    *slog.Logger
}

// NewKeynessHandler creates a new keyness handler. stopWords maps corpus
// ids to words excluded from counts.
func NewKeynessHandler(store ports.PlayStore, analyzers ports.AnalyzerRegistry, stopWords map[string][]string, logger *slog.Logger) *KeynessHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeynessHandler{
		store:     store,
		analyzers: analyzers,
		stopWords: stopWords,
		logger:    logger,
	}
}

// KeynessOptions describes the two sub-corpora.
type KeynessOptions struct {
	TargetCorpus    string
	ReferenceCorpus string // Defaults to TargetCorpus
	Target          entities.TextQuery
	Reference       entities.TextQuery
	Lemmatize       bool // Compare lemmas instead of surface tokens
	Limit           int  // Keep only the first Limit items; 0 keeps all
}

// KeynessReport holds the key items and the plays left out of either
// sub-corpus.
type KeynessReport struct {
	Items   []services.KeyItem
	Skipped []services.PlayOutcome
}

// Handle returns the key items of the target sub-corpus. A play whose text
// cannot be lemmatized is reported in Skipped and left out of the counts.
func (h *KeynessHandler) Handle(ctx context.Context, opts KeynessOptions) (*KeynessReport, error) {
	if opts.ReferenceCorpus == "" {
		opts.ReferenceCorpus = opts.TargetCorpus
	}
	if err := services.ValidateTextQuery(opts.Target); err != nil {
		return nil, fmt.Errorf("target corpus: %w", err)
	}
	if err := services.ValidateTextQuery(opts.Reference); err != nil {
		return nil, fmt.Errorf("reference corpus: %w", err)
	}

	report := &KeynessReport{}
	target, err := h.subCorpus(ctx, opts.TargetCorpus, opts.Target, opts.Lemmatize, report)
	if err != nil {
		return nil, fmt.Errorf("target corpus: %w", err)
	}
	reference, err := h.subCorpus(ctx, opts.ReferenceCorpus, opts.Reference, opts.Lemmatize, report)
	if err != nil {
		return nil, fmt.Errorf("reference corpus: %w", err)
	}

	stops := append([]string{}, h.stopWords[opts.TargetCorpus]...)
	if opts.ReferenceCorpus != opts.TargetCorpus {
		stops = append(stops, h.stopWords[opts.ReferenceCorpus]...)
	}

	items := services.Keyness(target, reference, stops)
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	report.Items = items
	return report, nil
}

// subCorpus returns one entry per stored play, each a list of lines. Plays
// that fail are appended to report.Skipped.
func (h *KeynessHandler) subCorpus(ctx context.Context, corpusID string, q entities.TextQuery, lemmatize bool, report *KeynessReport) ([][]string, error) {
	var analyzer ports.Analyzer
	if lemmatize {
		a, err := h.analyzers.For(corpusID)
		if err != nil {
			return nil, err
		}
		analyzer = a
	}

	plays, err := h.store.ListPlays(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("loading plays: %w", err)
	}

	corpus := make([][]string, 0, len(plays))
	for _, play := range plays {
		lines, err := playLines(ctx, analyzer, play, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			h.logger.Warn("skipping play", "corpus", corpusID, "play", play.PlayID, "error", err)
			report.Skipped = append(report.Skipped, services.PlayOutcome{
				CorpusID: corpusID,
				PlayID:   play.PlayID,
				Status:   services.OutcomeFailed,
				Err:      err,
			})
			continue
		}
		corpus = append(corpus, lines)
	}
	return corpus, nil
}

// playLines selects the text of play, lemmatized when analyzer is set.
func playLines(ctx context.Context, analyzer ports.Analyzer, play *entities.Play, q entities.TextQuery) ([]string, error) {
	texts, err := services.SelectText(play, q)
	if err != nil {
		return nil, err
	}
	lines := services.FlattenText(texts)
	if analyzer == nil {
		return lines, nil
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		lemmas, err := analyzer.Lemmatize(ctx, line)
		if err != nil {
			return nil, fmt.Errorf("lemmatizing %s: %w", play.PlayID, err)
		}
		out[i] = strings.Join(lemmas, " ")
	}
	return out, nil
}
