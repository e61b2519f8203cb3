package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/domain/services"
)

// PlaysHandler reads stored play records.
type PlaysHandler struct {
	store ports.PlayStore
}

// NewPlaysHandler creates a new plays handler.
func NewPlaysHandler(store ports.PlayStore) *PlaysHandler {
	return &PlaysHandler{
		store: store,
	}
}

// PlaySummary is the listing view of a stored play.
type PlaySummary struct {
	PlayID     string
	Title      string
	Year       int
	Characters int
	Stage      int
}

// List returns the stored plays of a corpus ordered by play id.
func (h *PlaysHandler) List(ctx context.Context, corpusID string) ([]PlaySummary, error) {
	plays, err := h.store.ListPlays(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("listing plays: %w", err)
	}

	summaries := make([]PlaySummary, len(plays))
	for i, p := range plays {
		summaries[i] = PlaySummary{
			PlayID:     p.PlayID,
			Title:      p.Title,
			Year:       p.Year,
			Characters: len(p.Characters),
			Stage:      len(p.StageDirections),
		}
	}
	return summaries, nil
}

// Show returns one stored play.
func (h *PlaysHandler) Show(ctx context.Context, corpusID, playID string) (*entities.Play, error) {
	play, err := h.store.FindPlay(ctx, corpusID, playID)
	if err != nil {
		return nil, fmt.Errorf("finding play: %w", err)
	}
	return play, nil
}

// Text returns the selected text of one stored play.
func (h *PlaysHandler) Text(ctx context.Context, corpusID, playID string, q entities.TextQuery) ([]entities.SpeakerText, error) {
	play, err := h.Show(ctx, corpusID, playID)
	if err != nil {
		return nil, err
	}
	return services.SelectText(play, q)
}

// AuditLog returns the audit entries of an ingest run.
func (h *PlaysHandler) AuditLog(ctx context.Context, runID string) ([]entities.AuditEntry, error) {
	entries, err := h.store.FindAuditLog(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}

// RecentActions returns the latest limit audit entries with action, newest
// first. A limit below 1 means one entry.
func (h *PlaysHandler) RecentActions(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if limit < 1 {
		limit = 1
	}
	entries, err := h.store.FindAuditLogByAction(ctx, action, limit)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}
