// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

// Source retrieves raw corpus payloads from the upstream API.
// Implementations return payload text as-is; parsing happens elsewhere.
type Source interface {
	// ListPlays returns the plays of a corpus in upstream order.
	ListPlays(ctx context.Context, corpusID string) ([]entities.PlayMeta, error)

	// SpokenText returns the spoken-text-by-character JSON payload.
	SpokenText(ctx context.Context, corpusID, playID string) ([]byte, error)

	// StageDirections returns the stage directions as raw text.
	StageDirections(ctx context.Context, corpusID, playID string) (string, error)

	// RelationsGEXF returns the relation graph as a GEXF document.
	RelationsGEXF(ctx context.Context, corpusID, playID string) ([]byte, error)
}
