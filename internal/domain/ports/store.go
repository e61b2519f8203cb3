package ports

import (
	"context"
	"errors"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

var (
	// ErrPlayExists is returned by SaveNew when the play is already stored.
	ErrPlayExists = errors.New("play already exists")
	// ErrPlayNotFound is returned when a stored play is required but missing.
	ErrPlayNotFound = errors.New("play not found")
)

// SaveMode controls how SavePlay treats an existing record.
type SaveMode string

const (
	// SaveNew creates the record and fails if it already exists.
	SaveNew SaveMode = "new"
	// SaveUpdate replaces an existing record and fails if it is missing.
	SaveUpdate SaveMode = "upd"
	// SaveUpsert creates or replaces.
	SaveUpsert SaveMode = "upsert"
)

// PlayStore persists merged play records and their metadata.
type PlayStore interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// SavePlay stores a merged play record.
	SavePlay(ctx context.Context, play *entities.Play, mode SaveMode) error

	// FindPlay loads a merged play. Returns ErrPlayNotFound if absent.
	FindPlay(ctx context.Context, corpusID, playID string) (*entities.Play, error)

	// ListPlays loads all merged plays of a corpus ordered by play id.
	ListPlays(ctx context.Context, corpusID string) ([]*entities.Play, error)

	// SavePlayInfo stores title/year metadata from the corpus listing.
	SavePlayInfo(ctx context.Context, meta entities.PlayMeta) error

	// FindPlayInfo loads play metadata. Returns ErrPlayNotFound if absent.
	FindPlayInfo(ctx context.Context, corpusID, playID string) (*entities.PlayMeta, error)

	// PlayYears returns play id -> year for every play with a known year.
	PlayYears(ctx context.Context, corpusID string) (map[string]int, error)

	// LogAction writes an audit entry.
	LogAction(ctx context.Context, entry *entities.AuditEntry) error

	// FindAuditLog returns the audit entries of one run, oldest first.
	FindAuditLog(ctx context.Context, runID string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction returns the latest limit entries with action,
	// newest first.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
