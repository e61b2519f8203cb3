// Package sqlite provides a SQLite implementation of the PlayStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/infrastructure/config"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.PlayStore using SQLite.
type Repository struct {
	db *sql.DB
}

var _ ports.PlayStore = (*Repository)(nil)

// Pragmas applied to every pooled connection. WAL lets readers run beside a
// writer; busy_timeout makes concurrent writers wait instead of failing with
// SQLITE_BUSY.
var connPragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection to :memory: is a separate database
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite database: %w", err)
	}

	return &Repository{db: db}, nil
}

// dsn builds the connection string for path with connPragmas set.
func dsn(path string) string {
	params := make([]string, len(connPragmas))
	for i, p := range connPragmas {
		params[i] = "_pragma=" + p
	}
	query := strings.Join(params, "&")
	if path == ":memory:" {
		return path + "?" + query
	}
	return "file:" + path + "?" + query
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Merged play records (characters, relations, stage directions as JSON)
	CREATE TABLE IF NOT EXISTS plays (
		corpus_id TEXT NOT NULL,
		play_id TEXT NOT NULL,
		record TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (corpus_id, play_id)
	);

	-- Play metadata from the corpus listing and year tables
	CREATE TABLE IF NOT EXISTS play_info (
		corpus_id TEXT NOT NULL,
		play_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (corpus_id, play_id)
	);
	CREATE INDEX IF NOT EXISTS idx_play_info_year ON play_info(corpus_id, year);

	-- Audit log (ingest runs and per-play outcomes)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		action TEXT NOT NULL,
		corpus_id TEXT,
		play_id TEXT,
		details TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_run ON audit_log(run_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SavePlay stores a merged play record according to mode.
func (r *Repository) SavePlay(ctx context.Context, play *entities.Play, mode ports.SaveMode) error {
	data, err := json.Marshal(play)
	if err != nil {
		return fmt.Errorf("marshaling play: %w", err)
	}
	now := timeNow()

	var query string
	var args []any
	switch mode {
	case ports.SaveNew:
		query = `
			INSERT INTO plays (corpus_id, play_id, record, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(corpus_id, play_id) DO NOTHING
		`
		args = []any{play.CorpusID, play.PlayID, string(data), now, now}
	case ports.SaveUpdate:
		query = `UPDATE plays SET record = ?, updated_at = ? WHERE corpus_id = ? AND play_id = ?`
		args = []any{string(data), now, play.CorpusID, play.PlayID}
	case ports.SaveUpsert:
		query = `
			INSERT INTO plays (corpus_id, play_id, record, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(corpus_id, play_id) DO UPDATE SET
				record = excluded.record,
				updated_at = excluded.updated_at
		`
		args = []any{play.CorpusID, play.PlayID, string(data), now, now}
	default:
		return fmt.Errorf("unknown save mode %q", mode)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("saving play %s: %w", play.Key(), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		switch mode {
		case ports.SaveNew:
			return fmt.Errorf("%w: %s", ports.ErrPlayExists, play.Key())
		case ports.SaveUpdate:
			return fmt.Errorf("%w: %s", ports.ErrPlayNotFound, play.Key())
		}
	}
	return nil
}

// FindPlay loads a merged play. Title and year come from play_info when the
// record has none.
func (r *Repository) FindPlay(ctx context.Context, corpusID, playID string) (*entities.Play, error) {
	query := `
		SELECT p.record, COALESCE(i.title, ''), COALESCE(i.year, 0)
		FROM plays p
		LEFT JOIN play_info i ON i.corpus_id = p.corpus_id AND i.play_id = p.play_id
		WHERE p.corpus_id = ? AND p.play_id = ?
	`
	row := r.db.QueryRowContext(ctx, query, corpusID, playID)

	play, err := scanPlay(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ports.ErrPlayNotFound, entities.PlayKey(corpusID, playID))
	}
	if err != nil {
		return nil, err
	}
	return play, nil
}

// ListPlays loads all merged plays of a corpus ordered by play id.
func (r *Repository) ListPlays(ctx context.Context, corpusID string) ([]*entities.Play, error) {
	query := `
		SELECT p.record, COALESCE(i.title, ''), COALESCE(i.year, 0)
		FROM plays p
		LEFT JOIN play_info i ON i.corpus_id = p.corpus_id AND i.play_id = p.play_id
		WHERE p.corpus_id = ?
		ORDER BY p.play_id
	`
	rows, err := r.db.QueryContext(ctx, query, corpusID)
	if err != nil {
		return nil, fmt.Errorf("querying plays: %w", err)
	}
	defer rows.Close()

	var plays []*entities.Play
	for rows.Next() {
		play, err := scanPlay(rows)
		if err != nil {
			return nil, err
		}
		plays = append(plays, play)
	}
	return plays, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlay(row rowScanner) (*entities.Play, error) {
	var record, title string
	var year int
	if err := row.Scan(&record, &title, &year); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning play: %w", err)
	}

	var play entities.Play
	if err := json.Unmarshal([]byte(record), &play); err != nil {
		return nil, fmt.Errorf("unmarshaling play: %w", err)
	}
	if play.Characters == nil {
		play.Characters = make(map[string]*entities.Character)
	}
	if play.Title == "" {
		play.Title = title
	}
	if play.Year == 0 {
		play.Year = year
	}
	return &play, nil
}

// SavePlayInfo stores title/year metadata. Empty titles and zero years do
// not overwrite known values.
func (r *Repository) SavePlayInfo(ctx context.Context, meta entities.PlayMeta) error {
	query := `
		INSERT INTO play_info (corpus_id, play_id, title, year)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(corpus_id, play_id) DO UPDATE SET
			title = CASE WHEN excluded.title != '' THEN excluded.title ELSE play_info.title END,
			year = CASE WHEN excluded.year != 0 THEN excluded.year ELSE play_info.year END
	`
	_, err := r.db.ExecContext(ctx, query, meta.CorpusID, meta.PlayID, meta.Title, meta.Year)
	if err != nil {
		return fmt.Errorf("saving play info: %w", err)
	}
	return nil
}

// FindPlayInfo loads play metadata.
func (r *Repository) FindPlayInfo(ctx context.Context, corpusID, playID string) (*entities.PlayMeta, error) {
	query := `SELECT corpus_id, play_id, title, year FROM play_info WHERE corpus_id = ? AND play_id = ?`
	row := r.db.QueryRowContext(ctx, query, corpusID, playID)

	var meta entities.PlayMeta
	err := row.Scan(&meta.CorpusID, &meta.PlayID, &meta.Title, &meta.Year)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ports.ErrPlayNotFound, entities.PlayKey(corpusID, playID))
	}
	if err != nil {
		return nil, fmt.Errorf("scanning play info: %w", err)
	}
	return &meta, nil
}

// PlayYears returns play id -> year for every play of the corpus with a
// known year.
func (r *Repository) PlayYears(ctx context.Context, corpusID string) (map[string]int, error) {
	query := `SELECT play_id, year FROM play_info WHERE corpus_id = ? AND year != 0`
	rows, err := r.db.QueryContext(ctx, query, corpusID)
	if err != nil {
		return nil, fmt.Errorf("querying play years: %w", err)
	}
	defer rows.Close()

	years := make(map[string]int)
	for rows.Next() {
		var playID string
		var year int
		if err := rows.Scan(&playID, &year); err != nil {
			return nil, fmt.Errorf("scanning play year: %w", err)
		}
		years[playID] = year
	}
	return years, rows.Err()
}

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, entry *entities.AuditEntry) error {
	var detailsJSON sql.NullString
	if entry.Details != nil {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = timeNow()
	}

	query := `
		INSERT INTO audit_log (run_id, action, corpus_id, play_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		entry.RunID,
		entry.Action,
		nullString(entry.CorpusID),
		nullString(entry.PlayID),
		detailsJSON,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// FindAuditLog finds audit log entries of one run, oldest first.
func (r *Repository) FindAuditLog(ctx context.Context, runID string) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, run_id, action, corpus_id, play_id, details, created_at
		FROM audit_log
		WHERE run_id = ?
		ORDER BY id
	`
	return r.queryAuditLog(ctx, query, runID)
}

// FindAuditLogByAction finds the most recent audit log entries by action type.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, run_id, action, corpus_id, play_id, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY id DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, action, limit)
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		var entry entities.AuditEntry
		var corpusID, playID, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.RunID,
			&entry.Action,
			&corpusID,
			&playID,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.CorpusID = corpusID.String
		entry.PlayID = playID.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
