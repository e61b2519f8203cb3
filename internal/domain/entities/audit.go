package entities

import "time"

// Audit actions written by the ingest pipeline.
const (
	ActionPlayMerged    = "play_merged"
	ActionMergeFailed   = "merge_failed"
	ActionFetchFailed   = "fetch_failed"
	ActionSaveFailed    = "save_failed"
	ActionIngestSummary = "ingest_summary"
)

// AuditEntry represents a logged action in the system.
type AuditEntry struct {
	ID        int64          `json:"id"`
	RunID     string         `json:"run_id"`
	Action    string         `json:"action"`
	CorpusID  string         `json:"corpus_id,omitempty"`
	PlayID    string         `json:"play_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
