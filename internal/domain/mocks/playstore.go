package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/ports"
)

// PlayStore is an in-memory implementation of ports.PlayStore.
type PlayStore struct {
	Plays map[string]*entities.Play
	Info  map[string]entities.PlayMeta
	Audit []entities.AuditEntry

	// Err fails every call when set. SaveErr fails only SavePlay.
	Err     error
	SaveErr error

	mu sync.Mutex
}

// NewPlayStore creates a new mock PlayStore.
func NewPlayStore() *PlayStore {
	return &PlayStore{
		Plays: make(map[string]*entities.Play),
		Info:  make(map[string]entities.PlayMeta),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *PlayStore) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *PlayStore) Close() error {
	return nil
}

// SavePlay stores a play following the save mode rules.
func (m *PlayStore) SavePlay(_ context.Context, play *entities.Play, mode ports.SaveMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.SaveErr != nil {
		return m.SaveErr
	}

	key := play.Key()
	_, exists := m.Plays[key]
	switch mode {
	case ports.SaveNew:
		if exists {
			return fmt.Errorf("%w: %s", ports.ErrPlayExists, key)
		}
	case ports.SaveUpdate:
		if !exists {
			return fmt.Errorf("%w: %s", ports.ErrPlayNotFound, key)
		}
	case ports.SaveUpsert:
	default:
		return fmt.Errorf("unknown save mode %q", mode)
	}
	m.Plays[key] = play
	return nil
}

// FindPlay returns a stored play.
func (m *PlayStore) FindPlay(_ context.Context, corpusID, playID string) (*entities.Play, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	key := entities.PlayKey(corpusID, playID)
	play, ok := m.Plays[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrPlayNotFound, key)
	}
	return m.withInfo(play), nil
}

// ListPlays returns the stored plays of a corpus ordered by play id.
func (m *PlayStore) ListPlays(_ context.Context, corpusID string) ([]*entities.Play, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var plays []*entities.Play
	for _, p := range m.Plays {
		if p.CorpusID == corpusID {
			plays = append(plays, m.withInfo(p))
		}
	}
	// Sort by id for deterministic test results
	sort.Slice(plays, func(i, j int) bool {
		return plays[i].PlayID < plays[j].PlayID
	})
	return plays, nil
}

func (m *PlayStore) withInfo(p *entities.Play) *entities.Play {
	info, ok := m.Info[p.Key()]
	if !ok || (p.Title != "" && p.Year != 0) {
		return p
	}
	cp := *p
	if cp.Title == "" {
		cp.Title = info.Title
	}
	if cp.Year == 0 {
		cp.Year = info.Year
	}
	return &cp
}

// SavePlayInfo stores metadata. Empty values keep known ones.
func (m *PlayStore) SavePlayInfo(_ context.Context, meta entities.PlayMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	key := entities.PlayKey(meta.CorpusID, meta.PlayID)
	if old, ok := m.Info[key]; ok {
		if meta.Title == "" {
			meta.Title = old.Title
		}
		if meta.Year == 0 {
			meta.Year = old.Year
		}
	}
	m.Info[key] = meta
	return nil
}

// FindPlayInfo returns stored metadata.
func (m *PlayStore) FindPlayInfo(_ context.Context, corpusID, playID string) (*entities.PlayMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	key := entities.PlayKey(corpusID, playID)
	meta, ok := m.Info[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrPlayNotFound, key)
	}
	return &meta, nil
}

// PlayYears returns the known years of a corpus.
func (m *PlayStore) PlayYears(_ context.Context, corpusID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	years := make(map[string]int)
	for _, meta := range m.Info {
		if meta.CorpusID == corpusID && meta.Year != 0 {
			years[meta.PlayID] = meta.Year
		}
	}
	return years, nil
}

// LogAction records an audit entry.
func (m *PlayStore) LogAction(_ context.Context, entry *entities.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	entry.ID = int64(len(m.Audit) + 1)
	m.Audit = append(m.Audit, *entry)
	return nil
}

// FindAuditLog returns the entries of one run in insertion order.
func (m *PlayStore) FindAuditLog(_ context.Context, runID string) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var entries []entities.AuditEntry
	for _, e := range m.Audit {
		if e.RunID == runID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// FindAuditLogByAction returns the latest limit entries with action, newest first.
func (m *PlayStore) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var entries []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0 && len(entries) < limit; i-- {
		if m.Audit[i].Action == action {
			entries = append(entries, m.Audit[i])
		}
	}
	return entries, nil
}

// Actions returns the recorded audit actions in order.
func (m *PlayStore) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, len(m.Audit))
	for i, e := range m.Audit {
		actions[i] = e.Action
	}
	return actions
}
