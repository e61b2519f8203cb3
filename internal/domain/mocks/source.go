// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

// Source is a mock implementation of ports.Source.
// Payloads are keyed by entities.PlayKey(corpus, play).
type Source struct {
	Plays  map[string][]entities.PlayMeta
	Spoken map[string][]byte
	Stage  map[string]string
	GEXF   map[string][]byte

	// Errors keyed by play key fail every fetch of that play.
	Errors  map[string]error
	ListErr error

	mu    sync.Mutex
	Calls []string
}

// NewSource creates a new mock Source.
func NewSource() *Source {
	return &Source{
		Plays:  make(map[string][]entities.PlayMeta),
		Spoken: make(map[string][]byte),
		Stage:  make(map[string]string),
		GEXF:   make(map[string][]byte),
		Errors: make(map[string]error),
	}
}

// AddPlay registers the payloads of one play.
func (m *Source) AddPlay(meta entities.PlayMeta, spoken, stage, gexf string) {
	key := entities.PlayKey(meta.CorpusID, meta.PlayID)
	m.Plays[meta.CorpusID] = append(m.Plays[meta.CorpusID], meta)
	m.Spoken[key] = []byte(spoken)
	m.Stage[key] = stage
	m.GEXF[key] = []byte(gexf)
}

func (m *Source) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// ListPlays returns the configured plays of a corpus.
func (m *Source) ListPlays(_ context.Context, corpusID string) ([]entities.PlayMeta, error) {
	m.record("list:" + corpusID)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Plays[corpusID], nil
}

// SpokenText returns the configured spoken payload.
func (m *Source) SpokenText(_ context.Context, corpusID, playID string) ([]byte, error) {
	key := entities.PlayKey(corpusID, playID)
	m.record("spoken:" + key)
	if err := m.Errors[key]; err != nil {
		return nil, err
	}
	data, ok := m.Spoken[key]
	if !ok {
		return nil, fmt.Errorf("no spoken payload for %s", key)
	}
	return data, nil
}

// StageDirections returns the configured stage payload.
func (m *Source) StageDirections(_ context.Context, corpusID, playID string) (string, error) {
	key := entities.PlayKey(corpusID, playID)
	m.record("stage:" + key)
	if err := m.Errors[key]; err != nil {
		return "", err
	}
	return m.Stage[key], nil
}

// RelationsGEXF returns the configured relation graph payload.
func (m *Source) RelationsGEXF(_ context.Context, corpusID, playID string) ([]byte, error) {
	key := entities.PlayKey(corpusID, playID)
	m.record("gexf:" + key)
	if err := m.Errors[key]; err != nil {
		return nil, err
	}
	data, ok := m.GEXF[key]
	if !ok {
		return nil, fmt.Errorf("no relation payload for %s", key)
	}
	return data, nil
}
