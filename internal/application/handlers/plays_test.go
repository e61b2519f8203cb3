package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/mocks"
	"github.com/ersonp/drama-core/internal/domain/ports"
)

func TestPlaysHandler_List(t *testing.T) {
	store := mocks.NewPlayStore()
	seedStore(t, store, []*entities.Play{
		storedPlay("rus", "gogol-revizor", map[string][]string{"osip": {"Чёрт побери."}}, "Комната.", "Входит Осип."),
		storedPlay("rus", "chekhov-chaika", map[string][]string{"nina": {"Я чайка."}, "trigorin": {}}),
	}, map[string]int{"gogol-revizor": 1836})

	summaries, err := NewPlaysHandler(store).List(testContext(t), "rus")

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, PlaySummary{PlayID: "chekhov-chaika", Characters: 2}, summaries[0])
	assert.Equal(t, PlaySummary{PlayID: "gogol-revizor", Year: 1836, Characters: 1, Stage: 2}, summaries[1])
}

func TestPlaysHandler_Show(t *testing.T) {
	store := mocks.NewPlayStore()
	seedStore(t, store, []*entities.Play{
		storedPlay("rus", "gogol-revizor", map[string][]string{"osip": {"Чёрт побери."}}),
	}, nil)
	handler := NewPlaysHandler(store)

	play, err := handler.Show(testContext(t), "rus", "gogol-revizor")
	require.NoError(t, err)
	assert.Equal(t, []string{"osip"}, play.CharacterIDs())

	_, err = handler.Show(testContext(t), "rus", "missing")
	require.ErrorIs(t, err, ports.ErrPlayNotFound)
}

func TestPlaysHandler_Text(t *testing.T) {
	store := mocks.NewPlayStore()
	seedStore(t, store, []*entities.Play{
		storedPlay("rus", "gogol-revizor", map[string][]string{"osip": {"Чёрт побери."}}, "Комната."),
	}, nil)
	handler := NewPlaysHandler(store)

	texts, err := handler.Text(testContext(t), "rus", "gogol-revizor", entities.TextQuery{Type: entities.TextAll})
	require.NoError(t, err)
	assert.Equal(t, []entities.SpeakerText{
		{SpeakerID: "osip", Lines: []string{"Чёрт побери."}},
		{Lines: []string{"Комната."}},
	}, texts)
}

func TestPlaysHandler_AuditLog(t *testing.T) {
	store := mocks.NewPlayStore()
	require.NoError(t, store.LogAction(testContext(t), &entities.AuditEntry{RunID: "r1", Action: entities.ActionPlayMerged}))
	require.NoError(t, store.LogAction(testContext(t), &entities.AuditEntry{RunID: "r2", Action: entities.ActionIngestSummary}))

	entries, err := NewPlaysHandler(store).AuditLog(testContext(t), "r1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.ActionPlayMerged, entries[0].Action)

	store.Err = errors.New("closed")
	_, err = NewPlaysHandler(store).AuditLog(testContext(t), "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading audit log")
}

func TestPlaysHandler_RecentActions(t *testing.T) {
	store := mocks.NewPlayStore()
	for _, run := range []string{"r1", "r2", "r3"} {
		require.NoError(t, store.LogAction(testContext(t), &entities.AuditEntry{RunID: run, Action: entities.ActionPlayMerged}))
		require.NoError(t, store.LogAction(testContext(t), &entities.AuditEntry{RunID: run, Action: entities.ActionIngestSummary}))
	}
	handler := NewPlaysHandler(store)

	entries, err := handler.RecentActions(testContext(t), entities.ActionIngestSummary, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "r3", entries[0].RunID)
	assert.Equal(t, "r2", entries[1].RunID)

	entries, err = handler.RecentActions(testContext(t), entities.ActionIngestSummary, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	store.Err = errors.New("closed")
	_, err = handler.RecentActions(testContext(t), entities.ActionIngestSummary, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading audit log")
}
