package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/mocks"
	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/domain/services"
	"github.com/ersonp/drama-core/internal/logging"
)

const goreSpoken = `[
	{"id": "famusov", "label": "Фамусов", "gender": "MALE", "isGroup": false, "text": ["Ба! знакомые всё лица!"]},
	{"id": "sofya", "label": "Софья", "gender": "UNKNOWN", "isGroup": false, "text": ["Ах, батюшка, сон в руку."]},
	{"id": "liza", "label": "Лиза", "gender": "FEMALE", "isGroup": false, "text": []}
]`

const goreGEXF = `<?xml version="1.0" encoding="UTF-8"?>
<gexf xmlns="http://www.gexf.net/1.3" version="1.3">
  <graph defaultedgetype="undirected">
    <attributes class="node"><attribute id="0" title="gender" type="string"/></attributes>
    <nodes>
      <node id="famusov" label="Фамусов"/>
      <node id="sofya" label="Софья"><attvalues><attvalue for="0" value="FEMALE"/></attvalues></node>
      <node id="liza" label="Лиза"/>
    </nodes>
    <edges>
      <edge source="famusov" target="sofya" label="parent_of" type="directed"/>
      <edge source="sofya" target="liza" label="associated_with"/>
    </edges>
  </graph>
</gexf>`

// brokenGEXF references a character the spoken payload does not list.
const brokenGEXF = `<gexf><graph defaultedgetype="undirected">
	<nodes><node id="osip" label="Осип"/></nodes>
	<edges><edge source="osip" target="anna" label="lover_of"/></edges>
</graph></gexf>`

const revizorSpoken = `[{"id": "osip", "label": "Осип", "gender": "MALE", "isGroup": false, "text": ["Чёрт побери."]}]`

func discardLogger() *slog.Logger {
	return logging.New(io.Discard, "test", slog.LevelDebug, false)
}

func newTestIngestHandler(source *mocks.Source, store *mocks.PlayStore) *IngestHandler {
	parser := services.NewRelationGraphParser(entities.DefaultRelationVocabulary(), discardLogger())
	merger := services.NewCharacterRecordMerger(services.NewIdentifierReconciler(nil), discardLogger())
	h := NewIngestHandler(source, store, services.NewBatchMerger(parser, merger), discardLogger())
	h.newRunID = func() string { return "run-1" }
	return h
}

func TestIngestHandler_Handle_Success(t *testing.T) {
	source := mocks.NewSource()
	source.AddPlay(entities.PlayMeta{CorpusID: "rus", PlayID: "griboedov-gore-ot-uma", Title: "Горе от ума", Year: 1825},
		goreSpoken, "Гостиная.\n\nФамусов входит.", goreGEXF)
	store := mocks.NewPlayStore()

	report, err := newTestIngestHandler(source, store).Handle(testContext(t), "rus", IngestOptions{})

	require.NoError(t, err)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "rus", report.Corpus)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, services.OutcomeMerged, report.Outcomes[0].Status)
	assert.Equal(t, 1, report.Merged())
	assert.Empty(t, report.Failures())

	play, err := store.FindPlay(testContext(t), "rus", "griboedov-gore-ot-uma")
	require.NoError(t, err)
	assert.Equal(t, "Горе от ума", play.Title)
	assert.Equal(t, 1825, play.Year)
	assert.Equal(t, []string{"Гостиная.", "Фамусов входит."}, play.StageDirections)
	assert.Equal(t, []string{"famusov", "liza", "sofya"}, play.CharacterIDs())

	sofya := play.Character("sofya")
	assert.Equal(t, entities.GenderFemale, sofya.Gender)
	assert.ElementsMatch(t, []entities.RelationKind{entities.RelationChild, entities.RelationAssociatedWith}, sofya.Relations)
	assert.Equal(t, []entities.RelationKind{entities.RelationParent}, play.Character("famusov").Relations)
	assert.Equal(t, []entities.RelationKind{entities.RelationAssociatedWith}, play.Character("liza").Relations)

	years, err := store.PlayYears(testContext(t), "rus")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"griboedov-gore-ot-uma": 1825}, years)

	assert.Equal(t, []string{entities.ActionPlayMerged, entities.ActionIngestSummary}, store.Actions())
	summary := store.Audit[1]
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 1, summary.Details["merged"])
	assert.Equal(t, 0, summary.Details["failed"])
}

func TestIngestHandler_Handle_FailuresDoNotStopSiblings(t *testing.T) {
	source := mocks.NewSource()
	source.AddPlay(entities.PlayMeta{CorpusID: "rus", PlayID: "gogol-revizor"}, revizorSpoken, "", brokenGEXF)
	source.AddPlay(entities.PlayMeta{CorpusID: "rus", PlayID: "griboedov-gore-ot-uma"}, goreSpoken, "", goreGEXF)
	source.AddPlay(entities.PlayMeta{CorpusID: "rus", PlayID: "ostrovsky-groza"}, "", "", "")
	source.Errors[entities.PlayKey("rus", "ostrovsky-groza")] = errors.New("HTTP 500")
	store := mocks.NewPlayStore()

	report, err := newTestIngestHandler(source, store).Handle(testContext(t), "rus", IngestOptions{Workers: 1})

	require.NoError(t, err)
	require.Len(t, report.Outcomes, 3)

	revizor := report.Outcomes[0]
	assert.Equal(t, services.OutcomeFailed, revizor.Status)
	assert.True(t, revizor.IsMergeInconsistency())
	var mergeErr *services.MergeError
	require.ErrorAs(t, revizor.Err, &mergeErr)
	assert.Equal(t, "anna", mergeErr.CharacterID)
	assert.Nil(t, revizor.Play)

	assert.Equal(t, services.OutcomeMerged, report.Outcomes[1].Status)

	groza := report.Outcomes[2]
	assert.Equal(t, services.OutcomeFailed, groza.Status)
	assert.False(t, groza.IsMergeInconsistency())
	assert.Contains(t, groza.Err.Error(), "HTTP 500")

	assert.Equal(t, 1, report.Merged())
	assert.Len(t, report.Failures(), 2)
	assert.Len(t, store.Plays, 1)
	assert.Equal(t, []string{
		entities.ActionMergeFailed,
		entities.ActionPlayMerged,
		entities.ActionFetchFailed,
		entities.ActionIngestSummary,
	}, store.Actions())
}

func TestIngestHandler_Handle_ParallelWorkers(t *testing.T) {
	source := mocks.NewSource()
	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		source.AddPlay(entities.PlayMeta{CorpusID: "rus", PlayID: id}, goreSpoken, "", goreGEXF)
	}
	store := mocks.NewPlayStore()

	var progressed []string
	report, err := newTestIngestHandler(source, store).Handle(testContext(t), "rus", IngestOptions{
		Workers:  3,
		Progress: func(o services.PlayOutcome) { progressed = append(progressed, o.PlayID) },
	})

	require.NoError(t, err)
	require.Len(t, report.Outcomes, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, report.Outcomes[i].PlayID)
		assert.Equal(t, services.OutcomeMerged, report.Outcomes[i].Status)
	}
	assert.ElementsMatch(t, ids, progressed)
	assert.Len(t, store.Plays, len(ids))
}

func TestIngestHandler_Handle_PlayFilter(t *testing.T) {
	source := mocks.NewSource()
	source.AddPlay(entities.PlayMeta{CorpusID: "rus", PlayID: "gogol-revizor"}, revizorSpoken, "", brokenGEXF)
	source.AddPlay(entities.PlayMeta{CorpusID: "rus", PlayID: "griboedov-gore-ot-uma"}, goreSpoken, "", goreGEXF)
	store := mocks.NewPlayStore()

	report, err := newTestIngestHandler(source, store).Handle(testContext(t), "rus", IngestOptions{
		Plays: []string{"griboedov-gore-ot-uma"},
	})

	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "griboedov-gore-ot-uma", report.Outcomes[0].PlayID)
	assert.NotContains(t, source.Calls, "spoken:rus/gogol-revizor")
}

func TestIngestHandler_Handle_SaveModes(t *testing.T) {
	source := mocks.NewSource()
	source.AddPlay(entities.PlayMeta{CorpusID: "rus", PlayID: "griboedov-gore-ot-uma"}, goreSpoken, "", goreGEXF)

	tests := []struct {
		name      string
		existing  bool
		mode      ports.SaveMode
		wantErr   error
		wantSaved bool
	}{
		{name: "new on empty store", mode: ports.SaveNew, wantSaved: true},
		{name: "new on existing play", existing: true, mode: ports.SaveNew, wantErr: ports.ErrPlayExists},
		{name: "update on missing play", mode: ports.SaveUpdate, wantErr: ports.ErrPlayNotFound},
		{name: "update on existing play", existing: true, mode: ports.SaveUpdate, wantSaved: true},
		{name: "upsert", mode: ports.SaveUpsert, wantSaved: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewPlayStore()
			if tt.existing {
				old := entities.NewPlay("rus", "griboedov-gore-ot-uma")
				require.NoError(t, store.SavePlay(testContext(t), old, ports.SaveNew))
			}

			report, err := newTestIngestHandler(source, store).Handle(testContext(t), "rus", IngestOptions{Mode: tt.mode})
			require.NoError(t, err)
			outcome := report.Outcomes[0]

			if tt.wantErr != nil {
				assert.Equal(t, services.OutcomeFailed, outcome.Status)
				require.ErrorIs(t, outcome.Err, tt.wantErr)
				assert.Equal(t, entities.ActionSaveFailed, store.Actions()[0])
				return
			}
			assert.Equal(t, services.OutcomeMerged, outcome.Status)
			play, err := store.FindPlay(testContext(t), "rus", "griboedov-gore-ot-uma")
			require.NoError(t, err)
			assert.Len(t, play.Characters, 3)
		})
	}
}

func TestIngestHandler_Handle_ListError(t *testing.T) {
	source := mocks.NewSource()
	source.ListErr = errors.New("connection refused")
	store := mocks.NewPlayStore()

	_, err := newTestIngestHandler(source, store).Handle(testContext(t), "rus", IngestOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing corpus rus")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, store.Audit)
}

func TestIngestHandler_Handle_CanceledContext(t *testing.T) {
	source := mocks.NewSource()
	source.AddPlay(entities.PlayMeta{CorpusID: "rus", PlayID: "griboedov-gore-ot-uma"}, goreSpoken, "", goreGEXF)
	store := mocks.NewPlayStore()

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	report, err := newTestIngestHandler(source, store).Handle(ctx, "rus", IngestOptions{})

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Len(t, report.Outcomes, 1)
}
