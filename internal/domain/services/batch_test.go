package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

func newTestBatchMerger() *BatchMerger {
	return NewBatchMerger(newTestParser(), newTestMerger(nil))
}

func rawPlay(playID string, edges ...entities.GraphEdge) RawPlay {
	return RawPlay{
		Meta:       entities.PlayMeta{CorpusID: "rus", PlayID: playID},
		Characters: rawCharacters("a", "b"),
		Graph:      &entities.RelationGraph{Edges: edges},
	}
}

func TestBatchMerger_MergeAll_IsolatesFailure(t *testing.T) {
	const n = 5
	plays := make([]RawPlay, 0, n)
	for i := 0; i < n; i++ {
		edge := entities.GraphEdge{Source: "a", Target: "b", Directed: true, Label: "siblings"}
		if i == 2 {
			edge.Target = "ghost"
		}
		plays = append(plays, rawPlay(fmt.Sprintf("play-%d", i), edge))
	}

	report := newTestBatchMerger().MergeAll(plays)

	require.Len(t, report.Outcomes, n)
	merged := report.Merged()
	assert.Len(t, merged, n-1)
	for _, p := range merged {
		assert.NotEqual(t, "play-2", p.PlayID)
		assert.True(t, p.Character("a").HasRelation(entities.RelationSiblings))
	}

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "play-2", failures[0].PlayID)
	assert.Nil(t, failures[0].Play)
	assert.True(t, failures[0].IsMergeInconsistency())
}

func TestBatchMerger_Process_CarriesUnrecognized(t *testing.T) {
	outcome := newTestBatchMerger().Process(rawPlay("p",
		entities.GraphEdge{Source: "a", Target: "b", Directed: true, Label: "enemy_of"},
	))

	assert.Equal(t, OutcomeMerged, outcome.Status)
	require.Len(t, outcome.Unrecognized, 1)
	assert.Equal(t, "enemy_of", outcome.Unrecognized[0].Label)
	assert.Empty(t, outcome.Play.Character("a").Relations)
}

func TestBatchMerger_Process_NoGraph(t *testing.T) {
	raw := rawPlay("p")
	raw.Graph = nil

	outcome := newTestBatchMerger().Process(raw)

	assert.Equal(t, OutcomeMerged, outcome.Status)
	assert.NoError(t, outcome.Err)
	assert.Len(t, outcome.Play.Characters, 2)
}

func TestBatchMerger_MergeAll_Empty(t *testing.T) {
	report := newTestBatchMerger().MergeAll(nil)
	assert.Empty(t, report.Outcomes)
	assert.Empty(t, report.Merged())
	assert.Empty(t, report.Failures())
}
