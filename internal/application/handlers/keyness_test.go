package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/mocks"
	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/domain/services"
)

func genderedPlay(playID string) *entities.Play {
	play := entities.NewPlay("rus", playID)
	he := entities.NewCharacter("he", "Он", entities.GenderMale, false)
	he.Spoken = []string{"служить бы рад", "служить , служить"}
	she := entities.NewCharacter("she", "Она", entities.GenderFemale, false)
	she.Spoken = []string{"любовь и сон", "любви"}
	play.Characters["he"] = he
	play.Characters["she"] = she
	return play
}

func TestKeynessHandler_Handle_ByGender(t *testing.T) {
	store := mocks.NewPlayStore()
	seedStore(t, store, []*entities.Play{genderedPlay("p1"), genderedPlay("p2")}, nil)

	handler := NewKeynessHandler(store, mocks.AnalyzerRegistry{}, map[string][]string{"rus": {"и", "бы"}}, discardLogger())

	report, err := handler.Handle(testContext(t), KeynessOptions{
		TargetCorpus: "rus",
		Target:       entities.TextQuery{Type: entities.TextByGender, Gender: entities.GenderFemale},
		Reference:    entities.TextQuery{Type: entities.TextByGender, Gender: entities.GenderMale},
	})

	require.NoError(t, err)
	assert.Empty(t, report.Skipped)
	items := report.Items
	require.NotEmpty(t, items)

	byItem := make(map[string]int)
	for i, it := range items {
		byItem[it.Item] = i
	}
	assert.NotContains(t, byItem, "и")
	assert.NotContains(t, byItem, "бы")
	assert.NotContains(t, byItem, ",")

	// Female-only words rank above male-only ones.
	assert.Greater(t, items[byItem["любовь"]].LogLikelihood, 0.0)
	assert.Less(t, items[byItem["служить"]].LogLikelihood, 0.0)
	assert.Equal(t, 6, items[byItem["служить"]].ReferenceFreq)
	assert.Equal(t, "служить", items[len(items)-1].Item)
}

func TestKeynessHandler_Handle_Lemmatized(t *testing.T) {
	store := mocks.NewPlayStore()
	seedStore(t, store, []*entities.Play{genderedPlay("p1")}, nil)

	analyzer := &mocks.Analyzer{Lemmas: map[string]string{"любви": "любовь"}}
	handler := NewKeynessHandler(store, mocks.AnalyzerRegistry{"rus": analyzer}, nil, discardLogger())

	report, err := handler.Handle(testContext(t), KeynessOptions{
		TargetCorpus: "rus",
		Target:       entities.TextQuery{Type: entities.TextByGender, Gender: entities.GenderFemale},
		Reference:    entities.TextQuery{Type: entities.TextByGender, Gender: entities.GenderMale},
		Lemmatize:    true,
		Limit:        1,
	})

	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "любовь", report.Items[0].Item)
	assert.Equal(t, 2, report.Items[0].TargetFreq)
}

func TestKeynessHandler_Handle_SkipsFailingPlay(t *testing.T) {
	store := mocks.NewPlayStore()
	broken := genderedPlay("broken")
	broken.Characters["she"].Spoken = []string{"ошибка"}
	seedStore(t, store, []*entities.Play{genderedPlay("p1"), broken}, nil)

	analyzer := &mocks.Analyzer{FailOn: map[string]error{"ошибка": errors.New("analyzer backend 500")}}
	handler := NewKeynessHandler(store, mocks.AnalyzerRegistry{"rus": analyzer}, nil, discardLogger())

	report, err := handler.Handle(testContext(t), KeynessOptions{
		TargetCorpus: "rus",
		Target:       entities.TextQuery{Type: entities.TextByGender, Gender: entities.GenderFemale},
		Reference:    entities.TextQuery{Type: entities.TextByGender, Gender: entities.GenderMale},
		Lemmatize:    true,
	})

	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "broken", report.Skipped[0].PlayID)
	assert.Equal(t, services.OutcomeFailed, report.Skipped[0].Status)
	assert.Contains(t, report.Skipped[0].Err.Error(), "analyzer backend 500")

	byItem := make(map[string]services.KeyItem)
	for _, it := range report.Items {
		byItem[it.Item] = it
	}
	require.Contains(t, byItem, "любовь")
	assert.Equal(t, 1, byItem["любовь"].TargetFreq)
	assert.Equal(t, 6, byItem["служить"].ReferenceFreq) // the broken play still counts as reference text
}

func TestKeynessHandler_Handle_Errors(t *testing.T) {
	t.Run("lemmatize without analyzer", func(t *testing.T) {
		handler := NewKeynessHandler(mocks.NewPlayStore(), mocks.AnalyzerRegistry{}, nil, discardLogger())
		_, err := handler.Handle(testContext(t), KeynessOptions{
			TargetCorpus: "cal",
			Target:       entities.TextQuery{Type: entities.TextAllSpoken},
			Reference:    entities.TextQuery{Type: entities.TextAllStage},
			Lemmatize:    true,
		})
		require.ErrorIs(t, err, ports.ErrNoAnalyzer)
		assert.Contains(t, err.Error(), "target corpus")
	})

	t.Run("unknown reference text type", func(t *testing.T) {
		store := mocks.NewPlayStore()
		seedStore(t, store, []*entities.Play{genderedPlay("p1")}, nil)

		handler := NewKeynessHandler(store, mocks.AnalyzerRegistry{}, nil, discardLogger())
		_, err := handler.Handle(testContext(t), KeynessOptions{
			TargetCorpus: "rus",
			Target:       entities.TextQuery{Type: entities.TextAllSpoken},
			Reference:    entities.TextQuery{Type: "by_role"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reference corpus")
	})
}
