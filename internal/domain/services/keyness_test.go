package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findItem(items []KeyItem, item string) (KeyItem, bool) {
	for _, it := range items {
		if it.Item == item {
			return it, true
		}
	}
	return KeyItem{}, false
}

func TestKeyness_FiltersTokens(t *testing.T) {
	target := [][]string{{"король , и королева — null", "… None «"}}
	reference := [][]string{{"и слуга !"}}

	items := Keyness(target, reference, []string{"и"})

	for _, bad := range []string{",", "—", "null", "None", "…", "«", "!", "и"} {
		_, found := findItem(items, bad)
		assert.False(t, found, "%q should be filtered", bad)
	}
	_, found := findItem(items, "король")
	assert.True(t, found)
}

func TestKeyness_Scores(t *testing.T) {
	target := [][]string{
		{"love love love death"},
		{"love night"},
	}
	reference := [][]string{
		{"death death death night"},
		{"death love"},
	}

	items := Keyness(target, reference, nil)

	require.NotEmpty(t, items)
	assert.Equal(t, "love", items[0].Item)
	assert.Equal(t, 4, items[0].TargetFreq)
	assert.Equal(t, 1, items[0].ReferenceFreq)
	assert.Greater(t, items[0].LogLikelihood, 0.0)

	death, ok := findItem(items, "death")
	require.True(t, ok)
	assert.Less(t, death.LogLikelihood, 0.0)
	assert.Equal(t, "death", items[len(items)-1].Item)

	night, ok := findItem(items, "night")
	require.True(t, ok)
	assert.InDelta(t, 0.0, night.LogLikelihood, 1e-9)
}

func TestKeyness_EmptyCorpus(t *testing.T) {
	assert.Empty(t, Keyness(nil, [][]string{{"a b"}}, nil))
	assert.Empty(t, Keyness([][]string{{"a b"}}, nil, nil))
}

func TestLogLikelihood_KnownValue(t *testing.T) {
	// a=10, b=5, c=100, d=100: E1 = E2 = 7.5
	// G2 = 2 * (10 ln(10/7.5) + 5 ln(5/7.5))
	got := logLikelihood(10, 5, 100, 100)
	assert.InDelta(t, 1.6993, got, 1e-3)
}
