package morphology

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadAnalyzer(t *testing.T, language string) *AffixAnalyzer {
	t.Helper()
	rules, err := LoadAffixRules(language, "")
	require.NoError(t, err)
	return NewAffixAnalyzer(rules)
}

func TestAffixAnalyzer_Russian(t *testing.T) {
	a := loadAnalyzer(t, "rus")
	ctx := context.Background()
	text := "Он читает, в 1836 красивая Ёлка книгами!"

	lemmas, err := a.Lemmatize(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, []string{"он", "читать", ",", "в", "1836", "красивый", "елка", "книга", "!"}, lemmas)

	tags, err := a.Tag(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, []string{"NPRO", "VERB", TagPunct, "PREP", TagNumber, "ADJF", "NOUN", "NOUN", TagPunct}, tags)
}

func TestAffixAnalyzer_MinStem(t *testing.T) {
	a := loadAnalyzer(t, "rus")

	tests := []struct {
		form  string
		lemma string
		tag   string
	}{
		{form: "дом", lemma: "дом", tag: "NOUN"},
		{form: "домом", lemma: "дом", tag: "NOUN"},
		{form: "говоришь", lemma: "говорить", tag: "VERB"},
		{form: "был", lemma: "быть", tag: "VERB"},
	}

	for _, tt := range tests {
		t.Run(tt.form, func(t *testing.T) {
			tokens := a.Analyze(tt.form)
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.lemma, tokens[0].Lemma)
			assert.Equal(t, tt.tag, tokens[0].POS)
		})
	}
}

func TestAffixAnalyzer_Latin(t *testing.T) {
	a := loadAnalyzer(t, "lat")
	text := "Amicus amat puellam et Iuliam. V\u012bvit!"

	tokens := a.Analyze(text)
	lemmas := make([]string, len(tokens))
	tags := make([]string, len(tokens))
	for i, tok := range tokens {
		lemmas[i] = tok.Lemma
		tags[i] = tok.POS
	}

	assert.Equal(t, []string{"amicus", "amo", "puella", "et", "iulia", ".", "uiuo", "!"}, lemmas)
	assert.Equal(t, []string{"NOUN", "VERB", "NOUN", "CCONJ", "NOUN", TagPunct, "VERB", TagPunct}, tags)
	assert.Equal(t, "V\u012bvit", tokens[6].Text)
}

func TestAffixAnalyzer_CanceledContext(t *testing.T) {
	a := loadAnalyzer(t, "rus")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Tag(ctx, "текст")
	require.ErrorIs(t, err, context.Canceled)
}

func TestAffixAnalyzer_EmptyText(t *testing.T) {
	a := loadAnalyzer(t, "rus")
	tags, err := a.Tag(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestLoadAffixRules(t *testing.T) {
	t.Run("unknown embedded language", func(t *testing.T) {
		_, err := LoadAffixRules("klingon", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no embedded affix rules")
	})

	t.Run("rules file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		data := "language: test\ndefault_tag: X\nsuffixes:\n  - {suffix: s, replace: \"\", tag: NOUN}\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		rules, err := LoadAffixRules("ignored", path)
		require.NoError(t, err)
		a := NewAffixAnalyzer(rules)
		assert.Equal(t, "test", a.Language())

		tokens := a.Analyze("cats dog")
		assert.Equal(t, []Token{
			{Text: "cats", Lemma: "cat", POS: "NOUN"},
			{Text: "dog", Lemma: "dog", POS: "X"},
		}, tokens)
	})
}

func TestParseAffixRules_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "missing language", input: "default_tag: X\n", errMsg: "language is required"},
		{name: "missing default tag", input: "language: x\n", errMsg: "default_tag is required"},
		{name: "empty suffix", input: "language: x\ndefault_tag: X\nsuffixes:\n  - {tag: NOUN}\n", errMsg: "suffix rule 1"},
		{name: "invalid yaml", input: "language: [", errMsg: "parsing affix rules"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAffixRules([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
