// Package morphology provides lemmatizers and part-of-speech taggers.
package morphology

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/drama-core/internal/domain/ports"
)

//go:embed rules/*.yaml
var embeddedRules embed.FS

// Tags assigned to tokens that are not words.
const (
	TagPunct  = "PUNCT"
	TagNumber = "NUM"
)

// reToken matches a word (letters and combining marks, optionally joined by
// hyphens or apostrophes), a number, or a run of other non-space runes.
var reToken = regexp.MustCompile(`[\p{L}\p{M}]+(?:[-'’][\p{L}\p{M}]+)*|\p{N}+|[^\s\p{L}\p{M}\p{N}]+`)

var reWordStart = regexp.MustCompile(`^[\p{L}\p{M}]`)

// WordRule is an exact-form entry of a rule table.
type WordRule struct {
	Lemma string `yaml:"lemma"`
	Tag   string `yaml:"tag"`
}

// SuffixRule rewrites a matching ending into the lemma ending.
type SuffixRule struct {
	Suffix  string `yaml:"suffix"`
	Replace string `yaml:"replace"`
	Tag     string `yaml:"tag"`
}

// AffixRules is a rule table for one language.
type AffixRules struct {
	Language   string              `yaml:"language"`
	DefaultTag string              `yaml:"default_tag"`
	MinStem    int                 `yaml:"min_stem"`
	Normalize  map[string]string   `yaml:"normalize"`
	Words      map[string]WordRule `yaml:"words"`
	Suffixes   []SuffixRule        `yaml:"suffixes"`
}

// LoadAffixRules reads a rule table. An empty path selects the embedded
// table for language.
func LoadAffixRules(language, path string) (*AffixRules, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = embeddedRules.ReadFile("rules/" + language + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("no embedded affix rules for %q", language)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading affix rules: %w", err)
		}
	}
	return ParseAffixRules(data)
}

// ParseAffixRules decodes and validates a rule table.
func ParseAffixRules(data []byte) (*AffixRules, error) {
	var rules AffixRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing affix rules: %w", err)
	}
	if rules.Language == "" {
		return nil, errors.New("affix rules: language is required")
	}
	if rules.DefaultTag == "" {
		return nil, fmt.Errorf("affix rules %s: default_tag is required", rules.Language)
	}
	for i, s := range rules.Suffixes {
		if s.Suffix == "" || s.Tag == "" {
			return nil, fmt.Errorf("affix rules %s: suffix rule %d needs suffix and tag", rules.Language, i+1)
		}
	}
	return &rules, nil
}

// Token is one analyzed token.
type Token struct {
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	POS   string `json:"pos"`
}

// AffixAnalyzer lemmatizes and tags by exact-form lookup, then by the
// longest matching suffix rule.
type AffixAnalyzer struct {
	language   string
	defaultTag string
	minStem    int
	normalizer *strings.Replacer
	words      map[string]WordRule
	suffixes   []SuffixRule
}

var _ ports.Analyzer = (*AffixAnalyzer)(nil)

// NewAffixAnalyzer builds an analyzer from a rule table.
func NewAffixAnalyzer(rules *AffixRules) *AffixAnalyzer {
	suffixes := make([]SuffixRule, len(rules.Suffixes))
	copy(suffixes, rules.Suffixes)
	sort.SliceStable(suffixes, func(i, j int) bool {
		return utf8.RuneCountInString(suffixes[i].Suffix) > utf8.RuneCountInString(suffixes[j].Suffix)
	})

	keys := make([]string, 0, len(rules.Normalize))
	for k := range rules.Normalize {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, rules.Normalize[k])
	}

	a := &AffixAnalyzer{
		language:   rules.Language,
		defaultTag: rules.DefaultTag,
		minStem:    rules.MinStem,
		normalizer: strings.NewReplacer(pairs...),
		words:      make(map[string]WordRule, len(rules.Words)),
		suffixes:   suffixes,
	}
	// Table keys go through the same normalization as tokens.
	for form, rule := range rules.Words {
		a.words[a.normalize(form)] = rule
	}
	return a
}

// Language returns the rule table name.
func (a *AffixAnalyzer) Language() string {
	return a.language
}

// Lemmatize returns the lemma of every token of text.
func (a *AffixAnalyzer) Lemmatize(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := a.Analyze(text)
	lemmas := make([]string, len(tokens))
	for i, t := range tokens {
		lemmas[i] = t.Lemma
	}
	return lemmas, nil
}

// Tag returns the part-of-speech tag of every token of text.
func (a *AffixAnalyzer) Tag(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := a.Analyze(text)
	tags := make([]string, len(tokens))
	for i, t := range tokens {
		tags[i] = t.POS
	}
	return tags, nil
}

// Analyze tokenizes text and analyzes every token.
func (a *AffixAnalyzer) Analyze(text string) []Token {
	raw := reToken.FindAllString(text, -1)
	tokens := make([]Token, 0, len(raw))
	for _, r := range raw {
		tokens = append(tokens, a.analyzeToken(r))
	}
	return tokens
}

func (a *AffixAnalyzer) analyzeToken(raw string) Token {
	if !reWordStart.MatchString(raw) {
		tag := TagPunct
		if r, _ := utf8.DecodeRuneInString(raw); unicode.IsNumber(r) {
			tag = TagNumber
		}
		return Token{Text: raw, Lemma: raw, POS: tag}
	}

	form := a.normalize(raw)
	if rule, ok := a.words[form]; ok {
		return Token{Text: raw, Lemma: rule.Lemma, POS: rule.Tag}
	}

	n := utf8.RuneCountInString(form)
	for _, s := range a.suffixes {
		if !strings.HasSuffix(form, s.Suffix) {
			continue
		}
		if n-utf8.RuneCountInString(s.Suffix) < a.minStem {
			continue
		}
		stem := strings.TrimSuffix(form, s.Suffix)
		return Token{Text: raw, Lemma: stem + s.Replace, POS: s.Tag}
	}

	return Token{Text: raw, Lemma: form, POS: a.defaultTag}
}

func (a *AffixAnalyzer) normalize(s string) string {
	return a.normalizer.Replace(strings.ToLower(s))
}
