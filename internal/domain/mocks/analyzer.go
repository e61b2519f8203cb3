package mocks

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/drama-core/internal/domain/ports"
)

// Analyzer is a mock implementation of ports.Analyzer. Text is split on
// whitespace; Tags and Lemmas map tokens to results, unknown tokens map to
// DefaultTag and to themselves. Text containing a token of FailOn fails with
// the mapped error.
type Analyzer struct {
	Tags       map[string]string
	Lemmas     map[string]string
	DefaultTag string
	FailOn     map[string]error
	Err        error
}

func (m *Analyzer) fail(fields []string) error {
	if m.Err != nil {
		return m.Err
	}
	for _, f := range fields {
		if err, ok := m.FailOn[f]; ok {
			return err
		}
	}
	return nil
}

// Lemmatize returns the configured lemma of every token.
func (m *Analyzer) Lemmatize(_ context.Context, text string) ([]string, error) {
	fields := strings.Fields(text)
	if err := m.fail(fields); err != nil {
		return nil, err
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		if l, ok := m.Lemmas[f]; ok {
			out[i] = l
		} else {
			out[i] = f
		}
	}
	return out, nil
}

// Tag returns the configured tag of every token.
func (m *Analyzer) Tag(_ context.Context, text string) ([]string, error) {
	fields := strings.Fields(text)
	if err := m.fail(fields); err != nil {
		return nil, err
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		if t, ok := m.Tags[f]; ok {
			out[i] = t
		} else {
			out[i] = m.DefaultTag
		}
	}
	return out, nil
}

// AnalyzerRegistry is a mock implementation of ports.AnalyzerRegistry.
type AnalyzerRegistry map[string]ports.Analyzer

// For returns the analyzer registered for the corpus.
func (m AnalyzerRegistry) For(corpusID string) (ports.Analyzer, error) {
	a, ok := m[corpusID]
	if !ok {
		return nil, fmt.Errorf("%w for corpus %q", ports.ErrNoAnalyzer, corpusID)
	}
	return a, nil
}
