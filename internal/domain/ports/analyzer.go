package ports

import (
	"context"
	"errors"
)

// ErrNoAnalyzer is returned when no analyzer is configured for a corpus.
var ErrNoAnalyzer = errors.New("no analyzer configured")

// Analyzer performs language-specific morphological analysis.
// Both methods return one element per token, in text order.
type Analyzer interface {
	// Lemmatize returns the lemma of every token of text.
	Lemmatize(ctx context.Context, text string) ([]string, error)

	// Tag returns the part-of-speech tag of every token of text.
	Tag(ctx context.Context, text string) ([]string, error)
}

// AnalyzerRegistry resolves the analyzer responsible for a corpus.
type AnalyzerRegistry interface {
	For(corpusID string) (Analyzer, error)
}
