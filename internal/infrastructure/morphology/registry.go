package morphology

import (
	"fmt"
	"sort"
	"time"

	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/infrastructure/config"
)

// Registry maps corpus ids to analyzers.
type Registry struct {
	analyzers map[string]ports.Analyzer
}

var _ ports.AnalyzerRegistry = (*Registry)(nil)

// NewRegistry builds every configured analyzer. Affix rule tables are
// loaded once and shared between corpora using the same language.
func NewRegistry(cfg config.AnalysisConfig, timeout time.Duration) (*Registry, error) {
	r := &Registry{analyzers: make(map[string]ports.Analyzer, len(cfg.Analyzers))}
	affix := make(map[string]*AffixAnalyzer)

	for corpus, ac := range cfg.Analyzers {
		switch ac.Type {
		case config.AnalyzerAffix:
			key := ac.Language + "|" + ac.RulesFile
			a, ok := affix[key]
			if !ok {
				rules, err := LoadAffixRules(ac.Language, ac.RulesFile)
				if err != nil {
					return nil, fmt.Errorf("analyzer for %s: %w", corpus, err)
				}
				a = NewAffixAnalyzer(rules)
				affix[key] = a
			}
			r.analyzers[corpus] = a
		case config.AnalyzerPipeline:
			a, err := NewPipelineAnalyzer(cfg.PipelineURL, ac.Language, timeout)
			if err != nil {
				return nil, fmt.Errorf("analyzer for %s: %w", corpus, err)
			}
			r.analyzers[corpus] = a
		default:
			return nil, fmt.Errorf("analyzer for %s: unknown type %q", corpus, ac.Type)
		}
	}
	return r, nil
}

// Register sets the analyzer of a corpus.
func (r *Registry) Register(corpusID string, a ports.Analyzer) {
	r.analyzers[corpusID] = a
}

// For returns the analyzer of a corpus.
func (r *Registry) For(corpusID string) (ports.Analyzer, error) {
	a, ok := r.analyzers[corpusID]
	if !ok {
		return nil, fmt.Errorf("%w for corpus %q", ports.ErrNoAnalyzer, corpusID)
	}
	return a, nil
}

// Corpora returns the corpus ids with an analyzer, sorted.
func (r *Registry) Corpora() []string {
	ids := make([]string, 0, len(r.analyzers))
	for id := range r.analyzers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
