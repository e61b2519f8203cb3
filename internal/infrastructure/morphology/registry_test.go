package morphology

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/infrastructure/config"
)

func TestNewRegistry_Defaults(t *testing.T) {
	reg, err := NewRegistry(config.Default().Analysis, time.Second)
	require.NoError(t, err)

	rus, err := reg.For("rus")
	require.NoError(t, err)
	assert.IsType(t, &AffixAnalyzer{}, rus)

	rom, err := reg.For("rom")
	require.NoError(t, err)
	assert.Equal(t, "lat", rom.(*AffixAnalyzer).Language())

	ger, err := reg.For("ger")
	require.NoError(t, err)
	assert.IsType(t, &PipelineAnalyzer{}, ger)

	assert.Contains(t, reg.Corpora(), "shake")
}

func TestRegistry_SharesAffixTables(t *testing.T) {
	cfg := config.AnalysisConfig{
		Analyzers: map[string]config.AnalyzerConfig{
			"rus":  {Type: config.AnalyzerAffix, Language: "rus"},
			"rus2": {Type: config.AnalyzerAffix, Language: "rus"},
		},
	}
	reg, err := NewRegistry(cfg, time.Second)
	require.NoError(t, err)

	a, _ := reg.For("rus")
	b, _ := reg.For("rus2")
	assert.Same(t, a, b)
}

func TestRegistry_For_Unconfigured(t *testing.T) {
	reg, err := NewRegistry(config.AnalysisConfig{}, time.Second)
	require.NoError(t, err)

	_, err = reg.For("cal")
	require.ErrorIs(t, err, ports.ErrNoAnalyzer)

	reg.Register("cal", NewAffixAnalyzer(&AffixRules{Language: "x", DefaultTag: "X"}))
	_, err = reg.For("cal")
	require.NoError(t, err)
}

func TestNewRegistry_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AnalysisConfig
	}{
		{
			name: "unknown affix language",
			cfg: config.AnalysisConfig{Analyzers: map[string]config.AnalyzerConfig{
				"x": {Type: config.AnalyzerAffix, Language: "klingon"},
			}},
		},
		{
			name: "pipeline without url",
			cfg: config.AnalysisConfig{Analyzers: map[string]config.AnalyzerConfig{
				"x": {Type: config.AnalyzerPipeline, Language: "en_core_web_sm"},
			}},
		},
		{
			name: "unknown type",
			cfg: config.AnalysisConfig{Analyzers: map[string]config.AnalyzerConfig{
				"x": {Type: "neural", Language: "en"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.cfg, time.Second)
			require.Error(t, err)
		})
	}
}
