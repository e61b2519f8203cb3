// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

const (
	// DefaultConfigDir is the directory name for drama configuration.
	DefaultConfigDir = ".drama"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatabaseFile is the default SQLite file name.
	DefaultDatabaseFile = "drama.db"
)

// Analyzer backends.
const (
	AnalyzerAffix    = "affix"
	AnalyzerPipeline = "pipeline"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	API         APIConfig       `yaml:"api,omitempty"`
	SQLite      SQLiteConfig    `yaml:"sqlite,omitempty"`
	Ingest      IngestConfig    `yaml:"ingest,omitempty"`
	Relations   RelationsConfig `yaml:"relations,omitempty"`
	AliasesFile string          `yaml:"aliases_file,omitempty"`
	Analysis    AnalysisConfig  `yaml:"analysis,omitempty"`
	Keyness     KeynessConfig   `yaml:"keyness,omitempty"`
}

// APIConfig holds configuration for the DraCor API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// RelationDelay paces consecutive relation graph downloads.
	RelationDelay time.Duration `yaml:"relation_delay,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite play store.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database. Relative paths are
	// resolved against the config directory.
	Path string `yaml:"path,omitempty"`
}

// IngestConfig controls corpus ingestion.
type IngestConfig struct {
	Corpora []string `yaml:"corpora,omitempty"`
	Workers int      `yaml:"workers,omitempty"`
}

// RelationsConfig holds the relation vocabulary.
type RelationsConfig struct {
	Symmetric  []string                           `yaml:"symmetric,omitempty"`
	Asymmetric map[string]entities.AsymmetricRule `yaml:"asymmetric,omitempty"`
}

// Vocabulary converts the configured kinds to a domain vocabulary.
func (r RelationsConfig) Vocabulary() entities.RelationVocabulary {
	return entities.NewRelationVocabulary(r.Symmetric, r.Asymmetric)
}

// AnalysisConfig holds morphology settings.
type AnalysisConfig struct {
	// PipelineURL is the base URL of the external tagging pipeline.
	PipelineURL string `yaml:"pipeline_url,omitempty"`
	// TagMap folds fine-grained tags into NOUN, VERB, ADJ, ADVB, PREP.
	TagMap map[string]string `yaml:"tag_map,omitempty"`
	// Analyzers maps corpus id to its analyzer.
	Analyzers map[string]AnalyzerConfig `yaml:"analyzers,omitempty"`
}

// AnalyzerConfig selects the analyzer backend for one corpus.
type AnalyzerConfig struct {
	Type string `yaml:"type"`
	// Language is the rule set name for affix analyzers or the model name
	// for pipeline analyzers.
	Language string `yaml:"language"`
	// RulesFile overrides the embedded affix rules.
	RulesFile string `yaml:"rules_file,omitempty"`
}

// KeynessConfig holds keyness settings.
type KeynessConfig struct {
	// StopWords maps corpus id to words omitted from keyness counts.
	StopWords map[string][]string `yaml:"stop_words,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "https://dracor.org/api",
			Timeout:       60 * time.Second,
			RelationDelay: 3 * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: DefaultDatabaseFile,
		},
		Ingest: IngestConfig{
			Corpora: []string{"rus", "ger", "ita", "shake", "span", "rom", "greek"},
			Workers: 1,
		},
		Relations: RelationsConfig{
			Symmetric: []string{"associated_with", "lover_of", "related_with", "siblings"},
			Asymmetric: map[string]entities.AsymmetricRule{
				"parent_of": {Source: entities.RelationParent, Target: entities.RelationChild},
			},
		},
		Analysis: AnalysisConfig{
			PipelineURL: "http://localhost:8080",
			TagMap:      DefaultTagMap(),
			Analyzers: map[string]AnalyzerConfig{
				"rus":   {Type: AnalyzerAffix, Language: "rus"},
				"rom":   {Type: AnalyzerAffix, Language: "lat"},
				"greek": {Type: AnalyzerPipeline, Language: "grc"},
				"shake": {Type: AnalyzerPipeline, Language: "en_core_web_sm"},
				"ger":   {Type: AnalyzerPipeline, Language: "de_core_news_sm"},
				"ita":   {Type: AnalyzerPipeline, Language: "it_core_news_sm"},
				"span":  {Type: AnalyzerPipeline, Language: "es_core_news_sm"},
				"cal":   {Type: AnalyzerPipeline, Language: "es_core_news_sm"},
			},
		},
	}
}

// DefaultTagMap folds OpenCorpora and Universal Dependencies tags into the
// five tracked categories.
func DefaultTagMap() map[string]string {
	return map[string]string{
		"ADJF": entities.POSAdj,
		"ADJS": entities.POSAdj,
		"COMP": entities.POSAdj,
		"INFN": entities.POSVerb,
		"PRTF": entities.POSVerb,
		"PRTS": entities.POSVerb,
		"GRND": entities.POSVerb,
		"ADV":  entities.POSAdvb,
		"ADP":  entities.POSPrep,
	}
}

// Load loads configuration from the .drama directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'drama init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	cfg.resolvePaths(ConfigDir(basePath))
	return cfg, nil
}

// Parse decodes YAML over the defaults, applies environment overrides and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("ingest.workers must be at least 1, got %d", c.Ingest.Workers)
	}
	for corpus, a := range c.Analysis.Analyzers {
		if a.Type != AnalyzerAffix && a.Type != AnalyzerPipeline {
			return fmt.Errorf("analysis.analyzers.%s: invalid type %q (valid: %s, %s)",
				corpus, a.Type, AnalyzerAffix, AnalyzerPipeline)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("DRACOR_API_URL"); url != "" {
		c.API.BaseURL = url
	}
	if url := os.Getenv("DRAMA_ANALYZER_URL"); url != "" {
		c.Analysis.PipelineURL = url
	}
}

// resolvePaths makes relative file paths relative to dir.
func (c *Config) resolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || p == ":memory:" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	c.SQLite.Path = resolve(c.SQLite.Path)
	c.AliasesFile = resolve(c.AliasesFile)
	for corpus, a := range c.Analysis.Analyzers {
		a.RulesFile = resolve(a.RulesFile)
		c.Analysis.Analyzers[corpus] = a
	}
}

// ConfigDir returns the path to the .drama config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}
