package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultAliasesFile is the alias table written next to the config by init.
const DefaultAliasesFile = "aliases.yaml"

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# drama-core configuration

api:
  base_url: https://dracor.org/api
  timeout: 60s
  relation_delay: 3s

sqlite:
  path: drama.db

ingest:
  corpora: [rus, ger, ita, shake, span, rom, greek]
  workers: 1

relations:
  symmetric: [associated_with, lover_of, related_with, siblings]
  asymmetric:
    parent_of: {source: parent, target: child}

aliases_file: aliases.yaml

analysis:
  pipeline_url: http://localhost:8080 # or set DRAMA_ANALYZER_URL
  analyzers:
    rus: {type: affix, language: rus}
    rom: {type: affix, language: lat}

# keyness:
#   stop_words:
#     rus: [и, в, не, на]
`

// WriteDefault creates the .drama directory and writes a default config
// file and alias table.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	aliasesFile := filepath.Join(configDir, DefaultAliasesFile)
	if _, err := os.Stat(aliasesFile); err == nil {
		return nil
	}
	if err := os.WriteFile(aliasesFile, defaultAliasesYAML, 0644); err != nil {
		return fmt.Errorf("writing aliases file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	configDir := ConfigDir(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigFilePath(basePath), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Exists checks if a drama config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
