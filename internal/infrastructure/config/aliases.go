package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// AliasTableVersion is the alias file format this build understands.
const AliasTableVersion = 1

//go:embed defaults/aliases.yaml
var defaultAliasesYAML []byte

// AliasTable maps raw character ids to canonical ids.
type AliasTable struct {
	Version int               `yaml:"version"`
	Aliases map[string]string `yaml:"aliases"`
}

// DefaultAliases returns the alias table shipped with the binary.
func DefaultAliases() (*AliasTable, error) {
	return ParseAliases(defaultAliasesYAML)
}

// LoadAliases reads an alias table file. An empty path selects the
// shipped table.
func LoadAliases(path string) (*AliasTable, error) {
	if path == "" {
		return DefaultAliases()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading aliases file: %w", err)
	}
	return ParseAliases(data)
}

// ParseAliases decodes and validates an alias table.
func ParseAliases(data []byte) (*AliasTable, error) {
	var t AliasTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing aliases file: %w", err)
	}
	if t.Aliases == nil {
		t.Aliases = make(map[string]string)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the version and rejects empty or self-referencing entries.
func (t *AliasTable) Validate() error {
	if t.Version != AliasTableVersion {
		return fmt.Errorf("unsupported aliases version %d (expected %d)", t.Version, AliasTableVersion)
	}
	for raw, canonical := range t.Aliases {
		if raw == "" || canonical == "" {
			return errors.New("aliases must not contain empty ids")
		}
		if raw == canonical {
			return fmt.Errorf("alias %q maps to itself", raw)
		}
	}
	return nil
}

// Add records a correction.
func (t *AliasTable) Add(raw, canonical string) {
	if t.Aliases == nil {
		t.Aliases = make(map[string]string)
	}
	t.Aliases[raw] = canonical
}

// Raw returns the raw ids in lexical order.
func (t *AliasTable) Raw() []string {
	ids := make([]string, 0, len(t.Aliases))
	for raw := range t.Aliases {
		ids = append(ids, raw)
	}
	sort.Strings(ids)
	return ids
}

// Save writes the alias table to path.
func (t *AliasTable) Save(path string) error {
	if err := t.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating aliases directory: %w", err)
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling aliases: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing aliases file: %w", err)
	}
	return nil
}
