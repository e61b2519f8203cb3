package parsers

import (
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nbspReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ")

// CleanText replaces non-breaking spaces and normalizes to NFC.
func CleanText(s string) string {
	s = nbspReplacer.Replace(s)
	t := transform.Chain(norm.NFC)
	normalized, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return normalized
}

// ParseStage splits a stage directions payload into cleaned lines.
// Blank lines are dropped.
func ParseStage(raw string) []string {
	lines := []string{}
	for _, line := range strings.Split(CleanText(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
