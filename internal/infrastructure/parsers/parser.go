// Package parsers decodes DraCor payloads and local year tables.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// YearRow is one row of a play year table.
type YearRow struct {
	PlayID  string `json:"play_id"`
	Year    int    `json:"year"`
	LineNum int    `json:"-"` // Line number in source file (set by parser)
}

// YearParser reads play years from a local file.
type YearParser interface {
	Parse(r io.Reader) ([]YearRow, error)
}

// ForFormat returns the appropriate year parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) YearParser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONYearParser{}
	case "csv":
		return &CSVYearParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate year parser based on file extension.
func ForFile(filename string) YearParser {
	return ForFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Years folds rows into a lookup. Later rows win.
func Years(rows []YearRow) map[string]int {
	years := make(map[string]int, len(rows))
	for _, r := range rows {
		years[r.PlayID] = r.Year
	}
	return years
}
