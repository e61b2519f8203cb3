package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/drama-core/internal/domain/entities"
	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/infrastructure/parsers"
)

// YearsHandler imports play years from a local table. It fills in years the
// corpus listing does not provide.
type YearsHandler struct {
	store ports.PlayStore
}

// NewYearsHandler creates a new years handler.
func NewYearsHandler(store ports.PlayStore) *YearsHandler {
	return &YearsHandler{
		store: store,
	}
}

// YearsOptions controls year import behavior.
type YearsOptions struct {
	Format string // "json", "csv", or "auto"
	DryRun bool   // Validate without saving
}

// YearsResult contains the result of a year import.
type YearsResult struct {
	Imported int
	Skipped  []parsers.YearRow // Rows with year 0, which marks an unknown year
}

// Handle imports the years in filePath into corpusID.
func (h *YearsHandler) Handle(ctx context.Context, corpusID, filePath string, opts YearsOptions) (*YearsResult, error) {
	var parser parsers.YearParser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	rows, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	result := &YearsResult{}
	var valid []parsers.YearRow
	for _, row := range rows {
		if row.Year == 0 {
			result.Skipped = append(result.Skipped, row)
			continue
		}
		valid = append(valid, row)
	}

	for playID, year := range parsers.Years(valid) {
		if !opts.DryRun {
			meta := entities.PlayMeta{CorpusID: corpusID, PlayID: playID, Year: year}
			if err := h.store.SavePlayInfo(ctx, meta); err != nil {
				return nil, fmt.Errorf("saving year of %s: %w", playID, err)
			}
		}
		result.Imported++
	}

	return result, nil
}
