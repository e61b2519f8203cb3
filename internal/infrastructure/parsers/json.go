package parsers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

// JSONYearParser parses play years from a JSON array.
type JSONYearParser struct{}

// Parse reads JSON from the reader and returns parsed rows.
func (p *JSONYearParser) Parse(r io.Reader) ([]YearRow, error) {
	var rows []YearRow

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&rows); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Set line numbers (array index + 1, 1-indexed)
	for i := range rows {
		rows[i].LineNum = i + 1
		if rows[i].PlayID == "" {
			return nil, fmt.Errorf("entry %d: empty play_id", i+1)
		}
	}

	return rows, nil
}

type corpusPayload struct {
	Name   string        `json:"name"`
	Dramas []dramaRecord `json:"dramas"`
}

type dramaRecord struct {
	Name           string          `json:"name"`
	Title          string          `json:"title"`
	YearNormalized json.RawMessage `json:"yearNormalized"`
}

// ParseCorpus decodes a corpus listing into play metadata.
// yearNormalized may be a number, a numeric string or null.
func ParseCorpus(corpusID string, r io.Reader) ([]entities.PlayMeta, error) {
	var payload corpusPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", corpusID, err)
	}

	plays := make([]entities.PlayMeta, 0, len(payload.Dramas))
	for _, d := range payload.Dramas {
		if d.Name == "" {
			continue
		}
		plays = append(plays, entities.PlayMeta{
			CorpusID: corpusID,
			PlayID:   d.Name,
			Title:    CleanText(d.Title),
			Year:     parseYear(d.YearNormalized),
		})
	}
	return plays, nil
}

func parseYear(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var y int
		if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &y); err == nil {
			return y
		}
	}
	return 0
}

// ParseSpoken decodes a spoken-text-by-character payload. Text is cleaned;
// ids are kept as sent so the reconciler sees the upstream spelling.
func ParseSpoken(r io.Reader) ([]entities.RawCharacter, error) {
	var chars []entities.RawCharacter
	if err := json.NewDecoder(r).Decode(&chars); err != nil {
		return nil, fmt.Errorf("parsing spoken text: %w", err)
	}

	for i := range chars {
		chars[i].Label = CleanText(chars[i].Label)
		for j, line := range chars[i].Text {
			chars[i].Text[j] = CleanText(line)
		}
	}
	return chars, nil
}
