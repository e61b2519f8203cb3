package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVYearParser parses play years from CSV format.
type CSVYearParser struct{}

// Parse reads CSV from the reader and returns parsed rows.
// Expected columns: play_id, year
func (p *CSVYearParser) Parse(r io.Reader) ([]YearRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVYearParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}

	for _, col := range []string{"play_id", "year"} {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to YearRows.
func (p *CSVYearParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]YearRow, error) {
	var rows []YearRow
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		row, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// parseRecord converts a CSV record to a YearRow.
func (p *CSVYearParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (YearRow, error) {
	row := YearRow{
		PlayID:  strings.TrimSpace(getColumn(record, colIndex, "play_id")),
		LineNum: lineNum,
	}
	if row.PlayID == "" {
		return YearRow{}, fmt.Errorf("line %d: empty play_id", lineNum)
	}

	yearStr := strings.TrimSpace(getColumn(record, colIndex, "year"))
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return YearRow{}, fmt.Errorf("line %d: invalid year value %q: %w", lineNum, yearStr, err)
	}
	row.Year = year

	return row, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}
