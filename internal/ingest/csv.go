package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"salesledger/internal/ledger"
)

// ReadCSV reads a comma-separated vendor export into raw positional rows in
// the same canonical column order as the spreadsheet reader.
func ReadCSV(reader io.Reader) ([][]any, error) {
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rawRows(records), nil
}

// looksLikeHeader treats a first row whose date column does not parse as a
// column header.
func looksLikeHeader(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	return ledger.NormalizeDate(cells[0]) == ""
}
