package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads the first sheet of a spreadsheet export into raw
// positional rows in the canonical column order (date, customer, product,
// vendor product code, ... per the normalizer's schemas). A leading header
// row is skipped when its date column does not parse.
func ReadWorkbook(reader io.Reader) ([][]any, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}

	return rawRows(rows), nil
}

// rawRows converts string cell grids into the []any shape the normalizer
// consumes, dropping blank lines and a detected header row.
func rawRows(rows [][]string) [][]any {
	out := make([][]any, 0, len(rows))
	for i, cells := range rows {
		if isBlank(cells) {
			continue
		}
		if i == 0 && looksLikeHeader(cells) {
			continue
		}
		raw := make([]any, len(cells))
		for j, cell := range cells {
			raw[j] = cell
		}
		out = append(out, raw)
	}
	return out
}

func isBlank(cells []string) bool {
	for _, cell := range cells {
		if cell != "" {
			return false
		}
	}
	return true
}
