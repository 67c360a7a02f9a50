package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Column is one field's character span in a fixed-width distributor export.
// End is exclusive; an End of 0 means "to end of line".
type Column struct {
	Start int
	End   int
}

// Layout maps a fixed-width report line onto the canonical positional row.
// Column order must follow the normalizer's schemas.
type Layout []Column

// ReadFixedWidth slices each line of a fixed-width text report by the given
// layout. Blank lines and a detected header line are skipped; short lines
// yield empty fields rather than errors, matching the coerce-never-fail
// policy of the normalizer downstream.
func ReadFixedWidth(reader io.Reader, layout Layout) ([][]any, error) {
	if len(layout) == 0 {
		return nil, fmt.Errorf("fixed-width layout is empty")
	}

	scanner := bufio.NewScanner(reader)
	lines := make([][]string, 0, 64)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := make([]string, len(layout))
		for i, col := range layout {
			cells[i] = sliceColumn(line, col)
		}
		lines = append(lines, cells)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fixed-width report: %w", err)
	}

	return rawRows(lines), nil
}

func sliceColumn(line string, col Column) string {
	runes := []rune(line)
	start := col.Start
	if start >= len(runes) {
		return ""
	}
	end := col.End
	if end <= 0 || end > len(runes) {
		end = len(runes)
	}
	if end <= start {
		return ""
	}
	return strings.TrimSpace(string(runes[start:end]))
}
