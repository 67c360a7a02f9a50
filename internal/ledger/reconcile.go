package ledger

import (
	"fmt"
	"sort"

	"salesledger/internal/domain"
)

// MonthsIn returns the sorted distinct YYYY-MM keys present in a batch.
// Rows with empty or malformed dates contribute no key.
func MonthsIn(rows []domain.SalesRow) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		if key := row.MonthKey(); key != "" {
			seen[key] = true
		}
	}
	months := make([]string, 0, len(seen))
	for key := range seen {
		months = append(months, key)
	}
	sort.Strings(months)
	return months
}

// Reconcile merges a new batch into an existing ledger with replace-by-month
// semantics: every month present in the batch is evicted from the existing
// rows before the batch is appended, so re-uploading a report for a month
// fully supersedes what was stored for it. Existing rows with empty dates
// are never evicted. An empty batch leaves the ledger untouched.
func Reconcile(existing, batch []domain.SalesRow) []domain.SalesRow {
	if len(batch) == 0 {
		return existing
	}

	replaced := make(map[string]bool)
	for _, key := range MonthsIn(batch) {
		replaced[key] = true
	}

	updated := make([]domain.SalesRow, 0, len(existing)+len(batch))
	for _, row := range existing {
		key := row.MonthKey()
		if key == "" || !replaced[key] {
			updated = append(updated, row)
		}
	}
	return append(updated, batch...)
}

// RemoveMonth drops exactly one calendar month from the ledger with no
// addition, for the clear-one-month administrative operation.
func RemoveMonth(rows []domain.SalesRow, year, month int) []domain.SalesRow {
	target := fmt.Sprintf("%04d-%02d", year, month)
	kept := make([]domain.SalesRow, 0, len(rows))
	for _, row := range rows {
		if row.MonthKey() != target {
			kept = append(kept, row)
		}
	}
	return kept
}

// TruncateToRecentYears keeps only rows dated within the most recent `years`
// calendar years present in the ledger, plus rows with no parsable date.
// It is the fallback retention policy for oversized-payload persist errors.
func TruncateToRecentYears(rows []domain.SalesRow, years int) []domain.SalesRow {
	if years <= 0 {
		return rows
	}
	latest := 0
	for _, row := range rows {
		if y := rowYear(row); y > latest {
			latest = y
		}
	}
	if latest == 0 {
		return rows
	}
	cutoff := latest - years + 1
	kept := make([]domain.SalesRow, 0, len(rows))
	for _, row := range rows {
		y := rowYear(row)
		if y == 0 || y >= cutoff {
			kept = append(kept, row)
		}
	}
	return kept
}

func rowYear(row domain.SalesRow) int {
	year, _, ok := splitDate(row.Date)
	if !ok {
		return 0
	}
	return year
}
