package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"salesledger/internal/domain"

	"github.com/google/uuid"
)

// Raw upload rows arrive as positional values. Three widths are in
// circulation: the current schema (10+ fields, our item code at index 4),
// the legacy schema (9 fields, amount at index 5), and a compact legacy
// export that drops the amount column (8 or fewer fields).
const (
	newSchemaMinLen = 10
	legacySchemaLen = 9
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"2006.01.02",
}

// Normalize coerces one raw positional row into the canonical SalesRow.
// It never fails: unparsable dates become empty strings, unparsable numbers
// become zero, and missing string fields become empty strings.
func Normalize(raw []any, uploadedAt string) domain.SalesRow {
	row := domain.SalesRow{
		Date:              NormalizeDate(field(raw, 0)),
		Customer:          fieldString(raw, 1),
		Product:           fieldString(raw, 2),
		VendorProductCode: fieldString(raw, 3),
	}

	switch {
	case len(raw) >= newSchemaMinLen:
		row.OurItemCode = fieldString(raw, 4)
		row.Quantity = parseQuantity(field(raw, 5))
		row.Revenue = parseQuantity(field(raw, 6))
		row.InvoiceID = fieldString(raw, 7)
		row.Source = fieldString(raw, 8)
		row.UploadedAt = fieldString(raw, 9)
	case len(raw) >= legacySchemaLen:
		row.Quantity = parseQuantity(field(raw, 4))
		row.Revenue = parseQuantity(field(raw, 5))
		row.InvoiceID = fieldString(raw, 6)
		row.Source = fieldString(raw, 7)
		row.UploadedAt = fieldString(raw, 8)
	default:
		row.Quantity = parseQuantity(field(raw, 4))
		row.InvoiceID = fieldString(raw, 5)
		row.Source = fieldString(raw, 6)
		row.UploadedAt = fieldString(raw, 7)
	}

	if row.UploadedAt == "" {
		row.UploadedAt = uploadedAt
	}
	if row.InvoiceID == "" {
		row.InvoiceID = uuid.NewString()
	}
	return row
}

// NormalizeBatch maps a whole upload through Normalize, stamping rows that
// carry no upload timestamp of their own with the batch timestamp.
func NormalizeBatch(raws [][]any, uploadedAt string) []domain.SalesRow {
	rows := make([]domain.SalesRow, 0, len(raws))
	for _, raw := range raws {
		rows = append(rows, Normalize(raw, uploadedAt))
	}
	return rows
}

// NormalizeDate parses any vendor date representation into a YYYY-MM-DD
// calendar day, or "" when the value cannot be parsed. Parsing uses local
// calendar fields so a spreadsheet date never shifts across midnight.
func NormalizeDate(value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.Format("2006-01-02")
	case nil:
		return ""
	}

	raw := strings.TrimSpace(asString(value))
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func parseQuantity(value any) float64 {
	var parsed float64
	switch v := value.(type) {
	case float64:
		parsed = v
	case float32:
		parsed = float64(v)
	case int:
		parsed = float64(v)
	case int64:
		parsed = float64(v)
	default:
		raw := strings.TrimSpace(asString(value))
		raw = strings.NewReplacer("$", "", ",", "", " ", "", " ", "").Replace(raw)
		if raw == "" {
			return 0
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0
		}
		parsed = f
	}
	if parsed < 0 {
		return 0
	}
	return parsed
}

func field(raw []any, idx int) any {
	if idx < 0 || idx >= len(raw) {
		return nil
	}
	return raw[idx]
}

func fieldString(raw []any, idx int) string {
	return strings.TrimSpace(asString(field(raw, idx)))
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
