package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/domain"
)

func revRow(date, customer, product string, qty, revenue float64) domain.SalesRow {
	return domain.SalesRow{
		Date:     date,
		Customer: customer,
		Product:  product,
		Quantity: qty,
		Revenue:  revenue,
	}
}

func TestCompareSymmetry(t *testing.T) {
	rows := []domain.SalesRow{
		revRow("2025-01-15", "X", "Widget", 10, 100),
		revRow("2025-02-15", "X", "Widget", 12, 150),
	}

	report := Compare(rows, GroupByCustomer,
		domain.MonthRange{Start: "2025-01", End: "2025-01"},
		domain.MonthRange{Start: "2025-02", End: "2025-02"})

	require.Len(t, report.Rows, 1)
	got := report.Rows[0]
	assert.Equal(t, "X", got.Key)
	assert.Equal(t, 100.0, got.RevenueA)
	assert.Equal(t, 150.0, got.RevenueB)
	assert.Equal(t, 50.0, got.RevenueDelta)
	assert.Equal(t, 50.0, got.RevenuePercent)
}

func TestCompareNormalizesRangeOrder(t *testing.T) {
	rows := []domain.SalesRow{
		revRow("2025-01-15", "X", "Widget", 1, 10),
		revRow("2025-03-15", "X", "Widget", 1, 20),
	}

	report := Compare(rows, GroupByCustomer,
		domain.MonthRange{Start: "2025-03", End: "2025-01"},
		domain.MonthRange{Start: "2025-03", End: "2025-03"})

	assert.Equal(t, "2025-01", report.RangeA.Start)
	assert.Equal(t, "2025-03", report.RangeA.End)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 30.0, report.Rows[0].RevenueA, "both months fall in the normalized range")
}

func TestCompareKeyUnion(t *testing.T) {
	rows := []domain.SalesRow{
		revRow("2025-01-15", "OnlyA", "Widget", 1, 40),
		revRow("2025-02-15", "OnlyB", "Widget", 1, 25),
	}

	report := Compare(rows, GroupByCustomer,
		domain.MonthRange{Start: "2025-01", End: "2025-01"},
		domain.MonthRange{Start: "2025-02", End: "2025-02"})

	require.Len(t, report.Rows, 2)
	// Sorted by descending |revenue delta|.
	assert.Equal(t, "OnlyA", report.Rows[0].Key)
	assert.Equal(t, -40.0, report.Rows[0].RevenueDelta)
	assert.Equal(t, "OnlyB", report.Rows[1].Key)
	assert.Equal(t, 25.0, report.Rows[1].RevenueDelta)

	// Zero-base rule.
	assert.Equal(t, -100.0, report.Rows[0].RevenuePercent)
	assert.Equal(t, 100.0, report.Rows[1].RevenuePercent)
}

func TestCompareTotalRow(t *testing.T) {
	rows := []domain.SalesRow{
		revRow("2025-01-15", "X", "Widget", 2, 100),
		revRow("2025-01-20", "Y", "Widget", 3, 50),
		revRow("2025-02-15", "X", "Widget", 4, 200),
	}

	report := Compare(rows, GroupByCustomer,
		domain.MonthRange{Start: "2025-01", End: "2025-01"},
		domain.MonthRange{Start: "2025-02", End: "2025-02"})

	assert.Equal(t, 150.0, report.Total.RevenueA)
	assert.Equal(t, 200.0, report.Total.RevenueB)
	assert.Equal(t, 50.0, report.Total.RevenueDelta)
	assert.Equal(t, 5.0, report.Total.QuantityA)
	assert.Equal(t, 4.0, report.Total.QuantityB)
}

func TestCompareByProduct(t *testing.T) {
	rows := []domain.SalesRow{
		revRow("2025-01-15", "X", "Widget", 2, 100),
		revRow("2025-01-15", "Y", "Widget", 1, 60),
		revRow("2025-01-15", "X", "Gadget", 1, 30),
	}

	report := Compare(rows, GroupByProduct,
		domain.MonthRange{Start: "2025-01", End: "2025-01"},
		domain.MonthRange{Start: "2025-01", End: "2025-01"})

	require.Len(t, report.Rows, 2)
	for _, r := range report.Rows {
		if r.Key == "Widget" {
			assert.Equal(t, 160.0, r.RevenueA)
		}
	}
}

func TestCompareOverlappingRanges(t *testing.T) {
	rows := []domain.SalesRow{
		revRow("2025-01-15", "X", "Widget", 1, 100),
		revRow("2025-02-15", "X", "Widget", 1, 50),
	}

	report := Compare(rows, GroupByCustomer,
		domain.MonthRange{Start: "2025-01", End: "2025-02"},
		domain.MonthRange{Start: "2025-02", End: "2025-02"})

	require.Len(t, report.Rows, 1)
	assert.Equal(t, 150.0, report.Rows[0].RevenueA)
	assert.Equal(t, 50.0, report.Rows[0].RevenueB)
}

func TestCompareCustomerDrillDown(t *testing.T) {
	rows := []domain.SalesRow{
		revRow("2025-01-15", "X", "Widget", 2, 100),
		revRow("2025-02-15", "X", "Widget", 1, 40),
		revRow("2025-02-15", "X", "Gadget", 1, 30),
		revRow("2025-02-15", "Y", "Widget", 9, 900),
	}

	report := CompareCustomer(rows, "X",
		domain.MonthRange{Start: "2025-01", End: "2025-01"},
		domain.MonthRange{Start: "2025-02", End: "2025-02"})

	assert.Equal(t, string(GroupByProduct), report.GroupBy)
	require.Len(t, report.Rows, 2, "other customers' rows are excluded")
	assert.Equal(t, "Widget", report.Rows[0].Key)
	assert.Equal(t, -60.0, report.Rows[0].RevenueDelta)
	assert.Equal(t, "Gadget", report.Rows[1].Key)
	assert.Equal(t, 30.0, report.Rows[1].RevenueDelta)
}

func TestCompareSkipsUndatedRows(t *testing.T) {
	rows := []domain.SalesRow{
		revRow("", "X", "Widget", 1, 999),
		revRow("2025-01-15", "X", "Widget", 1, 10),
	}

	report := Compare(rows, GroupByCustomer,
		domain.MonthRange{Start: "2025-01", End: "2025-01"},
		domain.MonthRange{Start: "2025-01", End: "2025-01"})

	require.Len(t, report.Rows, 1)
	assert.Equal(t, 10.0, report.Rows[0].RevenueA)
}
