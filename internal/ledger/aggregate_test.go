package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/domain"
)

func TestAggregateMonthlyTotals(t *testing.T) {
	rows := []domain.SalesRow{
		row("2025-01-10", "Acme", "Widget", 5),
		row("2025-01-20", "Beta", "Widget", 3),
		row("2025-02-05", "Acme", "Gadget", 7),
	}

	agg := Aggregate(rows)

	assert.Equal(t, 2025, agg.LatestYear)
	assert.Equal(t, 8.0, agg.MonthlyTotals[0])
	assert.Equal(t, 7.0, agg.MonthlyTotals[1])
	assert.Equal(t, []string{"Acme", "Beta"}, agg.CustomersByMonth[0])
	assert.Equal(t, []string{"Acme"}, agg.CustomersByMonth[1])
}

func TestAggregateExcludesIncompleteRows(t *testing.T) {
	rows := []domain.SalesRow{
		row("2025-01-10", "Acme", "Widget", 5),
		row("", "Acme", "Widget", 100),
		row("2025-01-10", "", "Widget", 100),
		row("2025-01-10", "Acme", "", 100),
	}

	agg := Aggregate(rows)

	assert.Equal(t, 5.0, agg.MonthlyTotals[0])
	require.Len(t, agg.CustomerGrids, 1)
	assert.Equal(t, 5.0, agg.CustomerGrids[0].Months[0])
}

func TestAggregateConservation(t *testing.T) {
	rows := []domain.SalesRow{
		row("2025-01-10", "Acme", "Widget", 5),
		row("2025-01-10", "Acme", "Gadget", 2),
		row("2025-03-01", "Beta", "Widget", 4),
		row("2025-07-09", "Beta - East", "Gadget", 6),
		row("2025-12-31", "Gamma", "Widget", 1),
	}

	agg := Aggregate(rows)

	var fromProducts, fromCustomers, fromTotals float64
	for _, grid := range agg.ProductGrids {
		for _, v := range grid.Months {
			fromProducts += v
		}
	}
	for _, grid := range agg.CustomerGrids {
		for _, v := range grid.Months {
			fromCustomers += v
		}
	}
	for _, v := range agg.MonthlyTotals {
		fromTotals += v
	}

	assert.Equal(t, fromCustomers, fromProducts)
	assert.Equal(t, fromTotals, fromCustomers)
}

func TestAggregateScopesToLatestYear(t *testing.T) {
	rows := []domain.SalesRow{
		row("2024-06-01", "Acme", "Widget", 10),
		row("2025-01-10", "Beta", "Widget", 5),
	}

	agg := Aggregate(rows)

	assert.Equal(t, 2025, agg.LatestYear)
	assert.Equal(t, 5.0, agg.MonthlyTotals[0])
	assert.Equal(t, 0.0, agg.MonthlyTotals[5], "prior-year quantities stay out of the totals")

	// Prior years remain in the per-year grids.
	require.Len(t, agg.CustomerGrids, 2)
	assert.Equal(t, 2024, agg.CustomerGrids[0].Year)
	assert.Equal(t, 10.0, agg.CustomerGrids[0].Months[5])
}

func TestAggregateProductGridsKeyedByCode(t *testing.T) {
	rows := []domain.SalesRow{
		{Date: "2025-01-10", Customer: "Acme", Product: "Widget", VendorProductCode: "W1", Quantity: 2},
		{Date: "2025-01-10", Customer: "Acme", Product: "Widget", VendorProductCode: "W2", Quantity: 3},
	}

	agg := Aggregate(rows)

	require.Len(t, agg.ProductGrids, 2, "same product name with different codes stays distinct")
	assert.Equal(t, "W1", agg.ProductGrids[0].VendorProductCode)
	assert.Equal(t, "W2", agg.ProductGrids[1].VendorProductCode)
}

func TestNewLostBoundaryRule(t *testing.T) {
	// Cohorts exist only in March. No prior data means no new customers; no
	// subsequent data means no lost customers. Every month reports zero.
	rows := []domain.SalesRow{
		row("2025-03-05", "A", "Widget", 1),
		row("2025-03-20", "B", "Widget", 2),
	}

	agg := Aggregate(rows)

	for slot := 0; slot < 12; slot++ {
		assert.Empty(t, agg.NewCustomers[slot], "month %d", slot+1)
		assert.Empty(t, agg.LostCustomers[slot], "month %d", slot+1)
	}
}

func TestNewCustomersAgainstPriorUnion(t *testing.T) {
	rows := []domain.SalesRow{
		row("2025-01-05", "A", "Widget", 1),
		row("2025-02-05", "A", "Widget", 1),
		row("2025-02-06", "B", "Widget", 1),
		row("2025-04-05", "A", "Widget", 1),
		row("2025-04-06", "C", "Widget", 1),
	}

	agg := Aggregate(rows)

	assert.Empty(t, agg.NewCustomers[0], "first populated month has no prior data")
	assert.Equal(t, []string{"B"}, agg.NewCustomers[1])
	// C never appeared in months 1..3, so it is new in April even though
	// March itself was empty.
	assert.Equal(t, []string{"C"}, agg.NewCustomers[3])
}

func TestLostCustomersNeedSubsequentData(t *testing.T) {
	rows := []domain.SalesRow{
		row("2025-01-05", "A", "Widget", 1),
		row("2025-01-06", "B", "Widget", 1),
		row("2025-02-05", "A", "Widget", 1),
		row("2025-03-05", "A", "Widget", 1),
	}

	agg := Aggregate(rows)

	// B present in January, absent in February, and March has data to
	// confirm the loss.
	assert.Equal(t, []string{"B"}, agg.LostCustomers[1])
	// March is the last month with data: nothing after it can confirm a
	// loss there, and later empty months report nothing.
	assert.Empty(t, agg.LostCustomers[2])
	for slot := 3; slot < 12; slot++ {
		assert.Empty(t, agg.LostCustomers[slot])
	}
}

func TestAggregateEmptyLedger(t *testing.T) {
	agg := Aggregate(nil)

	assert.Equal(t, 0, agg.LatestYear)
	assert.Empty(t, agg.CustomerGrids)
	assert.Empty(t, agg.ProductGrids)
}

func TestSplitDate(t *testing.T) {
	year, month, ok := splitDate("2025-06-01")
	require.True(t, ok)
	assert.Equal(t, 2025, year)
	assert.Equal(t, 6, month)

	_, _, ok = splitDate("")
	assert.False(t, ok)
	_, _, ok = splitDate("2025-13-01")
	assert.False(t, ok)
	_, _, ok = splitDate("garbage")
	assert.False(t, ok)
}
