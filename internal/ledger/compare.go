package ledger

import (
	"math"
	"sort"

	"salesledger/internal/domain"
)

type GroupBy string

const (
	GroupByCustomer GroupBy = "customer"
	GroupByProduct  GroupBy = "product"
)

type rangeTotals struct {
	Revenue  float64
	Quantity float64
}

// Compare aggregates two inclusive month ranges independently over the same
// rows, grouped by customer or product, and reports per-key deltas sorted by
// descending absolute revenue delta. Ranges may overlap; each is normalized
// so start <= end regardless of the order given.
func Compare(rows []domain.SalesRow, groupBy GroupBy, rangeA, rangeB domain.MonthRange) domain.DeltaReport {
	rangeA = normalizeRange(rangeA)
	rangeB = normalizeRange(rangeB)

	totalsA := rangeSnapshot(rows, groupBy, rangeA)
	totalsB := rangeSnapshot(rows, groupBy, rangeB)

	keys := make(map[string]bool)
	for key := range totalsA {
		keys[key] = true
	}
	for key := range totalsB {
		keys[key] = true
	}

	report := domain.DeltaReport{
		GroupBy: string(groupBy),
		RangeA:  rangeA,
		RangeB:  rangeB,
		Rows:    make([]domain.DeltaRow, 0, len(keys)),
	}
	for key := range keys {
		a, b := totalsA[key], totalsB[key]
		report.Rows = append(report.Rows, deltaRow(key, a, b))
		report.Total.RevenueA += a.Revenue
		report.Total.RevenueB += b.Revenue
		report.Total.QuantityA += a.Quantity
		report.Total.QuantityB += b.Quantity
	}
	total := deltaRow("total", rangeTotals{report.Total.RevenueA, report.Total.QuantityA},
		rangeTotals{report.Total.RevenueB, report.Total.QuantityB})
	report.Total = total

	sort.Slice(report.Rows, func(i, j int) bool {
		di := math.Abs(report.Rows[i].RevenueDelta)
		dj := math.Abs(report.Rows[j].RevenueDelta)
		if di != dj {
			return di > dj
		}
		return report.Rows[i].Key < report.Rows[j].Key
	})
	return report
}

// CompareCustomer drills a customer-level delta down to its products: the
// same two ranges re-compared grouped by product, restricted to one
// customer's rows.
func CompareCustomer(rows []domain.SalesRow, customer string, rangeA, rangeB domain.MonthRange) domain.DeltaReport {
	filtered := make([]domain.SalesRow, 0, len(rows))
	for _, row := range rows {
		if row.Customer == customer {
			filtered = append(filtered, row)
		}
	}
	return Compare(filtered, GroupByProduct, rangeA, rangeB)
}

func rangeSnapshot(rows []domain.SalesRow, groupBy GroupBy, r domain.MonthRange) map[string]rangeTotals {
	totals := make(map[string]rangeTotals)
	for _, row := range rows {
		key := row.MonthKey()
		if key == "" || key < r.Start || key > r.End {
			continue
		}
		group := row.Customer
		if groupBy == GroupByProduct {
			group = row.Product
		}
		if group == "" {
			continue
		}
		entry := totals[group]
		entry.Revenue += row.Revenue
		entry.Quantity += row.Quantity
		totals[group] = entry
	}
	return totals
}

func deltaRow(key string, a, b rangeTotals) domain.DeltaRow {
	return domain.DeltaRow{
		Key:             key,
		RevenueA:        a.Revenue,
		RevenueB:        b.Revenue,
		RevenueDelta:    b.Revenue - a.Revenue,
		RevenuePercent:  percentChange(a.Revenue, b.Revenue),
		QuantityA:       a.Quantity,
		QuantityB:       b.Quantity,
		QuantityDelta:   b.Quantity - a.Quantity,
		QuantityPercent: percentChange(a.Quantity, b.Quantity),
	}
}

// percentChange follows the zero-base rule: a positive base yields the usual
// percentage, a zero base yields 100 when anything appeared and 0 otherwise.
func percentChange(a, b float64) float64 {
	if a > 0 {
		return (b - a) / a * 100
	}
	if b > 0 {
		return 100
	}
	return 0
}

func normalizeRange(r domain.MonthRange) domain.MonthRange {
	if r.Start > r.End {
		r.Start, r.End = r.End, r.Start
	}
	return r
}
