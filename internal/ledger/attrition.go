package ledger

import "salesledger/internal/domain"

// Attrition thresholds. Fixed constants, not configurable.
const (
	decliningThresholdPercent = -30.0
	lowActivityRatio          = 0.5
)

// ClassifyAttrition buckets one customer's revenue movement. Customers with
// no previous revenue are skipped entirely (ok=false): there is no history
// to compare against. The declining cutoff is strict, so an exact 30% drop
// is not flagged.
func ClassifyAttrition(previous, current float64) (domain.AttritionStatus, bool) {
	if previous == 0 {
		return "", false
	}
	if current == 0 {
		return domain.AttritionStopped, true
	}
	change := (current - previous) / previous * 100
	if change < decliningThresholdPercent {
		return domain.AttritionDeclining, true
	}
	if current < previous*lowActivityRatio {
		return domain.AttritionLowActivity, true
	}
	return "", false
}

// ClassifyQuantityChange buckets an item-level quantity movement between two
// periods. Unlike attrition, every pair classifies to some status.
func ClassifyQuantityChange(previous, current float64) domain.ChangeStatus {
	switch {
	case previous == 0 && current > 0:
		return domain.ChangeNew
	case current == 0 && previous > 0:
		return domain.ChangeDiscontinued
	case previous == current:
		return domain.ChangeNoChange
	case current > previous:
		return domain.ChangeIncreased
	default:
		return domain.ChangeDecreased
	}
}

// AttritionAlerts maps a customer-level delta report (range A = previous
// period, range B = current) through ClassifyAttrition, keeping only the
// customers that tripped an alert.
func AttritionAlerts(report domain.DeltaReport) []domain.AttritionAlert {
	alerts := make([]domain.AttritionAlert, 0)
	for _, row := range report.Rows {
		status, ok := ClassifyAttrition(row.RevenueA, row.RevenueB)
		if !ok {
			continue
		}
		alerts = append(alerts, domain.AttritionAlert{
			Customer:        row.Key,
			PreviousRevenue: row.RevenueA,
			CurrentRevenue:  row.RevenueB,
			PercentChange:   row.RevenuePercent,
			Status:          status,
		})
	}
	return alerts
}

// QuantityChanges classifies every (customer, product) pair of a product
// delta report by quantity movement.
func QuantityChanges(customer string, report domain.DeltaReport) []domain.QuantityChange {
	changes := make([]domain.QuantityChange, 0, len(report.Rows))
	for _, row := range report.Rows {
		changes = append(changes, domain.QuantityChange{
			Customer:         customer,
			Product:          row.Key,
			PreviousQuantity: row.QuantityA,
			CurrentQuantity:  row.QuantityB,
			Status:           ClassifyQuantityChange(row.QuantityA, row.QuantityB),
		})
	}
	return changes
}
