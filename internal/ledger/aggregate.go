package ledger

import (
	"sort"
	"strconv"

	"salesledger/internal/domain"
)

// splitDate pulls (year, month) out of a YYYY-MM-DD date string. The month
// is 1-based. ok is false for empty or malformed dates.
func splitDate(date string) (year, month int, ok bool) {
	if len(date) < 7 || date[4] != '-' {
		return 0, 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0, 0, false
	}
	month, err = strconv.Atoi(date[5:7])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// Aggregate recomputes every derived view from a ledger snapshot. It is a
// pure function of the rows: monthly totals and customer cohorts are scoped
// to the latest calendar year present, quantity grids are kept per year, and
// new/lost customer events compare adjacent cohorts of the latest year.
// Rows missing a customer, product, or parsable date are excluded.
func Aggregate(rows []domain.SalesRow) domain.MonthlyAggregate {
	agg := domain.MonthlyAggregate{
		CustomerGrids: []domain.CustomerGrid{},
		ProductGrids:  []domain.ProductGrid{},
	}

	latest := 0
	for _, row := range rows {
		if row.Customer == "" || row.Product == "" {
			continue
		}
		if year, _, ok := splitDate(row.Date); ok && year > latest {
			latest = year
		}
	}
	agg.LatestYear = latest
	if latest == 0 {
		return agg
	}

	type customerKey struct {
		Year     int
		Customer string
	}
	type productKey struct {
		Year     int
		Customer string
		Product  string
		Code     string
	}
	customerGrids := make(map[customerKey]*[12]float64)
	productGrids := make(map[productKey]*[12]float64)
	var cohorts [12]map[string]bool

	for _, row := range rows {
		if row.Customer == "" || row.Product == "" {
			continue
		}
		year, month, ok := splitDate(row.Date)
		if !ok {
			continue
		}
		slot := month - 1

		ck := customerKey{year, row.Customer}
		if customerGrids[ck] == nil {
			customerGrids[ck] = &[12]float64{}
		}
		customerGrids[ck][slot] += row.Quantity

		pk := productKey{year, row.Customer, row.Product, row.VendorProductCode}
		if productGrids[pk] == nil {
			productGrids[pk] = &[12]float64{}
		}
		productGrids[pk][slot] += row.Quantity

		if year == latest {
			agg.MonthlyTotals[slot] += row.Quantity
			if cohorts[slot] == nil {
				cohorts[slot] = make(map[string]bool)
			}
			cohorts[slot][row.Customer] = true
		}
	}

	for key, months := range customerGrids {
		agg.CustomerGrids = append(agg.CustomerGrids, domain.CustomerGrid{
			Year:     key.Year,
			Customer: key.Customer,
			Months:   *months,
		})
	}
	sort.Slice(agg.CustomerGrids, func(i, j int) bool {
		a, b := agg.CustomerGrids[i], agg.CustomerGrids[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Customer < b.Customer
	})

	for key, months := range productGrids {
		agg.ProductGrids = append(agg.ProductGrids, domain.ProductGrid{
			Year:              key.Year,
			Customer:          key.Customer,
			Product:           key.Product,
			VendorProductCode: key.Code,
			Months:            *months,
		})
	}
	sort.Slice(agg.ProductGrids, func(i, j int) bool {
		a, b := agg.ProductGrids[i], agg.ProductGrids[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Customer != b.Customer {
			return a.Customer < b.Customer
		}
		if a.Product != b.Product {
			return a.Product < b.Product
		}
		return a.VendorProductCode < b.VendorProductCode
	})

	for slot := 0; slot < 12; slot++ {
		agg.CustomersByMonth[slot] = sortedMembers(cohorts[slot])
	}
	agg.NewCustomers, agg.LostCustomers = customerEvents(cohorts)
	return agg
}

// customerEvents derives new/lost customer lists per month of the latest
// year. A month only reports new customers when at least one earlier month
// has data, and only reports lost customers when at least one later month
// has data; the edges of the observed window never generate churn signals.
func customerEvents(cohorts [12]map[string]bool) (newCustomers, lostCustomers [12][]string) {
	var hasData [12]bool
	for slot := 0; slot < 12; slot++ {
		hasData[slot] = len(cohorts[slot]) > 0
		newCustomers[slot] = []string{}
		lostCustomers[slot] = []string{}
	}

	for slot := 0; slot < 12; slot++ {
		hasPrior := false
		for i := 0; i < slot; i++ {
			if hasData[i] {
				hasPrior = true
				break
			}
		}
		hasSubsequent := false
		for i := slot + 1; i < 12; i++ {
			if hasData[i] {
				hasSubsequent = true
				break
			}
		}

		if hasPrior {
			priorUnion := make(map[string]bool)
			for i := 0; i < slot; i++ {
				for customer := range cohorts[i] {
					priorUnion[customer] = true
				}
			}
			for customer := range cohorts[slot] {
				if !priorUnion[customer] {
					newCustomers[slot] = append(newCustomers[slot], customer)
				}
			}
			sort.Strings(newCustomers[slot])
		}

		if slot > 0 && hasSubsequent {
			for customer := range cohorts[slot-1] {
				if !cohorts[slot][customer] {
					lostCustomers[slot] = append(lostCustomers[slot], customer)
				}
			}
			sort.Strings(lostCustomers[slot])
		}
	}
	return newCustomers, lostCustomers
}

func sortedMembers(set map[string]bool) []string {
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	sort.Strings(members)
	return members
}
