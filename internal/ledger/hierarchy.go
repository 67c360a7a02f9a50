package ledger

import (
	"sort"
	"strings"

	"salesledger/internal/domain"
)

// SplitAccount applies the customer naming convention: a " - " separator
// (checked first) or ": " separator splits the name into main account and
// sub-account. Without a separator the whole name is the main account and
// sub is empty.
func SplitAccount(name string) (main, sub string) {
	for _, sep := range []string{" - ", ": "} {
		if idx := strings.Index(name, sep); idx >= 0 {
			main = strings.TrimSpace(name[:idx])
			sub = strings.TrimSpace(name[idx+len(sep):])
			if main != "" && sub != "" {
				return main, sub
			}
		}
	}
	return strings.TrimSpace(name), ""
}

type productKey struct {
	Product string
	Code    string
}

// BuildHierarchy partitions one year's rows into a two-level main-account /
// sub-account tree for presentation grouping. Products are keyed by
// (product, vendor product code) so same-named products with different codes
// stay distinct, and every slice is sorted for stable display order.
func BuildHierarchy(rows []domain.SalesRow, year int) []domain.HierarchyNode {
	type nodeAccum struct {
		total    [12]float64
		direct   map[productKey]*[12]float64
		subs     map[string]map[productKey]*[12]float64
		subNames []string
	}

	nodes := make(map[string]*nodeAccum)
	for _, row := range rows {
		if row.Customer == "" || row.Product == "" {
			continue
		}
		rowYr, month, ok := splitDate(row.Date)
		if !ok || rowYr != year {
			continue
		}
		slot := month - 1

		main, sub := SplitAccount(row.Customer)
		node := nodes[main]
		if node == nil {
			node = &nodeAccum{
				direct: make(map[productKey]*[12]float64),
				subs:   make(map[string]map[productKey]*[12]float64),
			}
			nodes[main] = node
		}
		node.total[slot] += row.Quantity

		key := productKey{row.Product, row.VendorProductCode}
		target := node.direct
		if sub != "" {
			if node.subs[sub] == nil {
				node.subs[sub] = make(map[productKey]*[12]float64)
				node.subNames = append(node.subNames, sub)
			}
			target = node.subs[sub]
		}
		if target[key] == nil {
			target[key] = &[12]float64{}
		}
		target[key][slot] += row.Quantity
	}

	mains := make([]string, 0, len(nodes))
	for main := range nodes {
		mains = append(mains, main)
	}
	sort.Strings(mains)

	out := make([]domain.HierarchyNode, 0, len(mains))
	for _, main := range mains {
		accum := nodes[main]
		node := domain.HierarchyNode{
			MainAccount:    main,
			TotalQuantity:  accum.total,
			DirectProducts: flattenProducts(accum.direct),
		}
		sort.Strings(accum.subNames)
		for _, sub := range accum.subNames {
			node.SubAccounts = append(node.SubAccounts, domain.SubAccount{
				Name:     sub,
				Products: flattenProducts(accum.subs[sub]),
			})
		}
		out = append(out, node)
	}
	return out
}

func flattenProducts(grid map[productKey]*[12]float64) []domain.ProductTotal {
	out := make([]domain.ProductTotal, 0, len(grid))
	for key, months := range grid {
		out = append(out, domain.ProductTotal{
			Product:           key.Product,
			VendorProductCode: key.Code,
			Months:            *months,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Product != out[j].Product {
			return out[i].Product < out[j].Product
		}
		return out[i].VendorProductCode < out[j].VendorProductCode
	})
	return out
}
