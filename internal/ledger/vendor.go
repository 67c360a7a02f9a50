package ledger

import (
	"strings"

	"salesledger/internal/domain"
)

type Vendor string

const (
	VendorAlpine Vendor = "alpine"
	VendorPetes  Vendor = "petes"
	VendorKehe   Vendor = "kehe"
	VendorVistar Vendor = "vistar"
	VendorTonys  Vendor = "tonys"
	VendorTroia  Vendor = "troia"
	VendorMHD    Vendor = "mhd"
)

// vendorKeywords is the classification table. Order is the priority order:
// when a source string could match more than one vendor, the first entry
// in this table wins.
var vendorKeywords = []struct {
	Vendor   Vendor
	Keywords []string
}{
	{VendorAlpine, []string{"alpine"}},
	{VendorPetes, []string{"pete"}},
	{VendorKehe, []string{"kehe"}},
	{VendorVistar, []string{"vistar"}},
	{VendorTonys, []string{"tony"}},
	{VendorTroia, []string{"troia"}},
	{VendorMHD, []string{"mhd", "mike hudson"}},
}

// Vendors returns the known vendors in classification priority order.
func Vendors() []Vendor {
	out := make([]Vendor, 0, len(vendorKeywords))
	for _, entry := range vendorKeywords {
		out = append(out, entry.Vendor)
	}
	return out
}

// IsVendor reports whether key names a known vendor.
func IsVendor(key string) bool {
	for _, entry := range vendorKeywords {
		if string(entry.Vendor) == key {
			return true
		}
	}
	return false
}

// Classify assigns a row's source string to exactly one vendor by
// case-insensitive substring match. The second return is false when no
// keyword matches; such rows belong to no vendor bucket.
func Classify(source string) (Vendor, bool) {
	lowered := strings.ToLower(source)
	for _, entry := range vendorKeywords {
		for _, keyword := range entry.Keywords {
			if strings.Contains(lowered, keyword) {
				return entry.Vendor, true
			}
		}
	}
	return "", false
}

// Partition splits normalized rows into per-vendor buckets and counts the
// rows no classifier claimed, for the upload summary.
func Partition(rows []domain.SalesRow) (map[Vendor][]domain.SalesRow, int) {
	buckets := make(map[Vendor][]domain.SalesRow)
	unclassified := 0
	for _, row := range rows {
		vendor, ok := Classify(row.Source)
		if !ok {
			unclassified++
			continue
		}
		buckets[vendor] = append(buckets[vendor], row)
	}
	return buckets, unclassified
}
