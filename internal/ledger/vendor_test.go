package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/domain"
)

func TestClassifyKnownVendors(t *testing.T) {
	cases := map[string]Vendor{
		"Alpine Upload":          VendorAlpine,
		"petes milk run":         VendorPetes,
		"KeHE Distributors":      VendorKehe,
		"vistar week 22":         VendorVistar,
		"Tony's Fine Foods":      VendorTonys,
		"troia foods":            VendorTroia,
		"MHD export":             VendorMHD,
		"Mike Hudson Distribut.": VendorMHD,
	}
	for source, want := range cases {
		vendor, ok := Classify(source)
		require.True(t, ok, "source %q", source)
		assert.Equal(t, want, vendor, "source %q", source)
	}
}

func TestClassifyExclusivity(t *testing.T) {
	// A source naming one vendor must land in exactly that bucket even when
	// run against the full table.
	vendor, ok := Classify("Alpine Upload")
	require.True(t, ok)
	assert.Equal(t, VendorAlpine, vendor)

	for _, other := range Vendors() {
		if other == VendorAlpine {
			continue
		}
		got, _ := Classify("Alpine Upload")
		assert.NotEqual(t, other, got)
	}
}

func TestClassifyUnknownSource(t *testing.T) {
	_, ok := Classify("some random wholesaler")
	assert.False(t, ok)

	_, ok = Classify("")
	assert.False(t, ok)
}

func TestClassifyPriorityOrder(t *testing.T) {
	// Table order breaks ties: alpine precedes kehe.
	vendor, ok := Classify("alpine via kehe consolidator")
	require.True(t, ok)
	assert.Equal(t, VendorAlpine, vendor)
}

func TestPartition(t *testing.T) {
	rows := []domain.SalesRow{
		{Customer: "A", Source: "Alpine Upload"},
		{Customer: "B", Source: "kehe feed"},
		{Customer: "C", Source: "unknown distributor"},
		{Customer: "D", Source: "alpine again"},
	}

	buckets, unclassified := Partition(rows)

	assert.Equal(t, 1, unclassified)
	assert.Len(t, buckets[VendorAlpine], 2)
	assert.Len(t, buckets[VendorKehe], 1)
	_, present := buckets[VendorVistar]
	assert.False(t, present, "empty buckets are not materialized")
}

func TestIsVendor(t *testing.T) {
	assert.True(t, IsVendor("alpine"))
	assert.True(t, IsVendor("mhd"))
	assert.False(t, IsVendor("acme"))
}
