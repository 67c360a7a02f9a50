package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/domain"
	"salesledger/internal/store"
)

func rawRow(date, customer, product, code string, qty any, invoice, source string) []any {
	return []any{date, customer, product, code, qty, invoice, source, ""}
}

func newTestService() (*Service, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	return New(mem, Options{StoreRetries: 1}), mem
}

func TestProcessUploadPipeline(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	summary, err := svc.ProcessUpload(ctx, [][]any{
		rawRow("2025-01-10", "Acme", "Widget", "W1", 5, "INV1", "Alpine Upload"),
		rawRow("2025-01-11", "Beta", "Widget", "W1", 3, "INV2", "kehe feed"),
		rawRow("2025-01-12", "Gamma", "Widget", "W1", 2, "INV3", "mystery vendor"),
	}, "2025-02-01T00:00:00Z")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalRows)
	assert.Equal(t, 1, summary.Unclassified)
	require.Len(t, summary.Vendors, 2)
	assert.Equal(t, "alpine", summary.Vendors[0].Vendor)
	assert.Equal(t, []string{"2025-01"}, summary.Vendors[0].MonthsReplaced)

	alpine, err := mem.GetLedger(ctx, "alpine")
	require.NoError(t, err)
	require.Len(t, alpine, 1)
	assert.Equal(t, "Acme", alpine[0].Customer)
	assert.Equal(t, "2025-02-01T00:00:00Z", alpine[0].UploadedAt)

	kehe, err := mem.GetLedger(ctx, "kehe")
	require.NoError(t, err)
	require.Len(t, kehe, 1)
	assert.Equal(t, "Beta", kehe[0].Customer)
}

func TestProcessUploadReplacesMonth(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	_, err := svc.ProcessUpload(ctx, [][]any{
		rawRow("2025-01-10", "Acme", "Widget", "W1", 5, "INV1", "alpine"),
		rawRow("2025-02-10", "Acme", "Widget", "W1", 7, "INV2", "alpine"),
	}, "")
	require.NoError(t, err)

	_, err = svc.ProcessUpload(ctx, [][]any{
		rawRow("2025-02-12", "Beta", "Widget", "W1", 9, "INV3", "alpine"),
	}, "")
	require.NoError(t, err)

	rows, err := mem.GetLedger(ctx, "alpine")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme", rows[0].Customer, "January untouched")
	assert.Equal(t, "Beta", rows[1].Customer, "February fully replaced")
}

func TestProcessUploadIdempotent(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	batch := [][]any{
		rawRow("2025-03-01", "Acme", "Widget", "W1", 4, "INV1", "alpine"),
		rawRow("2025-03-15", "Beta", "Gadget", "G1", 6, "INV2", "alpine"),
	}
	_, err := svc.ProcessUpload(ctx, batch, "")
	require.NoError(t, err)
	first, err := mem.GetLedger(ctx, "alpine")
	require.NoError(t, err)

	_, err = svc.ProcessUpload(ctx, batch, "")
	require.NoError(t, err)
	second, err := mem.GetLedger(ctx, "alpine")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestProcessUploadEmptyBatchRejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ProcessUpload(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestProcessUploadTruncationFallback(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.MaxRows = 2
	svc := New(mem, Options{RetentionYears: 1, StoreRetries: 1})
	ctx := context.Background()

	summary, err := svc.ProcessUpload(ctx, [][]any{
		rawRow("2023-01-10", "Old", "Widget", "W1", 1, "INV1", "alpine"),
		rawRow("2025-01-10", "Acme", "Widget", "W1", 5, "INV2", "alpine"),
		rawRow("2025-02-10", "Beta", "Widget", "W1", 3, "INV3", "alpine"),
	}, "")
	require.NoError(t, err)

	require.Len(t, summary.Vendors, 1)
	assert.True(t, summary.Vendors[0].Truncated)
	assert.Empty(t, summary.Vendors[0].Error)

	rows, err := mem.GetLedger(ctx, "alpine")
	require.NoError(t, err)
	require.Len(t, rows, 2, "retention window keeps only the latest year")
	assert.Equal(t, "Acme", rows[0].Customer)
}

type failingStore struct {
	*store.MemoryStore
	failVendor string
}

func (f *failingStore) PutLedger(ctx context.Context, vendor string, rows []domain.SalesRow) error {
	if vendor == f.failVendor {
		return errors.New("store unavailable")
	}
	return f.MemoryStore.PutLedger(ctx, vendor, rows)
}

func TestProcessUploadVendorFailureIsIsolated(t *testing.T) {
	failing := &failingStore{MemoryStore: store.NewMemoryStore(), failVendor: "alpine"}
	svc := New(failing, Options{StoreRetries: 1})
	ctx := context.Background()

	summary, err := svc.ProcessUpload(ctx, [][]any{
		rawRow("2025-01-10", "Acme", "Widget", "W1", 5, "INV1", "alpine"),
		rawRow("2025-01-11", "Beta", "Widget", "W1", 3, "INV2", "kehe"),
	}, "")
	require.NoError(t, err, "a vendor-level failure never aborts the batch")

	require.Len(t, summary.Vendors, 2)
	assert.NotEmpty(t, summary.Vendors[0].Error)
	assert.Empty(t, summary.Vendors[1].Error)

	kehe, err := failing.GetLedger(ctx, "kehe")
	require.NoError(t, err)
	assert.Len(t, kehe, 1, "the healthy vendor still persisted")
}

func TestClearMonth(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	_, err := svc.ProcessUpload(ctx, [][]any{
		rawRow("2025-01-10", "Acme", "Widget", "W1", 5, "INV1", "alpine"),
		rawRow("2025-02-10", "Acme", "Widget", "W1", 7, "INV2", "alpine"),
	}, "")
	require.NoError(t, err)

	agg, err := svc.ClearMonth(ctx, "alpine", 2025, 1)
	require.NoError(t, err)

	assert.Equal(t, 0.0, agg.MonthlyTotals[0])
	assert.Equal(t, 7.0, agg.MonthlyTotals[1])

	rows, err := mem.GetLedger(ctx, "alpine")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestClearVendorAndAll(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	_, err := svc.ProcessUpload(ctx, [][]any{
		rawRow("2025-01-10", "Acme", "Widget", "W1", 5, "INV1", "alpine"),
		rawRow("2025-01-11", "Beta", "Widget", "W1", 3, "INV2", "kehe"),
	}, "")
	require.NoError(t, err)

	require.NoError(t, svc.ClearVendor(ctx, "alpine"))
	rows, err := mem.GetLedger(ctx, "alpine")
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, svc.ClearAll(ctx))
	rows, err = mem.GetLedger(ctx, "kehe")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUnknownVendorRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Aggregates(ctx, "acme")
	assert.ErrorIs(t, err, ErrUnknownVendor)

	err = svc.ClearVendor(ctx, "acme")
	assert.ErrorIs(t, err, ErrUnknownVendor)
}

func TestAttritionAlertsDefaultRanges(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Build revenue through the nine-field legacy schema (amount at index 5).
	_, err := svc.ProcessUpload(ctx, [][]any{
		{"2025-01-10", "Acme", "Widget", "W1", 5, 100.0, "INV1", "alpine", ""},
		{"2025-02-10", "Acme", "Widget", "W1", 1, 20.0, "INV2", "alpine", ""},
		{"2025-02-11", "Beta", "Widget", "W1", 2, 50.0, "INV3", "alpine", ""},
	}, "")
	require.NoError(t, err)

	alerts, err := svc.AttritionAlerts(ctx, "alpine", domain.MonthRange{}, domain.MonthRange{})
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, "Acme", alerts[0].Customer)
	assert.Equal(t, domain.AttritionDeclining, alerts[0].Status)
}

func TestCompareRangesValidatesGroupBy(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CompareRanges(context.Background(), "alpine", "invoice",
		domain.MonthRange{Start: "2025-01", End: "2025-01"},
		domain.MonthRange{Start: "2025-02", End: "2025-02"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group_by")
}
