package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"salesledger/internal/domain"
	"salesledger/internal/ledger"
	"salesledger/internal/store"
)

var (
	ErrUnknownVendor = errors.New("unknown vendor")
	ErrEmptyBatch    = errors.New("upload batch has no rows")
)

type Options struct {
	RetentionYears int
	StoreRetries   int
}

type Service struct {
	store          store.Store
	retentionYears int
	retries        int
}

func New(st store.Store, opts Options) *Service {
	if opts.RetentionYears <= 0 {
		opts.RetentionYears = 3
	}
	if opts.StoreRetries <= 0 {
		opts.StoreRetries = 3
	}
	return &Service{
		store:          st,
		retentionYears: opts.RetentionYears,
		retries:        opts.StoreRetries,
	}
}

// ProcessUpload runs the full ingest pipeline for one upload batch:
// normalize, classify by vendor, then reconcile each vendor's bucket into
// its stored ledger with replace-by-month semantics. A vendor whose ledger
// cannot be persisted is reported in the summary without aborting the other
// vendors in the same batch.
func (s *Service) ProcessUpload(ctx context.Context, raws [][]any, uploadedAt string) (domain.UploadSummary, error) {
	if len(raws) == 0 {
		return domain.UploadSummary{}, ErrEmptyBatch
	}

	rows := ledger.NormalizeBatch(raws, uploadedAt)
	buckets, unclassified := ledger.Partition(rows)

	summary := domain.UploadSummary{
		TotalRows:    len(rows),
		Unclassified: unclassified,
	}
	for _, vendor := range ledger.Vendors() {
		batch, ok := buckets[vendor]
		if !ok {
			continue
		}
		summary.Vendors = append(summary.Vendors, s.reconcileVendor(ctx, vendor, batch))
	}
	return summary, nil
}

func (s *Service) reconcileVendor(ctx context.Context, vendor ledger.Vendor, batch []domain.SalesRow) domain.VendorUploadResult {
	result := domain.VendorUploadResult{
		Vendor:         string(vendor),
		RowsAdded:      len(batch),
		MonthsReplaced: ledger.MonthsIn(batch),
	}

	existing, err := s.getLedgerRetrying(ctx, string(vendor))
	if err != nil {
		result.Error = fmt.Sprintf("read ledger: %v", err)
		return result
	}

	updated := ledger.Reconcile(existing, batch)
	truncated, err := s.putLedgerWithFallback(ctx, string(vendor), updated)
	if err != nil {
		result.Error = fmt.Sprintf("persist ledger: %v", err)
		return result
	}
	result.Truncated = truncated
	return result
}

// putLedgerWithFallback persists a ledger with bounded retries. An
// oversized-payload failure triggers the retention fallback: truncate to the
// most recent retention window and try again, logged distinctly so operators
// can tell data was dropped.
func (s *Service) putLedgerWithFallback(ctx context.Context, vendor string, rows []domain.SalesRow) (truncated bool, err error) {
	err = s.retrying(ctx, func() error {
		return s.store.PutLedger(ctx, vendor, rows)
	})
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrTooLarge) {
		return false, err
	}

	kept := ledger.TruncateToRecentYears(rows, s.retentionYears)
	log.Printf("ledger %s too large (%d rows); truncating to last %d years (%d rows)",
		vendor, len(rows), s.retentionYears, len(kept))
	if err := s.retrying(ctx, func() error {
		return s.store.PutLedger(ctx, vendor, kept)
	}); err != nil {
		return false, err
	}
	return true, nil
}

// retrying runs op with a small fixed retry budget and linear backoff,
// for transient store faults.
func (s *Service) retrying(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= s.retries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if errors.Is(err, store.ErrTooLarge) || attempt == s.retries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return err
}

func (s *Service) getLedgerRetrying(ctx context.Context, vendor string) ([]domain.SalesRow, error) {
	var rows []domain.SalesRow
	err := s.retrying(ctx, func() error {
		var getErr error
		rows, getErr = s.store.GetLedger(ctx, vendor)
		return getErr
	})
	return rows, err
}

type VendorInfo struct {
	Vendor string `json:"vendor"`
	Rows   int    `json:"rows"`
}

// Vendors lists the known vendors and their stored row counts.
func (s *Service) Vendors(ctx context.Context) ([]VendorInfo, error) {
	infos := make([]VendorInfo, 0, len(ledger.Vendors()))
	for _, vendor := range ledger.Vendors() {
		rows, err := s.store.GetLedger(ctx, string(vendor))
		if err != nil {
			return nil, fmt.Errorf("vendor %s: %w", vendor, err)
		}
		infos = append(infos, VendorInfo{Vendor: string(vendor), Rows: len(rows)})
	}
	return infos, nil
}

func (s *Service) Aggregates(ctx context.Context, vendor string) (domain.MonthlyAggregate, error) {
	rows, err := s.vendorLedger(ctx, vendor)
	if err != nil {
		return domain.MonthlyAggregate{}, err
	}
	return ledger.Aggregate(rows), nil
}

// Hierarchy builds the main-account tree for one vendor and year. Year 0
// means the latest year present in the ledger.
func (s *Service) Hierarchy(ctx context.Context, vendor string, year int) ([]domain.HierarchyNode, error) {
	rows, err := s.vendorLedger(ctx, vendor)
	if err != nil {
		return nil, err
	}
	if year == 0 {
		year = ledger.Aggregate(rows).LatestYear
	}
	return ledger.BuildHierarchy(rows, year), nil
}

func (s *Service) CompareRanges(ctx context.Context, vendor string, groupBy string, rangeA, rangeB domain.MonthRange) (domain.DeltaReport, error) {
	group := ledger.GroupBy(groupBy)
	if group != ledger.GroupByCustomer && group != ledger.GroupByProduct {
		return domain.DeltaReport{}, fmt.Errorf("invalid group_by %q (want customer or product)", groupBy)
	}
	rows, err := s.vendorLedger(ctx, vendor)
	if err != nil {
		return domain.DeltaReport{}, err
	}
	return ledger.Compare(rows, group, rangeA, rangeB), nil
}

func (s *Service) CompareCustomer(ctx context.Context, vendor, customer string, rangeA, rangeB domain.MonthRange) (domain.DeltaReport, error) {
	rows, err := s.vendorLedger(ctx, vendor)
	if err != nil {
		return domain.DeltaReport{}, err
	}
	return ledger.CompareCustomer(rows, customer, rangeA, rangeB), nil
}

// AttritionAlerts classifies every customer's movement from the previous to
// the current period. Zero-valued ranges default to the two most recent
// months with data.
func (s *Service) AttritionAlerts(ctx context.Context, vendor string, previous, current domain.MonthRange) ([]domain.AttritionAlert, error) {
	rows, err := s.vendorLedger(ctx, vendor)
	if err != nil {
		return nil, err
	}
	previous, current = defaultComparisonRanges(rows, previous, current)
	report := ledger.Compare(rows, ledger.GroupByCustomer, previous, current)
	return ledger.AttritionAlerts(report), nil
}

// QuantityChanges classifies one customer's per-product quantity movement
// between two periods.
func (s *Service) QuantityChanges(ctx context.Context, vendor, customer string, previous, current domain.MonthRange) ([]domain.QuantityChange, error) {
	rows, err := s.vendorLedger(ctx, vendor)
	if err != nil {
		return nil, err
	}
	previous, current = defaultComparisonRanges(rows, previous, current)
	report := ledger.CompareCustomer(rows, customer, previous, current)
	return ledger.QuantityChanges(customer, report), nil
}

// ClearMonth removes exactly one calendar month from a vendor's ledger and
// returns the recomputed aggregates.
func (s *Service) ClearMonth(ctx context.Context, vendor string, year, month int) (domain.MonthlyAggregate, error) {
	if month < 1 || month > 12 {
		return domain.MonthlyAggregate{}, fmt.Errorf("invalid month %d", month)
	}
	rows, err := s.vendorLedger(ctx, vendor)
	if err != nil {
		return domain.MonthlyAggregate{}, err
	}
	kept := ledger.RemoveMonth(rows, year, month)
	if _, err := s.putLedgerWithFallback(ctx, vendor, kept); err != nil {
		return domain.MonthlyAggregate{}, err
	}
	return ledger.Aggregate(kept), nil
}

func (s *Service) ClearVendor(ctx context.Context, vendor string) error {
	if !ledger.IsVendor(vendor) {
		return ErrUnknownVendor
	}
	return s.retrying(ctx, func() error {
		return s.store.DeleteLedger(ctx, vendor)
	})
}

func (s *Service) ClearAll(ctx context.Context) error {
	for _, vendor := range ledger.Vendors() {
		if err := s.ClearVendor(ctx, string(vendor)); err != nil {
			return fmt.Errorf("clear %s: %w", vendor, err)
		}
	}
	return nil
}

func (s *Service) vendorLedger(ctx context.Context, vendor string) ([]domain.SalesRow, error) {
	if !ledger.IsVendor(vendor) {
		return nil, ErrUnknownVendor
	}
	return s.getLedgerRetrying(ctx, vendor)
}

// defaultComparisonRanges fills zero-valued ranges with the two most recent
// months that have data.
func defaultComparisonRanges(rows []domain.SalesRow, previous, current domain.MonthRange) (domain.MonthRange, domain.MonthRange) {
	if previous.Start != "" || current.Start != "" {
		return previous, current
	}
	months := ledger.MonthsIn(rows)
	if len(months) == 0 {
		return previous, current
	}
	latest := months[len(months)-1]
	current = domain.MonthRange{Start: latest, End: latest}
	if len(months) > 1 {
		prior := months[len(months)-2]
		previous = domain.MonthRange{Start: prior, End: prior}
	} else {
		previous = current
	}
	return previous, current
}
