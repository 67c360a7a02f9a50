package store

import (
	"context"
	"errors"

	"salesledger/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrTooLarge marks a persist failure caused by the payload size rather
	// than a transient fault; the caller may truncate the ledger and retry.
	ErrTooLarge = errors.New("ledger payload too large")
)

// Store is the record-store contract the reconciliation engine depends on.
// A ledger is the complete row-set of one vendor; PutLedger is always a full
// replace, never an incremental patch. Implementations must not require any
// query capability beyond fetching all rows for a vendor.
type Store interface {
	GetLedger(ctx context.Context, vendor string) ([]domain.SalesRow, error)
	PutLedger(ctx context.Context, vendor string, rows []domain.SalesRow) error
	DeleteLedger(ctx context.Context, vendor string) error
	ListVendors(ctx context.Context) ([]string, error)
}
