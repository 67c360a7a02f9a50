package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesledger/internal/domain"
)

// PostgresStore is the relational adapter. A vendor's ledger is the set of
// sales_rows with that vendor key; a put deletes and re-inserts the whole
// set inside one transaction so readers never observe a half-replaced
// ledger.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetLedger(ctx context.Context, vendor string) ([]domain.SalesRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			sale_date,
			customer,
			product,
			vendor_product_code,
			our_item_code,
			quantity::double precision,
			revenue::double precision,
			invoice_id,
			source,
			uploaded_at
		FROM sales_rows
		WHERE vendor = $1
		ORDER BY id ASC
	`, vendor)
	if err != nil {
		return nil, fmt.Errorf("get ledger %s: %w", vendor, err)
	}
	defer rows.Close()

	ledger := make([]domain.SalesRow, 0, 256)
	for rows.Next() {
		var row domain.SalesRow
		if err := rows.Scan(
			&row.Date,
			&row.Customer,
			&row.Product,
			&row.VendorProductCode,
			&row.OurItemCode,
			&row.Quantity,
			&row.Revenue,
			&row.InvoiceID,
			&row.Source,
			&row.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		ledger = append(ledger, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger %s: %w", vendor, err)
	}
	return ledger, nil
}

func (s *PostgresStore) PutLedger(ctx context.Context, vendor string, ledger []domain.SalesRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin put ledger %s: %w", vendor, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM sales_rows WHERE vendor = $1", vendor); err != nil {
		return fmt.Errorf("clear ledger %s: %w", vendor, err)
	}

	if len(ledger) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"sales_rows"},
			[]string{
				"vendor", "sale_date", "customer", "product",
				"vendor_product_code", "our_item_code", "quantity",
				"revenue", "invoice_id", "source", "uploaded_at",
			},
			pgx.CopyFromSlice(len(ledger), func(i int) ([]any, error) {
				row := ledger[i]
				return []any{
					vendor, row.Date, row.Customer, row.Product,
					row.VendorProductCode, row.OurItemCode, row.Quantity,
					row.Revenue, row.InvoiceID, row.Source, row.UploadedAt,
				}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("insert ledger %s: %w", vendor, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ledger %s: %w", vendor, err)
	}
	return nil
}

func (s *PostgresStore) DeleteLedger(ctx context.Context, vendor string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM sales_rows WHERE vendor = $1", vendor); err != nil {
		return fmt.Errorf("delete ledger %s: %w", vendor, err)
	}
	return nil
}

func (s *PostgresStore) ListVendors(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT vendor FROM sales_rows ORDER BY vendor ASC")
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	vendors := make([]string, 0, 8)
	for rows.Next() {
		var vendor string
		if err := rows.Scan(&vendor); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, vendor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendors: %w", err)
	}
	return vendors, nil
}
