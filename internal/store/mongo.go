package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salesledger/internal/domain"
)

type mongoSalesRow struct {
	Vendor            string  `bson:"vendor"`
	Seq               int     `bson:"seq"`
	Date              string  `bson:"date"`
	Customer          string  `bson:"customer"`
	Product           string  `bson:"product"`
	VendorProductCode string  `bson:"vendorProductCode"`
	OurItemCode       string  `bson:"ourItemCode"`
	Quantity          float64 `bson:"quantity"`
	Revenue           float64 `bson:"revenue"`
	InvoiceID         string  `bson:"invoiceId"`
	Source            string  `bson:"source"`
	UploadedAt        string  `bson:"uploadedAt"`
}

// MongoStore is the document adapter: one document per sales row, keyed by
// vendor, with a sequence number preserving upload order. It satisfies the
// same contract as the relational adapter.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	collection := db.Collection("sales_rows")
	store := &MongoStore{collection: collection}
	store.ensureIndexes(context.Background())
	return store
}

func (s *MongoStore) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "vendor", Value: 1}, {Key: "seq", Value: 1}}},
	}
	s.collection.Indexes().CreateMany(ctx, indexes)
}

func (s *MongoStore) GetLedger(ctx context.Context, vendor string) ([]domain.SalesRow, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"vendor": vendor}, opts)
	if err != nil {
		return nil, fmt.Errorf("get ledger %s: %w", vendor, err)
	}
	defer cursor.Close(ctx)

	var docs []mongoSalesRow
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", vendor, err)
	}

	ledger := make([]domain.SalesRow, 0, len(docs))
	for _, doc := range docs {
		ledger = append(ledger, domain.SalesRow{
			Date:              doc.Date,
			Customer:          doc.Customer,
			Product:           doc.Product,
			VendorProductCode: doc.VendorProductCode,
			OurItemCode:       doc.OurItemCode,
			Quantity:          doc.Quantity,
			Revenue:           doc.Revenue,
			InvoiceID:         doc.InvoiceID,
			Source:            doc.Source,
			UploadedAt:        doc.UploadedAt,
		})
	}
	return ledger, nil
}

func (s *MongoStore) PutLedger(ctx context.Context, vendor string, ledger []domain.SalesRow) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{"vendor": vendor}); err != nil {
		return fmt.Errorf("clear ledger %s: %w", vendor, err)
	}
	if len(ledger) == 0 {
		return nil
	}

	docs := make([]any, 0, len(ledger))
	for i, row := range ledger {
		docs = append(docs, mongoSalesRow{
			Vendor:            vendor,
			Seq:               i,
			Date:              row.Date,
			Customer:          row.Customer,
			Product:           row.Product,
			VendorProductCode: row.VendorProductCode,
			OurItemCode:       row.OurItemCode,
			Quantity:          row.Quantity,
			Revenue:           row.Revenue,
			InvoiceID:         row.InvoiceID,
			Source:            row.Source,
			UploadedAt:        row.UploadedAt,
		})
	}

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		if isTooLarge(err) {
			return fmt.Errorf("insert ledger %s: %w", vendor, ErrTooLarge)
		}
		return fmt.Errorf("insert ledger %s: %w", vendor, err)
	}
	return nil
}

func (s *MongoStore) DeleteLedger(ctx context.Context, vendor string) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{"vendor": vendor}); err != nil {
		return fmt.Errorf("delete ledger %s: %w", vendor, err)
	}
	return nil
}

func (s *MongoStore) ListVendors(ctx context.Context) ([]string, error) {
	values, err := s.collection.Distinct(ctx, "vendor", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	vendors := make([]string, 0, len(values))
	for _, value := range values {
		if vendor, ok := value.(string); ok {
			vendors = append(vendors, vendor)
		}
	}
	sort.Strings(vendors)
	return vendors, nil
}

func isTooLarge(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "too large") || strings.Contains(msg, "exceeds maximum")
}
