package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"salesledger/internal/config"
	"salesledger/internal/db"
	"salesledger/internal/ingest"
	"salesledger/internal/service"
	"salesledger/internal/store"
)

type options struct {
	filePath   string
	format     string
	layoutJSON string
	uploadedAt string
	dryRun     bool
}

func main() {
	opts := parseFlags()

	raws, err := readReport(opts)
	if err != nil {
		log.Fatalf("read report: %v", err)
	}
	if len(raws) == 0 {
		log.Fatalf("report %s has no data rows", opts.filePath)
	}

	ctx := context.Background()
	st, cleanup, err := openStore(ctx, opts.dryRun)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}
	defer cleanup()

	svc := service.New(st, service.Options{})
	summary, err := svc.ProcessUpload(ctx, raws, opts.uploadedAt)
	if err != nil {
		log.Fatalf("process upload: %v", err)
	}

	fmt.Printf("rows read: %d, unclassified: %d\n", summary.TotalRows, summary.Unclassified)
	for _, vendor := range summary.Vendors {
		line := fmt.Sprintf("  %s: %d rows, months %s",
			vendor.Vendor, vendor.RowsAdded, strings.Join(vendor.MonthsReplaced, ", "))
		if vendor.Truncated {
			line += " (truncated to retention window)"
		}
		if vendor.Error != "" {
			line += " ERROR: " + vendor.Error
		}
		fmt.Println(line)
	}
	if opts.dryRun {
		fmt.Println("dry run: nothing persisted")
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.filePath, "file", "", "vendor report file to import (required)")
	flag.StringVar(&opts.format, "format", "", "file format: xlsx, csv, or fixed (default: by extension)")
	flag.StringVar(&opts.layoutJSON, "layout", "", "fixed-width layout as JSON [[start,end],...]")
	flag.StringVar(&opts.uploadedAt, "uploaded-at", time.Now().Format(time.RFC3339), "batch upload timestamp")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "classify and reconcile in memory without persisting")
	flag.Parse()

	if opts.filePath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if opts.format == "" {
		switch strings.ToLower(filepath.Ext(opts.filePath)) {
		case ".csv":
			opts.format = "csv"
		case ".txt":
			opts.format = "fixed"
		default:
			opts.format = "xlsx"
		}
	}
	return opts
}

func readReport(opts options) ([][]any, error) {
	file, err := os.Open(opts.filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch opts.format {
	case "xlsx":
		return ingest.ReadWorkbook(file)
	case "csv":
		return ingest.ReadCSV(file)
	case "fixed":
		if opts.layoutJSON == "" {
			return nil, fmt.Errorf("-layout is required for fixed-width files")
		}
		var spans [][2]int
		if err := json.Unmarshal([]byte(opts.layoutJSON), &spans); err != nil {
			return nil, fmt.Errorf("invalid -layout: %w", err)
		}
		layout := make(ingest.Layout, 0, len(spans))
		for _, span := range spans {
			layout = append(layout, ingest.Column{Start: span[0], End: span[1]})
		}
		return ingest.ReadFixedWidth(file, layout)
	default:
		return nil, fmt.Errorf("unknown format %q", opts.format)
	}
}

func openStore(ctx context.Context, dryRun bool) (store.Store, func(), error) {
	if dryRun {
		return store.NewMemoryStore(), func() {}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := db.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("mongo disconnect failed: %v", err)
			}
		}
		return store.NewMongoStore(client.Database(cfg.MongoDatabase)), cleanup, nil
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store.NewPostgresStore(pool), pool.Close, nil
	}
}
