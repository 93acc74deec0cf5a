package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"fatturaflow/internal/fattura"
	"fatturaflow/internal/models"
	"fatturaflow/internal/repository"
	"fatturaflow/internal/service"
	"fatturaflow/internal/storage"
	"fatturaflow/pkg/config"
	"fatturaflow/pkg/logger"
	"fatturaflow/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fatturactl imports a directory of invoice documents for a company
// without going through the HTTP surface. Useful for backfills and for
// inspecting how a problematic file gets analyzed.
func main() {
	companyFlag := flag.String("company", "", "company id (uuid) to import for")
	dirFlag := flag.String("dir", "", "directory of .xml/.xml.p7m/.zip files")
	dryRun := flag.Bool("dry-run", false, "analyze and print, do not persist")
	flag.Parse()

	if *companyFlag == "" || *dirFlag == "" {
		flag.Usage()
		os.Exit(2)
	}

	companyID, err := uuid.Parse(*companyFlag)
	if err != nil {
		log.Fatalf("Invalid company id: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	docs, err := loadDirectory(*dirFlag)
	if err != nil {
		appLogger.Fatal("Failed to read directory", zap.Error(err))
	}
	if len(docs) == 0 {
		appLogger.Fatal("No importable files found", zap.String("dir", *dirFlag))
	}

	if *dryRun {
		for _, doc := range docs {
			analysis := fattura.Analyze(doc.Bytes, doc.Filename)
			switch {
			case analysis.ErrorCode != "":
				fmt.Printf("%-40s FAILED %s: %s\n", doc.Filename, analysis.ErrorCode, analysis.ErrorMessage)
			case analysis.Invoice == nil:
				fmt.Printf("%-40s TEXT ONLY (would go to AI fallback)\n", doc.Filename)
			default:
				inv := analysis.Invoice
				fmt.Printf("%-40s OK number=%s supplier=%s buyer=%s total=%s\n",
					doc.Filename, inv.InvoiceNumber, inv.Supplier.TaxID, inv.Buyer.TaxID,
					inv.TotalAmount.StringFixed(2))
			}
		}
		return
	}

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	blobs, err := storage.NewFsStore(cfg.Storage.FsRoot)
	if err != nil {
		appLogger.Fatal("Failed to initialize blob storage", zap.Error(err))
	}

	companyRepo := repository.NewCompanyRepository(db, appLogger)
	counterpartyRepo := repository.NewCounterpartyRepository(db, appLogger)
	batchRepo := repository.NewBatchRepository(db, appLogger)
	invoiceRepo := repository.NewInvoiceRepository(db, appLogger)
	fileRepo := repository.NewImportFileRepository(db, appLogger)

	classifier := fattura.NewClassifier(models.Direction(cfg.Import.DefaultDirection))
	importService := service.NewImportService(
		companyRepo, batchRepo, fileRepo, invoiceRepo, counterpartyRepo,
		blobs, nil, nil, classifier, cfg.Import.MaxZipEntries,
		appLogger,
	)

	preview, err := importService.CreateBatch(ctx, companyID, docs)
	if err != nil {
		appLogger.Fatal("Batch analysis failed", zap.Error(err))
	}

	batchID, err := uuid.Parse(preview.BatchID)
	if err != nil {
		appLogger.Fatal("Bad batch id in preview", zap.Error(err))
	}

	report, err := importService.Confirm(ctx, companyID, batchID)
	if err != nil {
		appLogger.Fatal("Batch import failed", zap.Error(err))
	}

	fmt.Printf("batch %s: total=%d imported=%d duplicates=%d quarantined=%d\n",
		report.BatchID, report.TotalFiles, report.Imported, report.Duplicates, report.Quarantined)
	for _, item := range report.Quarantine {
		fmt.Printf("  quarantined %s: %s %s\n", item.Filename, item.ErrorCode, item.ErrorMessage)
	}
}

func loadDirectory(dir string) ([]models.RawDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var docs []models.RawDocument
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ".xml") && !strings.HasSuffix(name, ".p7m") && !strings.HasSuffix(name, ".zip") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, models.RawDocument{
			Filename: entry.Name(),
			Bytes:    data,
			MimeHint: "application/octet-stream",
		})
	}
	return docs, nil
}
