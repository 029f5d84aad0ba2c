// Command productsync links legacy MyProducts rows to their catalog
// counterparts. It matches rows by exact product name and stamps the
// catalog record id into the row's productId field. Safe to re-run;
// already-linked rows are simply stamped again with the same id.
package main

import (
	"context"
	"os"
	"time"

	"github.com/craftbay/marketplace-api/internal/config"
	"github.com/craftbay/marketplace-api/internal/logging"
	"github.com/craftbay/marketplace-api/internal/models"
	"github.com/craftbay/marketplace-api/internal/service"
	"github.com/craftbay/marketplace-api/internal/store"
)

func main() {
	cfg := config.Load()

	logger := logging.Init("productsync", "./logs/productsync.log")

	tables := store.TablesFromConfig(cfg.Store)
	recordStore := store.NewAirtableStore(cfg.Store)
	catalog := service.NewCatalogService(recordStore, tables, nil, false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	records, err := recordStore.List(ctx, tables.MyProducts, store.ListOptions{})
	if err != nil {
		logger.Error("failed to list legacy products", "error", err.Error())
		os.Exit(1)
	}

	var linked, skipped int
	for _, rec := range records {
		legacy := models.ProductFromFields(rec.ID, rec.Fields)
		if legacy.Name == "" {
			skipped++
			continue
		}

		matches, err := catalog.FindByExactName(ctx, legacy.Name)
		if err != nil {
			logger.Error("failed to look up product by name", "name", legacy.Name, "error", err.Error())
			os.Exit(1)
		}
		if len(matches) == 0 {
			logger.Info("no catalog match", "record_id", rec.ID, "name", legacy.Name)
			skipped++
			continue
		}

		if _, err := recordStore.Update(ctx, tables.MyProducts, rec.ID, map[string]any{
			"productId": matches[0].ID,
		}); err != nil {
			logger.Error("failed to link legacy product", "record_id", rec.ID, "error", err.Error())
			os.Exit(1)
		}
		linked++
	}

	logger.Info("products synchronized", "linked", linked, "skipped", skipped)
}
