package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fekuna/cashierpro-core/config"
	"github.com/fekuna/cashierpro-core/internal/database"
	"github.com/fekuna/cashierpro-core/internal/logger"
)

// ledger-verify audits the core invariant of the store: every item's on-hand
// quantity must equal the sum of its mutation-log deltas. Exits non-zero when
// any item has diverged.

type auditRow struct {
	SKU         string        `db:"sku"`
	Name        string        `db:"name"`
	Quantity    int64         `db:"quantity"`
	LedgerTotal sql.NullInt64 `db:"ledger_total"`
}

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLogger.Sync()

	// 3. Open the store
	db, err := database.Open(&cfg.SQLite)
	if err != nil {
		appLogger.Fatal("could not open database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("opened SQLite database", zap.String("path", cfg.SQLite.Path))

	ctx := context.Background()
	if err := database.InitSchema(ctx, db); err != nil {
		appLogger.Fatal("could not initialize schema", zap.Error(err))
	}

	rows := []auditRow{}
	query := `
        SELECT i.sku, i.name, i.quantity,
               (SELECT SUM(delta) FROM mutation_log m WHERE m.sku = i.sku) AS ledger_total
        FROM items i
        ORDER BY i.sku
    `
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		appLogger.Fatal("audit query failed", zap.Error(err))
	}

	diverged := 0
	for _, row := range rows {
		// NULL ledger sum means no mutation rows; audit it as zero.
		if row.LedgerTotal.Int64 == row.Quantity {
			continue
		}
		diverged++
		appLogger.Warn("stock diverged from ledger",
			zap.String("sku", row.SKU),
			zap.String("name", row.Name),
			zap.Int64("quantity", row.Quantity),
			zap.Int64("ledger_total", row.LedgerTotal.Int64),
		)
	}

	appLogger.Info("ledger audit finished",
		zap.Int("items_checked", len(rows)),
		zap.Int("diverged", diverged),
	)
	if diverged > 0 {
		os.Exit(1)
	}
}
