package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/cashierpro-core/internal/ledger/dto"
	"github.com/fekuna/cashierpro-core/internal/model"
)

type SQLiteRepository struct {
	DB *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{DB: db}
}

func (r *SQLiteRepository) ListMutations(ctx context.Context) ([]model.MutationLogEntry, error) {
	entries := []model.MutationLogEntry{}
	query := `SELECT * FROM mutation_log ORDER BY id ASC`
	if err := r.DB.SelectContext(ctx, &entries, query); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]model.TransactionLogEntry, error) {
	entries := []model.TransactionLogEntry{}
	query := `SELECT * FROM transaction_log ORDER BY id ASC`
	if err := r.DB.SelectContext(ctx, &entries, query); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *SQLiteRepository) GetTransactionByID(ctx context.Context, id int64) (*model.SaleSnapshot, error) {
	var payload string
	query := `SELECT sale_snapshot_json FROM transaction_log WHERE id = ? LIMIT 1`
	err := r.DB.GetContext(ctx, &payload, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", id, model.ErrNotFound)
		}
		return nil, err
	}

	var snapshot model.SaleSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode sale snapshot %d: %w", id, err)
	}
	return &snapshot, nil
}

func (r *SQLiteRepository) FinalizeSale(ctx context.Context, lines []dto.PreparedSaleLine, snapshot *model.SaleSnapshot, allowNegative bool) (int64, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, line := range lines {
		// Guarded decrement: the WHERE clause re-checks availability inside
		// the transaction, so a concurrent writer cannot oversell.
		var res sql.Result
		if allowNegative {
			res, err = tx.ExecContext(ctx,
				`UPDATE items SET quantity = quantity - ? WHERE sku = ?`,
				line.QuantitySold, line.SKU)
		} else {
			res, err = tx.ExecContext(ctx,
				`UPDATE items SET quantity = quantity - ? WHERE sku = ? AND quantity >= ?`,
				line.QuantitySold, line.SKU, line.QuantitySold)
		}
		if err != nil {
			return 0, err
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if rows == 0 {
			var available sql.NullInt64
			_ = tx.GetContext(ctx, &available, `SELECT quantity FROM items WHERE sku = ?`, line.SKU)
			return 0, &model.InsufficientStockError{
				SKU:       line.SKU,
				Requested: line.QuantitySold,
				Available: available.Int64,
			}
		}

		entry := &model.MutationLogEntry{
			ItemName:      line.ItemName,
			SKU:           line.SKU,
			Delta:         -line.QuantitySold,
			TransactionID: &snapshot.TransactionID,
			Timestamp:     snapshot.Date,
			Kind:          model.KindMutation,
		}
		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO mutation_log (item_name, sku, delta, transaction_id, timestamp, kind)
            VALUES (:item_name, :sku, :delta, :transaction_id, :timestamp, :kind)
        `, entry)
		if err != nil {
			return 0, fmt.Errorf("failed to log sale mutation: %w", err)
		}
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return 0, fmt.Errorf("failed to encode sale snapshot: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transaction_log (sale_snapshot_json, timestamp, kind) VALUES (?, ?, ?)`,
		string(payload), snapshot.Date, model.KindTransaction)
	if err != nil {
		return 0, fmt.Errorf("failed to log transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SQLiteRepository) SumIncomeSince(ctx context.Context, since time.Time) (int64, error) {
	var total sql.NullInt64
	query := `
        SELECT SUM(CAST(json_extract(sale_snapshot_json, '$.total_price') AS INTEGER))
        FROM transaction_log
        WHERE timestamp >= ?
    `
	if err := r.DB.GetContext(ctx, &total, query, since); err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func (r *SQLiteRepository) SumExpenditureSince(ctx context.Context, since time.Time) (int64, error) {
	// Restocking cost joined against the item's present price, not the price
	// at mutation time. Deleted items no longer contribute.
	var total sql.NullInt64
	query := `
        SELECT SUM(i.unit_price * m.delta)
        FROM mutation_log m
        JOIN items i ON m.sku = i.sku
        WHERE m.timestamp >= ? AND m.delta > 0 AND m.kind = ?
    `
	if err := r.DB.GetContext(ctx, &total, query, since, model.KindMutation); err != nil {
		return 0, err
	}
	return total.Int64, nil
}
