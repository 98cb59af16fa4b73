package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/cashierpro-core/internal/inventory/dto"
	"github.com/fekuna/cashierpro-core/internal/model"
)

type SQLiteRepository struct {
	DB *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{DB: db}
}

func (r *SQLiteRepository) FindBySKU(ctx context.Context, sku string) (*model.Item, error) {
	var item model.Item
	query := `SELECT * FROM items WHERE sku = ? LIMIT 1`
	err := r.DB.GetContext(ctx, &item, query, sku)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Return nil if no record found (caller handles creating defaults)
		}
		return nil, err
	}
	return &item, nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id int64) (*model.Item, error) {
	var item model.Item
	query := `SELECT * FROM items WHERE id = ? LIMIT 1`
	err := r.DB.GetContext(ctx, &item, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *SQLiteRepository) FindAll(ctx context.Context, f *dto.ItemFilters) ([]model.Item, error) {
	items := []model.Item{}

	conditions := []string{}
	args := map[string]interface{}{}

	if f != nil && f.SearchQuery != "" {
		conditions = append(conditions, "(name LIKE :search OR sku LIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Prevent SQL injection by whitelisting fields
	orderBy := "name"
	if f != nil {
		switch f.SortBy {
		case "sku":
			orderBy = "sku"
		case "price":
			orderBy = "unit_price"
		case "quantity":
			orderBy = "quantity"
		}
		if strings.EqualFold(f.SortOrder, "desc") {
			orderBy += " DESC"
		} else {
			orderBy += " ASC"
		}
	}

	query := fmt.Sprintf("SELECT * FROM items%s ORDER BY %s", whereClause, orderBy)

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("item %d: %w", id, model.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) UpsertWithMutation(ctx context.Context, item *model.Item, entry *model.MutationLogEntry) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Upsert Item
	if item.ID == 0 {
		res, err := tx.NamedExecContext(ctx, `
            INSERT INTO items (name, sku, unit_price, quantity)
            VALUES (:name, :sku, :unit_price, :quantity)
        `, item)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		item.ID = id
	} else {
		res, err := tx.NamedExecContext(ctx, `
            UPDATE items
            SET name = :name, sku = :sku, unit_price = :unit_price, quantity = :quantity
            WHERE id = :id
        `, item)
		if err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("item %d: %w", item.ID, model.ErrNotFound)
		}
	}

	// 2. Log Mutation
	if entry != nil {
		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO mutation_log (item_name, sku, delta, transaction_id, timestamp, kind)
            VALUES (:item_name, :sku, :delta, :transaction_id, :timestamp, :kind)
        `, entry)
		if err != nil {
			return fmt.Errorf("failed to log mutation: %w", err)
		}
	}

	return tx.Commit()
}
