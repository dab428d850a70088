package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
)

// MenuRepo provides data access to the menu_items table.  All methods run
// inside a caller supplied transaction; the caller commits or rolls back.
type MenuRepo struct{ db *sql.DB }

// NewMenuRepo returns a new MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

const menuColumns = `id, name, category, price_cents, description`

func scanMenuItem(sc interface{ Scan(...any) error }) (model.MenuItem, error) {
	var it model.MenuItem
	var desc sql.NullString
	if err := sc.Scan(&it.ID, &it.Name, &it.Category, &it.Price, &desc); err != nil {
		return it, err
	}
	if desc.Valid {
		d := desc.String
		it.Description = &d
	}
	return it, nil
}

// ListTx returns the catalog ordered by category then name.
func (r *MenuRepo) ListTx(ctx context.Context, tx *sql.Tx) ([]model.MenuItem, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+menuColumns+` FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.MenuItem, 0)
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetTx fetches one item.  Unknown ids yield ErrNotFound.
func (r *MenuRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.MenuItem, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = ?`, id)
	it, err := scanMenuItem(row)
	return it, translate(err)
}

// CountTx returns the number of catalog entries.
func (r *MenuRepo) CountTx(ctx context.Context, tx *sql.Tx) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&n)
	return n, err
}

// CreateTx inserts an item and populates its generated ID.  A duplicate
// name yields ErrConflict.
func (r *MenuRepo) CreateTx(ctx context.Context, tx *sql.Tx, it *model.MenuItem) error {
	var desc sql.NullString
	if it.Description != nil {
		desc = sql.NullString{String: *it.Description, Valid: true}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO menu_items (name, category, price_cents, description) VALUES (?, ?, ?, ?)`,
		it.Name, it.Category, int64(it.Price), desc)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// UpdatePriceTx changes the current price of an item.  Order lines keep
// their own snapshot and are not touched.
func (r *MenuRepo) UpdatePriceTx(ctx context.Context, tx *sql.Tx, id uint64, price money.Cents) error {
	res, err := tx.ExecContext(ctx, `UPDATE menu_items SET price_cents = ? WHERE id = ?`, int64(price), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 affected rows when the price is unchanged.
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM menu_items WHERE id = ?`, id).Scan(&exists); err != nil {
			return translate(err)
		}
	}
	return nil
}
