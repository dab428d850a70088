package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// LineRepo provides data access to the order_lines table.  Name and
// category are not stored on the line; they are joined from menu_items,
// whose rows never change except for the price.  The price is stored on
// the line as the snapshot taken when it was added.
type LineRepo struct{ db *sql.DB }

// NewLineRepo returns a new LineRepo bound to the given database.
func NewLineRepo(db *sql.DB) *LineRepo { return &LineRepo{db: db} }

const lineSelect = `SELECT l.id, l.order_id, l.menu_item_id, m.name, m.category,
                           l.quantity, l.unit_price_cents, l.created_at
                    FROM order_lines l
                    JOIN menu_items m ON m.id = l.menu_item_id`

// CreateTx inserts a line and populates its generated ID.  The caller
// must supply the price snapshot.
func (r *LineRepo) CreateTx(ctx context.Context, tx *sql.Tx, l *model.OrderLine) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO order_lines (order_id, menu_item_id, quantity, unit_price_cents, created_at) VALUES (?, ?, ?, ?, ?)`,
		l.OrderID, l.MenuItemID, l.Quantity, int64(l.UnitPrice), l.CreatedAt.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// ListByOrderTx returns the lines of one order in insertion order.
func (r *LineRepo) ListByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.OrderLine, error) {
	return r.query(ctx, tx, lineSelect+` WHERE l.order_id = ? ORDER BY l.id`, orderID)
}

// ListByOrdersTx returns the lines of several orders.
func (r *LineRepo) ListByOrdersTx(ctx context.Context, tx *sql.Tx, orderIDs []uint64) ([]model.OrderLine, error) {
	if len(orderIDs) == 0 {
		return []model.OrderLine{}, nil
	}
	q, args := inClause(lineSelect+` WHERE l.order_id IN (`, orderIDs)
	return r.query(ctx, tx, q+`) ORDER BY l.order_id, l.id`, args...)
}

// DeleteByOrderTx removes every line of an order and returns how many
// rows went away.  The caller must commit or roll back.
func (r *LineRepo) DeleteByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = ?`, orderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *LineRepo) query(ctx context.Context, tx *sql.Tx, q string, args ...interface{}) ([]model.OrderLine, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := make([]model.OrderLine, 0)
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Name, &l.Category,
			&l.Quantity, &l.UnitPrice, &l.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
