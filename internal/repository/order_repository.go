package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// OrderRepo provides data access to the orders table.  Orders are only
// ever moved between statuses through UpdateStatusTx; rows are never
// removed.  All timestamp fields are stored in UTC.
type OrderRepo struct{ db *sql.DB }

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, table_number, employee_id, status, created_at`

func scanOrder(sc interface{ Scan(...any) error }) (model.Order, error) {
	var o model.Order
	err := sc.Scan(&o.ID, &o.TableNumber, &o.EmployeeID, &o.Status, &o.CreatedAt)
	return o, err
}

// CreateTx inserts a new order within the scope of an existing
// transaction and populates the generated ID on the provided record.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (table_number, employee_id, status, created_at) VALUES (?, ?, ?, ?)`,
		o.TableNumber, o.EmployeeID, string(o.Status), o.CreatedAt.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// GetTx loads one order.  With forUpdate the row stays locked until tx
// ends, which is how payment, confirm and line inserts serialize on the
// order.
func (r *OrderRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64, forUpdate bool) (model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	o, err := scanOrder(tx.QueryRowContext(ctx, q, id))
	return o, translate(err)
}

// ActiveForTableTx returns the pending or confirmed order of a table.
// Callers hold the table lock so the answer cannot change under them.
func (r *OrderRepo) ActiveForTableTx(ctx context.Context, tx *sql.Tx, table int) (model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders
               WHERE table_number = ? AND status IN ('pending','confirmed')
               ORDER BY id DESC LIMIT 1`
	o, err := scanOrder(tx.QueryRowContext(ctx, q, table))
	return o, translate(err)
}

// UpdateStatusTx is a compare-and-swap on the status column.  It reports
// false when the order was no longer in status from.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to model.OrderStatus) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListByIDsTx loads the given orders in id order.  Missing ids are
// skipped.
func (r *OrderRepo) ListByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) ([]model.Order, error) {
	orders := make([]model.Order, 0, len(ids))
	if len(ids) == 0 {
		return orders, nil
	}
	q, args := inClause(`SELECT `+orderColumns+` FROM orders WHERE id IN (`, ids)
	rows, err := tx.QueryContext(ctx, q+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// inClause appends one placeholder per id to prefix.
func inClause(prefix string, ids []uint64) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(prefix)
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
		args = append(args, id)
	}
	return b.String(), args
}
