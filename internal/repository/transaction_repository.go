package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// TransactionRepo provides data access to the transactions table, the
// ledger.  There is no update statement; corrections are new rows.
type TransactionRepo struct{ db *sql.DB }

// NewTransactionRepo returns a new TransactionRepo bound to the given database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = `id, order_id, payment_method, amount_cents, tip_cents, employee_id, note, created_at`

// CreateTx appends an entry and populates its generated ID.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	var note sql.NullString
	if t.Note != nil {
		note = sql.NullString{String: *t.Note, Valid: true}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (order_id, payment_method, amount_cents, tip_cents, employee_id, note, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.OrderID, string(t.Method), int64(t.Amount), int64(t.Tip), t.EmployeeID, note, t.CreatedAt.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ListByOrderTx returns the entries of one order, oldest first.
func (r *TransactionRepo) ListByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.Transaction, error) {
	return r.query(ctx, tx, `SELECT `+transactionColumns+` FROM transactions WHERE order_id = ? ORDER BY created_at, id`, orderID)
}

// ListBetweenTx returns the entries with from <= created_at < to.
func (r *TransactionRepo) ListBetweenTx(ctx context.Context, tx *sql.Tx, from, to time.Time) ([]model.Transaction, error) {
	return r.query(ctx, tx,
		`SELECT `+transactionColumns+` FROM transactions WHERE created_at >= ? AND created_at < ? ORDER BY created_at, id`,
		from.UTC(), to.UTC())
}

// DeleteByOrderTx removes the entries of an order.  It is only used by
// the order delete cascade, inside the same transaction.
func (r *TransactionRepo) DeleteByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE order_id = ?`, orderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *TransactionRepo) query(ctx context.Context, tx *sql.Tx, q string, args ...interface{}) ([]model.Transaction, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]model.Transaction, 0)
	for rows.Next() {
		var t model.Transaction
		var note sql.NullString
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Method, &t.Amount, &t.Tip, &t.EmployeeID, &note, &t.CreatedAt); err != nil {
			return nil, err
		}
		if note.Valid {
			n := note.String
			t.Note = &n
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
