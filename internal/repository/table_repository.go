package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// TableRepo provides data access to the restaurant_tables table.  Each
// row doubles as the lock that serializes order writers on that table.
type TableRepo struct{ db *sql.DB }

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// EnsureTx inserts tables 1..count, leaving existing rows untouched.
func (r *TableRepo) EnsureTx(ctx context.Context, tx *sql.Tx, count int) error {
	if count <= 0 {
		return nil
	}
	query := `INSERT IGNORE INTO restaurant_tables (number) VALUES `
	args := make([]interface{}, 0, count)
	for i := 1; i <= count; i++ {
		if i > 1 {
			query += ","
		}
		query += "(?)"
		args = append(args, i)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListTx returns all tables ordered by number.
func (r *TableRepo) ListTx(ctx context.Context, tx *sql.Tx) ([]model.Table, error) {
	rows, err := tx.QueryContext(ctx, `SELECT number FROM restaurant_tables ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.Number); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// LockTx takes an exclusive row lock on the table until tx ends.
func (r *TableRepo) LockTx(ctx context.Context, tx *sql.Tx, number int) error {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT number FROM restaurant_tables WHERE number = ? FOR UPDATE`, number).Scan(&n)
	return translate(err)
}
