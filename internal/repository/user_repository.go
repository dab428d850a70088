package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// EmployeeRepo provides data access to the employees table.
type EmployeeRepo struct{ DB *sql.DB }

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{DB: db} }

const employeeColumns = `id, name, role, pin_hash, created_at`

func scanEmployee(sc interface{ Scan(...any) error }) (model.Employee, error) {
	var e model.Employee
	err := sc.Scan(&e.ID, &e.Name, &e.Role, &e.PinHash, &e.CreatedAt)
	return e, err
}

// CreateTx inserts an employee and sets its ID.  A taken name yields
// ErrConflict.
func (r *EmployeeRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.Employee) error {
	e.Name = strings.TrimSpace(e.Name)
	res, err := tx.ExecContext(ctx,
		"INSERT INTO employees (name, role, pin_hash, created_at) VALUES (?,?,?,?)",
		e.Name, string(e.Role), e.PinHash, e.CreatedAt.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByNameTx fetches an employee by name.
func (r *EmployeeRepo) GetByNameTx(ctx context.Context, tx *sql.Tx, name string) (model.Employee, error) {
	e, err := scanEmployee(tx.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE name=? LIMIT 1", strings.TrimSpace(name)))
	return e, translate(err)
}

// GetByIDTx fetches an employee by id.
func (r *EmployeeRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Employee, error) {
	e, err := scanEmployee(tx.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id=? LIMIT 1", id))
	return e, translate(err)
}

// ListTx returns every employee ordered by id.
func (r *EmployeeRepo) ListTx(ctx context.Context, tx *sql.Tx) ([]model.Employee, error) {
	rows, err := tx.QueryContext(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]model.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// CountAdminsTx returns the number of admin employees.
func (r *EmployeeRepo) CountAdminsTx(ctx context.Context, tx *sql.Tx) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees WHERE role='admin'").Scan(&n)
	return n, err
}

// DeleteTx removes an employee.  The foreign keys on orders and
// transactions reject the delete while history references the row, which
// surfaces as ErrConflict.
func (r *EmployeeRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM employees WHERE id=?", id)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
