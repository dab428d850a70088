package repository

import (
	"context"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
)

// Store hands out units of work.  Every service operation runs inside
// exactly one Tx: either every write in it becomes visible or none does.
type Store interface {
	// Begin starts a read-write unit of work.
	Begin(ctx context.Context) (Tx, error)
	// BeginRead starts a read-only unit of work that observes a consistent
	// snapshot for its whole lifetime.
	BeginRead(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is a unit of work.  Callers must end it with Commit or Rollback;
// Rollback after a successful Commit is a no-op.
type Tx interface {
	Commit() error
	Rollback() error

	MenuTx
	TableTx
	OrderTx
	LineTx
	LedgerTx
	EmployeeTx
}

type MenuTx interface {
	ListMenuItems(ctx context.Context) ([]model.MenuItem, error)
	GetMenuItem(ctx context.Context, id uint64) (model.MenuItem, error)
	CountMenuItems(ctx context.Context) (int, error)
	InsertMenuItem(ctx context.Context, item *model.MenuItem) error
	UpdateMenuItemPrice(ctx context.Context, id uint64, price money.Cents) error
}

type TableTx interface {
	// EnsureTables creates tables 1..count that do not exist yet.
	EnsureTables(ctx context.Context, count int) error
	ListTables(ctx context.Context) ([]model.Table, error)
	// LockTable serializes writers on one table until the unit of work
	// ends.  Unknown tables yield ErrNotFound.
	LockTable(ctx context.Context, number int) error
}

type OrderTx interface {
	InsertOrder(ctx context.Context, o *model.Order) error
	// GetOrder loads an order; forUpdate additionally locks it until the
	// unit of work ends.
	GetOrder(ctx context.Context, id uint64, forUpdate bool) (model.Order, error)
	// ActiveOrderForTable returns the pending or confirmed order of a
	// table, or ErrNotFound.
	ActiveOrderForTable(ctx context.Context, table int) (model.Order, error)
	// UpdateOrderStatus moves an order from one status to another only if
	// it is still in from.  It reports whether the row changed.
	UpdateOrderStatus(ctx context.Context, id uint64, from, to model.OrderStatus) (bool, error)
	OrdersByIDs(ctx context.Context, ids []uint64) ([]model.Order, error)
}

type LineTx interface {
	InsertLine(ctx context.Context, l *model.OrderLine) error
	ListLines(ctx context.Context, orderID uint64) ([]model.OrderLine, error)
	LinesForOrders(ctx context.Context, orderIDs []uint64) ([]model.OrderLine, error)
	DeleteLines(ctx context.Context, orderID uint64) (int64, error)
}

// LedgerTx exposes no update.  DeleteTransactionsForOrder exists only for
// the cascade of an order delete.
type LedgerTx interface {
	InsertTransaction(ctx context.Context, t *model.Transaction) error
	ListTransactions(ctx context.Context, orderID uint64) ([]model.Transaction, error)
	// TransactionsBetween returns entries with from <= created_at < to,
	// ordered by time.
	TransactionsBetween(ctx context.Context, from, to time.Time) ([]model.Transaction, error)
	DeleteTransactionsForOrder(ctx context.Context, orderID uint64) (int64, error)
}

type EmployeeTx interface {
	InsertEmployee(ctx context.Context, e *model.Employee) error
	GetEmployee(ctx context.Context, id uint64) (model.Employee, error)
	GetEmployeeByName(ctx context.Context, name string) (model.Employee, error)
	ListEmployees(ctx context.Context) ([]model.Employee, error)
	CountAdmins(ctx context.Context) (int, error)
	// DeleteEmployee fails with ErrConflict while orders or transactions
	// still reference the employee.
	DeleteEmployee(ctx context.Context, id uint64) error
}
