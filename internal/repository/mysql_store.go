package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
)

// MySQLStore is the Store backed by a MySQL handle opened once at startup.
// Writers serialize per table on the restaurant_tables row and per order
// on the orders row using SELECT ... FOR UPDATE.
type MySQLStore struct {
	db           *sql.DB
	Menu         *MenuRepo
	Tables       *TableRepo
	Orders       *OrderRepo
	Lines        *LineRepo
	Transactions *TransactionRepo
	Employees    *EmployeeRepo
}

// NewMySQLStore wires the repositories over db.  The store takes
// ownership of db and closes it in Close.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	if db == nil {
		panic("nil database passed to NewMySQLStore")
	}
	return &MySQLStore{
		db:           db,
		Menu:         NewMenuRepo(db),
		Tables:       NewTableRepo(db),
		Orders:       NewOrderRepo(db),
		Lines:        NewLineRepo(db),
		Transactions: NewTransactionRepo(db),
		Employees:    NewEmployeeRepo(db),
	}
}

// DB exposes the underlying handle, e.g. for health checks.
func (s *MySQLStore) DB() *sql.DB { return s.db }

func (s *MySQLStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &mysqlTx{s: s, tx: tx}, nil
}

// BeginRead opens a REPEATABLE READ read-only transaction; InnoDB serves
// every query in it from the same snapshot.
func (s *MySQLStore) BeginRead(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return &mysqlTx{s: s, tx: tx}, nil
}

func (s *MySQLStore) Close() error { return s.db.Close() }

type mysqlTx struct {
	s    *MySQLStore
	tx   *sql.Tx
	done bool
}

func (t *mysqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return err
	}
	t.done = true
	return nil
}

func (t *mysqlTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback()
}

func (t *mysqlTx) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	return t.s.Menu.ListTx(ctx, t.tx)
}

func (t *mysqlTx) GetMenuItem(ctx context.Context, id uint64) (model.MenuItem, error) {
	return t.s.Menu.GetTx(ctx, t.tx, id)
}

func (t *mysqlTx) CountMenuItems(ctx context.Context) (int, error) {
	return t.s.Menu.CountTx(ctx, t.tx)
}

func (t *mysqlTx) InsertMenuItem(ctx context.Context, item *model.MenuItem) error {
	return t.s.Menu.CreateTx(ctx, t.tx, item)
}

func (t *mysqlTx) UpdateMenuItemPrice(ctx context.Context, id uint64, price money.Cents) error {
	return t.s.Menu.UpdatePriceTx(ctx, t.tx, id, price)
}

func (t *mysqlTx) EnsureTables(ctx context.Context, count int) error {
	return t.s.Tables.EnsureTx(ctx, t.tx, count)
}

func (t *mysqlTx) ListTables(ctx context.Context) ([]model.Table, error) {
	return t.s.Tables.ListTx(ctx, t.tx)
}

func (t *mysqlTx) LockTable(ctx context.Context, number int) error {
	return t.s.Tables.LockTx(ctx, t.tx, number)
}

func (t *mysqlTx) InsertOrder(ctx context.Context, o *model.Order) error {
	return t.s.Orders.CreateTx(ctx, t.tx, o)
}

func (t *mysqlTx) GetOrder(ctx context.Context, id uint64, forUpdate bool) (model.Order, error) {
	return t.s.Orders.GetTx(ctx, t.tx, id, forUpdate)
}

func (t *mysqlTx) ActiveOrderForTable(ctx context.Context, table int) (model.Order, error) {
	return t.s.Orders.ActiveForTableTx(ctx, t.tx, table)
}

func (t *mysqlTx) UpdateOrderStatus(ctx context.Context, id uint64, from, to model.OrderStatus) (bool, error) {
	return t.s.Orders.UpdateStatusTx(ctx, t.tx, id, from, to)
}

func (t *mysqlTx) OrdersByIDs(ctx context.Context, ids []uint64) ([]model.Order, error) {
	return t.s.Orders.ListByIDsTx(ctx, t.tx, ids)
}

func (t *mysqlTx) InsertLine(ctx context.Context, l *model.OrderLine) error {
	return t.s.Lines.CreateTx(ctx, t.tx, l)
}

func (t *mysqlTx) ListLines(ctx context.Context, orderID uint64) ([]model.OrderLine, error) {
	return t.s.Lines.ListByOrderTx(ctx, t.tx, orderID)
}

func (t *mysqlTx) LinesForOrders(ctx context.Context, orderIDs []uint64) ([]model.OrderLine, error) {
	return t.s.Lines.ListByOrdersTx(ctx, t.tx, orderIDs)
}

func (t *mysqlTx) DeleteLines(ctx context.Context, orderID uint64) (int64, error) {
	return t.s.Lines.DeleteByOrderTx(ctx, t.tx, orderID)
}

func (t *mysqlTx) InsertTransaction(ctx context.Context, tr *model.Transaction) error {
	return t.s.Transactions.CreateTx(ctx, t.tx, tr)
}

func (t *mysqlTx) ListTransactions(ctx context.Context, orderID uint64) ([]model.Transaction, error) {
	return t.s.Transactions.ListByOrderTx(ctx, t.tx, orderID)
}

func (t *mysqlTx) TransactionsBetween(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	return t.s.Transactions.ListBetweenTx(ctx, t.tx, from, to)
}

func (t *mysqlTx) DeleteTransactionsForOrder(ctx context.Context, orderID uint64) (int64, error) {
	return t.s.Transactions.DeleteByOrderTx(ctx, t.tx, orderID)
}

func (t *mysqlTx) InsertEmployee(ctx context.Context, e *model.Employee) error {
	return t.s.Employees.CreateTx(ctx, t.tx, e)
}

func (t *mysqlTx) GetEmployee(ctx context.Context, id uint64) (model.Employee, error) {
	return t.s.Employees.GetByIDTx(ctx, t.tx, id)
}

func (t *mysqlTx) GetEmployeeByName(ctx context.Context, name string) (model.Employee, error) {
	return t.s.Employees.GetByNameTx(ctx, t.tx, name)
}

func (t *mysqlTx) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	return t.s.Employees.ListTx(ctx, t.tx)
}

func (t *mysqlTx) CountAdmins(ctx context.Context) (int, error) {
	return t.s.Employees.CountAdminsTx(ctx, t.tx)
}

func (t *mysqlTx) DeleteEmployee(ctx context.Context, id uint64) error {
	return t.s.Employees.DeleteTx(ctx, t.tx, id)
}

var _ Store = (*MySQLStore)(nil)
