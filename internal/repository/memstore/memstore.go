// Package memstore is an in-process repository.Store.  A write unit of
// work holds the store's exclusive lock from Begin until Commit or
// Rollback, so every write operation is linearizable; read units share
// the lock and therefore always see committed state.  Rollback replays
// an undo log.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

var errTxDone = errors.New("memstore: transaction already finished")

// Store keeps every record set in maps keyed by id.
type Store struct {
	mu sync.RWMutex

	nextID       uint64
	menu         map[uint64]model.MenuItem
	tables       map[int]struct{}
	orders       map[uint64]model.Order
	lines        map[uint64]model.OrderLine
	transactions map[uint64]model.Transaction
	employees    map[uint64]model.Employee
}

// New returns an empty store.
func New() *Store {
	return &Store{
		menu:         make(map[uint64]model.MenuItem),
		tables:       make(map[int]struct{}),
		orders:       make(map[uint64]model.Order),
		lines:        make(map[uint64]model.OrderLine),
		transactions: make(map[uint64]model.Transaction),
		employees:    make(map[uint64]model.Employee),
	}
}

func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &tx{s: s, write: true}, nil
}

func (s *Store) BeginRead(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	return &tx{s: s}, nil
}

func (s *Store) Close() error { return nil }

type tx struct {
	s     *Store
	write bool
	done  bool
	undo  []func()
}

func (t *tx) release() {
	t.done = true
	t.undo = nil
	if t.write {
		t.s.mu.Unlock()
	} else {
		t.s.mu.RUnlock()
	}
}

func (t *tx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.release()
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.release()
	return nil
}

// check guards every operation against use after the unit ended and
// against writes on a read unit.
func (t *tx) check(ctx context.Context, writing bool) error {
	if t.done {
		return errTxDone
	}
	if writing && !t.write {
		return errors.New("memstore: write in read-only transaction")
	}
	return ctx.Err()
}

func (t *tx) newID() uint64 {
	t.s.nextID++
	id := t.s.nextID
	t.undo = append(t.undo, func() { t.s.nextID-- })
	return id
}

// Menu

func (t *tx) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	if err := t.check(ctx, false); err != nil {
		return nil, err
	}
	items := make([]model.MenuItem, 0, len(t.s.menu))
	for _, it := range t.s.menu {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (t *tx) GetMenuItem(ctx context.Context, id uint64) (model.MenuItem, error) {
	if err := t.check(ctx, false); err != nil {
		return model.MenuItem{}, err
	}
	it, ok := t.s.menu[id]
	if !ok {
		return model.MenuItem{}, repository.ErrNotFound
	}
	return it, nil
}

func (t *tx) CountMenuItems(ctx context.Context) (int, error) {
	if err := t.check(ctx, false); err != nil {
		return 0, err
	}
	return len(t.s.menu), nil
}

func (t *tx) InsertMenuItem(ctx context.Context, item *model.MenuItem) error {
	if err := t.check(ctx, true); err != nil {
		return err
	}
	for _, it := range t.s.menu {
		if it.Name == item.Name {
			return repository.ErrConflict
		}
	}
	item.ID = t.newID()
	t.s.menu[item.ID] = *item
	id := item.ID
	t.undo = append(t.undo, func() { delete(t.s.menu, id) })
	return nil
}

func (t *tx) UpdateMenuItemPrice(ctx context.Context, id uint64, price money.Cents) error {
	if err := t.check(ctx, true); err != nil {
		return err
	}
	prev, ok := t.s.menu[id]
	if !ok {
		return repository.ErrNotFound
	}
	next := prev
	next.Price = price
	t.s.menu[id] = next
	t.undo = append(t.undo, func() { t.s.menu[id] = prev })
	return nil
}

// Tables

func (t *tx) EnsureTables(ctx context.Context, count int) error {
	if err := t.check(ctx, true); err != nil {
		return err
	}
	for n := 1; n <= count; n++ {
		if _, ok := t.s.tables[n]; ok {
			continue
		}
		t.s.tables[n] = struct{}{}
		num := n
		t.undo = append(t.undo, func() { delete(t.s.tables, num) })
	}
	return nil
}

func (t *tx) ListTables(ctx context.Context) ([]model.Table, error) {
	if err := t.check(ctx, false); err != nil {
		return nil, err
	}
	tables := make([]model.Table, 0, len(t.s.tables))
	for n := range t.s.tables {
		tables = append(tables, model.Table{Number: n})
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })
	return tables, nil
}

// LockTable only validates the table: a write unit already holds the
// store-wide lock.
func (t *tx) LockTable(ctx context.Context, number int) error {
	if err := t.check(ctx, true); err != nil {
		return err
	}
	if _, ok := t.s.tables[number]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

// Orders

func (t *tx) InsertOrder(ctx context.Context, o *model.Order) error {
	if err := t.check(ctx, true); err != nil {
		return err
	}
	if _, ok := t.s.tables[o.TableNumber]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := t.s.employees[o.EmployeeID]; !ok {
		return repository.ErrNotFound
	}
	o.ID = t.newID()
	o.CreatedAt = o.CreatedAt.UTC()
	t.s.orders[o.ID] = *o
	id := o.ID
	t.undo = append(t.undo, func() { delete(t.s.orders, id) })
	return nil
}

func (t *tx) GetOrder(ctx context.Context, id uint64, forUpdate bool) (model.Order, error) {
	if err := t.check(ctx, forUpdate); err != nil {
		return model.Order{}, err
	}
	o, ok := t.s.orders[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return o, nil
}

func (t *tx) ActiveOrderForTable(ctx context.Context, table int) (model.Order, error) {
	if err := t.check(ctx, false); err != nil {
		return model.Order{}, err
	}
	var found model.Order
	for _, o := range t.s.orders {
		if o.TableNumber == table && o.Status.Active() && o.ID > found.ID {
			found = o
		}
	}
	if found.ID == 0 {
		return model.Order{}, repository.ErrNotFound
	}
	return found, nil
}

func (t *tx) UpdateOrderStatus(ctx context.Context, id uint64, from, to model.OrderStatus) (bool, error) {
	if err := t.check(ctx, true); err != nil {
		return false, err
	}
	prev, ok := t.s.orders[id]
	if !ok || prev.Status != from {
		return false, nil
	}
	next := prev
	next.Status = to
	t.s.orders[id] = next
	t.undo = append(t.undo, func() { t.s.orders[id] = prev })
	return true, nil
}

func (t *tx) OrdersByIDs(ctx context.Context, ids []uint64) ([]model.Order, error) {
	if err := t.check(ctx, false); err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := t.s.orders[id]; ok {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

// Lines

func (t *tx) InsertLine(ctx context.Context, l *model.OrderLine) error {
	if err := t.check(ctx, true); err != nil {
		return err
	}
	if _, ok := t.s.orders[l.OrderID]; !ok {
		return repository.ErrNotFound
	}
	item, ok := t.s.menu[l.MenuItemID]
	if !ok {
		return repository.ErrNotFound
	}
	l.ID = t.newID()
	l.Name, l.Category = item.Name, item.Category
	l.CreatedAt = l.CreatedAt.UTC()
	t.s.lines[l.ID] = *l
	id := l.ID
	t.undo = append(t.undo, func() { delete(t.s.lines, id) })
	return nil
}

func (t *tx) ListLines(ctx context.Context, orderID uint64) ([]model.OrderLine, error) {
	return t.LinesForOrders(ctx, []uint64{orderID})
}

func (t *tx) LinesForOrders(ctx context.Context, orderIDs []uint64) ([]model.OrderLine, error) {
	if err := t.check(ctx, false); err != nil {
		return nil, err
	}
	want := make(map[uint64]bool, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = true
	}
	lines := make([]model.OrderLine, 0)
	for _, l := range t.s.lines {
		if want[l.OrderID] {
			lines = append(lines, l)
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].OrderID != lines[j].OrderID {
			return lines[i].OrderID < lines[j].OrderID
		}
		return lines[i].ID < lines[j].ID
	})
	return lines, nil
}

func (t *tx) DeleteLines(ctx context.Context, orderID uint64) (int64, error) {
	if err := t.check(ctx, true); err != nil {
		return 0, err
	}
	var n int64
	for id, l := range t.s.lines {
		if l.OrderID != orderID {
			continue
		}
		delete(t.s.lines, id)
		removed := l
		t.undo = append(t.undo, func() { t.s.lines[removed.ID] = removed })
		n++
	}
	return n, nil
}

// Ledger

func (t *tx) InsertTransaction(ctx context.Context, tr *model.Transaction) error {
	if err := t.check(ctx, true); err != nil {
		return err
	}
	if _, ok := t.s.orders[tr.OrderID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := t.s.employees[tr.EmployeeID]; !ok {
		return repository.ErrNotFound
	}
	tr.ID = t.newID()
	tr.CreatedAt = tr.CreatedAt.UTC()
	t.s.transactions[tr.ID] = *tr
	id := tr.ID
	t.undo = append(t.undo, func() { delete(t.s.transactions, id) })
	return nil
}

func (t *tx) ListTransactions(ctx context.Context, orderID uint64) ([]model.Transaction, error) {
	if err := t.check(ctx, false); err != nil {
		return nil, err
	}
	return t.filterTransactions(func(tr model.Transaction) bool { return tr.OrderID == orderID }), nil
}

func (t *tx) TransactionsBetween(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	if err := t.check(ctx, false); err != nil {
		return nil, err
	}
	return t.filterTransactions(func(tr model.Transaction) bool {
		return !tr.CreatedAt.Before(from) && tr.CreatedAt.Before(to)
	}), nil
}

func (t *tx) filterTransactions(keep func(model.Transaction) bool) []model.Transaction {
	list := make([]model.Transaction, 0)
	for _, tr := range t.s.transactions {
		if keep(tr) {
			list = append(list, tr)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (t *tx) DeleteTransactionsForOrder(ctx context.Context, orderID uint64) (int64, error) {
	if err := t.check(ctx, true); err != nil {
		return 0, err
	}
	var n int64
	for id, tr := range t.s.transactions {
		if tr.OrderID != orderID {
			continue
		}
		delete(t.s.transactions, id)
		removed := tr
		t.undo = append(t.undo, func() { t.s.transactions[removed.ID] = removed })
		n++
	}
	return n, nil
}

// Employees

func (t *tx) InsertEmployee(ctx context.Context, e *model.Employee) error {
	if err := t.check(ctx, true); err != nil {
		return err
	}
	e.Name = strings.TrimSpace(e.Name)
	for _, other := range t.s.employees {
		if other.Name == e.Name {
			return repository.ErrConflict
		}
	}
	e.ID = t.newID()
	e.CreatedAt = e.CreatedAt.UTC()
	t.s.employees[e.ID] = *e
	id := e.ID
	t.undo = append(t.undo, func() { delete(t.s.employees, id) })
	return nil
}

func (t *tx) GetEmployee(ctx context.Context, id uint64) (model.Employee, error) {
	if err := t.check(ctx, false); err != nil {
		return model.Employee{}, err
	}
	e, ok := t.s.employees[id]
	if !ok {
		return model.Employee{}, repository.ErrNotFound
	}
	return e, nil
}

func (t *tx) GetEmployeeByName(ctx context.Context, name string) (model.Employee, error) {
	if err := t.check(ctx, false); err != nil {
		return model.Employee{}, err
	}
	name = strings.TrimSpace(name)
	for _, e := range t.s.employees {
		if e.Name == name {
			return e, nil
		}
	}
	return model.Employee{}, repository.ErrNotFound
}

func (t *tx) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	if err := t.check(ctx, false); err != nil {
		return nil, err
	}
	list := make([]model.Employee, 0, len(t.s.employees))
	for _, e := range t.s.employees {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (t *tx) CountAdmins(ctx context.Context) (int, error) {
	if err := t.check(ctx, false); err != nil {
		return 0, err
	}
	n := 0
	for _, e := range t.s.employees {
		if e.Role == model.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (t *tx) DeleteEmployee(ctx context.Context, id uint64) error {
	if err := t.check(ctx, true); err != nil {
		return err
	}
	prev, ok := t.s.employees[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, o := range t.s.orders {
		if o.EmployeeID == id {
			return repository.ErrConflict
		}
	}
	for _, tr := range t.s.transactions {
		if tr.EmployeeID == id {
			return repository.ErrConflict
		}
	}
	delete(t.s.employees, id)
	t.undo = append(t.undo, func() { t.s.employees[id] = prev })
	return nil
}

var _ repository.Store = (*Store)(nil)
