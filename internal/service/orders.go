package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// Line quantity bounds accepted by AddLine.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

// OrderStore owns orders and their lines.  Writers on one table
// serialize on the table lock; writers on one order serialize on the
// order lock.  Lines may only be added while the order is pending.
type OrderStore struct {
	store     repository.Store
	publisher TicketPublisher
	log       *slog.Logger
	now       func() time.Time
}

func NewOrderStore(store repository.Store, publisher TicketPublisher, log *slog.Logger) *OrderStore {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &OrderStore{store: store, publisher: publisher, log: log, now: time.Now}
}

// SetClock replaces the time source.  Tests use it to pin timestamps.
func (s *OrderStore) SetClock(now func() time.Time) { s.now = now }

// SeedTables makes sure tables 1..count exist.  Idempotent.
func (s *OrderStore) SeedTables(ctx context.Context, count int) error {
	return inTx(ctx, s.store, func(tx repository.Tx) error {
		return tx.EnsureTables(ctx, count)
	})
}

// ListTables returns the floor.
func (s *OrderStore) ListTables(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	err := inReadTx(ctx, s.store, func(tx repository.Tx) error {
		var err error
		tables, err = tx.ListTables(ctx)
		return err
	})
	return tables, err
}

// CreateOrder opens a pending order on a table.  It fails with
// repository.ErrConflict while the table already has an active order and
// with repository.ErrNotFound for an unknown table or employee.
func (s *OrderStore) CreateOrder(ctx context.Context, table int, employeeID uint64) (model.Order, error) {
	var o model.Order
	err := inTx(ctx, s.store, func(tx repository.Tx) error {
		var err error
		o, err = s.createLocked(ctx, tx, table, employeeID)
		return err
	})
	if err != nil {
		return model.Order{}, err
	}
	s.log.Info("order_created", slog.Uint64("order_id", o.ID), slog.Int("table", table), slog.Uint64("employee_id", employeeID))
	return o, nil
}

func (s *OrderStore) createLocked(ctx context.Context, tx repository.Tx, table int, employeeID uint64) (model.Order, error) {
	if err := tx.LockTable(ctx, table); err != nil {
		return model.Order{}, fmt.Errorf("table %d: %w", table, err)
	}
	if _, err := tx.GetEmployee(ctx, employeeID); err != nil {
		return model.Order{}, fmt.Errorf("employee %d: %w", employeeID, err)
	}
	active, err := tx.ActiveOrderForTable(ctx, table)
	switch {
	case err == nil:
		return model.Order{}, fmt.Errorf("table %d already has order %d: %w", table, active.ID, repository.ErrConflict)
	case !errors.Is(err, repository.ErrNotFound):
		return model.Order{}, err
	}
	o := model.Order{
		TableNumber: table,
		EmployeeID:  employeeID,
		Status:      model.OrderPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := tx.InsertOrder(ctx, &o); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func validateQuantity(qty int) error {
	if qty < MinQuantity || qty > MaxQuantity {
		return invalid("quantity", "must be between %d and %d", MinQuantity, MaxQuantity)
	}
	return nil
}

// AddLine appends an item to a pending order with the item's current
// price as the line's snapshot.
func (s *OrderStore) AddLine(ctx context.Context, orderID, menuItemID uint64, qty int) (model.OrderLine, error) {
	if err := validateQuantity(qty); err != nil {
		return model.OrderLine{}, err
	}
	var line model.OrderLine
	err := inTx(ctx, s.store, func(tx repository.Tx) error {
		o, err := tx.GetOrder(ctx, orderID, true)
		if err != nil {
			return fmt.Errorf("order %d: %w", orderID, err)
		}
		line, err = s.addLocked(ctx, tx, o, menuItemID, qty)
		return err
	})
	if err != nil {
		return model.OrderLine{}, err
	}
	return line, nil
}

func (s *OrderStore) addLocked(ctx context.Context, tx repository.Tx, o model.Order, menuItemID uint64, qty int) (model.OrderLine, error) {
	if o.Status != model.OrderPending {
		return model.OrderLine{}, fmt.Errorf("add line to %s order %d: %w", o.Status, o.ID, repository.ErrInvalidState)
	}
	item, err := tx.GetMenuItem(ctx, menuItemID)
	if err != nil {
		return model.OrderLine{}, fmt.Errorf("menu item %d: %w", menuItemID, err)
	}
	line := model.OrderLine{
		OrderID:    o.ID,
		MenuItemID: item.ID,
		Name:       item.Name,
		Category:   item.Category,
		Quantity:   qty,
		UnitPrice:  item.Price,
		CreatedAt:  s.now().UTC(),
	}
	if err := tx.InsertLine(ctx, &line); err != nil {
		return model.OrderLine{}, err
	}
	return line, nil
}

// AddToTable adds an item to the table's active order, opening a pending
// order first when the table is empty.  A confirmed order on the table
// yields repository.ErrInvalidState.
func (s *OrderStore) AddToTable(ctx context.Context, table int, employeeID, menuItemID uint64, qty int) (model.Order, model.OrderLine, error) {
	if err := validateQuantity(qty); err != nil {
		return model.Order{}, model.OrderLine{}, err
	}
	var (
		o       model.Order
		line    model.OrderLine
		created bool
	)
	err := inTx(ctx, s.store, func(tx repository.Tx) error {
		if err := tx.LockTable(ctx, table); err != nil {
			return fmt.Errorf("table %d: %w", table, err)
		}
		active, err := tx.ActiveOrderForTable(ctx, table)
		switch {
		case err == nil:
			o, err = tx.GetOrder(ctx, active.ID, true)
			if err != nil {
				return err
			}
		case errors.Is(err, repository.ErrNotFound):
			o, err = s.createLocked(ctx, tx, table, employeeID)
			if err != nil {
				return err
			}
			created = true
		default:
			return err
		}
		line, err = s.addLocked(ctx, tx, o, menuItemID, qty)
		return err
	})
	if err != nil {
		return model.Order{}, model.OrderLine{}, err
	}
	if created {
		s.log.Info("order_created", slog.Uint64("order_id", o.ID), slog.Int("table", table), slog.Uint64("employee_id", employeeID))
	}
	return o, line, nil
}

// ConfirmOrder moves a pending order to confirmed and returns its kitchen
// ticket.  The ticket is published after the commit; a publishing failure
// is logged and does not undo the confirmation.
func (s *OrderStore) ConfirmOrder(ctx context.Context, orderID uint64) (model.KitchenTicket, error) {
	var ticket model.KitchenTicket
	err := inTx(ctx, s.store, func(tx repository.Tx) error {
		o, err := tx.GetOrder(ctx, orderID, true)
		if err != nil {
			return fmt.Errorf("order %d: %w", orderID, err)
		}
		if o.Status != model.OrderPending {
			return fmt.Errorf("confirm %s order %d: %w", o.Status, o.ID, repository.ErrInvalidState)
		}
		lines, err := tx.ListLines(ctx, o.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("confirm empty order %d: %w", o.ID, repository.ErrInvalidState)
		}
		ok, err := tx.UpdateOrderStatus(ctx, o.ID, model.OrderPending, model.OrderConfirmed)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("confirm order %d: %w", o.ID, repository.ErrInvalidState)
		}
		emp, err := tx.GetEmployee(ctx, o.EmployeeID)
		if err != nil {
			return fmt.Errorf("employee %d: %w", o.EmployeeID, err)
		}
		ticket = buildTicket(o, emp.Name, lines, s.now())
		return nil
	})
	if err != nil {
		return model.KitchenTicket{}, err
	}
	s.log.Info("order_confirmed", slog.Uint64("order_id", orderID), slog.Int("table", ticket.TableNumber), slog.String("ticket_id", ticket.TicketID))
	if err := s.publisher.PublishTicket(ctx, ticket); err != nil {
		s.log.Error("ticket_publish_failed", slog.Uint64("order_id", orderID), slog.String("ticket_id", ticket.TicketID), slog.String("error", err.Error()))
	}
	return ticket, nil
}

// DeleteOrder removes a pending or confirmed order together with its
// lines and any transactions recorded against it, all or nothing.  The
// order row stays behind with status deleted.
func (s *OrderStore) DeleteOrder(ctx context.Context, orderID uint64) error {
	var removedLines, removedTx int64
	var table int
	err := inTx(ctx, s.store, func(tx repository.Tx) error {
		o, err := tx.GetOrder(ctx, orderID, false)
		if err != nil {
			return fmt.Errorf("order %d: %w", orderID, err)
		}
		table = o.TableNumber
		// table before order, the same lock order as CreateOrder
		if err := tx.LockTable(ctx, o.TableNumber); err != nil {
			return err
		}
		if o, err = tx.GetOrder(ctx, orderID, true); err != nil {
			return err
		}
		if !model.CanTransition(o.Status, model.OrderDeleted) {
			return fmt.Errorf("delete %s order %d: %w", o.Status, o.ID, repository.ErrInvalidState)
		}
		if removedTx, err = tx.DeleteTransactionsForOrder(ctx, o.ID); err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		if removedLines, err = tx.DeleteLines(ctx, o.ID); err != nil {
			return fmt.Errorf("delete lines: %w", err)
		}
		ok, err := tx.UpdateOrderStatus(ctx, o.ID, o.Status, model.OrderDeleted)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("delete order %d: %w", o.ID, repository.ErrInvalidState)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("order_deleted", slog.Uint64("order_id", orderID), slog.Int("table", table),
		slog.Int64("lines", removedLines), slog.Int64("transactions", removedTx))
	return nil
}

// GetActiveOrder returns the active order of a table; found is false when
// the table is free.  Unknown tables yield repository.ErrNotFound.
func (s *OrderStore) GetActiveOrder(ctx context.Context, table int) (o model.Order, found bool, err error) {
	err = inReadTx(ctx, s.store, func(tx repository.Tx) error {
		var err error
		o, err = tx.ActiveOrderForTable(ctx, table)
		if errors.Is(err, repository.ErrNotFound) {
			return tableExists(ctx, tx, table)
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return o, found, err
}

// GetOrder returns one order or repository.ErrNotFound.
func (s *OrderStore) GetOrder(ctx context.Context, orderID uint64) (model.Order, error) {
	var o model.Order
	err := inReadTx(ctx, s.store, func(tx repository.Tx) error {
		var err error
		o, err = tx.GetOrder(ctx, orderID, false)
		return err
	})
	return o, err
}

// GetOrderLines returns the lines of an order.  A deleted order has none.
func (s *OrderStore) GetOrderLines(ctx context.Context, orderID uint64) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	err := inReadTx(ctx, s.store, func(tx repository.Tx) error {
		if _, err := tx.GetOrder(ctx, orderID, false); err != nil {
			return err
		}
		var err error
		lines, err = tx.ListLines(ctx, orderID)
		return err
	})
	return lines, err
}

// OrderTotal is the sum of the order's line totals.
func (s *OrderStore) OrderTotal(ctx context.Context, orderID uint64) (money.Cents, error) {
	lines, err := s.GetOrderLines(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return model.LinesTotal(lines), nil
}

func tableExists(ctx context.Context, tx repository.Tx, table int) error {
	tables, err := tx.ListTables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if t.Number == table {
			return nil
		}
	}
	return fmt.Errorf("table %d: %w", table, repository.ErrNotFound)
}
