package model

import (
	"time"

	"github.com/iliyamo/restaurant-pos/internal/money"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPaid      OrderStatus = "paid"
	OrderDeleted   OrderStatus = "deleted"
)

// Active reports whether the status still occupies its table.
func (s OrderStatus) Active() bool {
	return s == OrderPending || s == OrderConfirmed
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderPaid || s == OrderDeleted
}

// CanTransition reports whether from → to is an edge of the order state
// machine: pending → confirmed → paid, and pending/confirmed → deleted.
func CanTransition(from, to OrderStatus) bool {
	switch to {
	case OrderConfirmed:
		return from == OrderPending
	case OrderPaid:
		return from == OrderConfirmed
	case OrderDeleted:
		return from.Active()
	}
	return false
}

// Order is a table's bill in progress.
//
// Fields:
//
//	ID          – orders.id
//	TableNumber – table the order occupies while active.
//	EmployeeID  – employee who opened the order.
//	Status      – pending, confirmed, paid or deleted.
//	CreatedAt   – creation time (UTC).
type Order struct {
	ID          uint64      `json:"id"`
	TableNumber int         `json:"table_number"`
	EmployeeID  uint64      `json:"employee_id"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// OrderLine is one menu item on an order.  UnitPrice is a snapshot of the
// menu price at the moment the line was added.
type OrderLine struct {
	ID         uint64      `json:"id"`
	OrderID    uint64      `json:"order_id"`
	MenuItemID uint64      `json:"menu_item_id"`
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Quantity   int         `json:"quantity"`
	UnitPrice  money.Cents `json:"unit_price_cents"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Total is quantity × unit price snapshot.
func (l OrderLine) Total() money.Cents {
	return l.UnitPrice.Times(l.Quantity)
}

// LinesTotal sums the totals of lines.
func LinesTotal(lines []OrderLine) money.Cents {
	var sum money.Cents
	for _, l := range lines {
		sum += l.Total()
	}
	return sum
}
