// Package queue carries kitchen tickets over RabbitMQ: the publisher used
// by order confirmation and the background consumer that writes them to
// the kitchen log.
package queue

import (
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// TicketEventType identifies the payload on the wire.
const TicketEventType = "kitchen.ticket"

// TicketEvent is published once per confirmed order.  It carries enough
// for the kitchen to work without querying the primary database.
type TicketEvent struct {
	Type         string             `json:"type"`
	TicketID     string             `json:"ticket_id"`
	OrderID      uint64             `json:"order_id"`
	TableNumber  int                `json:"table_number"`
	EmployeeName string             `json:"employee_name"`
	Items        []model.TicketItem `json:"items"`
	OrderedAt    string             `json:"ordered_at"`
	ConfirmedAt  string             `json:"confirmed_at"`
}

// NewTicketEvent converts a ticket into its wire form.  Times are RFC 3339
// in UTC.
func NewTicketEvent(t model.KitchenTicket) TicketEvent {
	items := t.Items
	if items == nil {
		items = []model.TicketItem{}
	}
	return TicketEvent{
		Type:         TicketEventType,
		TicketID:     t.TicketID,
		OrderID:      t.OrderID,
		TableNumber:  t.TableNumber,
		EmployeeName: t.EmployeeName,
		Items:        items,
		OrderedAt:    t.OrderedAt.UTC().Format(time.RFC3339),
		ConfirmedAt:  t.ConfirmedAt.UTC().Format(time.RFC3339),
	}
}
