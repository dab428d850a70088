package model

import "time"

// TicketItem is one dish on a kitchen ticket.
type TicketItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// KitchenTicket is the projection of a confirmed order sent to the kitchen.
// It is pure data; printing or exporting it is up to the consumer.
type KitchenTicket struct {
	TicketID     string       `json:"ticket_id"`
	OrderID      uint64       `json:"order_id"`
	TableNumber  int          `json:"table_number"`
	EmployeeName string       `json:"employee_name"`
	OrderedAt    time.Time    `json:"ordered_at"`
	ConfirmedAt  time.Time    `json:"confirmed_at"`
	Items        []TicketItem `json:"items"`
}
