package model

import (
	"time"

	"github.com/iliyamo/restaurant-pos/internal/money"
)

// PaymentMethod is how a transaction was settled.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentSplit PaymentMethod = "split"
)

// Valid reports whether m is one of the accepted methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentSplit:
		return true
	}
	return false
}

// Transaction is one immutable ledger entry.  Payments carry a positive
// Amount; refunds are separate entries with a negative Amount and a zero
// tip.  Rows are never updated.
//
// Fields:
//
//	ID         – transactions.id
//	OrderID    – order the money was taken for.
//	Method     – cash, card or split.
//	Amount     – charged amount in cents, excluding tip.
//	Tip        – tip in cents.
//	EmployeeID – employee who processed the payment.
//	Note       – optional reason, used for refunds.
//	CreatedAt  – time the payment was recorded (UTC).
type Transaction struct {
	ID         uint64        `json:"id"`
	OrderID    uint64        `json:"order_id"`
	Method     PaymentMethod `json:"payment_method"`
	Amount     money.Cents   `json:"amount_cents"`
	Tip        money.Cents   `json:"tip_cents"`
	EmployeeID uint64        `json:"employee_id"`
	Note       *string       `json:"note,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// IsRefund reports whether the entry reverses money.
func (t Transaction) IsRefund() bool { return t.Amount < 0 }

// BillLine is a printable line of a bill.
type BillLine struct {
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitPrice money.Cents `json:"unit_price_cents"`
	Total     money.Cents `json:"total_cents"`
}

// Bill is the structured receipt handed to the bill printing collaborator
// after a successful payment.
type Bill struct {
	OrderID      uint64        `json:"order_id"`
	TableNumber  int           `json:"table_number"`
	EmployeeName string        `json:"employee_name"`
	Lines        []BillLine    `json:"lines"`
	Subtotal     money.Cents   `json:"subtotal_cents"`
	Tip          money.Cents   `json:"tip_cents"`
	Total        money.Cents   `json:"total_cents"`
	Method       PaymentMethod `json:"payment_method"`
	CashReceived *money.Cents  `json:"cash_received_cents,omitempty"`
	Change       *money.Cents  `json:"change_cents,omitempty"`
	SplitWays    int           `json:"split_ways,omitempty"`
	PerPerson    *money.Cents  `json:"per_person_cents,omitempty"`
	PaidAt       time.Time     `json:"paid_at"`
}
