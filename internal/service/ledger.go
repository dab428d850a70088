package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// Split bounds for split payments.
const (
	DefaultSplitWays = 2
	MinSplitWays     = 2
	MaxSplitWays     = 10
)

// PaymentRequest is what a terminal submits to settle an order.  Amount
// must equal the order total recomputed from its lines; the tip comes on
// top.
type PaymentRequest struct {
	Method       model.PaymentMethod
	Amount       money.Cents
	Tip          money.Cents
	EmployeeID   uint64
	CashReceived *money.Cents // cash only
	SplitWays    int          // split only; 0 means DefaultSplitWays
}

// PaymentResult is the ledger entry plus the bill for the printer.
type PaymentResult struct {
	Transaction model.Transaction `json:"transaction"`
	Bill        model.Bill        `json:"bill"`
}

// TransactionLedger records payments.  Entries are only ever appended.
type TransactionLedger struct {
	store repository.Store
	log   *slog.Logger
	now   func() time.Time
}

func NewTransactionLedger(store repository.Store, log *slog.Logger) *TransactionLedger {
	return &TransactionLedger{store: store, log: log, now: time.Now}
}

// SetClock replaces the time source.  Tests use it to pin timestamps.
func (l *TransactionLedger) SetClock(now func() time.Time) { l.now = now }

func (r *PaymentRequest) validate() error {
	if !r.Method.Valid() {
		return invalid("payment_method", "must be cash, card or split")
	}
	// zero is a valid total when every line is complimentary
	if r.Amount < 0 {
		return invalid("amount", "must not be negative")
	}
	if r.Tip < 0 {
		return invalid("tip", "must not be negative")
	}
	if r.CashReceived != nil {
		if r.Method != model.PaymentCash {
			return invalid("cash_received", "only allowed for cash payments")
		}
		if *r.CashReceived < r.Amount+r.Tip {
			return invalid("cash_received", "insufficient cash: %s received for %s due",
				r.CashReceived.String(), (r.Amount + r.Tip).String())
		}
	}
	if r.Method == model.PaymentSplit {
		if r.SplitWays == 0 {
			r.SplitWays = DefaultSplitWays
		}
		if r.SplitWays < MinSplitWays || r.SplitWays > MaxSplitWays {
			return invalid("split_ways", "must be between %d and %d", MinSplitWays, MaxSplitWays)
		}
	} else if r.SplitWays != 0 {
		return invalid("split_ways", "only allowed for split payments")
	}
	return nil
}

// RecordPayment settles a confirmed order.  The status check, the ledger
// append and the flip to paid happen in one unit of work under the order
// lock, so of two concurrent payments for one order exactly one succeeds
// and the other sees repository.ErrInvalidState.  The amount is checked
// against the total recomputed from the order's lines; a mismatch yields
// repository.ErrInvalidAmount.
func (l *TransactionLedger) RecordPayment(ctx context.Context, orderID uint64, req PaymentRequest) (PaymentResult, error) {
	if err := req.validate(); err != nil {
		return PaymentResult{}, err
	}
	var res PaymentResult
	err := inTx(ctx, l.store, func(tx repository.Tx) error {
		o, err := tx.GetOrder(ctx, orderID, true)
		if err != nil {
			return fmt.Errorf("order %d: %w", orderID, err)
		}
		if o.Status != model.OrderConfirmed {
			return fmt.Errorf("pay %s order %d: %w", o.Status, o.ID, repository.ErrInvalidState)
		}
		emp, err := tx.GetEmployee(ctx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("employee %d: %w", req.EmployeeID, err)
		}
		lines, err := tx.ListLines(ctx, o.ID)
		if err != nil {
			return err
		}
		total := model.LinesTotal(lines)
		if req.Amount != total {
			return fmt.Errorf("order %d total is %s, got %s: %w", o.ID, total.String(), req.Amount.String(), repository.ErrInvalidAmount)
		}
		t := model.Transaction{
			OrderID:    o.ID,
			Method:     req.Method,
			Amount:     req.Amount,
			Tip:        req.Tip,
			EmployeeID: emp.ID,
			CreatedAt:  l.now().UTC(),
		}
		if err := tx.InsertTransaction(ctx, &t); err != nil {
			return err
		}
		ok, err := tx.UpdateOrderStatus(ctx, o.ID, model.OrderConfirmed, model.OrderPaid)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("pay order %d: %w", o.ID, repository.ErrInvalidState)
		}
		res = PaymentResult{Transaction: t, Bill: buildBill(o, emp.Name, lines, t, req)}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}
	l.log.Info("payment_recorded",
		slog.Uint64("order_id", orderID),
		slog.Uint64("transaction_id", res.Transaction.ID),
		slog.String("method", string(req.Method)),
		slog.String("amount", req.Amount.String()),
		slog.String("tip", req.Tip.String()))
	return res, nil
}

func buildBill(o model.Order, employee string, lines []model.OrderLine, t model.Transaction, req PaymentRequest) model.Bill {
	b := model.Bill{
		OrderID:      o.ID,
		TableNumber:  o.TableNumber,
		EmployeeName: employee,
		Lines:        make([]model.BillLine, 0, len(lines)),
		Subtotal:     t.Amount,
		Tip:          t.Tip,
		Total:        t.Amount + t.Tip,
		Method:       t.Method,
		PaidAt:       t.CreatedAt,
	}
	for _, ln := range lines {
		b.Lines = append(b.Lines, model.BillLine{
			Name:      ln.Name,
			Quantity:  ln.Quantity,
			UnitPrice: ln.UnitPrice,
			Total:     ln.Total(),
		})
	}
	switch t.Method {
	case model.PaymentCash:
		if req.CashReceived != nil {
			received := *req.CashReceived
			change := received - b.Total
			b.CashReceived = &received
			b.Change = &change
		}
	case model.PaymentSplit:
		per := b.Total.Split(req.SplitWays)
		b.SplitWays = req.SplitWays
		b.PerPerson = &per
	}
	return b
}

// RecordRefund reverses part or all of what was paid for an order by
// appending a negative entry.  The order must be paid and the refund may
// not exceed the net amount paid so far.
func (l *TransactionLedger) RecordRefund(ctx context.Context, orderID uint64, amount money.Cents, employeeID uint64, reason string) (model.Transaction, error) {
	if amount <= 0 {
		return model.Transaction{}, invalid("amount", "must be positive")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.Transaction{}, invalid("reason", "is required")
	}
	var t model.Transaction
	err := inTx(ctx, l.store, func(tx repository.Tx) error {
		o, err := tx.GetOrder(ctx, orderID, true)
		if err != nil {
			return fmt.Errorf("order %d: %w", orderID, err)
		}
		if o.Status != model.OrderPaid {
			return fmt.Errorf("refund %s order %d: %w", o.Status, o.ID, repository.ErrInvalidState)
		}
		if _, err := tx.GetEmployee(ctx, employeeID); err != nil {
			return fmt.Errorf("employee %d: %w", employeeID, err)
		}
		entries, err := tx.ListTransactions(ctx, o.ID)
		if err != nil {
			return err
		}
		var net money.Cents
		method := model.PaymentCard
		for i := len(entries) - 1; i >= 0; i-- {
			net += entries[i].Amount
			if !entries[i].IsRefund() {
				method = entries[i].Method
			}
		}
		if amount > net {
			return fmt.Errorf("refund %s exceeds net paid %s: %w", amount.String(), net.String(), repository.ErrInvalidAmount)
		}
		t = model.Transaction{
			OrderID:    o.ID,
			Method:     method,
			Amount:     -amount,
			EmployeeID: employeeID,
			Note:       &reason,
			CreatedAt:  l.now().UTC(),
		}
		return tx.InsertTransaction(ctx, &t)
	})
	if err != nil {
		return model.Transaction{}, err
	}
	l.log.Info("refund_recorded", slog.Uint64("order_id", orderID), slog.Uint64("transaction_id", t.ID),
		slog.String("amount", amount.String()))
	return t, nil
}

// ListTransactions returns the ledger entries of one order, oldest first.
func (l *TransactionLedger) ListTransactions(ctx context.Context, orderID uint64) ([]model.Transaction, error) {
	var list []model.Transaction
	err := inReadTx(ctx, l.store, func(tx repository.Tx) error {
		if _, err := tx.GetOrder(ctx, orderID, false); err != nil {
			return err
		}
		var err error
		list, err = tx.ListTransactions(ctx, orderID)
		return err
	})
	return list, err
}
