package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// TicketPublisher hands a kitchen ticket to whatever prints or exports it.
// Publish is called after the confirming unit of work has committed.
type TicketPublisher interface {
	PublishTicket(ctx context.Context, t model.KitchenTicket) error
}

// NopPublisher drops tickets.  Used when ticket delivery is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishTicket(context.Context, model.KitchenTicket) error { return nil }

// buildTicket projects a confirmed order onto a kitchen ticket.  Lines
// for the same dish are merged so the kitchen sees one row per dish, in
// the order the dish was first added.
func buildTicket(o model.Order, employee string, lines []model.OrderLine, confirmedAt time.Time) model.KitchenTicket {
	type agg struct {
		item  model.TicketItem
		first uint64
	}
	byItem := make(map[uint64]*agg)
	for _, l := range lines {
		a, ok := byItem[l.MenuItemID]
		if !ok {
			a = &agg{item: model.TicketItem{Name: l.Name}, first: l.ID}
			byItem[l.MenuItemID] = a
		}
		a.item.Quantity += l.Quantity
	}
	aggs := make([]*agg, 0, len(byItem))
	for _, a := range byItem {
		aggs = append(aggs, a)
	}
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].first < aggs[j].first })
	items := make([]model.TicketItem, 0, len(aggs))
	for _, a := range aggs {
		items = append(items, a.item)
	}
	return model.KitchenTicket{
		TicketID:     uuid.NewString(),
		OrderID:      o.ID,
		TableNumber:  o.TableNumber,
		EmployeeName: employee,
		OrderedAt:    o.CreatedAt,
		ConfirmedAt:  confirmedAt.UTC(),
		Items:        items,
	}
}
