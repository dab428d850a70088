package model

import "github.com/iliyamo/restaurant-pos/internal/money"

// MenuItem is a sellable dish or drink.  Name, category and description
// never change once an order line references the item; only the price
// may change, and order lines keep the price they were added with.
//
// Fields:
//
//	ID          – menu_items.id
//	Name        – display name, unique in the catalog.
//	Category    – grouping used by menus, reports and the tax table.
//	Price       – current unit price in cents.
//	Description – optional free text.
type MenuItem struct {
	ID          uint64      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       money.Cents `json:"price_cents"`
	Description *string     `json:"description,omitempty"`
}

// Table is a physical table on the floor.  Tables are fixed at
// bootstrap; in MySQL the row doubles as the per-table lock.
type Table struct {
	Number int `json:"number"`
}
