package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// MenuCatalog is the read-mostly set of sellable items.
type MenuCatalog struct {
	store repository.Store
	log   *slog.Logger
}

func NewMenuCatalog(store repository.Store, log *slog.Logger) *MenuCatalog {
	return &MenuCatalog{store: store, log: log}
}

func describe(s string) *string { return &s }

// DefaultMenu is seeded into an empty catalog.
var DefaultMenu = []model.MenuItem{
	{Name: "Miso Soup", Category: "Starters", Price: money.MustParse("4.50"), Description: describe("Traditional Japanese soup with tofu and seaweed")},
	{Name: "Edamame", Category: "Starters", Price: money.MustParse("5.50"), Description: describe("Steamed soybeans with sea salt")},
	{Name: "Gyoza", Category: "Starters", Price: money.MustParse("7.50"), Description: describe("Pan-fried dumplings filled with pork and vegetables")},
	{Name: "California Roll", Category: "Sushi", Price: money.MustParse("8.50"), Description: describe("Crab, avocado and cucumber roll")},
	{Name: "Salmon Nigiri", Category: "Sushi", Price: money.MustParse("9.50"), Description: describe("Fresh salmon over pressed rice")},
	{Name: "Tuna Roll", Category: "Sushi", Price: money.MustParse("8.50"), Description: describe("Fresh tuna roll with nori")},
	{Name: "Chicken Teriyaki", Category: "Main Dishes", Price: money.MustParse("15.50"), Description: describe("Grilled chicken with teriyaki sauce and rice")},
	{Name: "Beef Ramen", Category: "Main Dishes", Price: money.MustParse("14.50"), Description: describe("Noodle soup with sliced beef and vegetables")},
	{Name: "Vegetable Tempura", Category: "Side Dishes", Price: money.MustParse("7.50"), Description: describe("Assorted vegetables in light tempura batter")},
	{Name: "Green Tea Ice Cream", Category: "Desserts", Price: money.MustParse("5.50"), Description: describe("Matcha flavoured ice cream")},
}

// SeedDefaults inserts DefaultMenu when the catalog is empty.  It is safe
// to call on every startup and reports how many items were inserted.
func (c *MenuCatalog) SeedDefaults(ctx context.Context) (int, error) {
	inserted := 0
	err := inTx(ctx, c.store, func(tx repository.Tx) error {
		n, err := tx.CountMenuItems(ctx)
		if err != nil {
			return fmt.Errorf("count menu items: %w", err)
		}
		if n > 0 {
			return nil
		}
		for _, def := range DefaultMenu {
			item := def
			if err := tx.InsertMenuItem(ctx, &item); err != nil {
				return fmt.Errorf("seed %q: %w", item.Name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if inserted > 0 {
		c.log.Info("menu_seeded", slog.Int("items", inserted))
	}
	return inserted, nil
}

// ListItems returns the whole catalog.
func (c *MenuCatalog) ListItems(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	err := inReadTx(ctx, c.store, func(tx repository.Tx) error {
		var err error
		items, err = tx.ListMenuItems(ctx)
		return err
	})
	return items, err
}

// GetItem returns one item or repository.ErrNotFound.
func (c *MenuCatalog) GetItem(ctx context.Context, id uint64) (model.MenuItem, error) {
	var item model.MenuItem
	err := inReadTx(ctx, c.store, func(tx repository.Tx) error {
		var err error
		item, err = tx.GetMenuItem(ctx, id)
		return err
	})
	return item, err
}

// AddItem extends the catalog.
func (c *MenuCatalog) AddItem(ctx context.Context, item model.MenuItem) (model.MenuItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Category = strings.TrimSpace(item.Category)
	if item.Name == "" {
		return model.MenuItem{}, invalid("name", "is required")
	}
	if item.Category == "" {
		return model.MenuItem{}, invalid("category", "is required")
	}
	if item.Price < 0 {
		return model.MenuItem{}, invalid("price", "must not be negative")
	}
	err := inTx(ctx, c.store, func(tx repository.Tx) error {
		return tx.InsertMenuItem(ctx, &item)
	})
	if err != nil {
		return model.MenuItem{}, err
	}
	c.log.Info("menu_item_added", slog.Uint64("menu_item_id", item.ID), slog.String("name", item.Name))
	return item, nil
}

// UpdatePrice changes the current price of an item.  Lines already on
// orders keep the price they were added with.
func (c *MenuCatalog) UpdatePrice(ctx context.Context, id uint64, price money.Cents) (model.MenuItem, error) {
	if price < 0 {
		return model.MenuItem{}, invalid("price", "must not be negative")
	}
	var item model.MenuItem
	err := inTx(ctx, c.store, func(tx repository.Tx) error {
		if err := tx.UpdateMenuItemPrice(ctx, id, price); err != nil {
			return err
		}
		var err error
		item, err = tx.GetMenuItem(ctx, id)
		return err
	})
	if err != nil {
		return model.MenuItem{}, err
	}
	c.log.Info("menu_price_updated", slog.Uint64("menu_item_id", id), slog.String("price", price.String()))
	return item, nil
}
