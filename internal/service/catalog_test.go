package service

import (
	"testing"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

func TestSeedDefaultsOnlyFillsEmptyCatalog(t *testing.T) {
	env := newTestEnv(t)
	n, err := env.catalog.SeedDefaults(env.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("second seed inserted %d items", n)
	}
	items, _ := env.catalog.ListItems(env.ctx)
	if len(items) != len(DefaultMenu) {
		t.Fatalf("catalog has %d items, want %d", len(items), len(DefaultMenu))
	}
	miso := env.item(t, "Miso Soup")
	if miso.Price != money.MustParse("4.50") || miso.Category != "Starters" || miso.Description == nil {
		t.Fatalf("miso = %+v", miso)
	}
}

func TestAddItemAndUpdatePrice(t *testing.T) {
	env := newTestEnv(t)
	item, err := env.catalog.AddItem(env.ctx, model.MenuItem{Name: " Matcha Latte ", Category: "Drinks", Price: money.MustParse("4.00")})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.ID == 0 || item.Name != "Matcha Latte" {
		t.Fatalf("item = %+v", item)
	}
	got, err := env.catalog.GetItem(env.ctx, item.ID)
	if err != nil || got.Price != money.MustParse("4.00") {
		t.Fatalf("GetItem = %+v, %v", got, err)
	}

	updated, err := env.catalog.UpdatePrice(env.ctx, item.ID, money.MustParse("4.25"))
	if err != nil || updated.Price != money.MustParse("4.25") {
		t.Fatalf("UpdatePrice = %+v, %v", updated, err)
	}

	_, err = env.catalog.AddItem(env.ctx, model.MenuItem{Name: "Matcha Latte", Category: "Drinks", Price: 100})
	expectErr(t, err, repository.ErrConflict)
	_, err = env.catalog.AddItem(env.ctx, model.MenuItem{Name: "Water", Price: 100})
	expectValidation(t, err, "category")
	_, err = env.catalog.UpdatePrice(env.ctx, item.ID, -1)
	expectValidation(t, err, "price")
	_, err = env.catalog.UpdatePrice(env.ctx, 4242, 100)
	expectErr(t, err, repository.ErrNotFound)
	_, err = env.catalog.GetItem(env.ctx, 4242)
	expectErr(t, err, repository.ErrNotFound)
}
