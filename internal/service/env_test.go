package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/repository/memstore"
)

// recordingPublisher keeps every published ticket.
type recordingPublisher struct {
	mu      sync.Mutex
	tickets []model.KitchenTicket
	err     error
}

func (p *recordingPublisher) PublishTicket(_ context.Context, t model.KitchenTicket) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickets = append(p.tickets, t)
	return p.err
}

type testEnv struct {
	ctx       context.Context
	store     repository.Store
	catalog   *MenuCatalog
	orders    *OrderStore
	ledger    *TransactionLedger
	reports   *ReportingEngine
	staff     *Staff
	publisher *recordingPublisher
	waiter    model.Employee
	clock     *fakeClock
	items     map[string]model.MenuItem
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// reportZone is UTC+1 so that hour buckets differ from UTC hours.
var reportZone = time.FixedZone("UTC+1", 3600)

// at returns a time on 2026-03-04 in reportZone.
func at(hour, min int) time.Time {
	return time.Date(2026, 3, 4, hour, min, 0, 0, reportZone)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, memstore.New())
}

// newTestEnvWithStore seeds tables, the default menu, the admin and the
// waiter into an empty store.
func newTestEnvWithStore(t *testing.T, store repository.Store) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()
	pub := &recordingPublisher{}
	clock := &fakeClock{t: at(12, 0)}

	env := &testEnv{
		ctx:       ctx,
		store:     store,
		catalog:   NewMenuCatalog(store, log),
		orders:    NewOrderStore(store, pub, log),
		ledger:    NewTransactionLedger(store, log),
		reports:   NewReportingEngine(store, DefaultTaxTable(), reportZone, DefaultTopItems),
		staff:     NewStaff(store, bcrypt.MinCost, log),
		publisher: pub,
		clock:     clock,
		items:     make(map[string]model.MenuItem),
	}
	env.orders.SetClock(clock.Now)
	env.ledger.SetClock(clock.Now)

	if err := env.orders.SeedTables(ctx, 10); err != nil {
		t.Fatalf("SeedTables: %v", err)
	}
	if _, err := env.catalog.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	items, err := env.catalog.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	for _, it := range items {
		env.items[it.Name] = it
	}
	if _, err := env.staff.BootstrapAdmin(ctx, "Admin", "1234"); err != nil {
		t.Fatalf("BootstrapAdmin: %v", err)
	}
	env.waiter, err = env.staff.AddEmployee(ctx, "Yuki", model.RoleStaff, "5678")
	if err != nil {
		t.Fatalf("AddEmployee: %v", err)
	}
	return env
}

func (e *testEnv) item(t *testing.T, name string) model.MenuItem {
	t.Helper()
	it, ok := e.items[name]
	if !ok {
		t.Fatalf("menu item %q not seeded", name)
	}
	return it
}

// confirmedOrder opens an order on table, adds the given quantities and
// confirms it.
func (e *testEnv) confirmedOrder(t *testing.T, table int, lines map[string]int) model.Order {
	t.Helper()
	o, err := e.orders.CreateOrder(e.ctx, table, e.waiter.ID)
	if err != nil {
		t.Fatalf("CreateOrder(%d): %v", table, err)
	}
	for name, qty := range lines {
		if _, err := e.orders.AddLine(e.ctx, o.ID, e.item(t, name).ID, qty); err != nil {
			t.Fatalf("AddLine(%s): %v", name, err)
		}
	}
	if _, err := e.orders.ConfirmOrder(e.ctx, o.ID); err != nil {
		t.Fatalf("ConfirmOrder: %v", err)
	}
	return o
}

// pay settles an order for its exact total.
func (e *testEnv) pay(t *testing.T, orderID uint64, method model.PaymentMethod, tip string) PaymentResult {
	t.Helper()
	total, err := e.orders.OrderTotal(e.ctx, orderID)
	if err != nil {
		t.Fatalf("OrderTotal: %v", err)
	}
	req := PaymentRequest{Method: method, Amount: total, Tip: mustCents(t, tip), EmployeeID: e.waiter.ID}
	res, err := e.ledger.RecordPayment(e.ctx, orderID, req)
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	return res
}

func expectErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func expectValidation(t *testing.T, err error, field string) {
	t.Helper()
	ve, ok := AsValidation(err)
	if !ok {
		t.Fatalf("err = %v, want ValidationError on %s", err, field)
	}
	if ve.Field != field {
		t.Fatalf("validation field = %q, want %q", ve.Field, field)
	}
}

func mustCents(t *testing.T, s string) money.Cents {
	t.Helper()
	c, err := money.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return c
}
