package service

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
)

func TestDailySummaryLunchScenario(t *testing.T) {
	env := newTestEnv(t)
	o := env.confirmedOrder(t, 3, map[string]int{"Miso Soup": 2, "Gyoza": 1})
	env.clock.Set(at(12, 30))
	received := money.MustParse("20.00")
	if _, err := env.ledger.RecordPayment(env.ctx, o.ID, PaymentRequest{
		Method:       model.PaymentCash,
		Amount:       money.MustParse("16.50"),
		Tip:          money.MustParse("2.00"),
		EmployeeID:   env.waiter.ID,
		CashReceived: &received,
	}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	s, err := env.reports.GetDailySummary(env.ctx, at(9, 0))
	if err != nil {
		t.Fatalf("GetDailySummary: %v", err)
	}
	if s.Date != "2026-03-04" || s.Timezone != "UTC+1" {
		t.Fatalf("date = %s %s", s.Date, s.Timezone)
	}
	want1650 := money.MustParse("16.50")
	if s.Revenue.Total != want1650 || s.Revenue.ByHour[12] != want1650 || s.Revenue.ByPayment[model.PaymentCash] != want1650 {
		t.Fatalf("revenue = %+v", s.Revenue)
	}
	if s.Revenue.ByPayment[model.PaymentCard] != 0 {
		t.Fatalf("card revenue = %v", s.Revenue.ByPayment[model.PaymentCard])
	}
	if s.Tips.Total != money.MustParse("2.00") || s.Tips.ByHour[12] != money.MustParse("2.00") {
		t.Fatalf("tips = %+v", s.Tips)
	}
	if s.Transactions.Count != 1 || s.Transactions.AverageOrder != want1650 || s.Transactions.HourlyDistribution[12] != 1 {
		t.Fatalf("transactions = %+v", s.Transactions)
	}

	top := s.Menu.TopItems
	if len(top) != 2 || top[0].Name != "Miso Soup" || top[0].Quantity != 2 || top[0].Revenue != money.MustParse("9.00") {
		t.Fatalf("top items = %+v", top)
	}
	if top[1].Name != "Gyoza" || top[1].Quantity != 1 {
		t.Fatalf("top items = %+v", top)
	}
	if len(s.Menu.CategoryAnalysis) != 1 || s.Menu.CategoryAnalysis[0].Quantity != 3 || s.Menu.CategoryAnalysis[0].Revenue != want1650 {
		t.Fatalf("categories = %+v", s.Menu.CategoryAnalysis)
	}
	if s.Menu.HourlySales[12].Quantity != 3 {
		t.Fatalf("hourly sales = %+v", s.Menu.HourlySales[12])
	}

	// 16.50 × 0.21 = 3.465
	if s.Tax.Total != money.MustParse("3.47") || s.Tax.ByHour[12] != money.MustParse("3.47") {
		t.Fatalf("tax = %+v", s.Tax)
	}
	if len(s.Tax.ByCategory) != 1 || s.Tax.ByCategory[0].Rate != "0.21" {
		t.Fatalf("tax by category = %+v", s.Tax.ByCategory)
	}
}

func TestDailySummaryEmptyDay(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.reports.GetDailySummary(env.ctx, at(12, 0))
	if err != nil {
		t.Fatalf("GetDailySummary: %v", err)
	}
	if s.Revenue.Total != 0 || s.Tips.Total != 0 || s.Transactions.Count != 0 || s.Transactions.AverageOrder != 0 {
		t.Fatalf("summary = %+v", s)
	}
	if len(s.Revenue.ByPayment) != 3 || len(s.Tips.ByPayment) != 3 {
		t.Fatalf("payment maps = %v %v", s.Revenue.ByPayment, s.Tips.ByPayment)
	}
	if s.Menu.TopItems == nil || len(s.Menu.TopItems) != 0 || s.Transactions.TableAnalysis == nil {
		t.Fatalf("empty lists must be present: %+v", s.Menu)
	}
	if s.Tax.Total != 0 || s.Tax.StandardRate != "0.21" || s.Tax.ReducedRate != "0.09" {
		t.Fatalf("tax = %+v", s.Tax)
	}
}

func TestDailySummaryIsStable(t *testing.T) {
	env := newTestEnv(t)
	o := env.confirmedOrder(t, 1, map[string]int{"Tuna Roll": 2, "Edamame": 1, "Green Tea Ice Cream": 3})
	env.pay(t, o.ID, model.PaymentCard, "1.25")

	first, err := env.reports.GetDailySummary(env.ctx, at(12, 0))
	if err != nil {
		t.Fatal(err)
	}
	second, err := env.reports.GetDailySummary(env.ctx, at(18, 0))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("summaries differ:\n%+v\n%+v", first, second)
	}
}

func TestDailySummaryDoesNotMultiplyByLines(t *testing.T) {
	env := newTestEnv(t)
	o := env.confirmedOrder(t, 4, map[string]int{
		"Miso Soup": 1, "Gyoza": 1, "California Roll": 1, "Beef Ramen": 1,
	})
	res := env.pay(t, o.ID, model.PaymentCard, "3.00")

	s, err := env.reports.GetDailySummary(env.ctx, at(12, 0))
	if err != nil {
		t.Fatal(err)
	}
	if s.Transactions.Count != 1 {
		t.Fatalf("count = %d, want 1", s.Transactions.Count)
	}
	if s.Revenue.Total != res.Transaction.Amount || s.Tips.Total != money.MustParse("3.00") {
		t.Fatalf("revenue = %v tips = %v", s.Revenue.Total, s.Tips.Total)
	}
	if len(s.Transactions.TableAnalysis) != 1 || s.Transactions.TableAnalysis[0].Count != 1 {
		t.Fatalf("table analysis = %+v", s.Transactions.TableAnalysis)
	}
	var lineRevenue money.Cents
	for _, c := range s.Menu.CategoryAnalysis {
		lineRevenue += c.Revenue
	}
	if lineRevenue != res.Transaction.Amount {
		t.Fatalf("line revenue = %v, want %v", lineRevenue, res.Transaction.Amount)
	}
}

func TestDailySummaryUsesLocalDayAndHour(t *testing.T) {
	env := newTestEnv(t)
	pay := func(table int, when time.Time) {
		o := env.confirmedOrder(t, table, map[string]int{"Edamame": 1})
		env.clock.Set(when)
		env.pay(t, o.ID, model.PaymentCard, "0")
	}
	// 23:30 UTC the day before
	pay(1, at(0, 30))
	pay(2, at(23, 59))
	pay(3, time.Date(2026, 3, 5, 0, 0, 0, 0, reportZone))
	pay(4, time.Date(2026, 3, 3, 23, 59, 59, 0, reportZone))

	s, err := env.reports.GetDailySummary(env.ctx, at(12, 0))
	if err != nil {
		t.Fatal(err)
	}
	if s.Transactions.Count != 2 {
		t.Fatalf("count = %d, want 2", s.Transactions.Count)
	}
	if s.Transactions.HourlyDistribution[0] != 1 || s.Transactions.HourlyDistribution[23] != 1 {
		t.Fatalf("hourly = %v", s.Transactions.HourlyDistribution)
	}
	if s.Menu.HourlySales[0].Quantity != 1 || s.Menu.HourlySales[23].Quantity != 1 {
		t.Fatalf("hourly sales = %+v", s.Menu.HourlySales)
	}
	tables := s.Transactions.TableAnalysis
	if len(tables) != 2 || tables[0].TableNumber != 1 || tables[1].TableNumber != 2 {
		t.Fatalf("tables = %+v", tables)
	}
}

func TestDailySummaryTableAndEmployeeAnalysis(t *testing.T) {
	env := newTestEnv(t)
	admin, err := env.staff.Authenticate(env.ctx, "Admin", "1234")
	if err != nil {
		t.Fatal(err)
	}

	o1 := env.confirmedOrder(t, 7, map[string]int{"Beef Ramen": 1})
	env.pay(t, o1.ID, model.PaymentCard, "1.00")
	o2 := env.confirmedOrder(t, 7, map[string]int{"Edamame": 1})
	env.pay(t, o2.ID, model.PaymentCash, "0")
	o3 := env.confirmedOrder(t, 2, map[string]int{"Gyoza": 2})
	if _, err := env.ledger.RecordPayment(env.ctx, o3.ID, PaymentRequest{
		Method: model.PaymentCard, Amount: money.MustParse("15.00"), Tip: money.MustParse("0.50"), EmployeeID: admin.ID,
	}); err != nil {
		t.Fatal(err)
	}

	s, err := env.reports.GetDailySummary(env.ctx, at(12, 0))
	if err != nil {
		t.Fatal(err)
	}
	tables := s.Transactions.TableAnalysis
	if len(tables) != 2 {
		t.Fatalf("tables = %+v", tables)
	}
	if tables[0].TableNumber != 2 || tables[0].Count != 1 || tables[0].Total != money.MustParse("15.00") {
		t.Fatalf("table 2 = %+v", tables[0])
	}
	t7 := tables[1]
	if t7.TableNumber != 7 || t7.Count != 2 || t7.Total != money.MustParse("20.00") || t7.Average != money.MustParse("10.00") || t7.Tips != money.MustParse("1.00") {
		t.Fatalf("table 7 = %+v", t7)
	}

	emps := s.Transactions.EmployeeAnalysis
	if len(emps) != 2 || emps[0].EmployeeID != admin.ID || emps[0].EmployeeName != "Admin" {
		t.Fatalf("employees = %+v", emps)
	}
	if emps[1].EmployeeName != "Yuki" || emps[1].Count != 2 || emps[1].Total != money.MustParse("20.00") {
		t.Fatalf("waiter = %+v", emps[1])
	}
	if s.Revenue.ByPayment[model.PaymentCard] != money.MustParse("29.50") || s.Revenue.ByPayment[model.PaymentCash] != money.MustParse("5.50") {
		t.Fatalf("by payment = %v", s.Revenue.ByPayment)
	}
	if s.Transactions.AverageOrder != money.MustParse("11.67") {
		t.Fatalf("average = %v", s.Transactions.AverageOrder)
	}
}

func TestDailySummaryCountsRefundRows(t *testing.T) {
	env := newTestEnv(t)
	o := env.confirmedOrder(t, 5, map[string]int{"Salmon Nigiri": 2})
	env.pay(t, o.ID, model.PaymentCard, "2.00")
	env.clock.Set(at(15, 0))
	if _, err := env.ledger.RecordRefund(env.ctx, o.ID, money.MustParse("9.50"), env.waiter.ID, "dropped plate"); err != nil {
		t.Fatal(err)
	}
	env.clock.Set(time.Date(2026, 3, 5, 10, 0, 0, 0, reportZone))
	if _, err := env.ledger.RecordRefund(env.ctx, o.ID, money.MustParse("1.00"), env.waiter.ID, "late complaint"); err != nil {
		t.Fatal(err)
	}

	s, err := env.reports.GetDailySummary(env.ctx, at(12, 0))
	if err != nil {
		t.Fatal(err)
	}
	if s.Transactions.Count != 2 || s.Revenue.Total != money.MustParse("9.50") || s.Revenue.ByHour[15] != money.MustParse("-9.50") {
		t.Fatalf("revenue = %+v count = %d", s.Revenue, s.Transactions.Count)
	}
	if s.Menu.TopItems[0].Quantity != 2 {
		t.Fatalf("refund changed line metrics: %+v", s.Menu.TopItems)
	}

	// a day with only a refund has ledger metrics but no line metrics
	next, err := env.reports.GetDailySummary(env.ctx, time.Date(2026, 3, 5, 12, 0, 0, 0, reportZone))
	if err != nil {
		t.Fatal(err)
	}
	if next.Transactions.Count != 1 || next.Revenue.Total != money.MustParse("-1.00") {
		t.Fatalf("next day = %+v", next.Revenue)
	}
	if len(next.Menu.TopItems) != 0 || next.Tax.Total != 0 {
		t.Fatalf("next day menu = %+v tax = %+v", next.Menu.TopItems, next.Tax)
	}
}

func TestDailySummaryTaxPerCategory(t *testing.T) {
	env := newTestEnv(t)
	tax := NewTaxTable(decimal.RequireFromString("0.21"), decimal.RequireFromString("0.09"), "Starters")
	reports := NewReportingEngine(env.store, tax, reportZone, 2)

	o := env.confirmedOrder(t, 1, map[string]int{"Miso Soup": 3, "Chicken Teriyaki": 1, "Tuna Roll": 1})
	env.pay(t, o.ID, model.PaymentCard, "0")

	s, err := reports.GetDailySummary(env.ctx, at(12, 0))
	if err != nil {
		t.Fatal(err)
	}
	want := []model.CategoryTax{
		// 15.50 × 0.21 = 3.255
		{Category: "Main Dishes", Rate: "0.21", Revenue: money.MustParse("15.50"), Tax: money.MustParse("3.26")},
		// 13.50 × 0.09 = 1.215
		{Category: "Starters", Rate: "0.09", Revenue: money.MustParse("13.50"), Tax: money.MustParse("1.22")},
		// 8.50 × 0.21 = 1.785
		{Category: "Sushi", Rate: "0.21", Revenue: money.MustParse("8.50"), Tax: money.MustParse("1.79")},
	}
	if !reflect.DeepEqual(s.Tax.ByCategory, want) {
		t.Fatalf("tax by category = %+v", s.Tax.ByCategory)
	}
	if s.Tax.Total != money.MustParse("6.27") {
		t.Fatalf("tax total = %v", s.Tax.Total)
	}

	if len(s.Menu.TopItems) != 2 || s.Menu.TopItems[0].Name != "Miso Soup" || s.Menu.TopItems[1].Name != "Chicken Teriyaki" {
		t.Fatalf("top items = %+v", s.Menu.TopItems)
	}
	cats := s.Menu.CategoryAnalysis
	if len(cats) != 3 || cats[0].Category != "Main Dishes" || cats[1].Category != "Starters" || cats[2].Category != "Sushi" {
		t.Fatalf("categories = %+v", cats)
	}
}

func TestDayWindow(t *testing.T) {
	from, to := DayWindow(time.Date(2026, 3, 4, 23, 30, 0, 0, time.UTC), reportZone)
	if !from.Equal(time.Date(2026, 3, 4, 23, 0, 0, 0, time.UTC)) {
		t.Fatalf("from = %v", from)
	}
	if to.Sub(from) != 24*time.Hour {
		t.Fatalf("window = %v", to.Sub(from))
	}

	ams, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Skip("tzdata not available")
	}
	from, to = DayWindow(time.Date(2026, 3, 29, 12, 0, 0, 0, ams), ams)
	if to.Sub(from) != 23*time.Hour {
		t.Fatalf("DST day window = %v", to.Sub(from))
	}
}
