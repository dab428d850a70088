package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// DefaultTopItems is the length of menu.topItems.
const DefaultTopItems = 10

// ReportingEngine aggregates one calendar day of the ledger.  Reads run
// in one snapshot, so a report never sees a payment without its order
// flip.
type ReportingEngine struct {
	store repository.Store
	tax   TaxTable
	loc   *time.Location
	topN  int
}

func NewReportingEngine(store repository.Store, tax TaxTable, loc *time.Location, topN int) *ReportingEngine {
	if loc == nil {
		loc = time.Local
	}
	if topN <= 0 {
		topN = DefaultTopItems
	}
	return &ReportingEngine{store: store, tax: tax, loc: loc, topN: topN}
}

// Location is the zone whose midnight starts a report day.
func (r *ReportingEngine) Location() *time.Location { return r.loc }

// DayWindow returns [00:00, next 00:00) of day's calendar date in loc.
func DayWindow(day time.Time, loc *time.Location) (from, to time.Time) {
	y, m, d := day.In(loc).Date()
	from = time.Date(y, m, d, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}

// reportInput is everything a summary is computed from.
type reportInput struct {
	transactions []model.Transaction
	orders       map[uint64]model.Order
	lines        []model.OrderLine
	employees    map[uint64]model.Employee
}

// GetDailySummary returns the summary of day's calendar date.  A day with
// no sales yields zero values, never an error.
func (r *ReportingEngine) GetDailySummary(ctx context.Context, day time.Time) (model.DailySummary, error) {
	from, to := DayWindow(day, r.loc)
	in := reportInput{
		orders:    make(map[uint64]model.Order),
		employees: make(map[uint64]model.Employee),
	}
	err := inReadTx(ctx, r.store, func(tx repository.Tx) error {
		var err error
		in.transactions, err = tx.TransactionsBetween(ctx, from, to)
		if err != nil {
			return fmt.Errorf("transactions: %w", err)
		}
		ids := distinctOrderIDs(in.transactions, false)
		orders, err := tx.OrdersByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("orders: %w", err)
		}
		for _, o := range orders {
			in.orders[o.ID] = o
		}
		// line metrics only look at orders paid on this day
		in.lines, err = tx.LinesForOrders(ctx, distinctOrderIDs(in.transactions, true))
		if err != nil {
			return fmt.Errorf("lines: %w", err)
		}
		emps, err := tx.ListEmployees(ctx)
		if err != nil {
			return fmt.Errorf("employees: %w", err)
		}
		for _, e := range emps {
			in.employees[e.ID] = e
		}
		return nil
	})
	if err != nil {
		return model.DailySummary{}, err
	}
	return summarize(from, r.loc, in, r.tax, r.topN), nil
}

func distinctOrderIDs(ts []model.Transaction, paymentsOnly bool) []uint64 {
	seen := make(map[uint64]bool)
	ids := make([]uint64, 0)
	for _, t := range ts {
		if paymentsOnly && t.IsRefund() {
			continue
		}
		if !seen[t.OrderID] {
			seen[t.OrderID] = true
			ids = append(ids, t.OrderID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func newMethodMap() map[model.PaymentMethod]money.Cents {
	return map[model.PaymentMethod]money.Cents{
		model.PaymentCash:  0,
		model.PaymentCard:  0,
		model.PaymentSplit: 0,
	}
}

// summarize is the pure part of the report.  Transaction metrics come
// from the ledger rows alone; line metrics are computed separately from
// the lines of orders paid that day, so a multi-line order never counts
// its payment more than once.
func summarize(from time.Time, loc *time.Location, in reportInput, tax TaxTable, topN int) model.DailySummary {
	s := model.DailySummary{
		Date:     from.Format("2006-01-02"),
		Timezone: loc.String(),
	}
	s.Revenue.ByPayment = newMethodMap()
	s.Tips.ByPayment = newMethodMap()

	tables := make(map[int]*model.TableStats)
	emps := make(map[uint64]*model.EmployeeStats)
	paidHour := make(map[uint64]int)

	for _, t := range in.transactions {
		h := t.CreatedAt.In(loc).Hour()
		s.Revenue.Total += t.Amount
		s.Revenue.ByHour[h] += t.Amount
		s.Revenue.ByPayment[t.Method] += t.Amount
		s.Tips.Total += t.Tip
		s.Tips.ByHour[h] += t.Tip
		s.Tips.ByPayment[t.Method] += t.Tip
		s.Transactions.Count++
		s.Transactions.HourlyDistribution[h]++

		if !t.IsRefund() {
			if _, ok := paidHour[t.OrderID]; !ok {
				paidHour[t.OrderID] = h
			}
		}
		if o, ok := in.orders[t.OrderID]; ok {
			ts, ok := tables[o.TableNumber]
			if !ok {
				ts = &model.TableStats{TableNumber: o.TableNumber}
				tables[o.TableNumber] = ts
			}
			addStats(&ts.LedgerStats, t)
		}
		es, ok := emps[t.EmployeeID]
		if !ok {
			es = &model.EmployeeStats{EmployeeID: t.EmployeeID, EmployeeName: in.employees[t.EmployeeID].Name}
			emps[t.EmployeeID] = es
		}
		addStats(&es.LedgerStats, t)
	}
	s.Transactions.AverageOrder = money.Average(s.Revenue.Total, s.Transactions.Count)

	s.Transactions.TableAnalysis = make([]model.TableStats, 0, len(tables))
	for _, ts := range tables {
		ts.Average = money.Average(ts.Total, ts.Count)
		s.Transactions.TableAnalysis = append(s.Transactions.TableAnalysis, *ts)
	}
	sort.Slice(s.Transactions.TableAnalysis, func(i, j int) bool {
		return s.Transactions.TableAnalysis[i].TableNumber < s.Transactions.TableAnalysis[j].TableNumber
	})
	s.Transactions.EmployeeAnalysis = make([]model.EmployeeStats, 0, len(emps))
	for _, es := range emps {
		es.Average = money.Average(es.Total, es.Count)
		s.Transactions.EmployeeAnalysis = append(s.Transactions.EmployeeAnalysis, *es)
	}
	sort.Slice(s.Transactions.EmployeeAnalysis, func(i, j int) bool {
		return s.Transactions.EmployeeAnalysis[i].EmployeeID < s.Transactions.EmployeeAnalysis[j].EmployeeID
	})

	s.Menu, s.Tax = summarizeLines(in.lines, paidHour, tax, topN)
	return s
}

func addStats(st *model.LedgerStats, t model.Transaction) {
	st.Count++
	st.Total += t.Amount
	st.Tips += t.Tip
}

func summarizeLines(lines []model.OrderLine, paidHour map[uint64]int, tax TaxTable, topN int) (model.MenuSummary, model.TaxSummary) {
	var menu model.MenuSummary
	ts := model.TaxSummary{
		StandardRate: tax.Standard.String(),
		ReducedRate:  tax.Reduced.String(),
	}
	items := make(map[uint64]*model.ItemSales)
	cats := make(map[string]*model.CategorySales)
	catTax := make(map[string]decimal.Decimal)
	var hourTax [model.HoursPerDay]decimal.Decimal

	for _, l := range lines {
		h, ok := paidHour[l.OrderID]
		if !ok {
			continue
		}
		rev := l.Total()

		it, ok := items[l.MenuItemID]
		if !ok {
			it = &model.ItemSales{Name: l.Name, Category: l.Category}
			items[l.MenuItemID] = it
		}
		it.Quantity += l.Quantity
		it.Revenue += rev

		c, ok := cats[l.Category]
		if !ok {
			c = &model.CategorySales{Category: l.Category}
			cats[l.Category] = c
		}
		c.Quantity += l.Quantity
		c.Revenue += rev

		menu.HourlySales[h].Quantity += l.Quantity
		menu.HourlySales[h].Revenue += rev

		lt := rev.ApplyRate(tax.RateFor(l.Category))
		catTax[l.Category] = catTax[l.Category].Add(lt)
		hourTax[h] = hourTax[h].Add(lt)
	}

	menu.TopItems = make([]model.ItemSales, 0, len(items))
	for _, it := range items {
		menu.TopItems = append(menu.TopItems, *it)
	}
	sort.Slice(menu.TopItems, func(i, j int) bool {
		a, b := menu.TopItems[i], menu.TopItems[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	if len(menu.TopItems) > topN {
		menu.TopItems = menu.TopItems[:topN]
	}

	menu.CategoryAnalysis = make([]model.CategorySales, 0, len(cats))
	for _, c := range cats {
		menu.CategoryAnalysis = append(menu.CategoryAnalysis, *c)
	}
	sort.Slice(menu.CategoryAnalysis, func(i, j int) bool {
		a, b := menu.CategoryAnalysis[i], menu.CategoryAnalysis[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Category < b.Category
	})

	// tax is rounded once per category and once per hour
	ts.ByCategory = make([]model.CategoryTax, 0, len(cats))
	for name, c := range cats {
		amount := money.FromDecimal(catTax[name])
		ts.ByCategory = append(ts.ByCategory, model.CategoryTax{
			Category: name,
			Rate:     tax.RateFor(name).String(),
			Revenue:  c.Revenue,
			Tax:      amount,
		})
		ts.Total += amount
	}
	sort.Slice(ts.ByCategory, func(i, j int) bool { return ts.ByCategory[i].Category < ts.ByCategory[j].Category })
	for h := range hourTax {
		ts.ByHour[h] = money.FromDecimal(hourTax[h])
	}
	return menu, ts
}
