package model

import "github.com/iliyamo/restaurant-pos/internal/money"

// HoursPerDay is the number of hourly buckets in a daily summary.
const HoursPerDay = 24

// DailySummary is the aggregate report for one calendar date.  It is
// consumed verbatim by dashboards and accounting reports; formatting is
// left to them.
type DailySummary struct {
	Date         string             `json:"date"`
	Timezone     string             `json:"timezone"`
	Revenue      RevenueSummary     `json:"revenue"`
	Tips         TipSummary         `json:"tips"`
	Transactions TransactionSummary `json:"transactions"`
	Menu         MenuSummary        `json:"menu"`
	Tax          TaxSummary         `json:"tax"`
}

type RevenueSummary struct {
	Total     money.Cents                   `json:"total_cents"`
	ByHour    [HoursPerDay]money.Cents      `json:"by_hour_cents"`
	ByPayment map[PaymentMethod]money.Cents `json:"by_payment_cents"`
}

type TipSummary struct {
	Total     money.Cents                   `json:"total_cents"`
	ByHour    [HoursPerDay]money.Cents      `json:"by_hour_cents"`
	ByPayment map[PaymentMethod]money.Cents `json:"by_payment_cents"`
}

// TransactionSummary counts ledger rows, refunds included.
type TransactionSummary struct {
	Count              int              `json:"count"`
	AverageOrder       money.Cents      `json:"average_order_cents"`
	HourlyDistribution [HoursPerDay]int `json:"hourly_distribution"`
	TableAnalysis      []TableStats     `json:"table_analysis"`
	EmployeeAnalysis   []EmployeeStats  `json:"employee_analysis"`
}

// LedgerStats aggregates a group of transactions.
type LedgerStats struct {
	Count   int         `json:"count"`
	Total   money.Cents `json:"total_cents"`
	Average money.Cents `json:"average_cents"`
	Tips    money.Cents `json:"tips_cents"`
}

type TableStats struct {
	TableNumber int `json:"table_number"`
	LedgerStats
}

type EmployeeStats struct {
	EmployeeID   uint64 `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	LedgerStats
}

type MenuSummary struct {
	TopItems         []ItemSales              `json:"top_items"`
	CategoryAnalysis []CategorySales          `json:"category_analysis"`
	HourlySales      [HoursPerDay]HourlySales `json:"hourly_sales"`
}

type ItemSales struct {
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Quantity int         `json:"quantity"`
	Revenue  money.Cents `json:"revenue_cents"`
}

type CategorySales struct {
	Category string      `json:"category"`
	Quantity int         `json:"quantity"`
	Revenue  money.Cents `json:"revenue_cents"`
}

type HourlySales struct {
	Quantity int         `json:"quantity"`
	Revenue  money.Cents `json:"revenue_cents"`
}

// TaxSummary applies the category rate to each line's revenue.  Rates
// are decimal strings such as "0.21".
type TaxSummary struct {
	Total        money.Cents              `json:"total_cents"`
	ByCategory   []CategoryTax            `json:"by_category"`
	ByHour       [HoursPerDay]money.Cents `json:"by_hour_cents"`
	StandardRate string                   `json:"standard_rate"`
	ReducedRate  string                   `json:"reduced_rate"`
}

type CategoryTax struct {
	Category string      `json:"category"`
	Rate     string      `json:"rate"`
	Revenue  money.Cents `json:"revenue_cents"`
	Tax      money.Cents `json:"tax_cents"`
}
