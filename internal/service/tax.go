package service

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/config"
)

// TaxTable maps a menu category to its VAT rate.
type TaxTable struct {
	Standard decimal.Decimal
	Reduced  decimal.Decimal
	reduced  map[string]bool
}

// NewTaxTable builds a table from explicit rates.
func NewTaxTable(standard, reduced decimal.Decimal, reducedCategories ...string) TaxTable {
	t := TaxTable{Standard: standard, Reduced: reduced, reduced: make(map[string]bool, len(reducedCategories))}
	for _, c := range reducedCategories {
		t.reduced[c] = true
	}
	return t
}

// TaxTableFromConfig builds the table from TAX_* settings.
func TaxTableFromConfig(c config.TaxConfig) TaxTable {
	return NewTaxTable(c.Standard, c.Reduced, c.ReducedCategories...)
}

// DefaultTaxTable is 9% for Drinks and Food and 21% for everything else.
func DefaultTaxTable() TaxTable {
	return NewTaxTable(decimal.RequireFromString("0.21"), decimal.RequireFromString("0.09"), "Drinks", "Food")
}

// RateFor returns the rate applied to a category.
func (t TaxTable) RateFor(category string) decimal.Decimal {
	if t.reduced[category] {
		return t.Reduced
	}
	return t.Standard
}
