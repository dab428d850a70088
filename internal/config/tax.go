package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/money"
)

// TaxConfig is the VAT table used by the daily report: categories listed
// in ReducedCategories are taxed at Reduced, everything else at Standard.
type TaxConfig struct {
	Standard          decimal.Decimal
	Reduced           decimal.Decimal
	ReducedCategories []string
}

// LoadTaxConfig reads TAX_STANDARD_RATE, TAX_REDUCED_RATE and
// TAX_REDUCED_CATEGORIES.  Rates accept "0.21" or "21%".
func LoadTaxConfig() (TaxConfig, error) {
	std, err := money.ParseRate(envStr("TAX_STANDARD_RATE", "0.21"))
	if err != nil {
		return TaxConfig{}, fmt.Errorf("TAX_STANDARD_RATE: %w", err)
	}
	red, err := money.ParseRate(envStr("TAX_REDUCED_RATE", "0.09"))
	if err != nil {
		return TaxConfig{}, fmt.Errorf("TAX_REDUCED_RATE: %w", err)
	}
	var cats []string
	for _, c := range strings.Split(envStr("TAX_REDUCED_CATEGORIES", "Drinks,Food"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
	}
	return TaxConfig{Standard: std, Reduced: red, ReducedCategories: cats}, nil
}
