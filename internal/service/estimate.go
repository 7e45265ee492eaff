package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"itad-service/internal/model"
)

// Indicative per-unit figures by asset category: kg CO2e avoided by reuse
// or recycling, and resale value. Unknown categories fall back to the
// conservative defaults.
var (
	co2ePerUnit = map[string]decimal.Decimal{
		"laptop":  decimal.NewFromInt(316),
		"desktop": decimal.NewFromInt(380),
		"server":  decimal.NewFromInt(1200),
		"monitor": decimal.NewFromInt(250),
		"mobile":  decimal.NewFromInt(55),
		"tablet":  decimal.NewFromInt(87),
		"network": decimal.NewFromInt(140),
		"printer": decimal.NewFromInt(180),
	}
	buybackPerUnit = map[string]decimal.Decimal{
		"laptop":  decimal.RequireFromString("85.00"),
		"desktop": decimal.RequireFromString("45.00"),
		"server":  decimal.RequireFromString("220.00"),
		"monitor": decimal.RequireFromString("18.00"),
		"mobile":  decimal.RequireFromString("40.00"),
		"tablet":  decimal.RequireFromString("30.00"),
		"network": decimal.RequireFromString("25.00"),
		"printer": decimal.RequireFromString("5.00"),
	}

	defaultCO2ePerUnit    = decimal.NewFromInt(50)
	defaultBuybackPerUnit = decimal.RequireFromString("2.50")
)

// EstimateAssets totals the indicative CO2e savings and buyback value for a
// set of booking asset lines.
func EstimateAssets(assets []model.BookingAsset) (co2e, buyback decimal.Decimal) {
	co2e = decimal.Zero
	buyback = decimal.Zero
	for _, a := range assets {
		if a.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(int64(a.Quantity))
		category := strings.ToLower(strings.TrimSpace(a.Category))

		unitCO2e, ok := co2ePerUnit[category]
		if !ok {
			unitCO2e = defaultCO2ePerUnit
		}
		unitBuyback, ok := buybackPerUnit[category]
		if !ok {
			unitBuyback = defaultBuybackPerUnit
		}

		co2e = co2e.Add(unitCO2e.Mul(qty))
		buyback = buyback.Add(unitBuyback.Mul(qty))
	}
	return co2e, buyback.Round(2)
}

// CharityDonation is the slice of the buyback value donated at the given
// percentage, rounded to 2 decimal places.
func CharityDonation(buyback decimal.Decimal, charityPercent int) decimal.Decimal {
	if charityPercent <= 0 {
		return decimal.Zero.Round(2)
	}
	if charityPercent > 100 {
		charityPercent = 100
	}
	pct := decimal.NewFromInt(int64(charityPercent)).Div(decimal.NewFromInt(100))
	return buyback.Mul(pct).Round(2)
}
