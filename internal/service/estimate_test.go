package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"itad-service/internal/model"
)

func TestEstimateAssetsKnownCategories(t *testing.T) {
	co2e, buyback := EstimateAssets([]model.BookingAsset{
		{Category: "laptop", Quantity: 10},
		{Category: "server", Quantity: 2},
	})

	// 10*316 + 2*1200
	if want := decimal.NewFromInt(5560); !co2e.Equal(want) {
		t.Fatalf("co2e = %s, want %s", co2e, want)
	}
	// 10*85.00 + 2*220.00
	if want := decimal.RequireFromString("1290.00"); !buyback.Equal(want) {
		t.Fatalf("buyback = %s, want %s", buyback, want)
	}
}

func TestEstimateAssetsUnknownCategoryUsesDefaults(t *testing.T) {
	co2e, buyback := EstimateAssets([]model.BookingAsset{
		{Category: "fax machine", Quantity: 4},
	})

	if want := decimal.NewFromInt(200); !co2e.Equal(want) {
		t.Fatalf("co2e = %s, want %s", co2e, want)
	}
	if want := decimal.RequireFromString("10.00"); !buyback.Equal(want) {
		t.Fatalf("buyback = %s, want %s", buyback, want)
	}
}

func TestEstimateAssetsNormalisesCategoryCase(t *testing.T) {
	a, _ := EstimateAssets([]model.BookingAsset{{Category: " Laptop ", Quantity: 1}})
	b, _ := EstimateAssets([]model.BookingAsset{{Category: "laptop", Quantity: 1}})
	if !a.Equal(b) {
		t.Fatalf("category lookup must be case and whitespace insensitive: %s != %s", a, b)
	}
}

func TestEstimateAssetsSkipsNonPositiveQuantities(t *testing.T) {
	co2e, buyback := EstimateAssets([]model.BookingAsset{
		{Category: "laptop", Quantity: 0},
		{Category: "monitor", Quantity: -3},
	})
	if !co2e.IsZero() || !buyback.IsZero() {
		t.Fatalf("expected zero totals, got %s / %s", co2e, buyback)
	}
}

func TestCharityDonation(t *testing.T) {
	buyback := decimal.RequireFromString("1290.00")

	if got := CharityDonation(buyback, 10); !got.Equal(decimal.RequireFromString("129.00")) {
		t.Fatalf("10%% of 1290.00 = %s", got)
	}
	if got := CharityDonation(buyback, 0); !got.IsZero() {
		t.Fatalf("0%% should be zero, got %s", got)
	}
	if got := CharityDonation(buyback, 150); !got.Equal(buyback) {
		t.Fatalf("percent above 100 clamps to the full value, got %s", got)
	}
	// rounding to 2dp
	if got := CharityDonation(decimal.RequireFromString("10.01"), 33); !got.Equal(decimal.RequireFromString("3.30")) {
		t.Fatalf("expected 3.30, got %s", got)
	}
}
