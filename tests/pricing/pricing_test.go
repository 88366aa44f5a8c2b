package pricing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tilemart/quotation-api/internal/pricing"
)

func TestComputeLine_SellingSide(t *testing.T) {
	// mrp=100, discount 10% -> rate 90; area 10 -> box 900; qty 2 -> 1800
	sku := pricing.SKU{
		MRPPerArea:             100,
		ActualAreaPerContainer: 10,
	}

	c := pricing.ComputeLine(sku, 2, 10, pricing.BasisActual, pricing.Settings{})

	assert.InDelta(t, 90.0, c.RatePerArea, 1e-9)
	assert.InDelta(t, 900.0, c.PricePerContainer, 1e-9)
	assert.InDelta(t, 1800.0, c.Amount, 1e-9)
}

func TestComputeLine_CostChain(t *testing.T) {
	sku := pricing.SKU{
		MRPPerArea:             100,
		ExFactoryPrice:         50,
		InsurancePercent:       1,
		GSTPercent:             18,
		ActualAreaPerContainer: 10,
	}
	cfg := pricing.Settings{CompanyDiscountPercent: 5, FreightPerArea: 2}

	c := pricing.ComputeLine(sku, 2, 10, pricing.BasisActual, cfg)

	exFactory := 50.0 * 0.95
	insurance := exFactory * 0.01
	gst := (exFactory + insurance) * 0.18
	costPerArea := exFactory + insurance + gst + 2

	assert.InDelta(t, costPerArea, c.CostPerArea, 1e-9)
	assert.InDelta(t, costPerArea*10, c.CostPerContainer, 1e-9)
	assert.InDelta(t, 2*costPerArea*10, c.TotalCost, 1e-9)
	assert.InDelta(t, c.Amount-c.TotalCost, c.MarginAmount, 1e-9)
	assert.InDelta(t, (c.MarginAmount/c.Amount)*100, c.MarginPercent, 1e-9)
}

func TestComputeLine_BasisSelectsArea(t *testing.T) {
	sku := pricing.SKU{
		MRPPerArea:             100,
		ActualAreaPerContainer: 9.7,
		BilledAreaPerContainer: 10,
	}

	actual := pricing.ComputeLine(sku, 1, 0, pricing.BasisActual, pricing.Settings{})
	billed := pricing.ComputeLine(sku, 1, 0, pricing.BasisBilled, pricing.Settings{})

	assert.InDelta(t, 970.0, actual.PricePerContainer, 1e-9)
	assert.InDelta(t, 1000.0, billed.PricePerContainer, 1e-9)
}

func TestComputeLine_ZeroGuards(t *testing.T) {
	tests := []struct {
		name     string
		sku      pricing.SKU
		quantity int
	}{
		{"all zero attributes", pricing.SKU{}, 3},
		{"zero area per container", pricing.SKU{MRPPerArea: 100}, 2},
		{"negative quantity", pricing.SKU{MRPPerArea: 100, ActualAreaPerContainer: 10}, -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := pricing.ComputeLine(tt.sku, tt.quantity, 10, pricing.BasisActual, pricing.Settings{})

			for _, v := range []float64{c.RatePerArea, c.PricePerContainer, c.Amount, c.CostPerArea, c.CostPerContainer, c.TotalCost, c.MarginAmount, c.MarginPercent} {
				assert.False(t, math.IsNaN(v))
				assert.False(t, math.IsInf(v, 0))
			}
			if tt.quantity < 0 {
				assert.Zero(t, c.Amount)
			}
		})
	}
}

func TestMarginPercent(t *testing.T) {
	tests := []struct {
		name   string
		margin float64
		amount float64
		want   float64
	}{
		{"normal", 25, 100, 25},
		{"zero amount", 10, 0, 0},
		{"negative amount", 10, -5, 0},
		{"negative margin", -20, 100, -20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, pricing.MarginPercent(tt.margin, tt.amount), 1e-9)
		})
	}
}

func TestQuantityFromArea(t *testing.T) {
	tests := []struct {
		name string
		area float64
		per  float64
		want int
	}{
		{"exact fit", 100, 10, 10},
		{"just under threshold rounds down", 100.999, 10, 10},
		{"at threshold rounds up", 101, 10, 11},
		{"threshold quotient with float error rounds up", 10.1, 1, 11},
		{"large remainder rounds up", 105, 10, 11},
		{"below one container", 3, 10, 1},
		{"tiny remainder below one container", 0.5, 10, 0},
		{"zero area", 0, 10, 0},
		{"zero area per container", 50, 0, 0},
		{"negative area", -5, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pricing.QuantityFromArea(tt.area, tt.per))
		})
	}
}

func TestNum(t *testing.T) {
	v := 4.2
	nan := math.NaN()
	inf := math.Inf(1)

	assert.Equal(t, 4.2, pricing.Num(&v))
	assert.Equal(t, 0.0, pricing.Num(nil))
	assert.Equal(t, 0.0, pricing.Num(&nan))
	assert.Equal(t, 0.0, pricing.Num(&inf))
}
