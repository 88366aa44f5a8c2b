// Package pricing computes selling price, fully loaded cost, and margin
// for a single quotation line. All functions are pure: no I/O, no stored
// state, and settings are passed explicitly per call.
package pricing

import "math"

// AreaBasis selects which area-per-container figure is used when
// converting between area and container counts.
type AreaBasis string

const (
	BasisActual AreaBasis = "actual"
	BasisBilled AreaBasis = "billed"
)

// IsValid checks if the AreaBasis is a valid enum value
func (b AreaBasis) IsValid() bool {
	return b == BasisActual || b == BasisBilled
}

// Settings holds the company-wide cost parameters. They are threaded
// into every computation rather than read from shared state so the
// engine stays testable.
type Settings struct {
	// CompanyDiscountPercent is the discount the company receives off
	// the ex-factory price, 0-100.
	CompanyDiscountPercent float64
	// FreightPerArea is the freight cost added per area unit.
	FreightPerArea float64
}

// SKU carries the numeric attributes of a catalog entry snapshot needed
// for pricing. Absent optional fields must already be normalized to 0
// (see Num).
type SKU struct {
	MRPPerArea             float64
	ExFactoryPrice         float64
	InsurancePercent       float64
	GSTPercent             float64
	ActualAreaPerContainer float64
	BilledAreaPerContainer float64
	Weight                 float64
}

// AreaPerContainer returns the area one container covers under the
// given basis.
func (s SKU) AreaPerContainer(basis AreaBasis) float64 {
	if basis == BasisBilled {
		return s.BilledAreaPerContainer
	}
	return s.ActualAreaPerContainer
}

// Computation is the full derived breakdown for one line.
type Computation struct {
	RatePerArea       float64
	PricePerContainer float64
	Amount            float64
	CostPerArea       float64
	CostPerContainer  float64
	TotalCost         float64
	MarginAmount      float64
	MarginPercent     float64
}

// ComputeLine derives the selling side, the chained cost side, and the
// margin for one line item. The cost chain order matters: company
// discount first, then insurance on the discounted price, then GST on
// price plus insurance, then freight.
//
// The engine never returns NaN or Inf: zero guards cover
// area-per-container <= 0 and zero line amounts.
func ComputeLine(sku SKU, quantity int, discountPercent float64, basis AreaBasis, cfg Settings) Computation {
	if quantity < 0 {
		quantity = 0
	}
	areaPerContainer := sku.AreaPerContainer(basis)
	if areaPerContainer < 0 {
		areaPerContainer = 0
	}

	var c Computation

	// Selling side: customer discount off MRP per area.
	c.RatePerArea = sku.MRPPerArea * (1 - discountPercent/100)
	c.PricePerContainer = c.RatePerArea * areaPerContainer
	c.Amount = float64(quantity) * c.PricePerContainer

	// Cost side: chained percentage adjustments.
	exFactory := sku.ExFactoryPrice * (1 - cfg.CompanyDiscountPercent/100)
	insurance := exFactory * (sku.InsurancePercent / 100)
	gst := (exFactory + insurance) * (sku.GSTPercent / 100)
	c.CostPerArea = exFactory + insurance + gst + cfg.FreightPerArea
	c.CostPerContainer = c.CostPerArea * areaPerContainer
	c.TotalCost = float64(quantity) * c.CostPerContainer

	c.MarginAmount = c.Amount - c.TotalCost
	c.MarginPercent = MarginPercent(c.MarginAmount, c.Amount)

	return c
}

// MarginPercent returns margin as a percentage of amount, 0 when the
// amount is not positive.
func MarginPercent(marginAmount, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return (marginAmount / amount) * 100
}

// quantityEpsilon absorbs float representation error in the remainder
// comparison so quotients like 101/10 land on the round-up side of the
// 0.1 threshold instead of a hair under it.
const quantityEpsilon = 1e-9

// QuantityFromArea converts a desired coverage area into a whole
// container count. Remainders under 10% of one container's area round
// down (negligible waste), everything else rounds up so enough material
// is ordered. The 0.1 threshold is a business rule, not a float
// artifact.
func QuantityFromArea(areaNeeded, areaPerContainer float64) int {
	if areaPerContainer <= 0 || areaNeeded <= 0 {
		return 0
	}
	x := areaNeeded / areaPerContainer
	whole := math.Floor(x)
	if x-whole < 0.1-quantityEpsilon {
		return int(whole)
	}
	return int(whole) + 1
}

// Num maps an absent optional numeric field to 0. Request payloads use
// pointers for optional numbers; everything entering the engine goes
// through this single normalization step.
func Num(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0
	}
	return *p
}
