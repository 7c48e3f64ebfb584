package integration

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceEpsilon is the tolerated drift between price and cost × multiplier
var PriceEpsilon = decimal.RequireFromString("0.01")

// Pricing holds the local price inputs of a product. A zero value means the
// field is missing.
type Pricing struct {
	// Price is the net selling price
	Price decimal.Decimal
	// Cost is the purchase cost
	Cost decimal.Decimal
	// Multiplier is the markup applied on cost
	Multiplier decimal.Decimal
}

// PushPrice is the price pair sent to the remote platform. The remote
// multiplier is always one because Price already includes the markup.
type PushPrice struct {
	// Price is the fully loaded net price
	Price decimal.Decimal
	// Multiplier is always 1
	Multiplier decimal.Decimal
	// Derived is true when the price was computed from cost × multiplier
	Derived bool
	// Corrected is true when a drifting price was replaced
	Corrected bool
}

func (p Pricing) costBased() (decimal.Decimal, bool) {
	if !p.Cost.IsPositive() || !p.Multiplier.IsPositive() {
		return decimal.Zero, false
	}
	return p.Cost.Mul(p.Multiplier).Round(4), true
}

// Normalize applies the pricing rule: a missing price is derived from
// cost × multiplier, and a price drifting from that product by more than
// PriceEpsilon is recomputed.
func (p Pricing) Normalize() (PushPrice, error) {
	expected, hasCost := p.costBased()
	out := PushPrice{Price: p.Price, Multiplier: decimal.NewFromInt(1)}

	if !p.Price.IsPositive() {
		if !hasCost {
			return PushPrice{}, fmt.Errorf("%w: price is %s and cost × multiplier is unavailable", ErrPricing, p.Price.String())
		}
		out.Price = expected
		out.Derived = true
		return out, nil
	}

	if hasCost && p.Price.Sub(expected).Abs().GreaterThan(PriceEpsilon) {
		out.Price = expected
		out.Corrected = true
	}
	return out, nil
}
