package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
)

// taxRate is the Mexican IVA applied to the discounted subtotal.
var taxRate = decimal.NewFromFloat(0.16)

var expressMultiplier = decimal.NewFromFloat(1.5)

var shippingTiers = []struct {
	upTo decimal.Decimal
	cost decimal.Decimal
}{
	{decimal.NewFromInt(500), decimal.NewFromInt(80)},
	{decimal.NewFromInt(1000), decimal.NewFromInt(120)},
	{decimal.NewFromInt(2000), decimal.NewFromInt(150)},
	{decimal.NewFromInt(5000), decimal.NewFromInt(200)},
}

// Quote is the totals block shown with the cart and frozen onto orders.
type Quote struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"descuento"`
	ShippingCost decimal.Decimal `json:"costo_envio"`
	Tax          decimal.Decimal `json:"impuestos"`
	Total        decimal.Decimal `json:"total"`
}

// ShippingCost returns the tiered shipping price for a discounted subtotal.
// Orders above the last tier ship free.
func ShippingCost(amount decimal.Decimal, method enums.ShippingMethod, freeShipping bool) decimal.Decimal {
	if freeShipping {
		return decimal.Zero
	}
	cost := decimal.Zero
	for _, tier := range shippingTiers {
		if amount.LessThanOrEqual(tier.upTo) {
			cost = tier.cost
			break
		}
	}
	if method == enums.ShippingMethodExpress {
		cost = cost.Mul(expressMultiplier)
	}
	return cost.Round(2)
}

// Compute builds the full quote for a cart subtotal. A nil coupon means no
// discount and regular shipping.
func Compute(subtotal decimal.Decimal, coupon *models.Coupon, method enums.ShippingMethod) Quote {
	discount := decimal.Zero
	freeShipping := false
	if coupon != nil && coupon.IsActive {
		switch coupon.Type {
		case enums.CouponTypePercent:
			discount = subtotal.Mul(coupon.Value).Div(decimal.NewFromInt(100)).Round(2)
		case enums.CouponTypeFreeShipping:
			freeShipping = true
		}
	}

	discounted := subtotal.Sub(discount)
	shipping := ShippingCost(discounted, method, freeShipping)
	tax := discounted.Mul(taxRate).Round(2)

	return Quote{
		Subtotal:     subtotal.Round(2),
		Discount:     discount,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        discounted.Add(shipping).Add(tax).Round(2),
	}
}
