package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
)

func TestShippingCostTiers(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		method enums.ShippingMethod
		want   int64
	}{
		{name: "low tier standard", amount: 400, method: enums.ShippingMethodStandard, want: 80},
		{name: "tier boundary inclusive", amount: 500, method: enums.ShippingMethodStandard, want: 80},
		{name: "mid tier standard", amount: 800, method: enums.ShippingMethodStandard, want: 120},
		{name: "third tier standard", amount: 1500, method: enums.ShippingMethodStandard, want: 150},
		{name: "third tier express", amount: 1500, method: enums.ShippingMethodExpress, want: 225},
		{name: "fourth tier standard", amount: 4500, method: enums.ShippingMethodStandard, want: 200},
		{name: "above last tier ships free", amount: 6000, method: enums.ShippingMethodStandard, want: 0},
		{name: "free tier ignores express", amount: 6000, method: enums.ShippingMethodExpress, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShippingCost(decimal.NewFromInt(tt.amount), tt.method, false)
			if !got.Equal(decimal.NewFromInt(tt.want)) {
				t.Fatalf("shipping for %d %s: expected %d, got %s", tt.amount, tt.method, tt.want, got)
			}
		})
	}
}

func TestShippingCostFreeShippingOverride(t *testing.T) {
	got := ShippingCost(decimal.NewFromInt(400), enums.ShippingMethodExpress, true)
	if !got.IsZero() {
		t.Fatalf("expected free shipping, got %s", got)
	}
}

func TestComputeNoCoupon(t *testing.T) {
	quote := Compute(decimal.NewFromInt(1500), nil, enums.ShippingMethodStandard)

	if !quote.Discount.IsZero() {
		t.Fatalf("expected no discount, got %s", quote.Discount)
	}
	if !quote.ShippingCost.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected shipping 150, got %s", quote.ShippingCost)
	}
	if !quote.Tax.Equal(decimal.NewFromInt(240)) {
		t.Fatalf("expected tax 240, got %s", quote.Tax)
	}
	if !quote.Total.Equal(decimal.NewFromInt(1890)) {
		t.Fatalf("expected total 1890, got %s", quote.Total)
	}
}

func TestComputePercentCoupon(t *testing.T) {
	coupon := &models.Coupon{
		Code:     "BIENVENIDO10",
		Type:     enums.CouponTypePercent,
		Value:    decimal.NewFromInt(10),
		IsActive: true,
	}

	quote := Compute(decimal.NewFromInt(1000), coupon, enums.ShippingMethodStandard)

	if !quote.Discount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected discount 100, got %s", quote.Discount)
	}
	// Shipping tier is chosen off the discounted amount (900).
	if !quote.ShippingCost.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected shipping 120, got %s", quote.ShippingCost)
	}
	if !quote.Tax.Equal(decimal.NewFromInt(144)) {
		t.Fatalf("expected tax 144, got %s", quote.Tax)
	}
	if !quote.Total.Equal(decimal.NewFromInt(1164)) {
		t.Fatalf("expected total 1164, got %s", quote.Total)
	}
}

func TestComputeFreeShippingCoupon(t *testing.T) {
	coupon := &models.Coupon{
		Code:     "ENVIOGRATIS",
		Type:     enums.CouponTypeFreeShipping,
		IsActive: true,
	}

	quote := Compute(decimal.NewFromInt(400), coupon, enums.ShippingMethodExpress)

	if !quote.Discount.IsZero() {
		t.Fatalf("free shipping coupon must not discount items, got %s", quote.Discount)
	}
	if !quote.ShippingCost.IsZero() {
		t.Fatalf("expected shipping 0, got %s", quote.ShippingCost)
	}
	if !quote.Total.Equal(decimal.NewFromInt(464)) {
		t.Fatalf("expected total 464, got %s", quote.Total)
	}
}

func TestComputeInactiveCouponIgnored(t *testing.T) {
	coupon := &models.Coupon{
		Code:     "VIEJO",
		Type:     enums.CouponTypePercent,
		Value:    decimal.NewFromInt(50),
		IsActive: false,
	}

	quote := Compute(decimal.NewFromInt(400), coupon, enums.ShippingMethodStandard)

	if !quote.Discount.IsZero() {
		t.Fatalf("inactive coupon must be ignored, got discount %s", quote.Discount)
	}
	if !quote.ShippingCost.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected shipping 80, got %s", quote.ShippingCost)
	}
}
