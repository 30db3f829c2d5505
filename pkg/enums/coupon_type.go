package enums

import "fmt"

// CouponType describes how a coupon alters the cart quote.
type CouponType string

const (
	// CouponTypePercent discounts the subtotal by the coupon value percent.
	CouponTypePercent CouponType = "porcentaje"
	// CouponTypeFreeShipping zeroes the shipping cost.
	CouponTypeFreeShipping CouponType = "envio_gratis"
)

var validCouponTypes = []CouponType{
	CouponTypePercent,
	CouponTypeFreeShipping,
}

// String implements fmt.Stringer.
func (c CouponType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponType.
func (c CouponType) IsValid() bool {
	for _, candidate := range validCouponTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponType converts raw input into a CouponType.
func ParseCouponType(value string) (CouponType, error) {
	for _, candidate := range validCouponTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon type %q", value)
}
