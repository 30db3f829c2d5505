package cart

import (
	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/internal/pricing"
)

// AddRequest adds quantity of a product on top of what the cart holds.
type AddRequest struct {
	ProductID int64 `json:"producto_id" validate:"required,gt=0"`
	Quantity  int   `json:"cantidad" validate:"required,gt=0"`
}

// UpdateRequest sets an absolute quantity; zero removes the line.
type UpdateRequest struct {
	ProductID int64 `json:"producto_id" validate:"required,gt=0"`
	Quantity  int   `json:"cantidad" validate:"gte=0"`
}

// RemoveRequest drops one product line.
type RemoveRequest struct {
	ProductID int64 `json:"producto_id" validate:"required,gt=0"`
}

// SyncRequest merges a client-side cart into the server cart.
type SyncRequest struct {
	Items []Line `json:"items" validate:"required,dive"`
}

// CouponRequest applies a promotional code to the cart.
type CouponRequest struct {
	Code string `json:"codigo" validate:"required,max=50"`
}

// ItemView is one hydrated cart line.
type ItemView struct {
	ProductID int64           `json:"producto_id"`
	Name      string          `json:"nombre"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Quantity  int             `json:"cantidad"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Stock     int             `json:"stock"`
	Image     *string         `json:"imagen"`
}

// View is the hydrated cart plus its totals quote.
type View struct {
	Items      []ItemView    `json:"items"`
	CouponCode *string       `json:"cupon"`
	Totals     pricing.Quote `json:"totales"`
}
