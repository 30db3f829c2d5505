package checkout

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
)

// AddressRequest upserts the customer's default shipping address.
type AddressRequest struct {
	Street       string  `json:"calle" validate:"required,max=150"`
	Number       string  `json:"numero" validate:"required,max=20"`
	Neighborhood string  `json:"colonia" validate:"required,max=100"`
	City         string  `json:"ciudad" validate:"required,max=100"`
	State        string  `json:"estado" validate:"required,max=100"`
	PostalCode   string  `json:"codigo_postal" validate:"required,len=5,numeric"`
	References   *string `json:"referencias" validate:"omitempty,max=255"`
}

// CreateOrderRequest places an order from the current cart. Guests must
// supply the inline address; registered users may reference a stored one
// instead.
type CreateOrderRequest struct {
	ShippingMethod string          `json:"metodo_envio" validate:"required,oneof=estandar express"`
	AddressID      *int64          `json:"direccion_id" validate:"omitempty,gt=0"`
	Address        *AddressRequest `json:"direccion" validate:"omitempty"`
}

// StatusRequest moves an order along its lifecycle.
type StatusRequest struct {
	Status string `json:"estado" validate:"required,oneof=pendiente pagado enviado entregado cancelado"`
}

// ItemView is one frozen order line.
type ItemView struct {
	ProductID   int64           `json:"producto_id"`
	ProductName string          `json:"nombre_producto"`
	Quantity    int             `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precio_unitario"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderView is the wire shape of a pedido. UserID is null for guest orders.
type OrderView struct {
	ID              int64           `json:"id"`
	UserID          *int64          `json:"usuario_id"`
	Status          string          `json:"estado"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"descuento"`
	ShippingCost    decimal.Decimal `json:"costo_envio"`
	Tax             decimal.Decimal `json:"impuestos"`
	Total           decimal.Decimal `json:"total"`
	ShippingMethod  string          `json:"metodo_envio"`
	CouponCode      *string         `json:"codigo_cupon"`
	ShippingAddress string          `json:"direccion_entrega"`
	Items           []ItemView      `json:"items"`
	CreatedAt       time.Time       `json:"fecha_creacion"`
}

func toOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          order.Status.String(),
		Subtotal:        order.Subtotal,
		Discount:        order.Discount,
		ShippingCost:    order.ShippingCost,
		Tax:             order.Tax,
		Total:           order.Total,
		ShippingMethod:  order.ShippingMethod.String(),
		CouponCode:      order.CouponCode,
		ShippingAddress: order.ShippingAddress,
		Items:           make([]ItemView, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, ItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	return view
}

// AddressView is the wire shape of a shipping address.
type AddressView struct {
	ID           int64   `json:"id"`
	Street       string  `json:"calle"`
	Number       string  `json:"numero"`
	Neighborhood string  `json:"colonia"`
	City         string  `json:"ciudad"`
	State        string  `json:"estado"`
	PostalCode   string  `json:"codigo_postal"`
	References   *string `json:"referencias"`
}

func toAddressView(address *models.Address) AddressView {
	return AddressView{
		ID:           address.ID,
		Street:       address.Street,
		Number:       address.Number,
		Neighborhood: address.Neighborhood,
		City:         address.City,
		State:        address.State,
		PostalCode:   address.PostalCode,
		References:   address.References,
	}
}
