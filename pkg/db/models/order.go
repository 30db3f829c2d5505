package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
)

// Order is a placed pedido with its totals frozen at checkout time. Guest
// orders carry a NULL user.
type Order struct {
	ID              int64                `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          *int64               `gorm:"column:usuario_id;index"`
	Status          enums.OrderStatus    `gorm:"column:estado;not null;default:'pendiente'"`
	Subtotal        decimal.Decimal      `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Discount        decimal.Decimal      `gorm:"column:descuento;type:numeric(10,2);not null;default:0"`
	ShippingCost    decimal.Decimal      `gorm:"column:costo_envio;type:numeric(10,2);not null"`
	Tax             decimal.Decimal      `gorm:"column:impuestos;type:numeric(10,2);not null"`
	Total           decimal.Decimal      `gorm:"column:total;type:numeric(10,2);not null"`
	ShippingMethod  enums.ShippingMethod `gorm:"column:metodo_envio;not null;default:'estandar'"`
	CouponCode      *string              `gorm:"column:codigo_cupon"`
	ShippingAddress string               `gorm:"column:direccion_entrega;not null"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:fecha_creacion;autoCreateTime"`
}

// TableName maps the model onto the storefront schema.
func (Order) TableName() string { return "pedidos" }
