package models

import "github.com/shopspring/decimal"

// OrderItem snapshots one product line inside a pedido. ProductName and
// UnitPrice are denormalized so later catalog edits do not rewrite history.
type OrderItem struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"column:pedido_id;not null;index"`
	ProductID   int64           `gorm:"column:producto_id;not null;index"`
	ProductName string          `gorm:"column:nombre_producto;not null"`
	Quantity    int             `gorm:"column:cantidad;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:precio_unitario;type:numeric(10,2);not null"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
}

// TableName maps the model onto the storefront schema.
func (OrderItem) TableName() string { return "items_pedido" }
