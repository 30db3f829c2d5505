package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a leather-goods listing. DiscountPercent is derived from Price
// and DiscountPrice on every write and never trusted from input. Sales counts
// accumulate as orders decrement stock.
type Product struct {
	ID                  int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Name                string           `gorm:"column:nombre;not null"`
	Description         string           `gorm:"column:descripcion;not null"`
	DetailedDescription *string          `gorm:"column:descripcion_detallada"`
	Price               decimal.Decimal  `gorm:"column:precio;type:numeric(10,2);not null"`
	DiscountPrice       *decimal.Decimal `gorm:"column:precio_descuento;type:numeric(10,2)"`
	DiscountPercent     *int             `gorm:"column:porcentaje_descuento"`
	Stock               int              `gorm:"column:stock;not null;default:0"`
	CategoryID          int64            `gorm:"column:categoria_id;not null;index"`
	SKU                 *string          `gorm:"column:sku"`
	Weight              *decimal.Decimal `gorm:"column:peso;type:numeric(10,2)"`
	Dimensions          *string          `gorm:"column:dimensiones"`
	Material            *string          `gorm:"column:material"`
	Tags                *string          `gorm:"column:etiquetas"`
	IsFeatured          bool             `gorm:"column:destacado;not null;default:false"`
	IsNew               bool             `gorm:"column:nuevo;not null;default:false"`
	IsActive            bool             `gorm:"column:activo;not null;default:true"`
	Views               int64            `gorm:"column:vistas;not null;default:0"`
	Sales               int64            `gorm:"column:ventas;not null;default:0"`
	Images              []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time        `gorm:"column:fecha_creacion;autoCreateTime"`
}

// TableName maps the model onto the storefront schema.
func (Product) TableName() string { return "productos" }

// EffectivePrice returns the discounted price when one is set, else the list
// price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() && p.DiscountPrice.LessThan(p.Price) {
		return *p.DiscountPrice
	}
	return p.Price
}
