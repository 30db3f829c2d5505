package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
)

// Coupon is a promotional code. Codes are stored uppercase and matched
// case-insensitively.
type Coupon struct {
	ID        int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Code      string           `gorm:"column:codigo;not null;uniqueIndex"`
	Type      enums.CouponType `gorm:"column:tipo;not null"`
	Value     decimal.Decimal  `gorm:"column:valor;type:numeric(10,2);not null;default:0"`
	IsActive  bool             `gorm:"column:activo;not null;default:true"`
	CreatedAt time.Time        `gorm:"column:fecha_creacion;autoCreateTime"`
}

// TableName maps the model onto the storefront schema.
func (Coupon) TableName() string { return "cupones" }
