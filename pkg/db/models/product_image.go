package models

import "time"

// ProductImage is a stored upload for a product. Exactly one image per
// product should have IsPrimary set.
type ProductImage struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID int64     `gorm:"column:producto_id;not null;index"`
	FileName  string    `gorm:"column:nombre_archivo;not null"`
	IsPrimary bool      `gorm:"column:principal;not null;default:false"`
	CreatedAt time.Time `gorm:"column:fecha_creacion;autoCreateTime"`
}

// TableName maps the model onto the storefront schema.
func (ProductImage) TableName() string { return "imagenes_producto" }
