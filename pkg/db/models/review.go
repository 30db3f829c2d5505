package models

import "time"

// Review is customer feedback shown on the product detail page once approved.
type Review struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID    int64     `gorm:"column:producto_id;not null;index"`
	CustomerName string    `gorm:"column:nombre_cliente;not null"`
	Rating       int       `gorm:"column:calificacion;not null"`
	Comment      string    `gorm:"column:comentario;not null"`
	Approved     bool      `gorm:"column:aprobada;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:fecha_creacion;autoCreateTime"`
}

// TableName maps the model onto the storefront schema.
func (Review) TableName() string { return "resenas" }
