package models

import "time"

// Category organizes products into a two-level tree via ParentID.
type Category struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string     `gorm:"column:nombre;not null"`
	Description *string    `gorm:"column:descripcion"`
	ParentID    *int64     `gorm:"column:categoria_padre_id;index"`
	IsActive    bool       `gorm:"column:activo;not null;default:true"`
	Children    []Category `gorm:"foreignKey:ParentID"`
	CreatedAt   time.Time  `gorm:"column:fecha_creacion;autoCreateTime"`
}

// TableName maps the model onto the storefront schema.
func (Category) TableName() string { return "categorias" }
