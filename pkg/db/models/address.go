package models

import "time"

// Address is a shipping address. Each registered user keeps one default;
// guest checkouts create throwaway rows with a NULL user.
type Address struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       *int64    `gorm:"column:usuario_id;index"`
	Street       string    `gorm:"column:calle;not null"`
	Number       string    `gorm:"column:numero;not null"`
	Neighborhood string    `gorm:"column:colonia;not null"`
	City         string    `gorm:"column:ciudad;not null"`
	State        string    `gorm:"column:estado;not null"`
	PostalCode   string    `gorm:"column:codigo_postal;type:char(5);not null"`
	References   *string   `gorm:"column:referencias"`
	IsDefault    bool      `gorm:"column:predeterminada;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:fecha_creacion;autoCreateTime"`
}

// TableName maps the model onto the storefront schema.
func (Address) TableName() string { return "direcciones" }
