package models

import "time"

// StoreInfo is the singleton shop profile shown across the storefront. The
// row is lazily inserted with defaults the first time configuration is read.
type StoreInfo struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:nombre;not null"`
	Address   string    `gorm:"column:direccion;not null"`
	Phone     string    `gorm:"column:telefono;not null"`
	Email     string    `gorm:"column:email;not null"`
	Hours     string    `gorm:"column:horario;not null"`
	Facebook  string    `gorm:"column:facebook"`
	Instagram string    `gorm:"column:instagram"`
	WhatsApp  string    `gorm:"column:whatsapp"`
	UpdatedAt time.Time `gorm:"column:fecha_actualizacion;autoUpdateTime"`
}

// TableName maps the model onto the storefront schema.
func (StoreInfo) TableName() string { return "informacion_tienda" }
