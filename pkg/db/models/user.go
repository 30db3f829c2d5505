package models

import "time"

// User represents a storefront customer account.
type User struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:nombre;not null"`
	LastName     string    `gorm:"column:apellidos;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password;not null"`
	Phone        *string   `gorm:"column:telefono"`
	IsActive     bool      `gorm:"column:activo;not null;default:true"`
	RegisteredAt time.Time `gorm:"column:fecha_registro;autoCreateTime"`
}

// TableName maps the model onto the storefront schema.
func (User) TableName() string { return "usuarios" }
