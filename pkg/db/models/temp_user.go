package models

import (
	"time"

	"github.com/google/uuid"
)

// TempUser holds a pending registration awaiting email verification. The
// password arrives already hashed; the row is promoted into usuarios once the
// 6-digit code is confirmed.
type TempUser struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name             string    `gorm:"column:nombre;not null"`
	LastName         string    `gorm:"column:apellidos;not null"`
	Email            string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash     string    `gorm:"column:password;not null"`
	Phone            *string   `gorm:"column:telefono"`
	VerificationCode string    `gorm:"column:codigo_verificacion;type:char(6);not null"`
	ExpiresAt        time.Time `gorm:"column:fecha_expiracion;not null"`
	CreatedAt        time.Time `gorm:"column:fecha_creacion;autoCreateTime"`
}

// TableName maps the model onto the storefront schema.
func (TempUser) TableName() string { return "usuarios_temporales" }
