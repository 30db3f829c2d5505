package models

import (
	"time"

	"github.com/talabarteria/rodriguez-backend/pkg/enums"
)

// Administrator is a back-office account. Role is admin or super_admin; the
// last active super_admin can never be removed or demoted.
type Administrator struct {
	ID           int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string          `gorm:"column:nombre;not null"`
	Email        string          `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password;not null"`
	Role         enums.ActorRole `gorm:"column:rol;not null;default:'admin'"`
	IsActive     bool            `gorm:"column:activo;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:fecha_creacion;autoCreateTime"`
}

// TableName maps the model onto the storefront schema.
func (Administrator) TableName() string { return "administradores" }
