package models

import "time"

// PasswordResetToken is a single-use reset credential. Only one live token
// exists per user; issuing a new one removes earlier rows.
type PasswordResetToken struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:usuario_id;not null;index"`
	Token     string    `gorm:"column:token;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"column:fecha_expiracion;not null"`
	Used      bool      `gorm:"column:usado;not null;default:false"`
	CreatedAt time.Time `gorm:"column:fecha_creacion;autoCreateTime"`
}

// TableName maps the model onto the storefront schema.
func (PasswordResetToken) TableName() string { return "tokens_restablecimiento" }
