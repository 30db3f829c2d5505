package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"gorm.io/gorm"
)

// TempUserRepository persists pending registrations.
type TempUserRepository struct {
	db *gorm.DB
}

// NewTempUserRepository constructs the repo bound to the provided GORM DB.
func NewTempUserRepository(db *gorm.DB) *TempUserRepository {
	return &TempUserRepository{db: db}
}

// WithTx returns a copy bound to the provided transaction.
func (r *TempUserRepository) WithTx(tx *gorm.DB) *TempUserRepository {
	if tx == nil {
		return r
	}
	return &TempUserRepository{db: tx}
}

// Upsert replaces any pending registration for the same email and inserts the
// new one, so re-submitting the form restarts the 24h window.
func (r *TempUserRepository) Upsert(ctx context.Context, temp *models.TempUser) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("LOWER(email) = ?", strings.ToLower(temp.Email)).
			Delete(&models.TempUser{}).Error; err != nil {
			return err
		}
		return tx.Create(temp).Error
	})
}

// FindByID loads a pending registration. Returns nil when no row matches.
func (r *TempUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.TempUser, error) {
	var temp models.TempUser
	if err := r.db.WithContext(ctx).First(&temp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &temp, nil
}

// UpdateCode stores a fresh verification code and pushes the expiry forward.
func (r *TempUserRepository) UpdateCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.TempUser{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"codigo_verificacion": code,
			"fecha_expiracion":    expiresAt,
		}).Error
}

// Delete removes a pending registration.
func (r *TempUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TempUser{}, "id = ?", id).Error
}

// DeleteExpired purges registrations past their expiry. Returns rows removed.
func (r *TempUserRepository) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	result := conn.WithContext(ctx).
		Where("fecha_expiracion < ?", now).
		Delete(&models.TempUser{})
	return result.RowsAffected, result.Error
}

// ResetTokenRepository persists password reset tokens.
type ResetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository constructs the repo bound to the provided GORM DB.
func NewResetTokenRepository(db *gorm.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// WithTx returns a copy bound to the provided transaction.
func (r *ResetTokenRepository) WithTx(tx *gorm.DB) *ResetTokenRepository {
	if tx == nil {
		return r
	}
	return &ResetTokenRepository{db: tx}
}

// Replace removes any previous tokens for the user and stores the new one, so
// only the latest reset link works.
func (r *ResetTokenRepository) Replace(ctx context.Context, token *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("usuario_id = ?", token.UserID).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

// FindByToken loads a token row. Returns nil when no row matches.
func (r *ResetTokenRepository) FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var row models.PasswordResetToken
	if err := r.db.WithContext(ctx).First(&row, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// MarkUsed flags the token as consumed.
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("id = ?", id).
		UpdateColumn("usado", true).Error
}

// DeleteStale purges tokens that expired, or were used before the cutoff.
// Returns rows removed.
func (r *ResetTokenRepository) DeleteStale(ctx context.Context, tx *gorm.DB, now, usedCutoff time.Time) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	result := conn.WithContext(ctx).
		Where("fecha_expiracion < ? OR (usado AND fecha_creacion < ?)", now, usedCutoff).
		Delete(&models.PasswordResetToken{})
	return result.RowsAffected, result.Error
}
