package coupons

import (
	"context"
	"errors"
	"strings"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository looks up promotional codes.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a coupons repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindActiveByCode matches a coupon case-insensitively. Returns nil when no
// active coupon has the code.
func (r *Repository) FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("UPPER(codigo) = ? AND activo = ?", strings.ToUpper(strings.TrimSpace(code)), true).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}
