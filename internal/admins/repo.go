package admins

import (
	"context"
	"errors"
	"strings"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes back-office account persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an admins repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// List returns every administrator ordered by creation date.
func (r *Repository) List(ctx context.Context) ([]models.Administrator, error) {
	var rows []models.Administrator
	err := r.db.WithContext(ctx).Order("fecha_creacion ASC").Find(&rows).Error
	return rows, err
}

// FindByID loads an administrator by primary key. Returns nil when no row
// matches.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Administrator, error) {
	var admin models.Administrator
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// FindByEmail retrieves the administrator matching the provided email,
// case-insensitively. Returns nil when no row matches.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Administrator, error) {
	var admin models.Administrator
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// EmailExists reports whether an administrator already uses the email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Administrator{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new administrator and returns the persisted model.
func (r *Repository) Create(ctx context.Context, admin *models.Administrator) (*models.Administrator, error) {
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

// Update persists changes to the listed columns only.
func (r *Repository) Update(ctx context.Context, admin *models.Administrator, columns ...string) error {
	return r.db.WithContext(ctx).
		Model(admin).
		Select(columns).
		Updates(admin).Error
}

// Delete removes an administrator row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Administrator{}, "id = ?", id).Error
}

// CountActiveSuperAdmins returns the number of active super_admin accounts.
func (r *Repository) CountActiveSuperAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Administrator{}).
		Where("rol = ? AND activo = ?", enums.ActorRoleSuperAdmin, true).
		Count(&count).Error
	return count, err
}
