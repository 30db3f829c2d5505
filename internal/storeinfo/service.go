package storeinfo

import (
	"context"
	"errors"
	"fmt"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"gorm.io/gorm"
)

// UpdateRequest carries partial edits to the shop profile. Nil fields keep
// their stored value.
type UpdateRequest struct {
	Name      *string `json:"nombre" validate:"omitempty,max=150"`
	Address   *string `json:"direccion" validate:"omitempty,max=255"`
	Phone     *string `json:"telefono" validate:"omitempty,max=20"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Hours     *string `json:"horario" validate:"omitempty,max=255"`
	Facebook  *string `json:"facebook" validate:"omitempty,max=255"`
	Instagram *string `json:"instagram" validate:"omitempty,max=255"`
	WhatsApp  *string `json:"whatsapp" validate:"omitempty,max=20"`
}

// Service serves the informacion_tienda singleton.
type Service interface {
	Get(ctx context.Context) (*models.StoreInfo, error)
	Update(ctx context.Context, req UpdateRequest) (*models.StoreInfo, error)
}

type service struct {
	db *gorm.DB
}

// NewService constructs a store info service bound to the provided GORM DB.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &service{db: db}, nil
}

func defaults() *models.StoreInfo {
	return &models.StoreInfo{
		Name:    "Talabartería Rodríguez",
		Address: "Calle Principal #123, Centro",
		Phone:   "555-123-4567",
		Email:   "contacto@talabarteriarodriguez.mx",
		Hours:   "Lunes a Sábado 9:00 - 19:00",
	}
}

// Get returns the singleton row, inserting the shop defaults on first read.
func (s *service) Get(ctx context.Context) (*models.StoreInfo, error) {
	var info models.StoreInfo
	err := s.db.WithContext(ctx).Order("id ASC").First(&info).Error
	if err == nil {
		return &info, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store info")
	}

	seeded := defaults()
	if err := s.db.WithContext(ctx).Create(seeded).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed store info")
	}
	return seeded, nil
}

// Update applies the non-nil fields and returns the refreshed row.
func (s *service) Update(ctx context.Context, req UpdateRequest) (*models.StoreInfo, error) {
	info, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, 8)
	apply := func(column string, target *string, value *string) {
		if value != nil {
			*target = *value
			columns = append(columns, column)
		}
	}
	apply("nombre", &info.Name, req.Name)
	apply("direccion", &info.Address, req.Address)
	apply("telefono", &info.Phone, req.Phone)
	apply("email", &info.Email, req.Email)
	apply("horario", &info.Hours, req.Hours)
	apply("facebook", &info.Facebook, req.Facebook)
	apply("instagram", &info.Instagram, req.Instagram)
	apply("whatsapp", &info.WhatsApp, req.WhatsApp)
	if len(columns) == 0 {
		return info, nil
	}

	err = s.db.WithContext(ctx).
		Model(info).
		Select(columns).
		Updates(info).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store info")
	}
	return info, nil
}
