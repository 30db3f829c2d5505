package checkout

import (
	"context"
	"errors"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	"github.com/talabarteria/rodriguez-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var forUpdate = clause.Locking{Strength: "UPDATE"}

// Repository persists orders, order items, and shipping addresses.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a checkout repo bound to the provided GORM DB.
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

// CreateOrder inserts the order and its items in one statement batch.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindOrderByID loads one order with items. Returns nil when no row matches.
func (r *Repository) FindOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser returns a customer's orders with items, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("usuario_id = ?", userID).
		Order("fecha_creacion DESC").
		Preload("Items").
		Find(&rows).Error
	return rows, err
}

// ListAll returns one page of orders, optionally filtered by status.
func (r *Repository) ListAll(ctx context.Context, status *enums.OrderStatus, params pagination.Params) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if status != nil {
		query = query.Where("estado = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := query.
		Order("fecha_creacion DESC").
		Preload("Items").
		Limit(params.Normalize().PerPage).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateStatus overwrites the order status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("estado", status).Error
}

// CountOrders returns the total number of orders.
func (r *Repository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

// RecentOrders returns the latest orders for the dashboard.
func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Order("fecha_creacion DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// LockProduct loads a product row FOR UPDATE inside a transaction. Returns
// nil when the product is missing or inactive.
func (r *Repository) LockProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		First(&product, "id = ? AND activo = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// DecrementStock subtracts quantity from a product's stock and adds it to
// the sales counter in the same statement.
func (r *Repository) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]any{
			"stock":  gorm.Expr("stock - ?", quantity),
			"ventas": gorm.Expr("ventas + ?", quantity),
		}).Error
}

// SaveAddress upserts the user's default shipping address.
func (r *Repository) SaveAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	var existing models.Address
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND predeterminada = ?", address.UserID, true).
		First(&existing).Error
	switch {
	case err == nil:
		address.ID = existing.ID
		address.CreatedAt = existing.CreatedAt
		if err := r.db.WithContext(ctx).Save(address).Error; err != nil {
			return nil, err
		}
		return address, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		address.IsDefault = true
		if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
			return nil, err
		}
		return address, nil
	default:
		return nil, err
	}
}

// CreateAddress inserts an address row as-is. Used for guest checkouts,
// which reference a throwaway row without a user.
func (r *Repository) CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

// FindAddress loads one address belonging to the user. Returns nil when no
// row matches.
func (r *Repository) FindAddress(ctx context.Context, id, userID int64) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		First(&address, "id = ? AND usuario_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// DefaultAddress loads the user's default address. Returns nil when the user
// has none.
func (r *Repository) DefaultAddress(ctx context.Context, userID int64) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		First(&address, "usuario_id = ? AND predeterminada = ?", userID, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}
