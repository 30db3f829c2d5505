package products

import (
	"context"
	"errors"
	"strings"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/pagination"
	"gorm.io/gorm"
)

// AdminFilter narrows the back-office product listing.
type AdminFilter struct {
	Search     string
	CategoryID *int64
	// Active filters by estado when set.
	Active *bool
	// LowStock keeps only products under the restock threshold.
	LowStock bool
}

// lowStockThreshold marks products the dashboard flags for restocking.
const lowStockThreshold = 5

// Repository persists products and their images for the back office.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a products repo bound to the provided GORM DB.
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

// ListAdmin returns one page of products including inactive ones.
func (r *Repository) ListAdmin(ctx context.Context, filter AdminFilter, params pagination.Params) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(nombre) LIKE ? OR LOWER(descripcion) LIKE ?", like, like)
	}
	if filter.CategoryID != nil {
		query = query.Where("categoria_id = ?", *filter.CategoryID)
	}
	if filter.Active != nil {
		query = query.Where("activo = ?", *filter.Active)
	}
	if filter.LowStock {
		query = query.Where("stock < ?", lowStockThreshold)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := query.
		Order("fecha_creacion DESC").
		Preload("Images").
		Limit(params.Normalize().PerPage).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID loads any product with its images, active or not. Returns nil
// when no row matches.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("principal DESC, id ASC")
		}).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// Create inserts a product and returns the persisted model.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update persists changes to the listed columns only.
func (r *Repository) Update(ctx context.Context, product *models.Product, columns ...string) error {
	return r.db.WithContext(ctx).
		Model(product).
		Select(columns).
		Updates(product).Error
}

// SetActive flips the product's estado.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("activo", active).Error
}

// Delete hard-removes the product; images cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// IsOrdered reports whether the product appears in any placed order.
func (r *Repository) IsOrdered(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("producto_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CategoryExists reports whether an active category id is valid.
func (r *Repository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddImage inserts an image row for the product.
func (r *Repository) AddImage(ctx context.Context, image *models.ProductImage) (*models.ProductImage, error) {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return nil, err
	}
	return image, nil
}

// FindImage loads one image belonging to the product. Returns nil when no
// row matches.
func (r *Repository) FindImage(ctx context.Context, productID, imageID int64) (*models.ProductImage, error) {
	var image models.ProductImage
	err := r.db.WithContext(ctx).
		First(&image, "id = ? AND producto_id = ?", imageID, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

// DeleteImage removes an image row.
func (r *Repository) DeleteImage(ctx context.Context, imageID int64) error {
	return r.db.WithContext(ctx).Delete(&models.ProductImage{}, "id = ?", imageID).Error
}

// HasPrimaryImage reports whether any image of the product is principal.
func (r *Repository) HasPrimaryImage(ctx context.Context, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("producto_id = ? AND principal = ?", productID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetPrimaryImage makes one image principal and clears the flag elsewhere.
func (r *Repository) SetPrimaryImage(ctx context.Context, productID, imageID int64) error {
	err := r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("producto_id = ?", productID).
		UpdateColumn("principal", false).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("id = ? AND producto_id = ?", imageID, productID).
		UpdateColumn("principal", true).Error
}

// CountActive returns the number of active products.
func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("activo = ?", true).
		Count(&count).Error
	return count, err
}

// LowStock returns active products under the restock threshold.
func (r *Repository) LowStock(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("activo = ? AND stock < ?", true, lowStockThreshold).
		Order("stock ASC").
		Find(&rows).Error
	return rows, err
}
