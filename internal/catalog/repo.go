package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	"github.com/talabarteria/rodriguez-backend/pkg/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows the storefront product listing.
type ListFilter struct {
	CategoryID *int64
	Sort       string
}

// SearchFilter narrows the product search. All criteria combine with AND;
// MaxPrice applies to the discounted price when one is set.
type SearchFilter struct {
	Term       string
	CategoryID *int64
	MaxPrice   *decimal.Decimal
	Discounted bool
	New        bool
	Featured   bool
	Material   *string
}

// HomeCounts aggregates the figures shown on the landing page.
type HomeCounts struct {
	ActiveProducts  int64
	Customers       int64
	DeliveredOrders int64
}

// Repository exposes storefront read queries over the catalog tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) activeProducts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("activo = ?", true)
}

// ListActive returns one page of active products plus the unpaged total.
func (r *Repository) ListActive(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Product, int64, error) {
	query := r.activeProducts(ctx)
	if filter.CategoryID != nil {
		query = query.Where("categoria_id = ?", *filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case "precio_asc":
		query = query.Order("COALESCE(precio_descuento, precio) ASC")
	case "precio_desc":
		query = query.Order("COALESCE(precio_descuento, precio) DESC")
	case "nombre":
		query = query.Order("nombre ASC")
	default:
		query = query.Order("fecha_creacion DESC")
	}

	var rows []models.Product
	err := query.
		Preload("Images").
		Limit(params.Normalize().PerPage).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Search returns one page of active products matching the filter plus the
// unpaged total. The free-text term matches name, description, or tags,
// case-insensitively; results come back featured first, then best sellers.
func (r *Repository) Search(ctx context.Context, filter SearchFilter, params pagination.Params) ([]models.Product, int64, error) {
	query := r.activeProducts(ctx)
	if term := strings.ToLower(strings.TrimSpace(filter.Term)); term != "" {
		like := "%" + term + "%"
		query = query.Where(
			"(LOWER(nombre) LIKE ? OR LOWER(descripcion) LIKE ? OR LOWER(COALESCE(etiquetas, '')) LIKE ?)",
			like, like, like,
		)
	}
	if filter.CategoryID != nil {
		query = query.Where("categoria_id = ?", *filter.CategoryID)
	}
	if filter.MaxPrice != nil {
		query = query.Where("COALESCE(precio_descuento, precio) <= ?", *filter.MaxPrice)
	}
	if filter.Discounted {
		query = query.Where("precio_descuento IS NOT NULL")
	}
	if filter.New {
		query = query.Where("nuevo = ?", true)
	}
	if filter.Featured {
		query = query.Where("destacado = ?", true)
	}
	if filter.Material != nil {
		if material := strings.ToLower(strings.TrimSpace(*filter.Material)); material != "" {
			query = query.Where("LOWER(COALESCE(material, '')) = ?", material)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := query.
		Order("destacado DESC, ventas DESC").
		Limit(params.Normalize().PerPage).
		Offset(params.Offset()).
		Preload("Images").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindActiveByID loads an active product with its images. Returns nil when
// the product is missing or inactive.
func (r *Repository) FindActiveByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("principal DESC, id ASC")
		}).
		First(&product, "id = ? AND activo = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// IncrementViews bumps the view counter without touching other columns.
func (r *Repository) IncrementViews(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("vistas", gorm.Expr("vistas + 1")).Error
}

// ApprovedReviews returns the visible reviews for a product, newest first.
func (r *Repository) ApprovedReviews(ctx context.Context, productID int64) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Where("producto_id = ? AND aprobada = ?", productID, true).
		Order("fecha_creacion DESC").
		Find(&rows).Error
	return rows, err
}

// Related returns up to limit active products sharing the category or any
// tag with the given product, excluding the product itself.
func (r *Repository) Related(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	query := r.activeProducts(ctx).Where("id <> ?", product.ID)

	conditions := r.db.Where("categoria_id = ?", product.CategoryID)
	if product.Tags != nil {
		for _, tag := range strings.Split(*product.Tags, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			conditions = conditions.Or("LOWER(COALESCE(etiquetas, '')) LIKE ?", "%"+tag+"%")
		}
	}

	var rows []models.Product
	err := query.Where(conditions).
		Order("vistas DESC").
		Limit(limit).
		Preload("Images").
		Find(&rows).Error
	return rows, err
}

// Featured returns up to limit active destacado products, newest first.
func (r *Repository) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.activeProducts(ctx).
		Where("destacado = ?", true).
		Order("fecha_creacion DESC").
		Limit(limit).
		Preload("Images").
		Find(&rows).Error
	return rows, err
}

// NewArrivals returns up to limit active products flagged nuevo, newest
// first.
func (r *Repository) NewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.activeProducts(ctx).
		Where("nuevo = ?", true).
		Order("fecha_creacion DESC").
		Limit(limit).
		Preload("Images").
		Find(&rows).Error
	return rows, err
}

// RecentApprovedReviews returns the latest approved reviews across all
// products.
func (r *Repository) RecentApprovedReviews(ctx context.Context, limit int) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Where("aprobada = ?", true).
		Order("fecha_creacion DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// HomeCountsFor loads the landing-page counters in one pass.
func (r *Repository) HomeCountsFor(ctx context.Context) (HomeCounts, error) {
	var counts HomeCounts
	err := r.activeProducts(ctx).Count(&counts.ActiveProducts).Error
	if err != nil {
		return HomeCounts{}, err
	}
	err = r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("activo = ?", true).
		Count(&counts.Customers).Error
	if err != nil {
		return HomeCounts{}, err
	}
	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("estado = ?", enums.OrderStatusDelivered).
		Count(&counts.DeliveredOrders).Error
	if err != nil {
		return HomeCounts{}, err
	}
	return counts, nil
}

// CategoryTree loads active categories as roots with their active children.
func (r *Repository) CategoryTree(ctx context.Context) ([]models.Category, error) {
	var roots []models.Category
	err := r.db.WithContext(ctx).
		Where("categoria_padre_id IS NULL AND activo = ?", true).
		Order("nombre ASC").
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Where("activo = ?", true).Order("nombre ASC")
		}).
		Find(&roots).Error
	return roots, err
}

// RootCategories loads active top-level categories without children.
func (r *Repository) RootCategories(ctx context.Context) ([]models.Category, error) {
	var roots []models.Category
	err := r.db.WithContext(ctx).
		Where("categoria_padre_id IS NULL AND activo = ?", true).
		Order("nombre ASC").
		Find(&roots).Error
	return roots, err
}
