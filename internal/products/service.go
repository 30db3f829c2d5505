package products

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/internal/uploads"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"github.com/talabarteria/rodriguez-backend/pkg/logger"
	"github.com/talabarteria/rodriguez-backend/pkg/pagination"
)

const (
	productNotFoundMessage  = "Producto no encontrado"
	imageNotFoundMessage    = "Imagen no encontrada"
	invalidPriceMessage     = "El precio debe ser mayor a 0"
	invalidDiscountMessage  = "El precio con descuento debe ser menor al precio"
	unknownCategoryMessage  = "La categoría no existe"
	deactivatedInsteadOfDel = "El producto aparece en pedidos; se desactivó en lugar de eliminarse"
	deletedMessage          = "Producto eliminado"
)

// Service defines the back-office product management behavior.
type Service interface {
	List(ctx context.Context, filter AdminFilter, params pagination.Params) ([]AdminView, pagination.Page, error)
	Get(ctx context.Context, id int64) (*AdminView, error)
	Create(ctx context.Context, req CreateRequest) (*AdminView, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*AdminView, error)
	ToggleActive(ctx context.Context, id int64) (*AdminView, error)
	Delete(ctx context.Context, id int64) (*DeleteResult, error)
	UploadImage(ctx context.Context, productID int64, fileName string, file io.Reader) (*AdminView, error)
	DeleteImage(ctx context.Context, productID, imageID int64) (*AdminView, error)
	SetPrimaryImage(ctx context.Context, productID, imageID int64) (*AdminView, error)
}

type service struct {
	repo     *Repository
	storage  *uploads.Storage
	logg     *logger.Logger
	imageURL func(string) string
}

// ServiceParams bundles the dependencies required to build a products service.
type ServiceParams struct {
	Repo    *Repository
	Storage *uploads.Storage
	Logger  *logger.Logger
	// ImageURL maps a stored file name to its public URL.
	ImageURL func(string) string
}

// NewService constructs a products service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("products repository is required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("uploads storage is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.ImageURL == nil {
		return nil, fmt.Errorf("image url builder is required")
	}
	return &service{
		repo:     params.Repo,
		storage:  params.Storage,
		logg:     params.Logger,
		imageURL: params.ImageURL,
	}, nil
}

// discountPercent derives porcentaje_descuento from the two prices. It is
// recomputed on every write and never taken from input.
func discountPercent(price decimal.Decimal, discountPrice *decimal.Decimal) *int {
	if discountPrice == nil || !discountPrice.IsPositive() || !discountPrice.LessThan(price) {
		return nil
	}
	percent := int(price.Sub(*discountPrice).
		Div(price).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart())
	return &percent
}

func validatePrices(price decimal.Decimal, discountPrice *decimal.Decimal) error {
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidPriceMessage)
	}
	if discountPrice != nil && (!discountPrice.IsPositive() || !discountPrice.LessThan(price)) {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidDiscountMessage)
	}
	return nil
}

func (s *service) requireCategory(ctx context.Context, id int64) error {
	exists, err := s.repo.CategoryExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, unknownCategoryMessage)
	}
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	return product, nil
}

func (s *service) view(product *models.Product) *AdminView {
	view := toAdminView(product, s.imageURL)
	return &view
}

func (s *service) reload(ctx context.Context, id int64) (*AdminView, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(product), nil
}

func (s *service) List(ctx context.Context, filter AdminFilter, params pagination.Params) ([]AdminView, pagination.Page, error) {
	rows, total, err := s.repo.ListAdmin(ctx, filter, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	views := make([]AdminView, 0, len(rows))
	for i := range rows {
		views = append(views, toAdminView(&rows[i], s.imageURL))
	}
	return views, pagination.Build(params, total), nil
}

func (s *service) Get(ctx context.Context, id int64) (*AdminView, error) {
	return s.reload(ctx, id)
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*AdminView, error) {
	if err := validatePrices(req.Price, req.DiscountPrice); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product, err := s.repo.Create(ctx, &models.Product{
		Name:                strings.TrimSpace(req.Name),
		Description:         strings.TrimSpace(req.Description),
		DetailedDescription: req.DetailedDescription,
		Price:               req.Price,
		DiscountPrice:       req.DiscountPrice,
		DiscountPercent:     discountPercent(req.Price, req.DiscountPrice),
		Stock:               req.Stock,
		CategoryID:          req.CategoryID,
		SKU:                 req.SKU,
		Weight:              req.Weight,
		Dimensions:          req.Dimensions,
		Material:            req.Material,
		Tags:                req.Tags,
		IsFeatured:          req.IsFeatured,
		IsNew:               req.IsNew,
		IsActive:            true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return s.view(product), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*AdminView, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, 8)
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
		columns = append(columns, "nombre")
	}
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
		columns = append(columns, "descripcion")
	}
	if req.DetailedDescription != nil {
		product.DetailedDescription = req.DetailedDescription
		columns = append(columns, "descripcion_detallada")
	}
	if req.Price != nil {
		product.Price = *req.Price
		columns = append(columns, "precio")
	}
	if req.ClearDiscount {
		product.DiscountPrice = nil
		columns = append(columns, "precio_descuento")
	} else if req.DiscountPrice != nil {
		product.DiscountPrice = req.DiscountPrice
		columns = append(columns, "precio_descuento")
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
		columns = append(columns, "stock")
	}
	if req.CategoryID != nil {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
		columns = append(columns, "categoria_id")
	}
	if req.SKU != nil {
		product.SKU = req.SKU
		columns = append(columns, "sku")
	}
	if req.Weight != nil {
		product.Weight = req.Weight
		columns = append(columns, "peso")
	}
	if req.Dimensions != nil {
		product.Dimensions = req.Dimensions
		columns = append(columns, "dimensiones")
	}
	if req.Material != nil {
		product.Material = req.Material
		columns = append(columns, "material")
	}
	if req.Tags != nil {
		product.Tags = req.Tags
		columns = append(columns, "etiquetas")
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
		columns = append(columns, "destacado")
	}
	if req.IsNew != nil {
		product.IsNew = *req.IsNew
		columns = append(columns, "nuevo")
	}
	if len(columns) == 0 {
		return s.view(product), nil
	}

	if err := validatePrices(product.Price, product.DiscountPrice); err != nil {
		return nil, err
	}
	product.DiscountPercent = discountPercent(product.Price, product.DiscountPrice)
	columns = append(columns, "porcentaje_descuento")

	if err := s.repo.Update(ctx, product, columns...); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return s.view(product), nil
}

func (s *service) ToggleActive(ctx context.Context, id int64) (*AdminView, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	product.IsActive = !product.IsActive
	if err := s.repo.SetActive(ctx, id, product.IsActive); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggle product")
	}
	return s.view(product), nil
}

// Delete removes a product, or deactivates it when it appears on placed
// orders so order history keeps its reference.
func (s *service) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	ordered, err := s.repo.IsOrdered(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check orders")
	}
	if ordered {
		if err := s.repo.SetActive(ctx, id, false); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate product")
		}
		return &DeleteResult{Deactivated: true, Message: deactivatedInsteadOfDel}, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	for _, img := range product.Images {
		if err := s.storage.Remove(img.FileName); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "product_id", id), "failed to remove image file", err)
		}
	}
	return &DeleteResult{Deleted: true, Message: deletedMessage}, nil
}

func (s *service) UploadImage(ctx context.Context, productID int64, fileName string, file io.Reader) (*AdminView, error) {
	if _, err := s.load(ctx, productID); err != nil {
		return nil, err
	}

	stored, err := s.storage.Save(fileName, file)
	if err != nil {
		return nil, err
	}

	hasPrimary, err := s.repo.HasPrimaryImage(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check primary image")
	}

	_, err = s.repo.AddImage(ctx, &models.ProductImage{
		ProductID: productID,
		FileName:  stored,
		IsPrimary: !hasPrimary,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store image")
	}
	return s.reload(ctx, productID)
}

func (s *service) DeleteImage(ctx context.Context, productID, imageID int64) (*AdminView, error) {
	image, err := s.repo.FindImage(ctx, productID, imageID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load image")
	}
	if image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, imageNotFoundMessage)
	}

	if err := s.repo.DeleteImage(ctx, imageID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete image")
	}
	if err := s.storage.Remove(image.FileName); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "image_id", imageID), "failed to remove image file", err)
	}

	// Keep exactly one principal when images remain.
	if image.IsPrimary {
		product, err := s.load(ctx, productID)
		if err != nil {
			return nil, err
		}
		if len(product.Images) > 0 {
			if err := s.repo.SetPrimaryImage(ctx, productID, product.Images[0].ID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reassign primary image")
			}
		}
	}
	return s.reload(ctx, productID)
}

func (s *service) SetPrimaryImage(ctx context.Context, productID, imageID int64) (*AdminView, error) {
	image, err := s.repo.FindImage(ctx, productID, imageID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load image")
	}
	if image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, imageNotFoundMessage)
	}
	if err := s.repo.SetPrimaryImage(ctx, productID, imageID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set primary image")
	}
	return s.reload(ctx, productID)
}
