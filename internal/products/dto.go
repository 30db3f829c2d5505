package products

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
)

// CreateRequest is the payload for registering a new product.
type CreateRequest struct {
	Name                string           `json:"nombre" validate:"required,max=150"`
	Description         string           `json:"descripcion" validate:"required"`
	DetailedDescription *string          `json:"descripcion_detallada"`
	Price               decimal.Decimal  `json:"precio" validate:"required"`
	DiscountPrice       *decimal.Decimal `json:"precio_descuento"`
	Stock               int              `json:"stock" validate:"gte=0"`
	CategoryID          int64            `json:"categoria_id" validate:"required,gt=0"`
	SKU                 *string          `json:"sku" validate:"omitempty,max=50"`
	Weight              *decimal.Decimal `json:"peso"`
	Dimensions          *string          `json:"dimensiones" validate:"omitempty,max=100"`
	Material            *string          `json:"material" validate:"omitempty,max=100"`
	Tags                *string          `json:"etiquetas" validate:"omitempty,max=255"`
	IsFeatured          bool             `json:"destacado"`
	IsNew               bool             `json:"nuevo"`
}

// UpdateRequest carries partial edits. Nil fields keep their stored value.
type UpdateRequest struct {
	Name                *string          `json:"nombre" validate:"omitempty,max=150"`
	Description         *string          `json:"descripcion"`
	DetailedDescription *string          `json:"descripcion_detallada"`
	Price               *decimal.Decimal `json:"precio"`
	DiscountPrice       *decimal.Decimal `json:"precio_descuento"`
	ClearDiscount       bool             `json:"quitar_descuento"`
	Stock               *int             `json:"stock" validate:"omitempty,gte=0"`
	CategoryID          *int64           `json:"categoria_id" validate:"omitempty,gt=0"`
	SKU                 *string          `json:"sku" validate:"omitempty,max=50"`
	Weight              *decimal.Decimal `json:"peso"`
	Dimensions          *string          `json:"dimensiones" validate:"omitempty,max=100"`
	Material            *string          `json:"material" validate:"omitempty,max=100"`
	Tags                *string          `json:"etiquetas" validate:"omitempty,max=255"`
	IsFeatured          *bool            `json:"destacado"`
	IsNew               *bool            `json:"nuevo"`
}

// ImageView is one stored upload in admin responses.
type ImageView struct {
	ID        int64  `json:"id"`
	FileName  string `json:"nombre_archivo"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"principal"`
}

// AdminView is the full back-office product shape.
type AdminView struct {
	ID                  int64            `json:"id"`
	Name                string           `json:"nombre"`
	Description         string           `json:"descripcion"`
	DetailedDescription *string          `json:"descripcion_detallada"`
	Price               decimal.Decimal  `json:"precio"`
	DiscountPrice       *decimal.Decimal `json:"precio_descuento"`
	DiscountPercent     *int             `json:"porcentaje_descuento"`
	Stock               int              `json:"stock"`
	CategoryID          int64            `json:"categoria_id"`
	SKU                 *string          `json:"sku"`
	Weight              *decimal.Decimal `json:"peso"`
	Dimensions          *string          `json:"dimensiones"`
	Material            *string          `json:"material"`
	Tags                *string          `json:"etiquetas"`
	IsFeatured          bool             `json:"destacado"`
	IsNew               bool             `json:"nuevo"`
	IsActive            bool             `json:"activo"`
	Views               int64            `json:"vistas"`
	Sales               int64            `json:"ventas"`
	Images              []ImageView      `json:"imagenes"`
	CreatedAt           time.Time        `json:"fecha_creacion"`
}

// DeleteResult tells the caller whether the product was removed or only
// deactivated because it appears on placed orders.
type DeleteResult struct {
	Deleted     bool   `json:"eliminado"`
	Deactivated bool   `json:"desactivado"`
	Message     string `json:"mensaje"`
}

func toAdminView(product *models.Product, imageURL func(string) string) AdminView {
	view := AdminView{
		ID:                  product.ID,
		Name:                product.Name,
		Description:         product.Description,
		DetailedDescription: product.DetailedDescription,
		Price:               product.Price,
		DiscountPrice:       product.DiscountPrice,
		DiscountPercent:     product.DiscountPercent,
		Stock:               product.Stock,
		CategoryID:          product.CategoryID,
		SKU:                 product.SKU,
		Weight:              product.Weight,
		Dimensions:          product.Dimensions,
		Material:            product.Material,
		Tags:                product.Tags,
		IsFeatured:          product.IsFeatured,
		IsNew:               product.IsNew,
		IsActive:            product.IsActive,
		Views:               product.Views,
		Sales:               product.Sales,
		Images:              make([]ImageView, 0, len(product.Images)),
		CreatedAt:           product.CreatedAt,
	}
	for _, img := range product.Images {
		view.Images = append(view.Images, ImageView{
			ID:        img.ID,
			FileName:  img.FileName,
			URL:       imageURL(img.FileName),
			IsPrimary: img.IsPrimary,
		})
	}
	return view
}
