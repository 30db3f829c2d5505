package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
)

// ProductCard is the grid shape used by listings, search, and related rows.
type ProductCard struct {
	ID              int64            `json:"id"`
	Name            string           `json:"nombre"`
	Description     string           `json:"descripcion"`
	Price           decimal.Decimal  `json:"precio"`
	DiscountPrice   *decimal.Decimal `json:"precio_descuento"`
	DiscountPercent *int             `json:"porcentaje_descuento"`
	EffectivePrice  decimal.Decimal  `json:"precio_final"`
	Stock           int              `json:"stock"`
	CategoryID      int64            `json:"categoria_id"`
	Material        *string          `json:"material"`
	IsFeatured      bool             `json:"destacado"`
	IsNew           bool             `json:"nuevo"`
	PrimaryImage    *string          `json:"imagen_principal"`
}

// ImageView is one stored upload on the detail page.
type ImageView struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"principal"`
}

// ReviewView is an approved review on the detail page.
type ReviewView struct {
	ID           int64  `json:"id"`
	CustomerName string `json:"nombre_cliente"`
	Rating       int    `json:"calificacion"`
	Comment      string `json:"comentario"`
	CreatedAt    string `json:"fecha"`
}

// ProductDetail is the full detail-page payload.
type ProductDetail struct {
	ProductCard
	DetailedDescription *string          `json:"descripcion_detallada"`
	SKU                 *string          `json:"sku"`
	Weight              *decimal.Decimal `json:"peso"`
	Dimensions          *string          `json:"dimensiones"`
	Tags                []string         `json:"etiquetas"`
	Views               int64            `json:"vistas"`
	Sales               int64            `json:"ventas"`
	Images              []ImageView      `json:"imagenes"`
	Reviews             []ReviewView     `json:"resenas"`
	AverageRating       float64          `json:"calificacion_promedio"`
	Related             []ProductCard    `json:"relacionados"`
}

// CategoryView is one node of the public category tree.
type CategoryView struct {
	ID          int64          `json:"id"`
	Name        string         `json:"nombre"`
	Description *string        `json:"descripcion"`
	Children    []CategoryView `json:"subcategorias,omitempty"`
}

// HomeStats summarizes the shop for the landing page.
type HomeStats struct {
	ActiveProducts  int64 `json:"productos_activos"`
	Customers       int64 `json:"clientes"`
	DeliveredOrders int64 `json:"pedidos_entregados"`
}

// HomeReview is one recent approved review shown on the landing page.
type HomeReview struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"producto_id"`
	CustomerName string `json:"nombre_cliente"`
	Rating       int    `json:"calificacion"`
	Comment      string `json:"comentario"`
	CreatedAt    string `json:"fecha"`
}

// HomePayload backs the landing page.
type HomePayload struct {
	Featured    []ProductCard  `json:"destacados"`
	NewArrivals []ProductCard  `json:"nuevos"`
	Categories  []CategoryView `json:"categorias"`
	Stats       HomeStats      `json:"estadisticas"`
	Reviews     []HomeReview   `json:"resenas_recientes"`
	Store       any            `json:"tienda"`
}

// SearchFlags are the boolean toggles accepted by the search endpoint.
type SearchFlags struct {
	Discounted bool `json:"descuento"`
	New        bool `json:"nuevo"`
	Featured   bool `json:"destacado"`
}

// SearchRequest is the body for the product search endpoint. Every criterion
// is optional; present ones combine with AND.
type SearchRequest struct {
	Term       string           `json:"termino" validate:"omitempty,min=2,max=100"`
	CategoryID *int64           `json:"categoria_id" validate:"omitempty,gt=0"`
	MaxPrice   *decimal.Decimal `json:"precio_max"`
	Filters    SearchFlags      `json:"filtros"`
	Material   *string          `json:"material" validate:"omitempty,max=100"`
	Page       int              `json:"pagina" validate:"omitempty,gte=1"`
	PerPage    int              `json:"items_por_pagina" validate:"omitempty,gte=1,lte=50"`
}

// SearchResult is the search response body.
type SearchResult struct {
	Products []ProductCard `json:"productos"`
	Total    int64         `json:"total"`
	Pages    int           `json:"paginas"`
}

func splitTags(raw *string) []string {
	if raw == nil {
		return nil
	}
	parts := strings.Split(*raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func toCard(product *models.Product, imageURL func(string) string) ProductCard {
	card := ProductCard{
		ID:              product.ID,
		Name:            product.Name,
		Description:     product.Description,
		Price:           product.Price,
		DiscountPrice:   product.DiscountPrice,
		DiscountPercent: product.DiscountPercent,
		EffectivePrice:  product.EffectivePrice(),
		Stock:           product.Stock,
		CategoryID:      product.CategoryID,
		Material:        product.Material,
		IsFeatured:      product.IsFeatured,
		IsNew:           product.IsNew,
	}
	for _, img := range product.Images {
		if img.IsPrimary {
			url := imageURL(img.FileName)
			card.PrimaryImage = &url
			break
		}
	}
	if card.PrimaryImage == nil && len(product.Images) > 0 {
		url := imageURL(product.Images[0].FileName)
		card.PrimaryImage = &url
	}
	return card
}

func toCategoryView(category *models.Category) CategoryView {
	view := CategoryView{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	}
	for i := range category.Children {
		view.Children = append(view.Children, toCategoryView(&category.Children[i]))
	}
	return view
}
