package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
)

const recentOrdersLimit = 5

// RecentOrder is one row of the dashboard's latest-orders table. UserID is
// null for guest orders.
type RecentOrder struct {
	ID        int64           `json:"id"`
	UserID    *int64          `json:"usuario_id"`
	Status    string          `json:"estado"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"fecha_creacion"`
}

// LowStockProduct flags a product the shop should restock.
type LowStockProduct struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Stock int    `json:"stock"`
}

// Dashboard is the admin landing payload.
type Dashboard struct {
	ActiveProducts int64             `json:"productos_activos"`
	Orders         int64             `json:"pedidos"`
	Users          int64             `json:"usuarios"`
	Categories     int64             `json:"categorias"`
	RecentOrders   []RecentOrder     `json:"pedidos_recientes"`
	LowStock       []LowStockProduct `json:"stock_bajo"`
}

type productCounter interface {
	CountActive(ctx context.Context) (int64, error)
	LowStock(ctx context.Context) ([]models.Product, error)
}

type orderCounter interface {
	CountOrders(ctx context.Context) (int64, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
}

type userCounter interface {
	Count(ctx context.Context) (int64, error)
}

type categoryCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Service builds the admin dashboard.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	products   productCounter
	orders     orderCounter
	users      userCounter
	categories categoryCounter
}

// ServiceParams bundles the dependencies required to build a stats service.
type ServiceParams struct {
	Products   productCounter
	Orders     orderCounter
	Users      userCounter
	Categories categoryCounter
}

// NewService constructs a stats service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Products == nil {
		return nil, fmt.Errorf("product counter is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order counter is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user counter is required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category counter is required")
	}
	return &service{
		products:   params.Products,
		orders:     params.Orders,
		users:      params.Users,
		categories: params.Categories,
	}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	dashboard := &Dashboard{}

	var err error
	if dashboard.ActiveProducts, err = s.products.CountActive(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}
	if dashboard.Orders, err = s.orders.CountOrders(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	if dashboard.Users, err = s.users.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	if dashboard.Categories, err = s.categories.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count categories")
	}

	recent, err := s.orders.RecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent orders")
	}
	dashboard.RecentOrders = make([]RecentOrder, 0, len(recent))
	for _, order := range recent {
		dashboard.RecentOrders = append(dashboard.RecentOrders, RecentOrder{
			ID:        order.ID,
			UserID:    order.UserID,
			Status:    order.Status.String(),
			Total:     order.Total,
			CreatedAt: order.CreatedAt,
		})
	}

	low, err := s.products.LowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load low stock products")
	}
	dashboard.LowStock = make([]LowStockProduct, 0, len(low))
	for _, product := range low {
		dashboard.LowStock = append(dashboard.LowStock, LowStockProduct{
			ID:    product.ID,
			Name:  product.Name,
			Stock: product.Stock,
		})
	}

	return dashboard, nil
}
