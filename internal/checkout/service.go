package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/internal/cart"
	"github.com/talabarteria/rodriguez-backend/internal/pricing"
	"github.com/talabarteria/rodriguez-backend/pkg/db"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"github.com/talabarteria/rodriguez-backend/pkg/logger"
	"github.com/talabarteria/rodriguez-backend/pkg/mailer"
	"github.com/talabarteria/rodriguez-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	emptyCartMessage         = "El carrito está vacío"
	missingAddressMessage    = "Debes registrar una dirección de envío antes de comprar"
	guestAddressMessage      = "Debes proporcionar una dirección de envío"
	orderNotFoundMessage     = "Pedido no encontrado"
	invalidTransitionMessage = "Transición de estado no válida"
)

// Service defines checkout and order management behavior. CreateOrder takes
// a nil userID for guest checkouts.
type Service interface {
	SaveAddress(ctx context.Context, userID int64, req AddressRequest) (*AddressView, error)
	CreateOrder(ctx context.Context, userID *int64, cartToken string, req CreateOrderRequest) (*OrderView, error)
	ListUserOrders(ctx context.Context, userID int64) ([]OrderView, error)
	ListOrders(ctx context.Context, status *enums.OrderStatus, params pagination.Params) ([]OrderView, pagination.Page, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, req StatusRequest) (*OrderView, error)
}

type couponFinder interface {
	FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type service struct {
	client    *db.Client
	repo      *Repository
	cartStore *cart.Store
	coupons   couponFinder
	users     userFinder
	mail      mailer.Mailer
	logg      *logger.Logger
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	Client    *db.Client
	Repo      *Repository
	CartStore *cart.Store
	Coupons   couponFinder
	Users     userFinder
	Mailer    mailer.Mailer
	Logger    *logger.Logger
}

// NewService constructs a checkout service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("checkout repository is required")
	}
	if params.CartStore == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon finder is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		client:    params.Client,
		repo:      params.Repo,
		cartStore: params.CartStore,
		coupons:   params.Coupons,
		users:     params.Users,
		mail:      params.Mailer,
		logg:      params.Logger,
	}, nil
}

func (s *service) SaveAddress(ctx context.Context, userID int64, req AddressRequest) (*AddressView, error) {
	saved, err := s.repo.SaveAddress(ctx, &models.Address{
		UserID:       &userID,
		Street:       strings.TrimSpace(req.Street),
		Number:       strings.TrimSpace(req.Number),
		Neighborhood: strings.TrimSpace(req.Neighborhood),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		PostalCode:   strings.TrimSpace(req.PostalCode),
		References:   req.References,
		IsDefault:    true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save address")
	}
	view := toAddressView(saved)
	return &view, nil
}

func formatAddress(address *models.Address) string {
	return fmt.Sprintf("%s %s, %s, %s, %s, CP %s",
		address.Street, address.Number, address.Neighborhood,
		address.City, address.State, address.PostalCode)
}

// resolveAddress picks the shipping address for an order. An inline address
// wins and is stored as a non-default row; otherwise registered users fall
// back to a stored or default address, and guests are rejected.
func (s *service) resolveAddress(ctx context.Context, userID *int64, req CreateOrderRequest) (*models.Address, error) {
	if req.Address != nil {
		created, err := s.repo.CreateAddress(ctx, &models.Address{
			UserID:       userID,
			Street:       strings.TrimSpace(req.Address.Street),
			Number:       strings.TrimSpace(req.Address.Number),
			Neighborhood: strings.TrimSpace(req.Address.Neighborhood),
			City:         strings.TrimSpace(req.Address.City),
			State:        strings.TrimSpace(req.Address.State),
			PostalCode:   strings.TrimSpace(req.Address.PostalCode),
			References:   req.Address.References,
			IsDefault:    false,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order address")
		}
		return created, nil
	}
	if userID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, guestAddressMessage)
	}
	if req.AddressID != nil {
		address, err := s.repo.FindAddress(ctx, *req.AddressID, *userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
		}
		if address == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, missingAddressMessage)
		}
		return address, nil
	}
	address, err := s.repo.DefaultAddress(ctx, *userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load default address")
	}
	if address == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, missingAddressMessage)
	}
	return address, nil
}

// CreateOrder turns the cart into a pedido. Stock is re-validated and
// decremented under row locks so a concurrent order cannot oversell; any
// shortfall rolls the whole order back. A nil userID places a guest order
// with usuario_id left NULL.
func (s *service) CreateOrder(ctx context.Context, userID *int64, cartToken string, req CreateOrderRequest) (*OrderView, error) {
	state, err := s.cartStore.Load(ctx, cartToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, emptyCartMessage)
	}

	method, err := enums.ParseShippingMethod(req.ShippingMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "método de envío no válido")
	}

	address, err := s.resolveAddress(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	var coupon *models.Coupon
	if state.CouponCode != nil {
		coupon, err = s.coupons.FindActiveByCode(ctx, *state.CouponCode)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
		}
	}

	var order *models.Order
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(state.Lines))
		for _, line := range state.Lines {
			product, err := repo.LockProduct(ctx, line.ProductID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock product")
			}
			if product == nil {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("El producto %d ya no está disponible", line.ProductID))
			}
			if line.Quantity > product.Stock {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("Stock insuficiente para %s. Disponibles: %d", product.Name, product.Stock))
			}
			if err := repo.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}

			unit := product.EffectivePrice()
			lineSubtotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineSubtotal)
			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   unit,
				Subtotal:    lineSubtotal,
			})
		}

		quote := pricing.Compute(subtotal, coupon, method)
		pending := &models.Order{
			UserID:          userID,
			Status:          enums.OrderStatusPending,
			Subtotal:        quote.Subtotal,
			Discount:        quote.Discount,
			ShippingCost:    quote.ShippingCost,
			Tax:             quote.Tax,
			Total:           quote.Total,
			ShippingMethod:  method,
			CouponCode:      state.CouponCode,
			ShippingAddress: formatAddress(address),
			Items:           items,
		}
		created, err := repo.CreateOrder(ctx, pending)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cartStore.Clear(ctx, cartToken); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID), "failed to clear cart after order", err)
	}
	s.sendConfirmation(ctx, userID, order)

	view := toOrderView(order)
	return &view, nil
}

// sendConfirmation emails the customer their order summary. Guest orders
// have no account email, so they are skipped. Failures are logged and never
// fail the order.
func (s *service) sendConfirmation(ctx context.Context, userID *int64, order *models.Order) {
	if userID == nil {
		return
	}
	user, err := s.users.FindByID(ctx, *userID)
	if err != nil || user == nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID), "failed to load user for confirmation email", err)
		return
	}

	lines := make([]mailer.OrderConfirmationLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, mailer.OrderConfirmationLine{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal.StringFixed(2),
		})
	}
	subject, body := mailer.OrderConfirmationEmail(user.Name, order.ID, lines, order.Total.StringFixed(2))
	if err := s.mail.Send(ctx, user.Email, subject, body); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID), "failed to send order confirmation", err)
	}
}

func (s *service) ListUserOrders(ctx context.Context, userID int64) ([]OrderView, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	views := make([]OrderView, 0, len(rows))
	for i := range rows {
		views = append(views, toOrderView(&rows[i]))
	}
	return views, nil
}

func (s *service) ListOrders(ctx context.Context, status *enums.OrderStatus, params pagination.Params) ([]OrderView, pagination.Page, error) {
	rows, total, err := s.repo.ListAll(ctx, status, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	views := make([]OrderView, 0, len(rows))
	for i := range rows {
		views = append(views, toOrderView(&rows[i]))
	}
	return views, pagination.Build(params, total), nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID int64, req StatusRequest) (*OrderView, error) {
	next, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estado no válido")
	}

	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, orderNotFoundMessage)
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, invalidTransitionMessage)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	order.Status = next
	view := toOrderView(order)
	return &view, nil
}
