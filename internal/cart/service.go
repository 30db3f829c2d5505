package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/talabarteria/rodriguez-backend/internal/pricing"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"github.com/talabarteria/rodriguez-backend/pkg/logger"
)

const (
	productNotFoundMessage = "Producto no encontrado"
	invalidCouponMessage   = "Cupón no válido"
	emptyCartMessage       = "El carrito está vacío"
)

func insufficientStockMessage(available int) string {
	return fmt.Sprintf("Stock insuficiente. Disponibles: %d", available)
}

// Service defines the shopping cart behavior.
type Service interface {
	Get(ctx context.Context, token string, method enums.ShippingMethod) (*View, error)
	Add(ctx context.Context, token string, req AddRequest) (*View, error)
	Update(ctx context.Context, token string, req UpdateRequest) (*View, error)
	Remove(ctx context.Context, token string, req RemoveRequest) (*View, error)
	Clear(ctx context.Context, token string) error
	Sync(ctx context.Context, token string, req SyncRequest) (*View, error)
	ApplyCoupon(ctx context.Context, token string, req CouponRequest) (*View, error)
}

type productFinder interface {
	FindActiveByID(ctx context.Context, id int64) (*models.Product, error)
}

type couponFinder interface {
	FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type stateStore interface {
	Load(ctx context.Context, token string) (*State, error)
	Save(ctx context.Context, token string, state *State) error
	Clear(ctx context.Context, token string) error
}

type service struct {
	store    stateStore
	products productFinder
	coupons  couponFinder
	logg     *logger.Logger
	imageURL func(string) string
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Store    stateStore
	Products productFinder
	Coupons  couponFinder
	Logger   *logger.Logger
	// ImageURL maps a stored file name to its public URL.
	ImageURL func(string) string
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product finder is required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon finder is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.ImageURL == nil {
		return nil, fmt.Errorf("image url builder is required")
	}
	return &service{
		store:    params.Store,
		products: params.Products,
		coupons:  params.Coupons,
		logg:     params.Logger,
		imageURL: params.ImageURL,
	}, nil
}

// hydrate resolves every stored line against the live catalog. Lines whose
// product disappeared or went inactive are silently dropped; quantities above
// current stock are capped.
func (s *service) hydrate(ctx context.Context, state *State, method enums.ShippingMethod) (*View, bool, error) {
	view := &View{Items: make([]ItemView, 0, len(state.Lines))}
	subtotal := decimal.Zero
	mutated := false

	kept := state.Lines[:0]
	for _, line := range state.Lines {
		product, err := s.products.FindActiveByID(ctx, line.ProductID)
		if err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if product == nil || product.Stock <= 0 {
			mutated = true
			continue
		}
		if line.Quantity > product.Stock {
			line.Quantity = product.Stock
			mutated = true
		}
		kept = append(kept, line)

		unit := product.EffectivePrice()
		lineSubtotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)

		item := ItemView{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: unit,
			Quantity:  line.Quantity,
			Subtotal:  lineSubtotal,
			Stock:     product.Stock,
		}
		for _, img := range product.Images {
			if img.IsPrimary {
				url := s.imageURL(img.FileName)
				item.Image = &url
				break
			}
		}
		view.Items = append(view.Items, item)
	}
	state.Lines = kept

	var coupon *models.Coupon
	if state.CouponCode != nil {
		var err error
		coupon, err = s.coupons.FindActiveByCode(ctx, *state.CouponCode)
		if err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
		}
		if coupon == nil {
			state.CouponCode = nil
			mutated = true
		}
	}
	view.CouponCode = state.CouponCode
	view.Totals = pricing.Compute(subtotal, coupon, method)
	return view, mutated, nil
}

func (s *service) loadHydrated(ctx context.Context, token string, method enums.ShippingMethod) (*State, *View, error) {
	state, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	view, mutated, err := s.hydrate(ctx, state, method)
	if err != nil {
		return nil, nil, err
	}
	if mutated {
		if err := s.store.Save(ctx, token, state); err != nil {
			s.logg.Error(ctx, "failed to persist reconciled cart", err)
		}
	}
	return state, view, nil
}

func (s *service) saveAndView(ctx context.Context, token string, state *State, method enums.ShippingMethod) (*View, error) {
	if err := s.store.Save(ctx, token, state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	view, _, err := s.hydrate(ctx, state, method)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) Get(ctx context.Context, token string, method enums.ShippingMethod) (*View, error) {
	_, view, err := s.loadHydrated(ctx, token, method)
	return view, err
}

func (s *service) Add(ctx context.Context, token string, req AddRequest) (*View, error) {
	product, err := s.products.FindActiveByID(ctx, req.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}

	state, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	// The check is against what the cart would hold after the add, so two
	// small adds cannot jointly oversell a product.
	wanted := state.Quantity(req.ProductID) + req.Quantity
	if wanted > product.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, insufficientStockMessage(product.Stock))
	}

	state.SetQuantity(req.ProductID, wanted)
	return s.saveAndView(ctx, token, state, enums.ShippingMethodStandard)
}

func (s *service) Update(ctx context.Context, token string, req UpdateRequest) (*View, error) {
	state, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if req.Quantity > 0 {
		product, err := s.products.FindActiveByID(ctx, req.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
		}
		if req.Quantity > product.Stock {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, insufficientStockMessage(product.Stock))
		}
	}

	state.SetQuantity(req.ProductID, req.Quantity)
	return s.saveAndView(ctx, token, state, enums.ShippingMethodStandard)
}

func (s *service) Remove(ctx context.Context, token string, req RemoveRequest) (*View, error) {
	state, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	state.SetQuantity(req.ProductID, 0)
	return s.saveAndView(ctx, token, state, enums.ShippingMethodStandard)
}

func (s *service) Clear(ctx context.Context, token string) error {
	if err := s.store.Clear(ctx, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) Sync(ctx context.Context, token string, req SyncRequest) (*View, error) {
	state, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	for _, line := range req.Items {
		if line.ProductID <= 0 || line.Quantity <= 0 {
			continue
		}
		product, err := s.products.FindActiveByID(ctx, line.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if product == nil || product.Stock <= 0 {
			continue
		}
		merged := state.Quantity(line.ProductID) + line.Quantity
		if merged > product.Stock {
			merged = product.Stock
		}
		state.SetQuantity(line.ProductID, merged)
	}

	return s.saveAndView(ctx, token, state, enums.ShippingMethodStandard)
}

func (s *service) ApplyCoupon(ctx context.Context, token string, req CouponRequest) (*View, error) {
	coupon, err := s.coupons.FindActiveByCode(ctx, req.Code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
	}
	if coupon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidCouponMessage)
	}

	state, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, emptyCartMessage)
	}

	state.CouponCode = &coupon.Code
	return s.saveAndView(ctx, token, state, enums.ShippingMethodStandard)
}
