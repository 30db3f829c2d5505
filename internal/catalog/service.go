package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"github.com/talabarteria/rodriguez-backend/pkg/logger"
	"github.com/talabarteria/rodriguez-backend/pkg/pagination"
)

const (
	productNotFoundMessage = "Producto no encontrado"

	relatedLimit     = 4
	featuredLimit    = 8
	newArrivalsLimit = 8
	homeReviewsLimit = 6
)

// Service defines the storefront catalog behavior.
type Service interface {
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]ProductCard, pagination.Page, error)
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
	Detail(ctx context.Context, id int64) (*ProductDetail, error)
	Home(ctx context.Context) (*HomePayload, error)
	Categories(ctx context.Context) ([]CategoryView, error)
}

type catalogRepository interface {
	ListActive(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Product, int64, error)
	Search(ctx context.Context, filter SearchFilter, params pagination.Params) ([]models.Product, int64, error)
	FindActiveByID(ctx context.Context, id int64) (*models.Product, error)
	IncrementViews(ctx context.Context, id int64) error
	ApprovedReviews(ctx context.Context, productID int64) ([]models.Review, error)
	Related(ctx context.Context, product *models.Product, limit int) ([]models.Product, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	NewArrivals(ctx context.Context, limit int) ([]models.Product, error)
	RecentApprovedReviews(ctx context.Context, limit int) ([]models.Review, error)
	HomeCountsFor(ctx context.Context) (HomeCounts, error)
	CategoryTree(ctx context.Context) ([]models.Category, error)
	RootCategories(ctx context.Context) ([]models.Category, error)
}

type storeInfoProvider interface {
	Get(ctx context.Context) (*models.StoreInfo, error)
}

type service struct {
	repo      catalogRepository
	storeInfo storeInfoProvider
	logg      *logger.Logger
	imageBase string
}

// ServiceParams bundles the dependencies required to build a catalog service.
type ServiceParams struct {
	Repo      catalogRepository
	StoreInfo storeInfoProvider
	Logger    *logger.Logger
	// ImagePublicPath is the URL prefix under which uploads are served.
	ImagePublicPath string
}

// NewService constructs a catalog service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if params.StoreInfo == nil {
		return nil, fmt.Errorf("store info provider is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:      params.Repo,
		storeInfo: params.StoreInfo,
		logg:      params.Logger,
		imageBase: strings.TrimSuffix(params.ImagePublicPath, "/"),
	}, nil
}

func (s *service) imageURL(fileName string) string {
	return s.imageBase + "/" + fileName
}

func (s *service) cards(products []models.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for i := range products {
		cards = append(cards, toCard(&products[i], s.imageURL))
	}
	return cards
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]ProductCard, pagination.Page, error) {
	rows, total, err := s.repo.ListActive(ctx, filter, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return s.cards(rows), pagination.Build(params, total), nil
}

func (s *service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	params := pagination.Params{Page: req.Page, PerPage: req.PerPage}
	rows, total, err := s.repo.Search(ctx, SearchFilter{
		Term:       req.Term,
		CategoryID: req.CategoryID,
		MaxPrice:   req.MaxPrice,
		Discounted: req.Filters.Discounted,
		New:        req.Filters.New,
		Featured:   req.Filters.Featured,
		Material:   req.Material,
	}, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search products")
	}
	return &SearchResult{
		Products: s.cards(rows),
		Total:    total,
		Pages:    pagination.Build(params, total).Pages,
	}, nil
}

func (s *service) Detail(ctx context.Context, id int64) (*ProductDetail, error) {
	product, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}

	// Every detail view counts, including repeat visits.
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "product_id", id), "failed to increment product views", err)
	} else {
		product.Views++
	}

	reviews, err := s.repo.ApprovedReviews(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reviews")
	}
	related, err := s.repo.Related(ctx, product, relatedLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load related products")
	}

	detail := &ProductDetail{
		ProductCard:         toCard(product, s.imageURL),
		DetailedDescription: product.DetailedDescription,
		SKU:                 product.SKU,
		Weight:              product.Weight,
		Dimensions:          product.Dimensions,
		Tags:                splitTags(product.Tags),
		Views:               product.Views,
		Sales:               product.Sales,
		Images:              make([]ImageView, 0, len(product.Images)),
		Reviews:             make([]ReviewView, 0, len(reviews)),
		Related:             s.cards(related),
	}
	for _, img := range product.Images {
		detail.Images = append(detail.Images, ImageView{
			ID:        img.ID,
			URL:       s.imageURL(img.FileName),
			IsPrimary: img.IsPrimary,
		})
	}
	var ratingSum int
	for _, review := range reviews {
		ratingSum += review.Rating
		detail.Reviews = append(detail.Reviews, ReviewView{
			ID:           review.ID,
			CustomerName: review.CustomerName,
			Rating:       review.Rating,
			Comment:      review.Comment,
			CreatedAt:    review.CreatedAt.Format("2006-01-02"),
		})
	}
	if len(reviews) > 0 {
		average := float64(ratingSum) / float64(len(reviews))
		detail.AverageRating = math.Round(average*10) / 10
	}
	return detail, nil
}

func (s *service) Home(ctx context.Context) (*HomePayload, error) {
	featured, err := s.repo.Featured(ctx, featuredLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load featured products")
	}
	arrivals, err := s.repo.NewArrivals(ctx, newArrivalsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load new arrivals")
	}
	roots, err := s.repo.RootCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load categories")
	}
	counts, err := s.repo.HomeCountsFor(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load home counts")
	}
	reviews, err := s.repo.RecentApprovedReviews(ctx, homeReviewsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent reviews")
	}
	store, err := s.storeInfo.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store info")
	}

	payload := &HomePayload{
		Featured:    s.cards(featured),
		NewArrivals: s.cards(arrivals),
		Categories:  make([]CategoryView, 0, len(roots)),
		Stats: HomeStats{
			ActiveProducts:  counts.ActiveProducts,
			Customers:       counts.Customers,
			DeliveredOrders: counts.DeliveredOrders,
		},
		Reviews: make([]HomeReview, 0, len(reviews)),
		Store:   store,
	}
	for i := range roots {
		payload.Categories = append(payload.Categories, toCategoryView(&roots[i]))
	}
	for _, review := range reviews {
		payload.Reviews = append(payload.Reviews, HomeReview{
			ID:           review.ID,
			ProductID:    review.ProductID,
			CustomerName: review.CustomerName,
			Rating:       review.Rating,
			Comment:      review.Comment,
			CreatedAt:    review.CreatedAt.Format("2006-01-02"),
		})
	}
	return payload, nil
}

func (s *service) Categories(ctx context.Context) ([]CategoryView, error) {
	roots, err := s.repo.CategoryTree(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category tree")
	}
	views := make([]CategoryView, 0, len(roots))
	for i := range roots {
		views = append(views, toCategoryView(&roots[i]))
	}
	return views, nil
}
