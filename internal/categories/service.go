package categories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
)

const (
	notFoundMessage      = "Categoría no encontrada"
	unknownParentMessage = "La categoría padre no existe"
	selfParentMessage    = "Una categoría no puede ser su propia padre"
	hasChildrenMessage   = "No se puede eliminar: tiene subcategorías"
	hasProductsMessage   = "No se puede eliminar: tiene productos asignados"
)

// CreateRequest is the payload for registering a category.
type CreateRequest struct {
	Name        string  `json:"nombre" validate:"required,max=100"`
	Description *string `json:"descripcion" validate:"omitempty,max=255"`
	ParentID    *int64  `json:"categoria_padre_id" validate:"omitempty,gt=0"`
}

// UpdateRequest carries partial edits. Nil fields keep their stored value.
type UpdateRequest struct {
	Name        *string `json:"nombre" validate:"omitempty,max=100"`
	Description *string `json:"descripcion" validate:"omitempty,max=255"`
	ParentID    *int64  `json:"categoria_padre_id" validate:"omitempty,gt=0"`
	ClearParent bool    `json:"quitar_padre"`
}

// View is the back-office category shape.
type View struct {
	ID          int64     `json:"id"`
	Name        string    `json:"nombre"`
	Description *string   `json:"descripcion"`
	ParentID    *int64    `json:"categoria_padre_id"`
	IsActive    bool      `json:"activo"`
	CreatedAt   time.Time `json:"fecha_creacion"`
}

func toView(category *models.Category) View {
	return View{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		ParentID:    category.ParentID,
		IsActive:    category.IsActive,
		CreatedAt:   category.CreatedAt,
	}
}

// Service defines the back-office category management behavior.
type Service interface {
	List(ctx context.Context) ([]View, error)
	Create(ctx context.Context, req CreateRequest) (*View, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*View, error)
	ToggleActive(ctx context.Context, id int64) (*View, error)
	Delete(ctx context.Context, id int64) error
}

type categoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, category *models.Category, columns ...string) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	HasChildren(ctx context.Context, id int64) (bool, error)
	HasProducts(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo categoryRepository
}

// ServiceParams bundles the dependencies required to build a categories
// service.
type ServiceParams struct {
	Repo categoryRepository
}

// NewService constructs a categories service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) requireParent(ctx context.Context, parentID int64, selfID *int64) error {
	if selfID != nil && parentID == *selfID {
		return pkgerrors.New(pkgerrors.CodeValidation, selfParentMessage)
	}
	parent, err := s.repo.FindByID(ctx, parentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load parent category")
	}
	if parent == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, unknownParentMessage)
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]View, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	views := make([]View, 0, len(rows))
	for i := range rows {
		views = append(views, toView(&rows[i]))
	}
	return views, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*View, error) {
	if req.ParentID != nil {
		if err := s.requireParent(ctx, *req.ParentID, nil); err != nil {
			return nil, err
		}
	}

	category, err := s.repo.Create(ctx, &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ParentID:    req.ParentID,
		IsActive:    true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	view := toView(category)
	return &view, nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*View, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	if category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}

	columns := make([]string, 0, 3)
	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
		columns = append(columns, "nombre")
	}
	if req.Description != nil {
		category.Description = req.Description
		columns = append(columns, "descripcion")
	}
	if req.ClearParent {
		category.ParentID = nil
		columns = append(columns, "categoria_padre_id")
	} else if req.ParentID != nil {
		if err := s.requireParent(ctx, *req.ParentID, &id); err != nil {
			return nil, err
		}
		category.ParentID = req.ParentID
		columns = append(columns, "categoria_padre_id")
	}
	if len(columns) == 0 {
		view := toView(category)
		return &view, nil
	}

	if err := s.repo.Update(ctx, category, columns...); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category")
	}
	view := toView(category)
	return &view, nil
}

func (s *service) ToggleActive(ctx context.Context, id int64) (*View, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	if category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	category.IsActive = !category.IsActive
	if err := s.repo.SetActive(ctx, id, category.IsActive); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggle category")
	}
	view := toView(category)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	if category == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}

	children, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check subcategories")
	}
	if children {
		return pkgerrors.New(pkgerrors.CodeStateConflict, hasChildrenMessage)
	}
	products, err := s.repo.HasProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check products")
	}
	if products {
		return pkgerrors.New(pkgerrors.CodeStateConflict, hasProductsMessage)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
	}
	return nil
}
