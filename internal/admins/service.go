package admins

import (
	"context"
	"fmt"
	"strings"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"github.com/talabarteria/rodriguez-backend/pkg/security"
)

const (
	emailTakenMessage     = "El correo electrónico ya está registrado"
	lastSuperAdminMessage = "No se puede eliminar o desactivar al último super administrador"
	adminNotFoundMessage  = "Administrador no encontrado"
	inactiveRoleMessage   = "No se puede asignar un rol a una cuenta desactivada"
)

// Service defines the back-office account management behavior.
type Service interface {
	List(ctx context.Context) ([]AdminView, error)
	Create(ctx context.Context, req CreateRequest) (*AdminView, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*AdminView, error)
	Delete(ctx context.Context, id int64, actorID int64) error
}

type adminRepository interface {
	List(ctx context.Context) ([]models.Administrator, error)
	FindByID(ctx context.Context, id int64) (*models.Administrator, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, admin *models.Administrator) (*models.Administrator, error)
	Update(ctx context.Context, admin *models.Administrator, columns ...string) error
	Delete(ctx context.Context, id int64) error
	CountActiveSuperAdmins(ctx context.Context) (int64, error)
}

type service struct {
	repo adminRepository
}

// ServiceParams bundles the dependencies required to build an admins service.
type ServiceParams struct {
	Repo adminRepository
}

// NewService constructs an admins service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context) ([]AdminView, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list administrators")
	}
	views := make([]AdminView, 0, len(rows))
	for i := range rows {
		views = append(views, toView(&rows[i]))
	}
	return views, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*AdminView, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
	}

	if err := security.ValidatePasswordPolicy(req.Password); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	role := enums.ActorRoleAdmin
	if req.Role != "" {
		parsed, err := enums.ParseActorRole(req.Role)
		if err != nil || !parsed.IsAdmin() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rol no válido")
		}
		role = parsed
	}

	admin, err := s.repo.Create(ctx, &models.Administrator{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create administrator")
	}
	view := toView(admin)
	return &view, nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*AdminView, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load administrator")
	}
	if admin == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, adminNotFoundMessage)
	}

	// Demoting or deactivating the last active super_admin would lock the
	// back office, so both edits are rejected.
	demotes := req.Role != nil && *req.Role != string(enums.ActorRoleSuperAdmin)
	deactivates := req.IsActive != nil && !*req.IsActive
	if admin.Role == enums.ActorRoleSuperAdmin && admin.IsActive && (demotes || deactivates) {
		supers, err := s.repo.CountActiveSuperAdmins(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count super admins")
		}
		if supers <= 1 {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, lastSuperAdminMessage)
		}
	}

	// A role only changes on an active account, unless the same request
	// reactivates it.
	reactivates := req.IsActive != nil && *req.IsActive
	if req.Role != nil && !admin.IsActive && !reactivates {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, inactiveRoleMessage)
	}

	columns := make([]string, 0, 5)
	if req.Name != nil {
		admin.Name = strings.TrimSpace(*req.Name)
		columns = append(columns, "nombre")
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !strings.EqualFold(email, admin.Email) {
			taken, err := s.repo.EmailExists(ctx, email)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
			}
			if taken {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
			}
		}
		admin.Email = email
		columns = append(columns, "email")
	}
	if req.Password != nil && *req.Password != "" {
		if err := security.ValidatePasswordPolicy(*req.Password); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		admin.PasswordHash = hash
		columns = append(columns, "password")
	}
	if req.Role != nil {
		parsed, err := enums.ParseActorRole(*req.Role)
		if err != nil || !parsed.IsAdmin() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rol no válido")
		}
		admin.Role = parsed
		columns = append(columns, "rol")
	}
	if req.IsActive != nil {
		admin.IsActive = *req.IsActive
		columns = append(columns, "activo")
	}
	if len(columns) == 0 {
		view := toView(admin)
		return &view, nil
	}

	if err := s.repo.Update(ctx, admin, columns...); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update administrator")
	}
	view := toView(admin)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, id int64, actorID int64) error {
	if id == actorID {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "No puedes eliminar tu propia cuenta")
	}

	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load administrator")
	}
	if admin == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, adminNotFoundMessage)
	}

	if admin.Role == enums.ActorRoleSuperAdmin && admin.IsActive {
		supers, err := s.repo.CountActiveSuperAdmins(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count super admins")
		}
		if supers <= 1 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, lastSuperAdminMessage)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete administrator")
	}
	return nil
}
