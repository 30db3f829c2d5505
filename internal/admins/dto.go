package admins

import (
	"time"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
)

// AdminView is the wire shape of a back-office account. The password hash
// never leaves the service.
type AdminView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nombre"`
	Email     string    `json:"email"`
	Role      string    `json:"rol"`
	IsActive  bool      `json:"activo"`
	CreatedAt time.Time `json:"fecha_creacion"`
}

func toView(admin *models.Administrator) AdminView {
	return AdminView{
		ID:        admin.ID,
		Name:      admin.Name,
		Email:     admin.Email,
		Role:      admin.Role.String(),
		IsActive:  admin.IsActive,
		CreatedAt: admin.CreatedAt,
	}
}

// CreateRequest is the payload for registering a new administrator.
type CreateRequest struct {
	Name     string `json:"nombre" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"rol" validate:"omitempty,oneof=admin super_admin"`
}

// UpdateRequest carries partial edits. Nil fields keep their stored value.
type UpdateRequest struct {
	Name     *string `json:"nombre" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password"`
	Role     *string `json:"rol" validate:"omitempty,oneof=admin super_admin"`
	IsActive *bool   `json:"activo"`
}
