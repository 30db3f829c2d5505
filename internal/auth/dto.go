package auth

import "github.com/talabarteria/rodriguez-backend/pkg/enums"

// LoginRequest carries storefront or back-office credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserSummary is the account block returned after login or verification.
type UserSummary struct {
	ID       int64           `json:"id"`
	Name     string          `json:"nombre"`
	LastName string          `json:"apellidos"`
	Email    string          `json:"email"`
	Role     enums.ActorRole `json:"rol"`
}

// TokenPair is the access/refresh pair issued on successful authentication.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse wraps the authenticated account and its tokens.
type LoginResponse struct {
	User   UserSummary `json:"usuario"`
	Tokens TokenPair   `json:"tokens"`
}

// RegisterStartRequest is phase one of the two-step registration.
type RegisterStartRequest struct {
	Name     string  `json:"nombre" validate:"required,max=100"`
	LastName string  `json:"apellidos" validate:"required,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Phone    *string `json:"telefono" validate:"omitempty,max=20"`
}

// RegisterStartResponse returns the pending-registration handle. The
// verification code only travels by email.
type RegisterStartResponse struct {
	TempID  string `json:"temp_id"`
	Message string `json:"mensaje"`
}

// VerifyRequest is phase two of registration.
type VerifyRequest struct {
	TempID string `json:"temp_id" validate:"required,uuid"`
	Code   string `json:"codigo" validate:"required,len=6"`
}

// ResendRequest regenerates the verification code for a pending registration.
type ResendRequest struct {
	TempID string `json:"temp_id" validate:"required,uuid"`
}

// RefreshRequest rotates a refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}
