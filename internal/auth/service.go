package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pkgAuth "github.com/talabarteria/rodriguez-backend/pkg/auth"
	"github.com/talabarteria/rodriguez-backend/pkg/auth/session"
	"github.com/talabarteria/rodriguez-backend/pkg/config"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"github.com/talabarteria/rodriguez-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "Correo electrónico o contraseña incorrectos"
	inactiveAccountMessage    = "Tu cuenta está desactivada. Contacta al administrador."
)

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error)

	StartRegistration(ctx context.Context, req RegisterStartRequest) (*RegisterStartResponse, error)
	VerifyRegistration(ctx context.Context, req VerifyRequest) (*LoginResponse, error)
	ResendCode(ctx context.Context, req ResendRequest) (*RegisterStartResponse, error)

	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (string, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type adminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Administrator, error)
}

type tempUserRepository interface {
	Upsert(ctx context.Context, temp *models.TempUser) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.TempUser, error)
	UpdateCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type resetTokenRepository interface {
	Replace(ctx context.Context, token *models.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id int64) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type codeMailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type service struct {
	users       userRepository
	admins      adminRepository
	tempUsers   tempUserRepository
	resetTokens resetTokenRepository
	session     sessionManager
	mail        codeMailer
	jwtCfg      config.JWTConfig
	baseURL     string
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	AdminRepo      adminRepository
	TempUserRepo   tempUserRepository
	ResetTokenRepo resetTokenRepository
	SessionManager sessionManager
	Mailer         codeMailer
	JWTConfig      config.JWTConfig
	PublicBaseURL  string
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.AdminRepo == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if params.TempUserRepo == nil {
		return nil, fmt.Errorf("temp user repository is required")
	}
	if params.ResetTokenRepo == nil {
		return nil, fmt.Errorf("reset token repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	return &service{
		users:       params.UserRepo,
		admins:      params.AdminRepo,
		tempUsers:   params.TempUserRepo,
		resetTokens: params.ResetTokenRepo,
		session:     params.SessionManager,
		mail:        params.Mailer,
		jwtCfg:      params.JWTConfig,
		baseURL:     params.PublicBaseURL,
		now:         time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	// A deactivated account is reported as such even when the password is wrong.
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, inactiveAccountMessage)
	}

	match, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.issueFor(ctx, user.ID, user.Name, user.LastName, user.Email, enums.ActorRoleCustomer)
}

func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	admin, err := s.admins.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load administrator")
	}
	if admin == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, inactiveAccountMessage)
	}

	match, err := security.VerifyPassword(req.Password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.issueFor(ctx, admin.ID, admin.Name, "", admin.Email, admin.Role)
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sesión no válida")
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sesión no válida")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		SubjectID: claims.SubjectID,
		Email:     claims.Email,
		Role:      claims.Role,
		JTI:       newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

func (s *service) issueFor(ctx context.Context, id int64, name, lastName, email string, role enums.ActorRole) (*LoginResponse, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		SubjectID: id,
		Email:     email,
		Role:      role,
		JTI:       accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create session")
	}

	return &LoginResponse{
		User: UserSummary{
			ID:       id,
			Name:     name,
			LastName: lastName,
			Email:    email,
			Role:     role,
		},
		Tokens: TokenPair{AccessToken: accessToken, RefreshToken: refreshToken},
	}, nil
}
