package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"github.com/talabarteria/rodriguez-backend/pkg/mailer"
	"github.com/talabarteria/rodriguez-backend/pkg/security"
)

const (
	resetTokenTTL = 24 * time.Hour

	// The same response goes out whether or not the email exists, so the
	// endpoint cannot be used to probe for accounts.
	forgotPasswordMessage = "Si el correo existe, recibirás instrucciones para restablecer tu contraseña"

	invalidResetTokenMessage = "El enlace no es válido o ya expiró"
)

// ForgotPassword issues a reset token for known emails and returns the same
// message either way.
func (s *service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (string, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil || !user.IsActive {
		return forgotPasswordMessage, nil
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(resetTokenTTL),
	}
	if err := s.resetTokens.Replace(ctx, token); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}

	resetURL := fmt.Sprintf("%s/restablecer-password?token=%s", s.baseURL, token.Token)
	subject, body := mailer.PasswordResetEmail(user.Name, resetURL)
	if err := s.mail.Send(ctx, user.Email, subject, body); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send reset email")
	}

	return forgotPasswordMessage, nil
}

// ResetPassword consumes a token: it must exist, be unused, and be inside its
// 24h window. The new password goes through the same policy as registration.
func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	row, err := s.resetTokens.FindByToken(ctx, req.Token)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reset token")
	}
	if row == nil || row.Used || s.now().After(row.ExpiresAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidResetTokenMessage)
	}

	// The account may have been deactivated after the token went out.
	user, err := s.users.FindByID(ctx, row.UserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil || !user.IsActive {
		return pkgerrors.New(pkgerrors.CodeForbidden, inactiveAccountMessage)
	}

	if err := security.ValidatePasswordPolicy(req.Password); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, row.UserID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	if err := s.resetTokens.MarkUsed(ctx, row.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark token used")
	}
	return nil
}
