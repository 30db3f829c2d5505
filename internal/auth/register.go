package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"github.com/talabarteria/rodriguez-backend/pkg/mailer"
	"github.com/talabarteria/rodriguez-backend/pkg/security"
)

const (
	tempUserTTL = 24 * time.Hour

	codeSentMessage    = "Te enviamos un código de verificación a tu correo"
	codeExpiredMessage = "El código ha expirado. Solicita uno nuevo."
	wrongCodeMessage   = "Código incorrecto"
	emailTakenMessage  = "El correo electrónico ya está registrado"
	tempNotFoundMsg    = "Registro no encontrado. Inicia el proceso de nuevo."
)

// StartRegistration validates the form, hashes the password, and parks the
// account in usuarios_temporales until the emailed code is confirmed.
func (s *service) StartRegistration(ctx context.Context, req RegisterStartRequest) (*RegisterStartResponse, error) {
	if err := security.ValidatePasswordPolicy(req.Password); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	code, err := security.GenerateVerificationCode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}

	temp := &models.TempUser{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(req.Name),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            email,
		PasswordHash:     hash,
		Phone:            req.Phone,
		VerificationCode: code,
		ExpiresAt:        s.now().Add(tempUserTTL),
	}
	if err := s.tempUsers.Upsert(ctx, temp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store pending registration")
	}

	subject, body := mailer.VerificationEmail(temp.Name, code)
	if err := s.mail.Send(ctx, temp.Email, subject, body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send verification email")
	}

	return &RegisterStartResponse{TempID: temp.ID.String(), Message: codeSentMessage}, nil
}

// VerifyRegistration promotes the pending row into usuarios when the code
// matches within its window, deletes the row, and signs the new customer in.
// An expired code also deletes the row so the email can be reused.
func (s *service) VerifyRegistration(ctx context.Context, req VerifyRequest) (*LoginResponse, error) {
	tempID, err := uuid.Parse(req.TempID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, tempNotFoundMsg)
	}

	temp, err := s.tempUsers.FindByID(ctx, tempID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending registration")
	}
	if temp == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, tempNotFoundMsg)
	}

	if s.now().After(temp.ExpiresAt) {
		if err := s.tempUsers.Delete(ctx, temp.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop expired registration")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, codeExpiredMessage)
	}

	if strings.TrimSpace(req.Code) != temp.VerificationCode {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, wrongCodeMessage)
	}

	user, err := s.users.Create(ctx, &models.User{
		Name:         temp.Name,
		LastName:     temp.LastName,
		Email:        temp.Email,
		PasswordHash: temp.PasswordHash,
		Phone:        temp.Phone,
		IsActive:     true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	if err := s.tempUsers.Delete(ctx, temp.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop pending registration")
	}

	return s.issueFor(ctx, user.ID, user.Name, user.LastName, user.Email, enums.ActorRoleCustomer)
}

// ResendCode regenerates the verification code and extends the expiry window.
func (s *service) ResendCode(ctx context.Context, req ResendRequest) (*RegisterStartResponse, error) {
	tempID, err := uuid.Parse(req.TempID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, tempNotFoundMsg)
	}

	temp, err := s.tempUsers.FindByID(ctx, tempID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending registration")
	}
	if temp == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, tempNotFoundMsg)
	}

	code, err := security.GenerateVerificationCode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}
	if err := s.tempUsers.UpdateCode(ctx, temp.ID, code, s.now().Add(tempUserTTL)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refresh code")
	}

	subject, body := mailer.VerificationEmail(temp.Name, code)
	if err := s.mail.Send(ctx, temp.Email, subject, body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send verification email")
	}

	return &RegisterStartResponse{TempID: temp.ID.String(), Message: codeSentMessage}, nil
}
