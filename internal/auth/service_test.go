package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/talabarteria/rodriguez-backend/pkg/auth"
	"github.com/talabarteria/rodriguez-backend/pkg/config"
	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"github.com/talabarteria/rodriguez-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret-test-secret-test-secret",
	Issuer:            "talabarteria-test",
	ExpirationMinutes: 15,
}

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User), nextID: 1}
}

func (f *fakeUserRepo) seed(user models.User) *models.User {
	user.ID = f.nextID
	f.nextID++
	stored := user
	f.users[stored.ID] = &stored
	return &stored
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = f.nextID
	f.nextID++
	stored := *user
	f.users[stored.ID] = &stored
	return user, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	user, _ := f.FindByEmail(ctx, email)
	return user != nil, nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if user, ok := f.users[id]; ok {
		user.PasswordHash = hash
	}
	return nil
}

type fakeAdminFinder struct {
	admins map[string]*models.Administrator
}

func (f *fakeAdminFinder) FindByEmail(ctx context.Context, email string) (*models.Administrator, error) {
	admin, ok := f.admins[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	copied := *admin
	return &copied, nil
}

type fakeTempUserRepo struct {
	rows map[uuid.UUID]*models.TempUser
}

func newFakeTempUserRepo() *fakeTempUserRepo {
	return &fakeTempUserRepo{rows: make(map[uuid.UUID]*models.TempUser)}
}

func (f *fakeTempUserRepo) Upsert(ctx context.Context, temp *models.TempUser) error {
	for id, row := range f.rows {
		if strings.EqualFold(row.Email, temp.Email) {
			delete(f.rows, id)
		}
	}
	stored := *temp
	f.rows[stored.ID] = &stored
	return nil
}

func (f *fakeTempUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.TempUser, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeTempUserRepo) UpdateCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	if row, ok := f.rows[id]; ok {
		row.VerificationCode = code
		row.ExpiresAt = expiresAt
	}
	return nil
}

func (f *fakeTempUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

type fakeResetTokenRepo struct {
	rows   map[string]*models.PasswordResetToken
	nextID int64
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{rows: make(map[string]*models.PasswordResetToken), nextID: 1}
}

func (f *fakeResetTokenRepo) Replace(ctx context.Context, token *models.PasswordResetToken) error {
	for key, row := range f.rows {
		if row.UserID == token.UserID {
			delete(f.rows, key)
		}
	}
	token.ID = f.nextID
	f.nextID++
	stored := *token
	f.rows[stored.Token] = &stored
	return nil
}

func (f *fakeResetTokenRepo) FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	row, ok := f.rows[token]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeResetTokenRepo) MarkUsed(ctx context.Context, id int64) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.Used = true
		}
	}
	return nil
}

type fakeSessionManager struct {
	generated []string
	revoked   []string
}

func (f *fakeSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	f.generated = append(f.generated, accessID)
	return "refresh-" + accessID, nil
}

func (f *fakeSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "rotated-" + oldAccessID, "refresh-rotated", nil
}

func (f *fakeSessionManager) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type authFixture struct {
	users       *fakeUserRepo
	admins      *fakeAdminFinder
	tempUsers   *fakeTempUserRepo
	resetTokens *fakeResetTokenRepo
	sessions    *fakeSessionManager
	mail        *fakeMailer
	svc         *service
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	fx := &authFixture{
		users:       newFakeUserRepo(),
		admins:      &fakeAdminFinder{admins: make(map[string]*models.Administrator)},
		tempUsers:   newFakeTempUserRepo(),
		resetTokens: newFakeResetTokenRepo(),
		sessions:    &fakeSessionManager{},
		mail:        &fakeMailer{},
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       fx.users,
		AdminRepo:      fx.admins,
		TempUserRepo:   fx.tempUsers,
		ResetTokenRepo: fx.resetTokens,
		SessionManager: fx.sessions,
		Mailer:         fx.mail,
		JWTConfig:      testJWTConfig,
		PublicBaseURL:  "https://talabarteria.mx",
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	fx.svc = svc.(*service)
	return fx
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func expectAuthCode(t *testing.T, err error, code pkgerrors.Code, message string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
	if message != "" && typed.Message() != message {
		t.Fatalf("expected message %q, got %q", message, typed.Message())
	}
}

func TestLogin(t *testing.T) {
	fx := newAuthFixture(t)
	fx.users.seed(models.User{
		Name:         "Pedro",
		LastName:     "Ramírez",
		Email:        "pedro@example.mx",
		PasswordHash: mustHash(t, "Secreta123"),
		IsActive:     true,
	})
	ctx := context.Background()

	resp, err := fx.svc.Login(ctx, LoginRequest{Email: "pedro@example.mx", Password: "Secreta123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.Role != enums.ActorRoleCustomer {
		t.Fatalf("expected cliente role, got %s", resp.User.Role)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatal("expected both tokens issued")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.SubjectID != resp.User.ID {
		t.Fatalf("token subject mismatch: %d vs %d", claims.SubjectID, resp.User.ID)
	}
	if len(fx.sessions.generated) != 1 || fx.sessions.generated[0] != claims.ID {
		t.Fatalf("expected a session keyed by the token jti, got %v", fx.sessions.generated)
	}
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	fx := newAuthFixture(t)
	fx.users.seed(models.User{
		Email:        "pedro@example.mx",
		PasswordHash: mustHash(t, "Secreta123"),
		IsActive:     true,
	})
	ctx := context.Background()

	_, errWrong := fx.svc.Login(ctx, LoginRequest{Email: "pedro@example.mx", Password: "otra"})
	_, errUnknown := fx.svc.Login(ctx, LoginRequest{Email: "nadie@example.mx", Password: "Secreta123"})

	expectAuthCode(t, errWrong, pkgerrors.CodeUnauthorized, "Correo electrónico o contraseña incorrectos")
	expectAuthCode(t, errUnknown, pkgerrors.CodeUnauthorized, "Correo electrónico o contraseña incorrectos")
}

func TestLoginInactiveAccount(t *testing.T) {
	fx := newAuthFixture(t)
	fx.users.seed(models.User{
		Email:        "pedro@example.mx",
		PasswordHash: mustHash(t, "Secreta123"),
		IsActive:     false,
	})

	_, err := fx.svc.Login(context.Background(), LoginRequest{Email: "pedro@example.mx", Password: "Secreta123"})
	expectAuthCode(t, err, pkgerrors.CodeForbidden, "Tu cuenta está desactivada. Contacta al administrador.")

	// The wrong password does not mask the deactivated state.
	_, err = fx.svc.Login(context.Background(), LoginRequest{Email: "pedro@example.mx", Password: "otra"})
	expectAuthCode(t, err, pkgerrors.CodeForbidden, "Tu cuenta está desactivada. Contacta al administrador.")
}

func TestAdminLoginCarriesRole(t *testing.T) {
	fx := newAuthFixture(t)
	fx.admins.admins["rosa@talabarteria.mx"] = &models.Administrator{
		ID:           3,
		Name:         "Rosa",
		Email:        "rosa@talabarteria.mx",
		PasswordHash: mustHash(t, "Secreta123"),
		Role:         enums.ActorRoleSuperAdmin,
		IsActive:     true,
	}

	resp, err := fx.svc.AdminLogin(context.Background(), LoginRequest{Email: "rosa@talabarteria.mx", Password: "Secreta123"})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if resp.User.Role != enums.ActorRoleSuperAdmin {
		t.Fatalf("expected super_admin role, got %s", resp.User.Role)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	fx := newAuthFixture(t)
	if err := fx.svc.Logout(context.Background(), "access-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(fx.sessions.revoked) != 1 || fx.sessions.revoked[0] != "access-1" {
		t.Fatalf("expected session revoked, got %v", fx.sessions.revoked)
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	fx := newAuthFixture(t)
	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now(), pkgAuth.AccessTokenPayload{
		SubjectID: 5,
		Email:     "pedro@example.mx",
		Role:      enums.ActorRoleCustomer,
		JTI:       "old-access",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	pair, err := fx.svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "refresh-old-access",
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.RefreshToken != "refresh-rotated" {
		t.Fatalf("expected rotated refresh token, got %q", pair.RefreshToken)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse new access token: %v", err)
	}
	if claims.SubjectID != 5 || claims.ID != "rotated-old-access" {
		t.Fatalf("unexpected claims: subject=%d jti=%s", claims.SubjectID, claims.ID)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	fx := newAuthFixture(t)
	_, err := fx.svc.Refresh(context.Background(), RefreshRequest{AccessToken: "garbage", RefreshToken: "x"})
	expectAuthCode(t, err, pkgerrors.CodeUnauthorized, "sesión no válida")
}

func TestStartRegistrationParksTempUser(t *testing.T) {
	fx := newAuthFixture(t)

	resp, err := fx.svc.StartRegistration(context.Background(), RegisterStartRequest{
		Name:     "Pedro",
		LastName: "Ramírez",
		Email:    "  Pedro@Example.MX ",
		Password: "Secreta123",
	})
	if err != nil {
		t.Fatalf("start registration: %v", err)
	}

	tempID, err := uuid.Parse(resp.TempID)
	if err != nil {
		t.Fatalf("temp id is not a uuid: %v", err)
	}
	row := fx.tempUsers.rows[tempID]
	if row == nil {
		t.Fatal("expected pending registration stored")
	}
	if row.Email != "pedro@example.mx" {
		t.Fatalf("expected normalized email, got %q", row.Email)
	}
	if row.PasswordHash == "Secreta123" {
		t.Fatal("password must be stored hashed")
	}
	if len(row.VerificationCode) != 6 {
		t.Fatalf("expected 6-digit code, got %q", row.VerificationCode)
	}

	if len(fx.users.users) != 0 {
		t.Fatal("no account may exist before verification")
	}
	if len(fx.mail.sent) != 1 || fx.mail.sent[0].To != "pedro@example.mx" {
		t.Fatalf("expected verification email, got %+v", fx.mail.sent)
	}
	if !strings.Contains(fx.mail.sent[0].Body, row.VerificationCode) {
		t.Fatal("verification email must carry the code")
	}
}

func TestStartRegistrationTakenEmail(t *testing.T) {
	fx := newAuthFixture(t)
	fx.users.seed(models.User{Email: "pedro@example.mx", PasswordHash: "x", IsActive: true})

	_, err := fx.svc.StartRegistration(context.Background(), RegisterStartRequest{
		Name:     "Pedro",
		LastName: "Ramírez",
		Email:    "pedro@example.mx",
		Password: "Secreta123",
	})
	expectAuthCode(t, err, pkgerrors.CodeConflict, "El correo electrónico ya está registrado")
}

func TestVerifyRegistrationPromotesAccount(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	start, err := fx.svc.StartRegistration(ctx, RegisterStartRequest{
		Name:     "Pedro",
		LastName: "Ramírez",
		Email:    "pedro@example.mx",
		Password: "Secreta123",
	})
	if err != nil {
		t.Fatalf("start registration: %v", err)
	}
	tempID := uuid.MustParse(start.TempID)
	code := fx.tempUsers.rows[tempID].VerificationCode

	wrongCode := "000000"
	if code == wrongCode {
		wrongCode = "111111"
	}
	_, err = fx.svc.VerifyRegistration(ctx, VerifyRequest{TempID: start.TempID, Code: wrongCode})
	expectAuthCode(t, err, pkgerrors.CodeValidation, "Código incorrecto")

	resp, err := fx.svc.VerifyRegistration(ctx, VerifyRequest{TempID: start.TempID, Code: code})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if resp.User.Email != "pedro@example.mx" || resp.Tokens.AccessToken == "" {
		t.Fatalf("expected signed-in customer, got %+v", resp)
	}

	if len(fx.users.users) != 1 {
		t.Fatalf("expected one promoted account, got %d", len(fx.users.users))
	}
	if _, ok := fx.tempUsers.rows[tempID]; ok {
		t.Fatal("pending row must be deleted after promotion")
	}
}

func TestVerifyRegistrationExpiredCode(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	start, err := fx.svc.StartRegistration(ctx, RegisterStartRequest{
		Name:     "Pedro",
		LastName: "Ramírez",
		Email:    "pedro@example.mx",
		Password: "Secreta123",
	})
	if err != nil {
		t.Fatalf("start registration: %v", err)
	}
	tempID := uuid.MustParse(start.TempID)
	code := fx.tempUsers.rows[tempID].VerificationCode

	fx.svc.now = func() time.Time { return time.Now().Add(tempUserTTL + time.Minute) }

	_, err = fx.svc.VerifyRegistration(ctx, VerifyRequest{TempID: start.TempID, Code: code})
	expectAuthCode(t, err, pkgerrors.CodeValidation, "El código ha expirado. Solicita uno nuevo.")

	if _, ok := fx.tempUsers.rows[tempID]; ok {
		t.Fatal("expired pending row must be deleted so the email can retry")
	}
}

func TestResendCodeRegeneratesAndExtends(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	start, err := fx.svc.StartRegistration(ctx, RegisterStartRequest{
		Name:     "Pedro",
		LastName: "Ramírez",
		Email:    "pedro@example.mx",
		Password: "Secreta123",
	})
	if err != nil {
		t.Fatalf("start registration: %v", err)
	}
	tempID := uuid.MustParse(start.TempID)
	firstExpiry := fx.tempUsers.rows[tempID].ExpiresAt

	fx.svc.now = func() time.Time { return time.Now().Add(time.Hour) }

	if _, err := fx.svc.ResendCode(ctx, ResendRequest{TempID: start.TempID}); err != nil {
		t.Fatalf("resend: %v", err)
	}

	row := fx.tempUsers.rows[tempID]
	if !row.ExpiresAt.After(firstExpiry) {
		t.Fatal("expected expiry window extended")
	}
	if len(fx.mail.sent) != 2 {
		t.Fatalf("expected second email, got %d", len(fx.mail.sent))
	}
}

func TestForgotPasswordIsEnumerationSafe(t *testing.T) {
	fx := newAuthFixture(t)
	fx.users.seed(models.User{
		Name:         "Pedro",
		Email:        "pedro@example.mx",
		PasswordHash: "x",
		IsActive:     true,
	})
	ctx := context.Background()

	known, err := fx.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "pedro@example.mx"})
	if err != nil {
		t.Fatalf("forgot known: %v", err)
	}
	unknown, err := fx.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "nadie@example.mx"})
	if err != nil {
		t.Fatalf("forgot unknown: %v", err)
	}
	if known != unknown {
		t.Fatalf("responses must be identical: %q vs %q", known, unknown)
	}

	if len(fx.resetTokens.rows) != 1 {
		t.Fatalf("expected one token for the known account, got %d", len(fx.resetTokens.rows))
	}
	if len(fx.mail.sent) != 1 {
		t.Fatalf("expected one email for the known account, got %d", len(fx.mail.sent))
	}
}

func TestForgotPasswordReplacesEarlierToken(t *testing.T) {
	fx := newAuthFixture(t)
	fx.users.seed(models.User{Name: "Pedro", Email: "pedro@example.mx", PasswordHash: "x", IsActive: true})
	ctx := context.Background()

	if _, err := fx.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "pedro@example.mx"}); err != nil {
		t.Fatalf("first forgot: %v", err)
	}
	if _, err := fx.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "pedro@example.mx"}); err != nil {
		t.Fatalf("second forgot: %v", err)
	}
	if len(fx.resetTokens.rows) != 1 {
		t.Fatalf("expected a single live token per user, got %d", len(fx.resetTokens.rows))
	}
}

func TestResetPasswordConsumesToken(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.users.seed(models.User{Name: "Pedro", Email: "pedro@example.mx", PasswordHash: "x", IsActive: true})
	ctx := context.Background()

	if _, err := fx.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "pedro@example.mx"}); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	var token string
	for key := range fx.resetTokens.rows {
		token = key
	}

	if err := fx.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "Nueva1234"}); err != nil {
		t.Fatalf("reset: %v", err)
	}

	ok, err := security.VerifyPassword("Nueva1234", fx.users.users[user.ID].PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password must verify: ok=%v err=%v", ok, err)
	}

	err = fx.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "Nueva1234"})
	expectAuthCode(t, err, pkgerrors.CodeValidation, "El enlace no es válido o ya expiró")
}

func TestResetPasswordExpiredToken(t *testing.T) {
	fx := newAuthFixture(t)
	fx.users.seed(models.User{Name: "Pedro", Email: "pedro@example.mx", PasswordHash: "x", IsActive: true})
	ctx := context.Background()

	if _, err := fx.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "pedro@example.mx"}); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	var token string
	for key := range fx.resetTokens.rows {
		token = key
	}

	fx.svc.now = func() time.Time { return time.Now().Add(resetTokenTTL + time.Minute) }

	err := fx.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "Nueva1234"})
	expectAuthCode(t, err, pkgerrors.CodeValidation, "El enlace no es válido o ya expiró")
}

func TestResetPasswordDeactivatedAccount(t *testing.T) {
	fx := newAuthFixture(t)
	user := fx.users.seed(models.User{Name: "Pedro", Email: "pedro@example.mx", PasswordHash: "x", IsActive: true})
	ctx := context.Background()

	if _, err := fx.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "pedro@example.mx"}); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	var token string
	for key := range fx.resetTokens.rows {
		token = key
	}

	fx.users.users[user.ID].IsActive = false

	err := fx.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "Nueva1234"})
	expectAuthCode(t, err, pkgerrors.CodeForbidden, "Tu cuenta está desactivada. Contacta al administrador.")
	if fx.users.users[user.ID].PasswordHash != "x" {
		t.Fatal("password must not change for a deactivated account")
	}
}

func TestResetPasswordWeakPassword(t *testing.T) {
	fx := newAuthFixture(t)
	fx.users.seed(models.User{Name: "Pedro", Email: "pedro@example.mx", PasswordHash: "x", IsActive: true})
	ctx := context.Background()

	if _, err := fx.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "pedro@example.mx"}); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	var token string
	for key := range fx.resetTokens.rows {
		token = key
	}

	err := fx.svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "corta"})
	expectAuthCode(t, err, pkgerrors.CodeValidation, "")
}
