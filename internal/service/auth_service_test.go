package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/models"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/store"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/config"
	appErrors "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/errors"
)

type captureMailer struct {
	to      []string
	subject string
	body    string
}

func (m *captureMailer) Send(_ context.Context, toEmail, subject, body string) error {
	m.to = append(m.to, toEmail)
	m.subject = subject
	m.body = body
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *store.MemoryStore, *captureMailer) {
	t.Helper()
	st := store.NewMemoryStore()
	mail := &captureMailer{}
	svc := NewAuthService(st, nil, nil, mail,
		config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "colegio-api"},
		config.AuthConfig{RegistrationCode: "fallback-code", ResetURL: "https://colegio.example.com/reset"},
	)
	return svc, st, mail
}

func seedAdmin(t *testing.T, st *store.MemoryStore, email, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id, err := st.Add(context.Background(), store.CollectionAdmin, store.Document{
		"email":        email,
		"name":         "Administrador",
		"passwordHash": string(hash),
	})
	require.NoError(t, err)
	return id
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, st, _ := newAuthFixture(t)
	id := seedAdmin(t, st, "admin@colegio.edu", "secreta1")

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@colegio.edu",
		Password: "secreta1",
	})
	require.NoError(t, err)
	assert.Equal(t, id, res.User.ID)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	user, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "admin@colegio.edu", user.Email)
}

func TestLoginFailuresUseClosedMessageTable(t *testing.T) {
	svc, st, _ := newAuthFixture(t)
	seedAdmin(t, st, "admin@colegio.edu", "secreta1")

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@colegio.edu",
		Password: "equivocada",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
	assert.Equal(t, "Contraseña incorrecta", appErrors.FromError(err).Message)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "nadie@colegio.edu",
		Password: "secreta1",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
	assert.Equal(t, "Usuario no encontrado", appErrors.FromError(err).Message)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "no-es-un-email",
		Password: "secreta1",
	})
	require.Error(t, err)
	assert.Equal(t, "Email inválido", appErrors.FromError(err).Message)
}

func TestAuthMessageCollapsesUnknownConditions(t *testing.T) {
	assert.Equal(t, "Error desconocido", authMessage("something-new"))
	assert.Equal(t, "Demasiados intentos, intenta más tarde", authMessage(authTooManyRequests))
}

func TestRegisterAdminRequiresCode(t *testing.T) {
	svc, st, _ := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, store.CollectionConfig, store.DocAdminConfig, store.Document{
		"registrationCode": "colegio-2026",
	}, false))

	_, err := svc.RegisterAdmin(ctx, models.RegisterRequest{
		Email:    "nuevo@colegio.edu",
		Password: "secreta1",
		Code:     "incorrecto",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidAdminCode))

	user, err := svc.RegisterAdmin(ctx, models.RegisterRequest{
		Email:    "nuevo@colegio.edu",
		Password: "secreta1",
		Code:     "colegio-2026",
	})
	require.NoError(t, err)
	assert.Equal(t, "Administrador", user.Name)

	isAdmin, err := svc.CheckAdminStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	// the new account can log in immediately
	_, err = svc.Login(ctx, models.LoginRequest{Email: "nuevo@colegio.edu", Password: "secreta1"})
	assert.NoError(t, err)
}

func TestRegisterAdminFallbackCodeAndDuplicates(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	// no config/admin document yet, the configured code bootstraps
	_, err := svc.RegisterAdmin(ctx, models.RegisterRequest{
		Email:    "primero@colegio.edu",
		Password: "secreta1",
		Code:     "fallback-code",
	})
	require.NoError(t, err)

	_, err = svc.RegisterAdmin(ctx, models.RegisterRequest{
		Email:    "primero@colegio.edu",
		Password: "secreta1",
		Code:     "fallback-code",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "El email ya está registrado", appErrors.FromError(err).Message)
}

func TestRegisterAdminRejectsWeakPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.RegisterAdmin(context.Background(), models.RegisterRequest{
		Email:    "nuevo@colegio.edu",
		Password: "corta",
		Code:     "fallback-code",
	})
	require.Error(t, err)
	assert.Equal(t, "La contraseña es muy débil", appErrors.FromError(err).Message)
}

func TestCheckAdminStatusUnknownID(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	isAdmin, err := svc.CheckAdminStatus(context.Background(), "desconocido")
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestResetPasswordUniformOutcome(t *testing.T) {
	svc, st, mail := newAuthFixture(t)
	ctx := context.Background()
	seedAdmin(t, st, "admin@colegio.edu", "secreta1")

	require.NoError(t, svc.ResetPassword(ctx, models.ResetPasswordRequest{Email: "admin@colegio.edu"}))
	require.Len(t, mail.to, 1)
	assert.Equal(t, "admin@colegio.edu", mail.to[0])
	assert.Contains(t, mail.body, "https://colegio.example.com/reset")

	// an unknown address gets the same outcome and no mail
	require.NoError(t, svc.ResetPassword(ctx, models.ResetPasswordRequest{Email: "nadie@colegio.edu"}))
	assert.Len(t, mail.to, 1)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
