package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/models"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/store"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/config"
	appErrors "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/errors"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/mailer"
)

// User-facing auth messages keyed by internal condition. The set is closed:
// anything not listed collapses to the generic message so internals never
// leak to the login form.
const (
	authWrongPassword   = "wrong-password"
	authUserNotFound    = "user-not-found"
	authInvalidEmail    = "invalid-email"
	authEmailInUse      = "email-already-in-use"
	authWeakPassword    = "weak-password"
	authTooManyRequests = "too-many-requests"
)

var authMessages = map[string]string{
	authWrongPassword:   "Contraseña incorrecta",
	authUserNotFound:    "Usuario no encontrado",
	authInvalidEmail:    "Email inválido",
	authEmailInUse:      "El email ya está registrado",
	authWeakPassword:    "La contraseña es muy débil",
	authTooManyRequests: "Demasiados intentos, intenta más tarde",
}

func authMessage(condition string) string {
	if msg, ok := authMessages[condition]; ok {
		return msg
	}
	return "Error desconocido"
}

const minPasswordLength = 6

// AuthService gates the admin back office. Admin accounts live in the store's
// admin collection, one document per account; presence there is the
// allow-list.
type AuthService struct {
	store     store.Store
	validator *validator.Validate
	logger    *zap.Logger
	mailer    mailer.Mailer
	jwtCfg    config.JWTConfig
	authCfg   config.AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(st store.Store, validate *validator.Validate, logger *zap.Logger, m mailer.Mailer, jwtCfg config.JWTConfig, authCfg config.AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{store: st, validator: validate, logger: logger, mailer: m, jwtCfg: jwtCfg, authCfg: authCfg}
}

// Login verifies admin credentials and issues a session token. Credential
// failures all surface through the closed message table.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, authMessage(authInvalidEmail))
	}

	admin, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, authMessage(authUserNotFound))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, authMessage(authWrongPassword))
	}

	token, issuedAt, err := s.generateToken(admin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtCfg.Expiration.Seconds()),
		IssuedAt:    issuedAt,
		User: models.UserInfo{
			ID:    admin.ID,
			Email: admin.Email,
			Name:  admin.Name,
		},
	}, nil
}

// RegisterAdmin creates an admin account after checking the registration
// code stored in the config/admin singleton. A configured fallback code
// applies while the singleton does not exist yet, so the first admin can
// bootstrap the allow-list.
func (s *AuthService) RegisterAdmin(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, authMessage(authInvalidEmail))
	}
	if len(req.Password) < minPasswordLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, authMessage(authWeakPassword))
	}

	code, err := s.registrationCode(ctx)
	if err != nil {
		return nil, err
	}
	if code == "" || req.Code != code {
		return nil, appErrors.Clone(appErrors.ErrInvalidAdminCode, "Código de administrador inválido")
	}

	existing, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, authMessage(authEmailInUse))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	name := req.Name
	if name == "" {
		name = "Administrador"
	}

	id, err := s.store.Add(ctx, store.CollectionAdmin, store.Document{
		"email":        req.Email,
		"name":         name,
		"passwordHash": string(hash),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}

	s.logger.Info("admin registered", zap.String("id", id), zap.String("email", req.Email))
	return &models.UserInfo{ID: id, Email: req.Email, Name: name}, nil
}

// Logout acknowledges that the client discarded its token. Tokens are
// stateless, so there is nothing to revoke server side.
func (s *AuthService) Logout(_ context.Context) error {
	return nil
}

// ResetPassword dispatches a reset mail when the address belongs to an
// admin. The outcome is uniform either way, so the endpoint cannot be used
// to probe which addresses exist.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, authMessage(authInvalidEmail))
	}

	admin, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Warn("reset password lookup failed", zap.Error(err))
		return nil
	}
	if admin == nil {
		return nil
	}

	body := fmt.Sprintf(
		"Hola %s,\n\nRecibimos una solicitud para restablecer tu contraseña.\nVisita %s para continuar.\n\nSi no solicitaste este cambio, ignora este mensaje.",
		admin.Name, s.authCfg.ResetURL)
	if err := s.mailer.Send(ctx, admin.Email, "Restablecer contraseña", body); err != nil {
		s.logger.Error("failed to send reset mail", zap.String("email", admin.Email), zap.Error(err))
	}
	return nil
}

// CheckAdminStatus reports allow-list membership for an account id.
func (s *AuthService) CheckAdminStatus(ctx context.Context, id string) (bool, error) {
	_, err := s.store.Get(ctx, store.CollectionAdmin, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admin status")
	}
	return true, nil
}

// ValidateToken parses and verifies a session token, returning the identity
// it was issued to.
func (s *AuthService) ValidateToken(token string) (*models.UserInfo, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	}, jwt.WithIssuer(s.jwtCfg.Issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}

	id, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token subject")
	}
	return &models.UserInfo{ID: id, Email: email, Name: name}, nil
}

func (s *AuthService) generateToken(admin *models.AdminUser) (string, time.Time, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   admin.ID,
		"email": admin.Email,
		"name":  admin.Name,
		"iss":   s.jwtCfg.Issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(s.jwtCfg.Expiration).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, now, nil
}

// findByEmail returns nil without error when no admin carries the address.
func (s *AuthService) findByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	docs, err := s.store.Query(ctx, store.CollectionAdmin, store.Query{
		Equals: map[string]string{"email": email},
		Limit:  1,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up admin")
	}
	if len(docs) == 0 {
		return nil, nil
	}

	doc := docs[0]
	admin := &models.AdminUser{}
	if err := store.Decode(doc, admin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode admin")
	}
	// the hash is excluded from the JSON mapping on purpose, read it directly
	admin.PasswordHash, _ = doc["passwordHash"].(string)
	return admin, nil
}

// registrationCode reads the code from the config/admin singleton, falling
// back to configuration until that document exists.
func (s *AuthService) registrationCode(ctx context.Context) (string, error) {
	doc, err := s.store.Get(ctx, store.CollectionConfig, store.DocAdminConfig)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.authCfg.RegistrationCode, nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin config")
	}
	code, _ := doc["registrationCode"].(string)
	if code == "" {
		code = s.authCfg.RegistrationCode
	}
	return code, nil
}
