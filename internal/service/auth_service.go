package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/it-hub-api/internal/models"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
)

const minPasswordLength = 4

type sessionStore interface {
	ValidateCredentials(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, user models.User) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.Outcome, error)
}

// LoginRequest carries portal credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest carries the current password and the new one twice.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AuthConfig defines how session access tokens are signed.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// AuthService manages the single portal session and the access tokens bound to it.
type AuthService struct {
	store     sessionStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(store sessionStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = 24 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "it-hub-api"
	}
	return &AuthService{store: store, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login checks credentials, records the account as the current session and issues its access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.store.ValidateCredentials(ctx, req.Username, req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check credentials")
	}
	if user == nil {
		s.logger.Info("login rejected", zap.String("username", req.Username))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid username or password")
	}
	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(user, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	if err := s.store.Login(ctx, *user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start session")
	}
	s.logger.Info("login succeeded", zap.String("user_id", user.ID))

	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        user.Public(),
	}, nil
}

// ValidateToken parses an access token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Authenticate resolves a bearer token to the session account. The token must
// belong to whoever currently holds the session slot.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if user.ID != claims.Subject {
		s.logger.Info("token rejected for replaced session", zap.String("token_user", claims.Subject))
		return nil, appErrors.Clone(appErrors.ErrNoSession, "session has ended")
	}
	return user, nil
}

// Logout clears the session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.Logout(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end session")
	}
	return nil
}

// Current returns the logged-in account or ErrNoSession.
func (s *AuthService) Current(ctx context.Context) (*models.User, error) {
	user, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// ChangePassword replaces the logged-in account's password.
func (s *AuthService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	user, err := s.current(ctx)
	if err != nil {
		return err
	}
	if user.Password != req.CurrentPassword {
		return appErrors.Clone(appErrors.ErrValidation, "current password is incorrect")
	}
	if req.NewPassword != req.ConfirmPassword {
		return appErrors.Clone(appErrors.ErrValidation, "new passwords do not match")
	}
	if len(req.NewPassword) < minPasswordLength {
		return appErrors.Clone(appErrors.ErrValidation, "password is too short")
	}

	user.Password = req.NewPassword
	outcome, err := s.store.UpdateUser(ctx, *user)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	if outcome == models.OutcomeNotFound {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	s.logger.Info("password changed", zap.String("user_id", user.ID))
	return nil
}

func (s *AuthService) generateAccessToken(user *models.User, issuedAt time.Time) (string, error) {
	claims := &models.SessionClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.TokenSecret))
}

func (s *AuthService) current(ctx context.Context) (*models.User, error) {
	user, err := s.store.CurrentUser(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read session")
	}
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrNoSession, "")
	}
	return user, nil
}
