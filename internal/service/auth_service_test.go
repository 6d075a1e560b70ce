package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/internal/repository"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
)

var testAuthConfig = AuthConfig{TokenSecret: "test-secret", TokenExpiry: time.Hour}

func TestAuthServiceLoginAndCurrent(t *testing.T) {
	svc := NewAuthService(newSeededCatalog(t), nil, nil, testAuthConfig)
	ctx := context.Background()

	_, err := svc.Current(ctx)
	assert.True(t, errors.Is(err, appErrors.ErrNoSession))

	_, err = svc.Login(ctx, LoginRequest{Username: "Ahmed@Ali", Password: "nope"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	session, err := svc.Login(ctx, LoginRequest{Username: "Ahmed@Ali", Password: "Ahmed@Ali"})
	require.NoError(t, err)
	assert.Equal(t, repository.DefaultAdminID, session.User.ID)
	assert.Empty(t, session.User.Password)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, int64(3600), session.ExpiresIn)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.DefaultAdminID, current.ID)

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Current(ctx)
	assert.True(t, errors.Is(err, appErrors.ErrNoSession))
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc := NewAuthService(newSeededCatalog(t), nil, nil, testAuthConfig)

	_, err := svc.Login(context.Background(), LoginRequest{Username: " ", Password: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAuthServiceChangePassword(t *testing.T) {
	catalog := newSeededCatalog(t)
	svc := NewAuthService(catalog, nil, nil, testAuthConfig)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, ChangePasswordRequest{CurrentPassword: "Ahmed@Ali", NewPassword: "abcd", ConfirmPassword: "abcd"})
	assert.True(t, errors.Is(err, appErrors.ErrNoSession))

	_, err = svc.Login(ctx, LoginRequest{Username: "Ahmed@Ali", Password: "Ahmed@Ali"})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  ChangePasswordRequest
		msg  string
	}{
		{"wrong current", ChangePasswordRequest{CurrentPassword: "x", NewPassword: "abcd", ConfirmPassword: "abcd"}, "current password is incorrect"},
		{"mismatch", ChangePasswordRequest{CurrentPassword: "Ahmed@Ali", NewPassword: "abcd", ConfirmPassword: "abce"}, "new passwords do not match"},
		{"too short", ChangePasswordRequest{CurrentPassword: "Ahmed@Ali", NewPassword: "abc", ConfirmPassword: "abc"}, "password is too short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ChangePassword(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
			assert.Equal(t, tc.msg, appErrors.FromError(err).Message)
		})
	}

	require.NoError(t, svc.ChangePassword(ctx, ChangePasswordRequest{CurrentPassword: "Ahmed@Ali", NewPassword: "s3cret", ConfirmPassword: "s3cret"}))

	session, err := catalog.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", session.Password)

	user, err := catalog.ValidateCredentials(ctx, "Ahmed@Ali", "s3cret")
	require.NoError(t, err)
	assert.NotNil(t, user)
}

func TestAuthServiceAuthenticate(t *testing.T) {
	catalog := newSeededCatalog(t)
	svc := NewAuthService(catalog, nil, nil, testAuthConfig)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "not-a-token")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	admin, err := svc.Login(ctx, LoginRequest{Username: "Ahmed@Ali", Password: "Ahmed@Ali"})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, admin.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, repository.DefaultAdminID, user.ID)

	claims, err := svc.ValidateToken(admin.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, repository.DefaultAdminID, claims.Subject)
	assert.Equal(t, "it-hub-api", claims.Issuer)

	foreign := NewAuthService(catalog, nil, nil, AuthConfig{TokenSecret: "other-secret"})
	_, err = foreign.Authenticate(ctx, admin.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Authenticate(ctx, admin.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrNoSession))
}

func TestAuthServiceTokenFollowsSessionHolder(t *testing.T) {
	catalog := newSeededCatalog(t)
	svc := NewAuthService(catalog, nil, nil, testAuthConfig)
	ctx := context.Background()
	users := NewUserService(catalog, &sequenceIDs{}, nil, nil)

	_, err := users.Create(ctx, CreateUserRequest{Username: "editor", Password: "pw", Role: models.RoleEditor})
	require.NoError(t, err)

	admin, err := svc.Login(ctx, LoginRequest{Username: "Ahmed@Ali", Password: "Ahmed@Ali"})
	require.NoError(t, err)
	editor, err := svc.Login(ctx, LoginRequest{Username: "editor", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, admin.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrNoSession))

	user, err := svc.Authenticate(ctx, editor.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "editor", user.Username)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := NewAuthService(newSeededCatalog(t), nil, nil, testAuthConfig)
	ctx := context.Background()
	issued := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	session, err := svc.Login(ctx, LoginRequest{Username: "Ahmed@Ali", Password: "Ahmed@Ali"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, session.AccessToken)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.Authenticate(ctx, session.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
