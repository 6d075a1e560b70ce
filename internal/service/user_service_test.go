package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/internal/repository"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
)

func TestUserServiceCreateDefaults(t *testing.T) {
	svc := NewUserService(newSeededCatalog(t), &sequenceIDs{}, nil, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{Username: "mona", Password: "pw12"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", user.ID)
	assert.Equal(t, "mona", user.FullName)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.CreatedAt)
}

func TestUserServiceCreateRejectsDuplicateUsername(t *testing.T) {
	svc := NewUserService(newSeededCatalog(t), &sequenceIDs{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{Username: "Ahmed@Ali", Password: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUsernameTaken))
	assert.Equal(t, http.StatusConflict, appErrors.StatusOf(err))
}

func TestUserServiceCreateValidation(t *testing.T) {
	svc := NewUserService(newSeededCatalog(t), &sequenceIDs{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{Username: "", Password: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(context.Background(), CreateUserRequest{Username: "a", Password: "x", Role: "guest"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUserServiceListHidesPasswords(t *testing.T) {
	svc := NewUserService(newSeededCatalog(t), &sequenceIDs{}, nil, nil)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].Password)
	assert.Equal(t, "Ahmed@Ali", users[0].Username)
}

func TestUserServiceUpdate(t *testing.T) {
	catalog := newSeededCatalog(t)
	svc := NewUserService(catalog, &sequenceIDs{}, nil, nil)
	name := "Ahmed the Admin"
	role := string(models.RoleEditor)

	user, err := svc.Update(context.Background(), repository.DefaultAdminID, UpdateUserRequest{FullName: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, name, user.FullName)
	assert.Equal(t, models.RoleEditor, user.Role)

	stored, err := catalog.FindUser(context.Background(), repository.DefaultAdminID)
	require.NoError(t, err)
	assert.Equal(t, "Ahmed@Ali", stored.Password)

	_, err = svc.Update(context.Background(), "missing", UpdateUserRequest{FullName: &name})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	bad := "wizard"
	_, err = svc.Update(context.Background(), repository.DefaultAdminID, UpdateUserRequest{Role: &bad})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUserServiceDeleteGuards(t *testing.T) {
	svc := NewUserService(newSeededCatalog(t), &sequenceIDs{}, nil, nil)
	ctx := context.Background()

	err := svc.Delete(ctx, repository.DefaultAdminID)
	assert.True(t, errors.Is(err, appErrors.ErrLastUser))

	created, err := svc.Create(ctx, CreateUserRequest{Username: "sara", Password: "pw"})
	require.NoError(t, err)

	err = svc.Delete(ctx, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, svc.Delete(ctx, created.ID))
}

func TestUserServiceKeepsOneStaffAccount(t *testing.T) {
	catalog := newSeededCatalog(t)
	svc := NewUserService(catalog, &sequenceIDs{}, nil, nil)
	ctx := context.Background()
	student := string(models.RoleStudent)

	_, err := svc.Update(ctx, repository.DefaultAdminID, UpdateUserRequest{Role: &student})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrLastStaff))
	assert.Equal(t, http.StatusConflict, appErrors.StatusOf(err))

	stored, err := catalog.FindUser(ctx, repository.DefaultAdminID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, stored.Role)

	pupil, err := svc.Create(ctx, CreateUserRequest{Username: "pupil", Password: "pw", Role: models.RoleStudent})
	require.NoError(t, err)

	err = svc.Delete(ctx, repository.DefaultAdminID)
	assert.True(t, errors.Is(err, appErrors.ErrLastStaff))
	_, err = svc.Update(ctx, repository.DefaultAdminID, UpdateUserRequest{Role: &student})
	assert.True(t, errors.Is(err, appErrors.ErrLastStaff))

	_, err = svc.Update(ctx, pupil.ID, UpdateUserRequest{Role: &student})
	require.NoError(t, err)

	editor, err := svc.Create(ctx, CreateUserRequest{Username: "ed", Password: "pw", Role: models.RoleEditor})
	require.NoError(t, err)

	demoted, err := svc.Update(ctx, repository.DefaultAdminID, UpdateUserRequest{Role: &student})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, demoted.Role)

	err = svc.Delete(ctx, editor.ID)
	assert.True(t, errors.Is(err, appErrors.ErrLastStaff))
}
