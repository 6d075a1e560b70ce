package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/it-hub-api/internal/models"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
	"github.com/noah-isme/it-hub-api/pkg/idgen"
)

type userStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	FindUser(ctx context.Context, id string) (*models.User, error)
	AddUser(ctx context.Context, user models.User) error
	UpdateUser(ctx context.Context, user models.User) (models.Outcome, error)
	DeleteUser(ctx context.Context, id string) (models.Outcome, error)
}

// CreateUserRequest payload for creating portal accounts.
type CreateUserRequest struct {
	Username string          `json:"username" validate:"required"`
	Password string          `json:"password" validate:"required"`
	FullName string          `json:"fullName"`
	Role     models.UserRole `json:"role" validate:"omitempty,oneof=super_admin admin editor student"`
}

// UpdateUserRequest payload for editing account details.
type UpdateUserRequest struct {
	FullName *string `json:"fullName"`
	Role     *string `json:"role" validate:"omitempty,oneof=super_admin admin editor student"`
}

// UserService handles account management.
type UserService struct {
	store     userStore
	ids       idgen.Generator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService constructs a user service.
func NewUserService(store userStore, ids idgen.Generator, validate *validator.Validate, logger *zap.Logger) *UserService {
	if ids == nil {
		ids = idgen.NewTimestampGenerator()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: store, ids: ids, validator: validate, logger: logger, now: time.Now}
}

// List returns all accounts without their passwords.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	public := make([]models.User, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	return public, nil
}

// Create adds an account after checking the username is free.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	for _, u := range users {
		if u.Username == req.Username {
			return nil, appErrors.Clone(appErrors.ErrUsernameTaken, "")
		}
	}

	if req.Role == "" {
		req.Role = models.RoleAdmin
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName = req.Username
	}
	user := models.User{
		ID:        s.ids.NewID(),
		Username:  req.Username,
		Password:  req.Password,
		Role:      req.Role,
		FullName:  fullName,
		CreatedAt: s.now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.store.AddUser(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	public := user.Public()
	return &public, nil
}

// Update changes the full name and/or role of an account.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	user, err := s.store.FindUser(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}

	if req.FullName != nil {
		if name := strings.TrimSpace(*req.FullName); name != "" {
			user.FullName = name
		}
	}
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		if !role.IsStaff() {
			users, err := s.store.ListUsers(ctx)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
			}
			if isLastStaff(users, user.ID) {
				return nil, appErrors.Clone(appErrors.ErrLastStaff, "")
			}
		}
		user.Role = role
	}

	outcome, err := s.store.UpdateUser(ctx, *user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	if outcome == models.OutcomeNotFound {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	public := user.Public()
	return &public, nil
}

// Delete removes an account. Neither the last remaining account nor the last
// staff account can be deleted.
func (s *UserService) Delete(ctx context.Context, id string) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}
	if len(users) > 1 && isLastStaff(users, id) {
		return appErrors.Clone(appErrors.ErrLastStaff, "")
	}

	outcome, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	switch outcome {
	case models.OutcomeRefused:
		return appErrors.Clone(appErrors.ErrLastUser, "")
	case models.OutcomeNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

// isLastStaff reports whether id is the only account able to reach the administration area.
func isLastStaff(users []models.User, id string) bool {
	found := false
	for _, u := range users {
		if !u.Role.IsStaff() {
			continue
		}
		if u.ID != id {
			return false
		}
		found = true
	}
	return found
}
