package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListBySchool(ctx context.Context, schoolCode string, role models.UserRole) ([]models.User, error)
	ExistsByUsername(ctx context.Context, username, schoolCode string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.UserRole, permissions []string) error
	UpdatePermissions(ctx context.Context, id string, permissions []string) error
	Delete(ctx context.Context, id string) error
}

// UserService manages accounts within the caller's school. Superuser accounts
// exist only through bootstrap: they are never created, deleted or demoted
// here, and no caller may delete their own account.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns the accounts of the session school, optionally by role.
func (s *UserService) List(ctx context.Context, schoolCode string, role models.UserRole) ([]models.User, error) {
	users, err := s.repo.ListBySchool(ctx, schoolCode, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// Create registers an account in the session school. Permissions default to
// the role's capability set unless the request overrides them.
func (s *UserService) Create(ctx context.Context, schoolCode string, req models.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if !models.IsValidRole(req.Role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be admin, teacher or parent")
	}

	taken, err := s.repo.ExistsByUsername(ctx, req.Username, schoolCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists in this school")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	permissions := req.Permissions
	if permissions == nil {
		permissions = models.DefaultPermissions(req.Role)
	}

	user := &models.User{
		Username:     req.Username,
		Name:         req.Name,
		Role:         req.Role,
		SchoolCode:   schoolCode,
		Permissions:  permissions,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("school_code", schoolCode))
	return user, nil
}

// UpdateRole reassigns a user's role and resets permissions to the new role's
// defaults. Superusers cannot be demoted.
func (s *UserService) UpdateRole(ctx context.Context, schoolCode, id string, req models.UpdateRoleRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}
	if !models.IsValidRole(req.Role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be admin, teacher or parent")
	}

	user, err := s.findInSchool(ctx, id, schoolCode)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleSuperuser {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "superuser accounts cannot be modified")
	}

	permissions := models.DefaultPermissions(req.Role)
	if err := s.repo.UpdateRole(ctx, id, req.Role, permissions); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}
	user.Role = req.Role
	user.Permissions = permissions
	return user, nil
}

// UpdatePermissions overrides a user's permission set.
func (s *UserService) UpdatePermissions(ctx context.Context, schoolCode, id string, req models.UpdatePermissionsRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid permissions payload")
	}

	user, err := s.findInSchool(ctx, id, schoolCode)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleSuperuser {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "superuser accounts cannot be modified")
	}

	if err := s.repo.UpdatePermissions(ctx, id, req.Permissions); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update permissions")
	}
	user.Permissions = req.Permissions
	return user, nil
}

// Delete removes an account. Callers cannot delete themselves, and superuser
// accounts cannot be deleted by anyone.
func (s *UserService) Delete(ctx context.Context, schoolCode, callerID, id string) error {
	if id == callerID {
		return appErrors.Clone(appErrors.ErrForbidden, "you cannot delete your own account")
	}

	user, err := s.findInSchool(ctx, id, schoolCode)
	if err != nil {
		return err
	}
	if user.Role == models.RoleSuperuser {
		return appErrors.Clone(appErrors.ErrForbidden, "superuser accounts cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("school_code", schoolCode))
	return nil
}

// findInSchool loads a user and hides accounts of other tenants behind the
// same not-found as absent ids.
func (s *UserService) findInSchool(ctx context.Context, id, schoolCode string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role != models.RoleSuperuser && user.SchoolCode != schoolCode {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}
