package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type mockUserRepo struct {
	users   map[string]*models.User
	deleted []string
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ListBySchool(ctx context.Context, schoolCode string, role models.UserRole) ([]models.User, error) {
	out := []models.User{}
	for _, user := range m.users {
		if user.SchoolCode != schoolCode {
			continue
		}
		if role != "" && user.Role != role {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username, schoolCode string) (bool, error) {
	for _, user := range m.users {
		if user.Username == username && user.SchoolCode == schoolCode {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = map[string]*models.User{}
	}
	if user.ID == "" {
		user.ID = "user-" + user.Username
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role models.UserRole, permissions []string) error {
	if user, ok := m.users[id]; ok {
		user.Role = role
		user.Permissions = permissions
		return nil
	}
	return sql.ErrNoRows
}

func (m *mockUserRepo) UpdatePermissions(ctx context.Context, id string, permissions []string) error {
	if user, ok := m.users[id]; ok {
		user.Permissions = permissions
		return nil
	}
	return sql.ErrNoRows
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func userFixture() (*UserService, *mockUserRepo) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"admin-1": {ID: "admin-1", Username: "admin", Role: models.RoleAdmin, SchoolCode: "GHS"},
		"teach-1": {ID: "teach-1", Username: "teacher", Role: models.RoleTeacher, SchoolCode: "GHS"},
		"root-1":  {ID: "root-1", Username: "root", Role: models.RoleSuperuser, SchoolCode: "JTECH"},
		"other-1": {ID: "other-1", Username: "other", Role: models.RoleTeacher, SchoolCode: "WPS"},
	}}
	return NewUserService(repo, validator.New(), zap.NewNop()), repo
}

func TestUserServiceCreateAppliesRoleDefaults(t *testing.T) {
	svc, repo := userFixture()

	user, err := svc.Create(context.Background(), "GHS", models.CreateUserRequest{
		Username: "newteacher",
		Name:     "New Teacher",
		Password: "Password@123",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, models.DefaultPermissions(models.RoleTeacher), []string(user.Permissions))
	assert.Equal(t, "GHS", user.SchoolCode)
	assert.NotEmpty(t, repo.users[user.ID].PasswordHash)
	assert.NotEqual(t, "Password@123", repo.users[user.ID].PasswordHash)
}

func TestUserServiceCreateWithPermissionOverride(t *testing.T) {
	svc, _ := userFixture()

	user, err := svc.Create(context.Background(), "GHS", models.CreateUserRequest{
		Username:    "limited",
		Name:        "Limited Teacher",
		Password:    "Password@123",
		Role:        models.RoleTeacher,
		Permissions: []string{models.PermMarkAttendance},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{models.PermMarkAttendance}, []string(user.Permissions))
}

func TestUserServiceCreateSuperuserRejected(t *testing.T) {
	svc, _ := userFixture()

	_, err := svc.Create(context.Background(), "GHS", models.CreateUserRequest{
		Username: "root2",
		Name:     "Root Two",
		Password: "Password@123",
		Role:     models.RoleSuperuser,
	})
	requireAppError(t, err, appErrors.ErrValidation.Code)
}

func TestUserServiceCreateDuplicateUsername(t *testing.T) {
	svc, _ := userFixture()

	_, err := svc.Create(context.Background(), "GHS", models.CreateUserRequest{
		Username: "teacher",
		Name:     "Another Teacher",
		Password: "Password@123",
		Role:     models.RoleTeacher,
	})
	requireAppError(t, err, appErrors.ErrConflict.Code)
}

func TestUserServiceUpdateRoleResetsPermissions(t *testing.T) {
	svc, repo := userFixture()

	user, err := svc.UpdateRole(context.Background(), "GHS", "teach-1", models.UpdateRoleRequest{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.ElementsMatch(t, models.DefaultPermissions(models.RoleAdmin), []string(repo.users["teach-1"].Permissions))
}

func TestUserServiceDeleteSelfForbidden(t *testing.T) {
	svc, _ := userFixture()

	err := svc.Delete(context.Background(), "GHS", "admin-1", "admin-1")
	requireAppError(t, err, appErrors.ErrForbidden.Code)
}

func TestUserServiceDeleteSuperuserForbidden(t *testing.T) {
	svc, _ := userFixture()

	err := svc.Delete(context.Background(), "JTECH", "admin-1", "root-1")
	requireAppError(t, err, appErrors.ErrForbidden.Code)
}

func TestUserServiceDemoteSuperuserForbidden(t *testing.T) {
	svc, _ := userFixture()

	_, err := svc.UpdateRole(context.Background(), "JTECH", "root-1", models.UpdateRoleRequest{Role: models.RoleAdmin})
	requireAppError(t, err, appErrors.ErrForbidden.Code)
}

func TestUserServiceCrossTenantReadsAsNotFound(t *testing.T) {
	svc, _ := userFixture()

	// other-1 belongs to WPS; a GHS session cannot see or delete it.
	err := svc.Delete(context.Background(), "GHS", "admin-1", "other-1")
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestUserServiceDelete(t *testing.T) {
	svc, repo := userFixture()

	err := svc.Delete(context.Background(), "GHS", "admin-1", "teach-1")
	require.NoError(t, err)
	assert.Contains(t, repo.deleted, "teach-1")
}
