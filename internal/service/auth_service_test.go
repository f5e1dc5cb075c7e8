package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type mockAuthUsers struct {
	bySchool  map[string]*models.User
	superuser *models.User
	byID      map[string]*models.User

	passwordUpdated string
}

func (m *mockAuthUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.byID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUsers) FindByUsernameInSchool(ctx context.Context, username, schoolCode string) (*models.User, error) {
	if user, ok := m.bySchool[username+"@"+schoolCode]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUsers) FindSuperuserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.superuser != nil && m.superuser.Username == username {
		return m.superuser, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.passwordUpdated = passwordHash
	return nil
}

type mockAuthSchools struct {
	schools map[string]*models.School
}

func (m *mockAuthSchools) FindByCode(ctx context.Context, code string) (*models.School, error) {
	if school, ok := m.schools[code]; ok {
		return school, nil
	}
	return nil, sql.ErrNoRows
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(hash)
}

func authFixture(t *testing.T) (*AuthService, *mockAuthUsers) {
	t.Helper()
	admin := &models.User{
		ID: "admin-1", Username: "admin", Name: "Admin", Role: models.RoleAdmin,
		SchoolCode: "GHS", Permissions: models.DefaultPermissions(models.RoleAdmin),
		PasswordHash: hashOf(t, "Password@123"),
	}
	root := &models.User{
		ID: "root-1", Username: "root", Name: "Root", Role: models.RoleSuperuser,
		SchoolCode:   "JTECH",
		PasswordHash: hashOf(t, "RootPass@123"),
	}
	users := &mockAuthUsers{
		bySchool:  map[string]*models.User{"admin@GHS": admin},
		superuser: root,
		byID:      map[string]*models.User{"admin-1": admin, "root-1": root},
	}
	schools := &mockAuthSchools{schools: map[string]*models.School{
		"GHS":   {SchoolCode: "GHS", Name: "Greenfield", IsActive: true},
		"JTECH": {SchoolCode: "JTECH", Name: "Bootstrap", IsActive: true},
		"CLOSED": {SchoolCode: "CLOSED", Name: "Closed", IsActive: false},
	}}
	svc := NewAuthService(users, schools, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "secret",
		Expiration: time.Hour,
		Issuer:     "sms-api",
	})
	return svc, users
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, _ := authFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		SchoolCode: "ghs", Username: "admin", Password: "Password@123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "GHS", res.User.SchoolCode)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
}

func TestAuthServiceLoginUnknownSchool(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		SchoolCode: "NOPE", Username: "admin", Password: "Password@123",
	})
	requireAppError(t, err, appErrors.ErrInvalidCredentials.Code)
}

func TestAuthServiceLoginInactiveSchool(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		SchoolCode: "CLOSED", Username: "admin", Password: "Password@123",
	})
	requireAppError(t, err, appErrors.ErrInvalidCredentials.Code)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		SchoolCode: "GHS", Username: "admin", Password: "wrong",
	})
	requireAppError(t, err, appErrors.ErrInvalidCredentials.Code)
}

func TestAuthServiceLoginWrongSchoolForUser(t *testing.T) {
	svc, _ := authFixture(t)

	// The admin account lives in GHS only; logging into JTECH with it fails.
	_, err := svc.Login(context.Background(), models.LoginRequest{
		SchoolCode: "JTECH", Username: "admin", Password: "Password@123",
	})
	requireAppError(t, err, appErrors.ErrInvalidCredentials.Code)
}

func TestAuthServiceSuperuserEntersAnySchool(t *testing.T) {
	svc, _ := authFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		SchoolCode: "GHS", Username: "root", Password: "RootPass@123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperuser, res.User.Role)
	assert.Equal(t, "GHS", res.User.SchoolCode)

	claims, err := svc.ValidateToken(context.Background(), res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "GHS", claims.SchoolCode)
	assert.Equal(t, "root-1", claims.UserID)
}

func TestAuthServiceValidateTokenRoundTrip(t *testing.T) {
	svc, _ := authFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		SchoolCode: "GHS", Username: "admin", Password: "Password@123",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.True(t, claims.HasPermission(models.PermManageUsers))
	assert.False(t, claims.HasPermission(models.PermManageSchools))
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	expired := NewAuthService(&mockAuthUsers{}, &mockAuthSchools{}, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "secret",
		Expiration: -time.Minute,
	})
	token, _, err := expired.generateToken(&models.User{ID: "u1", Role: models.RoleAdmin}, "GHS")
	require.NoError(t, err)

	_, err = expired.ValidateToken(context.Background(), token)
	requireAppError(t, err, appErrors.ErrTokenExpired.Code)
}

func TestAuthServiceValidateTokenMalformed(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	requireAppError(t, err, appErrors.ErrUnauthorized.Code)
}

func TestAuthServiceValidateTokenOrphaned(t *testing.T) {
	svc, users := authFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		SchoolCode: "GHS", Username: "admin", Password: "Password@123",
	})
	require.NoError(t, err)

	delete(users.byID, "admin-1")
	_, err = svc.ValidateToken(context.Background(), res.AccessToken)
	requireAppError(t, err, appErrors.ErrUnauthorized.Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, users := authFixture(t)

	err := svc.ChangePassword(context.Background(), "admin-1", models.ChangePasswordRequest{
		OldPassword: "Password@123",
		NewPassword: "NewPassword@456",
	})
	require.NoError(t, err)
	require.NotEmpty(t, users.passwordUpdated)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.passwordUpdated), []byte("NewPassword@456")))
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	svc, _ := authFixture(t)

	err := svc.ChangePassword(context.Background(), "admin-1", models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "NewPassword@456",
	})
	requireAppError(t, err, appErrors.ErrForbidden.Code)
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, code, appErr.Code)
}
