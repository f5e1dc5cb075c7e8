package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sms-go-api/internal/models"
)

func runMiddleware(t *testing.T, mw gin.HandlerFunc, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	mw(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return rec
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	rec := runMiddleware(t, RequireRoles(models.RoleAdmin), &models.JWTClaims{Role: models.RoleAdmin})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	rec := runMiddleware(t, RequireRoles(models.RoleAdmin), &models.JWTClaims{Role: models.RoleTeacher})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesSuperuserBypasses(t *testing.T) {
	rec := runMiddleware(t, RequireRoles(models.RoleAdmin), &models.JWTClaims{Role: models.RoleSuperuser})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	rec := runMiddleware(t, RequireRoles(models.RoleAdmin), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermissionChecksClaimSet(t *testing.T) {
	held := &models.JWTClaims{Role: models.RoleTeacher, Permissions: []string{models.PermMarkAttendance}}
	rec := runMiddleware(t, RequirePermission(models.PermMarkAttendance), held)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runMiddleware(t, RequirePermission(models.PermManageUsers), held)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermissionSuperuserBypasses(t *testing.T) {
	rec := runMiddleware(t, RequirePermission(models.PermManageUsers), &models.JWTClaims{Role: models.RoleSuperuser})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	rec := runMiddleware(t, JWT(nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsNonBearerHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Basic abc")

	JWT(nil)(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
