package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sms-go-api/internal/models"
	"github.com/noah-isme/sms-go-api/internal/service"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
	"github.com/noah-isme/sms-go-api/pkg/response"
)

// UserHandler exposes account management endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List returns the session school's accounts, optionally filtered by role.
func (h *UserHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	users, err := h.users.List(c.Request.Context(), claims.SchoolCode, models.UserRole(c.Query("role")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}

// ListTeachers returns teacher accounts.
func (h *UserHandler) ListTeachers(c *gin.Context) {
	claims := claimsFromContext(c)
	users, err := h.users.List(c.Request.Context(), claims.SchoolCode, models.RoleTeacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}

// ListParents returns parent accounts.
func (h *UserHandler) ListParents(c *gin.Context) {
	claims := claimsFromContext(c)
	users, err := h.users.List(c.Request.Context(), claims.SchoolCode, models.RoleParent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}

// Create registers an account in the session school.
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	user, err := h.users.Create(c.Request.Context(), claims.SchoolCode, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// UpdateRole reassigns a user's role.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	user, err := h.users.UpdateRole(c.Request.Context(), claims.SchoolCode, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// UpdatePermissions overrides a user's permission set.
func (h *UserHandler) UpdatePermissions(c *gin.Context) {
	var req models.UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	user, err := h.users.UpdatePermissions(c.Request.Context(), claims.SchoolCode, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// Delete removes an account.
func (h *UserHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.users.Delete(c.Request.Context(), claims.SchoolCode, claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
