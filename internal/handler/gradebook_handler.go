package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sms-go-api/internal/models"
	"github.com/noah-isme/sms-go-api/internal/service"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
	"github.com/noah-isme/sms-go-api/pkg/response"
)

// GradebookHandler exposes gradebook endpoints.
type GradebookHandler struct {
	gradebook *service.GradebookService
}

// NewGradebookHandler constructs GradebookHandler.
func NewGradebookHandler(gradebook *service.GradebookService) *GradebookHandler {
	return &GradebookHandler{gradebook: gradebook}
}

// Save scores and stores all subject grades for one student and term.
func (h *GradebookHandler) Save(c *gin.Context) {
	var req models.SaveGradebookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.gradebook.Save(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// List returns gradebook entries matching the query filters.
func (h *GradebookHandler) List(c *gin.Context) {
	filter := models.GradebookFilter{
		StudentID:    c.Query("student_id"),
		ClassID:      c.Query("class_id"),
		Term:         c.Query("term"),
		AcademicYear: c.Query("academic_year"),
	}
	entries, err := h.gradebook.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// Get fetches one gradebook entry.
func (h *GradebookHandler) Get(c *gin.Context) {
	entry, err := h.gradebook.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry)
}

// Delete removes a gradebook entry.
func (h *GradebookHandler) Delete(c *gin.Context) {
	if err := h.gradebook.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
