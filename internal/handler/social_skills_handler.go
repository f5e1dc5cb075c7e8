package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sms-go-api/internal/models"
	"github.com/noah-isme/sms-go-api/internal/service"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
	"github.com/noah-isme/sms-go-api/pkg/response"
)

// SocialSkillsHandler exposes social skills assessment endpoints.
type SocialSkillsHandler struct {
	skills *service.SocialSkillsService
}

// NewSocialSkillsHandler constructs SocialSkillsHandler.
func NewSocialSkillsHandler(skills *service.SocialSkillsService) *SocialSkillsHandler {
	return &SocialSkillsHandler{skills: skills}
}

// Save stores a student's skill ratings for one term.
func (h *SocialSkillsHandler) Save(c *gin.Context) {
	var req models.SaveSocialSkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.skills.Save(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// ListForStudent returns a student's assessments, optionally narrowed to one
// term.
func (h *SocialSkillsHandler) ListForStudent(c *gin.Context) {
	entries, err := h.skills.ListForStudent(c.Request.Context(), claimsFromContext(c),
		c.Param("student_id"), c.Query("term"), c.Query("academic_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}
