package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sms-go-api/internal/service"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
	"github.com/noah-isme/sms-go-api/pkg/response"
)

// RosterHandler exposes CSV import and export endpoints.
type RosterHandler struct {
	roster *service.RosterService
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(roster *service.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// StudentTemplate downloads the student import template.
func (h *RosterHandler) StudentTemplate(c *gin.Context) {
	data, err := h.roster.StudentTemplate()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students-template.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// TeacherTemplate downloads the teacher import template.
func (h *RosterHandler) TeacherTemplate(c *gin.Context) {
	data, err := h.roster.TeacherTemplate()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="teachers-template.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportStudents downloads the session school's full student roster.
func (h *RosterHandler) ExportStudents(c *gin.Context) {
	data, err := h.roster.ExportStudents(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ImportStudents loads students from an uploaded CSV file.
func (h *RosterHandler) ImportStudents(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "csv file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read file"))
		return
	}
	defer file.Close()

	result, err := h.roster.ImportStudents(c.Request.Context(), claimsFromContext(c), c.Query("class_id"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ImportTeachers loads teacher accounts from an uploaded CSV file.
func (h *RosterHandler) ImportTeachers(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "csv file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read file"))
		return
	}
	defer file.Close()

	result, err := h.roster.ImportTeachers(c.Request.Context(), claimsFromContext(c), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
