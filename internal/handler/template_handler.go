package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sms-go-api/internal/grading"
	"github.com/noah-isme/sms-go-api/internal/models"
	"github.com/noah-isme/sms-go-api/internal/service"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
	"github.com/noah-isme/sms-go-api/pkg/response"
)

// TemplateHandler exposes report template, grading scheme and signature
// endpoints.
type TemplateHandler struct {
	templates *service.TemplateService
}

// NewTemplateHandler constructs TemplateHandler.
func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// Get returns a school's report template, creating the default on first read.
// Non-superusers may only read their own school's template.
func (h *TemplateHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	code := c.Param("school_code")
	if claims.Role != models.RoleSuperuser && !strings.EqualFold(code, claims.SchoolCode) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "report template not found"))
		return
	}
	tmpl, err := h.templates.Get(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tmpl)
}

// Update replaces a school's report template.
func (h *TemplateHandler) Update(c *gin.Context) {
	var req models.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tmpl, err := h.templates.Update(c.Request.Context(), c.Param("school_code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tmpl)
}

// GradingScheme returns the session school's active grade scale and the
// assessment weight table.
func (h *TemplateHandler) GradingScheme(c *gin.Context) {
	claims := claimsFromContext(c)
	scale, err := h.templates.ActiveScale(c.Request.Context(), claims.SchoolCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"scale":   scale,
		"weights": grading.WeightTable(),
	})
}

// Signatures returns the session school's stored signature URLs.
func (h *TemplateHandler) Signatures(c *gin.Context) {
	claims := claimsFromContext(c)
	tmpl, err := h.templates.Get(c.Request.Context(), claims.SchoolCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"head_teacher":  tmpl.HeadTeacherSigURL,
		"class_teacher": tmpl.ClassTeacherSigURL,
	})
}

// UploadSignature stores a signature image for the role in the path.
func (h *TemplateHandler) UploadSignature(c *gin.Context) {
	header, err := c.FormFile("signature")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "signature file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read signature"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read signature"))
		return
	}

	claims := claimsFromContext(c)
	tmpl, err := h.templates.UploadSignature(c.Request.Context(), claims.SchoolCode, c.Param("role"), header.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tmpl)
}
