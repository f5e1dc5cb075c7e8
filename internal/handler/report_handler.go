package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sms-go-api/internal/service"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
	"github.com/noah-isme/sms-go-api/pkg/response"
)

// ReportHandler exposes report card endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ForStudent assembles one student's report card for a term.
func (h *ReportHandler) ForStudent(c *gin.Context) {
	term, year, ok := termQuery(c)
	if !ok {
		return
	}
	card, err := h.reports.BuildForStudent(c.Request.Context(), claimsFromContext(c), c.Param("id"), term, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card)
}

// ForClass assembles ranked report cards for a whole class. The format query
// switches the response to a CSV or PDF download.
func (h *ReportHandler) ForClass(c *gin.Context) {
	term, year, ok := termQuery(c)
	if !ok {
		return
	}
	claims := claimsFromContext(c)
	classID := c.Param("id")

	switch c.Query("format") {
	case "csv":
		data, err := h.reports.ExportClassCSV(c.Request.Context(), claims, classID, term, year)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "report-cards-"+classID+".csv"))
		c.Data(http.StatusOK, "text/csv", data)
	case "pdf":
		data, err := h.reports.ExportClassPDF(c.Request.Context(), claims, classID, term, year)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "report-cards-"+classID+".pdf"))
		c.Data(http.StatusOK, "application/pdf", data)
	default:
		report, err := h.reports.BuildForClass(c.Request.Context(), claims, classID, term, year)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, report)
	}
}

func termQuery(c *gin.Context) (term, academicYear string, ok bool) {
	term = c.Query("term")
	academicYear = c.Query("academic_year")
	if term == "" || academicYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term and academic_year are required"))
		return "", "", false
	}
	return term, academicYear, true
}
