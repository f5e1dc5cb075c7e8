package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLoginRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{not json"))

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkAttendanceRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttendanceHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance", strings.NewReader(""))

	handler.Mark(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportForStudentRequiresTermAndYear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/report-cards/student/stu-1?term=Term%201", nil)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}

	handler.ForStudent(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportForClassRequiresTermAndYear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/report-cards/class/cls-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "cls-1"}}

	handler.ForClass(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportStudentsRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRosterHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/import/students", nil)

	handler.ImportStudents(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPhotoRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students/stu-1/photo", nil)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}

	handler.UploadPhoto(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
