package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/models"
)

func rosterFixture() (*RosterService, *mockReportStudents, *mockUserRepo) {
	students := &mockReportStudents{mockStudentLookup{students: map[string]*models.Student{}}}
	users := &mockUserRepo{users: map[string]*models.User{
		"teach-1": {ID: "teach-1", Username: "k.owusu", Role: models.RoleTeacher, SchoolCode: "GHS"},
	}}
	return NewRosterService(students, users, zap.NewNop()), students, users
}

func TestRosterServiceTemplates(t *testing.T) {
	svc, _, _ := rosterFixture()

	students, err := svc.StudentTemplate()
	require.NoError(t, err)
	assert.Contains(t, string(students), "student_id")
	assert.Contains(t, string(students), "first_name")
	assert.Contains(t, string(students), "date_of_birth")

	teachers, err := svc.TeacherTemplate()
	require.NoError(t, err)
	assert.Contains(t, string(teachers), "username")
	assert.Contains(t, string(teachers), "password")
}

func TestRosterServiceImportStudents(t *testing.T) {
	svc, _, _ := rosterFixture()

	file := strings.NewReader(strings.Join([]string{
		"student_id,first_name,middle_name,last_name,date_of_birth,gender,grade_level",
		",Ama,,Mensah,2015-03-12,female,Primary 4",
		",Kojo,,Asante,2016-07-01,male,Primary 3",
	}, "\n"))

	result, err := svc.ImportStudents(context.Background(), adminClaims(), "class-1", file)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)
}

func TestRosterServiceImportStudentsPartialFailure(t *testing.T) {
	svc, _, _ := rosterFixture()

	// Row 3 is missing a last name, row 4 carries a malformed date. Both are
	// reported with their file row numbers and the valid rows still import.
	file := strings.NewReader(strings.Join([]string{
		"student_id,first_name,middle_name,last_name,date_of_birth,gender,grade_level",
		",Ama,,Mensah,2015-03-12,female,Primary 4",
		",Kojo,,,2016-07-01,male,Primary 3",
		",Esi,,Boateng,12/03/2015,female,Primary 4",
	}, "\n"))

	result, err := svc.ImportStudents(context.Background(), adminClaims(), "", file)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "last_name")
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Contains(t, result.Errors[1].Message, "YYYY-MM-DD")
}

func TestRosterServiceImportTeachers(t *testing.T) {
	svc, _, users := rosterFixture()

	file := strings.NewReader(strings.Join([]string{
		"username,name,password",
		"a.adjei,Akosua Adjei,Password@123",
		"k.owusu,Kwame Owusu,Password@123",
		"b.short,Bad Password,short",
	}, "\n"))

	result, err := svc.ImportTeachers(context.Background(), adminClaims(), file)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 2)
	// Row 3 duplicates an existing username, row 4 has a weak password.
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "already exists")
	assert.Equal(t, 4, result.Errors[1].Row)

	found := false
	for _, user := range users.users {
		if user.Username == "a.adjei" {
			found = true
			assert.Equal(t, models.RoleTeacher, user.Role)
			assert.ElementsMatch(t, models.DefaultPermissions(models.RoleTeacher), []string(user.Permissions))
		}
	}
	assert.True(t, found)
}

func TestRosterServiceExportStudents(t *testing.T) {
	svc, students, _ := rosterFixture()
	students.students["stu-1"] = &models.Student{
		ID: "stu-1", SchoolCode: "GHS", FirstName: "Ama", LastName: "Mensah",
		DateOfBirth: "2015-03-12", Gender: "female", GradeLevel: "Primary 4",
	}

	data, err := svc.ExportStudents(context.Background(), adminClaims())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "stu-1,Ama,,Mensah,2015-03-12,female,Primary 4")
}
