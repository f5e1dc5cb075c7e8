package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-go-api/internal/grading"
	"github.com/noah-isme/sms-go-api/internal/models"
	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
)

type mockGradebookRepo struct {
	saved   *models.GradebookEntry
	entries []models.GradebookEntry
}

func (m *mockGradebookRepo) Upsert(ctx context.Context, entry *models.GradebookEntry) (bool, error) {
	m.saved = entry
	return true, nil
}

func (m *mockGradebookRepo) List(ctx context.Context, filter models.GradebookFilter) ([]models.GradebookEntry, error) {
	out := make([]models.GradebookEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		if len(filter.StudentIDs) > 0 {
			match := false
			for _, id := range filter.StudentIDs {
				if entry.StudentID == id {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (m *mockGradebookRepo) FindByID(ctx context.Context, id, schoolCode string) (*models.GradebookEntry, error) {
	for i := range m.entries {
		if m.entries[i].ID == id && m.entries[i].SchoolCode == schoolCode {
			return &m.entries[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradebookRepo) Delete(ctx context.Context, id, schoolCode string) error {
	return nil
}

type mockStudentLookup struct {
	students map[string]*models.Student
}

func (m *mockStudentLookup) FindByID(ctx context.Context, id, schoolCode string) (*models.Student, error) {
	if student, ok := m.students[id]; ok && student.SchoolCode == schoolCode {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentLookup) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	out := []models.Student{}
	for _, student := range m.students {
		if student.SchoolCode != filter.SchoolCode {
			continue
		}
		if filter.ParentID != "" && student.ParentID != filter.ParentID {
			continue
		}
		if filter.ClassID != "" && student.ClassID != filter.ClassID {
			continue
		}
		out = append(out, *student)
	}
	return out, nil
}

type standardScaleProvider struct{}

func (standardScaleProvider) ActiveScale(ctx context.Context, schoolCode string) (grading.Scale, error) {
	return grading.StandardScale(), nil
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{
		UserID:      "admin-1",
		Role:        models.RoleAdmin,
		SchoolCode:  "GHS",
		Permissions: models.DefaultPermissions(models.RoleAdmin),
	}
}

func gradebookFixture() (*GradebookService, *mockGradebookRepo) {
	repo := &mockGradebookRepo{}
	students := &mockStudentLookup{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", SchoolCode: "GHS", ParentID: "parent-1"},
	}}
	svc := NewGradebookService(repo, students, standardScaleProvider{}, validator.New(), zap.NewNop())
	return svc, repo
}

func f(v float64) *float64 { return &v }

func TestGradebookServiceSaveSimpleMode(t *testing.T) {
	svc, repo := gradebookFixture()

	entry, err := svc.Save(context.Background(), adminClaims(), models.SaveGradebookRequest{
		StudentID:    "stu-1",
		Term:         "Term 1",
		AcademicYear: "2025/2026",
		Subjects: []models.SubjectGrade{
			{Subject: "English", Score: 91.9},
			{Subject: "Mathematics", Score: 74.4},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, repo.saved)

	assert.Equal(t, "A+", entry.Subjects[0].Grade)
	assert.Equal(t, "B-", entry.Subjects[1].Grade)
	// mean of 91.9 and 74.4, rounded to 2 decimals, banded at 83
	assert.InDelta(t, 83.15, entry.OverallScore, 1e-9)
	assert.Equal(t, "A-", entry.OverallGrade)
	assert.Equal(t, "admin-1", entry.GradedBy)
}

func TestGradebookServiceSaveWeightedMode(t *testing.T) {
	svc, _ := gradebookFixture()

	entry, err := svc.Save(context.Background(), adminClaims(), models.SaveGradebookRequest{
		StudentID:    "stu-1",
		Term:         "Term 1",
		AcademicYear: "2025/2026",
		Subjects: []models.SubjectGrade{
			// Presence of components switches to weighted mode; flat score ignored.
			{Subject: "Science", Score: 10, MidTerm: f(80), EndOfTerm: f(90)},
		},
	})
	require.NoError(t, err)
	// 80*0.30 + 90*0.40 = 60, missing components count as zero
	assert.InDelta(t, 60.0, entry.Subjects[0].Score, 1e-9)
	assert.Equal(t, "C-", entry.Subjects[0].Grade)
}

func TestGradebookServiceSaveMixedModes(t *testing.T) {
	svc, _ := gradebookFixture()

	entry, err := svc.Save(context.Background(), adminClaims(), models.SaveGradebookRequest{
		StudentID:    "stu-1",
		Term:         "Term 1",
		AcademicYear: "2025/2026",
		Subjects: []models.SubjectGrade{
			{Subject: "English", Score: 100},
			{Subject: "Science", MidTerm: f(100), EndOfTerm: f(100)},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, entry.Subjects[0].Score, 1e-9)
	assert.InDelta(t, 70.0, entry.Subjects[1].Score, 1e-9)
	assert.InDelta(t, 85.0, entry.OverallScore, 1e-9)
}

func TestGradebookServiceSaveEmptySubjectsRejected(t *testing.T) {
	svc, _ := gradebookFixture()

	_, err := svc.Save(context.Background(), adminClaims(), models.SaveGradebookRequest{
		StudentID:    "stu-1",
		Term:         "Term 1",
		AcademicYear: "2025/2026",
	})
	requireAppError(t, err, appErrors.ErrValidation.Code)
}

func TestGradebookServiceSaveUnknownStudent(t *testing.T) {
	svc, _ := gradebookFixture()

	_, err := svc.Save(context.Background(), adminClaims(), models.SaveGradebookRequest{
		StudentID:    "stu-elsewhere",
		Term:         "Term 1",
		AcademicYear: "2025/2026",
		Subjects:     []models.SubjectGrade{{Subject: "English", Score: 50}},
	})
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestGradebookServiceParentSeesOnlyOwnChildren(t *testing.T) {
	svc, repo := gradebookFixture()
	repo.entries = []models.GradebookEntry{
		{ID: "gb-1", SchoolCode: "GHS", StudentID: "stu-1"},
		{ID: "gb-2", SchoolCode: "GHS", StudentID: "stu-2"},
	}

	parent := &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent, SchoolCode: "GHS"}
	entries, err := svc.List(context.Background(), parent, models.GradebookFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "stu-1", entries[0].StudentID)
}

func TestGradebookServiceParentWithNoChildren(t *testing.T) {
	svc, _ := gradebookFixture()

	parent := &models.JWTClaims{UserID: "parent-other", Role: models.RoleParent, SchoolCode: "GHS"}
	entries, err := svc.List(context.Background(), parent, models.GradebookFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
