package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sms-go-api/internal/models"
)

func TestGradebookRepositoryUpsertPreservesIdentityOnReplace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradebookRepository(db)

	original := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO gradebook .+ ON CONFLICT \(student_id, term, academic_year, school_code\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "inserted"}).
			AddRow("gb-existing", original, false))

	entry := &models.GradebookEntry{
		SchoolCode:   "GHS",
		StudentID:    "stu-1",
		ClassID:      "class-1",
		Term:         "Term 1",
		AcademicYear: "2025/2026",
		Subjects: models.SubjectGradeList{
			{Subject: "Mathematics", Score: 88, Grade: "A"},
		},
		OverallScore: 88,
		OverallGrade: "A",
		GradedBy:     "user-1",
	}
	inserted, err := repo.Upsert(context.Background(), entry)
	require.NoError(t, err)
	require.False(t, inserted)
	require.Equal(t, "gb-existing", entry.ID)
	require.Equal(t, original, entry.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradebookRepositoryListByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradebookRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "school_code", "student_id", "class_id", "term", "academic_year", "subjects",
		"overall_score", "overall_grade", "overall_points", "overall_domain", "graded_by",
		"created_at", "updated_at",
	}).AddRow("gb-1", "GHS", "stu-1", "class-1", "Term 1", "2025/2026",
		[]byte(`[{"subject":"Mathematics","score":88,"grade":"A"}]`),
		88.0, "A", 3.75, "Excellent", "user-1", now, now)

	mock.ExpectQuery(`SELECT .+ FROM gradebook WHERE school_code = \$1 AND term = \$2 AND academic_year = \$3`).
		WithArgs("GHS", "Term 1", "2025/2026").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), models.GradebookFilter{
		SchoolCode:   "GHS",
		Term:         "Term 1",
		AcademicYear: "2025/2026",
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Subjects, 1)
	require.Equal(t, "Mathematics", entries[0].Subjects[0].Subject)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradebookRepositoryAverageOverallScoreEmptySchool(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradebookRepository(db)

	mock.ExpectQuery(`SELECT COALESCE\(AVG\(overall_score\), 0\) FROM gradebook`).
		WithArgs("GHS").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0.0))

	avg, err := repo.AverageOverallScore(context.Background(), "GHS")
	require.NoError(t, err)
	require.Zero(t, avg)
	require.NoError(t, mock.ExpectationsWereMet())
}
