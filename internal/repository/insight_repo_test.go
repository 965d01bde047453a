package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/eduflex-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Insight{},
		&models.Suggestion{},
	))
	return db
}

func mondayUTC() time.Time {
	return time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
}

func TestInsightRepositoryUpsertKeepsOneRowPerWeek(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInsightRepository(db)
	ctx := context.Background()
	weekStart := mondayUTC()

	first := models.Insight{
		StudentID: 1,
		CourseID:  2,
		WeekStart: weekStart,
		Metrics:   models.Metrics{ProgressPct: 50, AvgQuizScore: 80, AttendancePct: models.AttendanceNotTracked},
	}
	require.NoError(t, repo.Upsert(ctx, &first))

	second := models.Insight{
		StudentID:  1,
		CourseID:   2,
		WeekStart:  weekStart,
		Metrics:    models.Metrics{ProgressPct: 75, AssignmentDelays: 1, AvgQuizScore: 60, AttendancePct: models.AttendanceNotTracked},
		Weaknesses: datatypes.NewJSONSlice([]string{"You missed 1 assignment deadline(s) this week"}),
	}
	require.NoError(t, repo.Upsert(ctx, &second))

	var count int64
	require.NoError(t, db.Model(&models.Insight{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	stored, err := repo.GetByKey(ctx, 1, 2, weekStart)
	require.NoError(t, err)
	require.Equal(t, 75, stored.Metrics.ProgressPct)
	require.Equal(t, 60, stored.Metrics.AvgQuizScore)
	require.Len(t, stored.Weaknesses, 1)
}

func TestInsightRepositoryUpsertPreservesSuggestions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInsightRepository(db)
	ctx := context.Background()
	weekStart := mondayUTC()

	insight := models.Insight{StudentID: 7, CourseID: 3, WeekStart: weekStart}
	require.NoError(t, repo.Upsert(ctx, &insight))

	suggestion := models.Suggestion{
		InsightID:   insight.ID,
		ProfessorID: 9,
		Text:        "Review chapter 4",
		Kind:        models.SuggestionKindResource,
	}
	require.NoError(t, repo.AddSuggestion(ctx, &suggestion))

	rerun := models.Insight{
		StudentID: 7,
		CourseID:  3,
		WeekStart: weekStart,
		Metrics:   models.Metrics{ProgressPct: 100, AttendancePct: models.AttendanceNotTracked},
	}
	require.NoError(t, repo.Upsert(ctx, &rerun))

	stored, err := repo.GetByID(ctx, insight.ID)
	require.NoError(t, err)
	require.Len(t, stored.Suggestions, 1)
	require.Equal(t, "Review chapter 4", stored.Suggestions[0].Text)
	require.Equal(t, 100, stored.Metrics.ProgressPct)
}

func TestInsightRepositoryListByStudentOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInsightRepository(db)
	ctx := context.Background()

	course := models.Course{Title: "Algorithms"}
	require.NoError(t, db.Create(&course).Error)

	older := models.Insight{StudentID: 4, CourseID: course.ID, WeekStart: mondayUTC().AddDate(0, 0, -7)}
	newer := models.Insight{StudentID: 4, CourseID: course.ID, WeekStart: mondayUTC()}
	other := models.Insight{StudentID: 5, CourseID: course.ID, WeekStart: mondayUTC()}
	require.NoError(t, repo.Upsert(ctx, &older))
	require.NoError(t, repo.Upsert(ctx, &newer))
	require.NoError(t, repo.Upsert(ctx, &other))

	insights, err := repo.ListByStudent(ctx, 4, nil)
	require.NoError(t, err)
	require.Len(t, insights, 2)
	require.Equal(t, newer.ID, insights[0].ID)
	require.Equal(t, "Algorithms", insights[0].Course.Title)

	filtered, err := repo.ListByStudent(ctx, 4, &course.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 2)

	none := uint(999)
	empty, err := repo.ListByStudent(ctx, 4, &none)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestInsightRepositorySuggestionLookupScopedToInsight(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInsightRepository(db)
	ctx := context.Background()

	insight := models.Insight{StudentID: 1, CourseID: 1, WeekStart: mondayUTC()}
	require.NoError(t, repo.Upsert(ctx, &insight))
	otherInsight := models.Insight{StudentID: 1, CourseID: 2, WeekStart: mondayUTC()}
	require.NoError(t, repo.Upsert(ctx, &otherInsight))

	suggestion := models.Suggestion{InsightID: insight.ID, ProfessorID: 2, Text: "Practice recursion", Kind: models.SuggestionKindQuiz}
	require.NoError(t, repo.AddSuggestion(ctx, &suggestion))

	found, err := repo.GetSuggestion(ctx, insight.ID, suggestion.ID)
	require.NoError(t, err)
	require.Equal(t, "Practice recursion", found.Text)

	_, err = repo.GetSuggestion(ctx, otherInsight.ID, suggestion.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
