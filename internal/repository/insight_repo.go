package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/eduflex-api/internal/models"
)

// InsightRepository defines persistence operations for weekly insights and
// their embedded suggestions.
type InsightRepository interface {
	Upsert(ctx context.Context, insight *models.Insight) error
	GetByID(ctx context.Context, id uint) (models.Insight, error)
	GetByKey(ctx context.Context, studentID, courseID uint, weekStart time.Time) (models.Insight, error)
	ListByStudent(ctx context.Context, studentID uint, courseID *uint) ([]models.Insight, error)
	AddSuggestion(ctx context.Context, suggestion *models.Suggestion) error
	GetSuggestion(ctx context.Context, insightID, suggestionID uint) (models.Suggestion, error)
	SaveSuggestion(ctx context.Context, suggestion *models.Suggestion) error
}

type insightRepository struct {
	db *gorm.DB
}

// NewInsightRepository instantiates a GORM-backed repository.
func NewInsightRepository(db *gorm.DB) InsightRepository {
	return &insightRepository{db: db}
}

// Upsert writes the insight keyed by (student_id, course_id, week_start).
// A conflicting row has its metrics and weaknesses replaced in place; the
// original created_at and any attached suggestions are left untouched.
func (r *insightRepository) Upsert(ctx context.Context, insight *models.Insight) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "course_id"}, {Name: "week_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"metric_progress_pct",
			"metric_assignment_delays",
			"metric_avg_quiz_score",
			"metric_attendance_pct",
			"weaknesses",
			"updated_at",
		}),
	}).Omit("Suggestions", "Course").Create(insight).Error
}

func (r *insightRepository) GetByID(ctx context.Context, id uint) (models.Insight, error) {
	var insight models.Insight
	if err := r.db.WithContext(ctx).
		Preload("Suggestions").
		Preload("Course").
		First(&insight, id).Error; err != nil {
		return models.Insight{}, err
	}

	return insight, nil
}

func (r *insightRepository) GetByKey(ctx context.Context, studentID, courseID uint, weekStart time.Time) (models.Insight, error) {
	var insight models.Insight
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND week_start = ?", studentID, courseID, weekStart).
		First(&insight).Error; err != nil {
		return models.Insight{}, err
	}

	return insight, nil
}

func (r *insightRepository) ListByStudent(ctx context.Context, studentID uint, courseID *uint) ([]models.Insight, error) {
	query := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Preload("Suggestions").
		Preload("Course")

	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	}

	var insights []models.Insight
	if err := query.Order("week_start DESC").Find(&insights).Error; err != nil {
		return nil, err
	}

	return insights, nil
}

// AddSuggestion appends a single suggestion row; concurrent appends to the
// same insight never overwrite each other.
func (r *insightRepository) AddSuggestion(ctx context.Context, suggestion *models.Suggestion) error {
	return r.db.WithContext(ctx).Create(suggestion).Error
}

func (r *insightRepository) GetSuggestion(ctx context.Context, insightID, suggestionID uint) (models.Suggestion, error) {
	var suggestion models.Suggestion
	if err := r.db.WithContext(ctx).
		Where("insight_id = ? AND id = ?", insightID, suggestionID).
		First(&suggestion).Error; err != nil {
		return models.Suggestion{}, err
	}

	return suggestion, nil
}

func (r *insightRepository) SaveSuggestion(ctx context.Context, suggestion *models.Suggestion) error {
	return r.db.WithContext(ctx).Save(suggestion).Error
}
