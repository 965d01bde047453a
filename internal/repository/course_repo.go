package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduflex-api/internal/models"
)

// CourseRepository exposes the course reads the insight engine depends on.
type CourseRepository interface {
	ListWithRoster(ctx context.Context) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) ListWithRoster(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Preload("Students").Order("id ASC").Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("Students").First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}
