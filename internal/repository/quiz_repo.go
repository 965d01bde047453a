package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduflex-api/internal/models"
)

// QuizRepository defines the quiz reads used by insight generation.
type QuizRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Quiz, error)
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository instantiates a GORM-backed repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Preload("Submissions").
		Order("id ASC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}

	return quizzes, nil
}
