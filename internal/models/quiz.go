package models

import (
	"math"
	"time"
)

// Quiz represents a course quiz definition.
type Quiz struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CourseID    uint             `gorm:"not null;index" json:"course_id"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Submissions []QuizSubmission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"submissions,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// QuizSubmission records one student's attempt at a quiz.
type QuizSubmission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	QuizID      uint      `gorm:"not null;index" json:"quiz_id"`
	StudentID   uint      `gorm:"not null;index" json:"student_id"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	Score       int       `gorm:"not null;default:0" json:"score"`
	Total       int       `gorm:"not null;default:0" json:"total"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Percent returns the attempt's score on a 0-100 scale, 0 when the quiz has no points.
func (s QuizSubmission) Percent() int {
	if s.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(s.Score) / float64(s.Total) * 100))
}
