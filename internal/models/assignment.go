package models

import "time"

// Assignment represents a course assignment definition.
type Assignment struct {
	ID          uint                   `gorm:"primaryKey" json:"id"`
	CourseID    uint                   `gorm:"not null;index" json:"course_id"`
	Title       string                 `gorm:"size:255;not null" json:"title"`
	Description string                 `gorm:"type:text" json:"description"`
	DueDate     time.Time              `gorm:"not null" json:"due_date"`
	Submissions []AssignmentSubmission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"submissions,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// AssignmentSubmission records one student's hand-in for an assignment.
type AssignmentSubmission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignment_id"`
	StudentID    uint      `gorm:"not null;index" json:"student_id"`
	SubmittedAt  time.Time `gorm:"not null" json:"submitted_at"`
	IsLate       bool      `gorm:"not null;default:false" json:"is_late"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
