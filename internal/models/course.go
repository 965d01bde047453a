package models

import "time"

// Course represents a taught course with its enrolled roster.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ProfessorID uint      `gorm:"index" json:"professor_id"`
	Students    []User    `gorm:"many2many:course_students" json:"students,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
