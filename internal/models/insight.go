package models

import (
	"time"

	"gorm.io/datatypes"
)

// AttendanceNotTracked is the sentinel stored when attendance data is unavailable.
// Attendance is not tracked anywhere in the system, so every insight carries it.
const AttendanceNotTracked = -1

// Suggestion kinds a professor can attach to an insight.
const (
	SuggestionKindResource   = "resource"
	SuggestionKindQuiz       = "quiz"
	SuggestionKindOneOnOne   = "one-on-one"
	SuggestionKindMotivation = "motivation"
)

// Metrics is the weekly snapshot embedded in an insight.
//
// AvgQuizScore is 0 both when the student averaged zero and when no quiz was
// taken that week; callers cannot distinguish the two. AttendancePct is always
// AttendanceNotTracked.
type Metrics struct {
	ProgressPct      int `gorm:"not null;default:0" json:"progress_pct"`
	AssignmentDelays int `gorm:"not null;default:0" json:"assignment_delays"`
	AvgQuizScore     int `gorm:"not null;default:0" json:"avg_quiz_score"`
	AttendancePct    int `gorm:"not null;default:-1" json:"attendance_pct"`
}

// Insight is the weekly performance record for one student in one course.
// At most one row exists per (student, course, week_start).
type Insight struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	StudentID   uint                        `gorm:"not null;uniqueIndex:idx_insights_student_course_week,priority:1" json:"student_id"`
	CourseID    uint                        `gorm:"not null;uniqueIndex:idx_insights_student_course_week,priority:2" json:"course_id"`
	WeekStart   time.Time                   `gorm:"not null;uniqueIndex:idx_insights_student_course_week,priority:3" json:"week_start"`
	Metrics     Metrics                     `gorm:"embedded;embeddedPrefix:metric_" json:"metrics"`
	Weaknesses  datatypes.JSONSlice[string] `json:"weaknesses"`
	Suggestions []Suggestion                `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"suggestions"`
	Course      Course                      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// Suggestion is a professor-authored recommendation owned by one insight.
// It only ever mutates one way: Approved flips to true and stays there.
type Suggestion struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	InsightID    uint       `gorm:"not null;index" json:"insight_id"`
	ProfessorID  uint       `gorm:"not null" json:"professor_id"`
	Text         string     `gorm:"type:text;not null" json:"text"`
	Kind         string     `gorm:"size:32;not null;default:resource" json:"kind"`
	ResourceLink string     `gorm:"size:512" json:"resource_link"`
	Slot         *time.Time `json:"slot,omitempty"`
	Approved     bool       `gorm:"not null;default:false" json:"approved"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
