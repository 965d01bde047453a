package dto

import (
	"time"

	"github.com/noah-isme/eduflex-api/internal/models"
)

// SuggestionCreateRequest is the payload a professor posts to attach a
// suggestion to an insight. Slot is RFC3339 and only meaningful for the
// one-on-one kind.
type SuggestionCreateRequest struct {
	Text         string `json:"text" validate:"required"`
	Kind         string `json:"kind" validate:"omitempty,oneof=resource quiz one-on-one motivation"`
	ResourceLink string `json:"resource_link" validate:"omitempty,url"`
	Slot         string `json:"slot" validate:"omitempty"`
}

// SuggestionResponse is the API shape of a stored suggestion.
type SuggestionResponse struct {
	ID           uint       `json:"id"`
	InsightID    uint       `json:"insight_id"`
	ProfessorID  uint       `json:"professor_id"`
	Text         string     `json:"text"`
	Kind         string     `json:"kind"`
	ResourceLink string     `json:"resource_link,omitempty"`
	Slot         *time.Time `json:"slot,omitempty"`
	Approved     bool       `json:"approved"`
	CreatedAt    time.Time  `json:"created_at"`
}

// MetricsResponse mirrors the weekly metrics snapshot.
type MetricsResponse struct {
	ProgressPct      int `json:"progress_pct"`
	AssignmentDelays int `json:"assignment_delays"`
	AvgQuizScore     int `json:"avg_quiz_score"`
	AttendancePct    int `json:"attendance_pct"`
}

// InsightResponse is the API shape of a weekly insight.
type InsightResponse struct {
	ID          uint                 `json:"id"`
	StudentID   uint                 `json:"student_id"`
	CourseID    uint                 `json:"course_id"`
	CourseTitle string               `json:"course_title,omitempty"`
	WeekStart   time.Time            `json:"week_start"`
	Metrics     MetricsResponse      `json:"metrics"`
	Weaknesses  []string             `json:"weaknesses"`
	Suggestions []SuggestionResponse `json:"suggestions"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// StudentSuggestionItem is one entry of the flattened per-student suggestion
// listing, carrying enough insight context to render it standalone.
type StudentSuggestionItem struct {
	InsightID   uint               `json:"insight_id"`
	CourseID    uint               `json:"course_id"`
	CourseTitle string             `json:"course_title,omitempty"`
	WeekStart   time.Time          `json:"week_start"`
	Suggestion  SuggestionResponse `json:"suggestion"`
}

// NewSuggestionResponse maps a suggestion model to its API shape.
func NewSuggestionResponse(suggestion models.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:           suggestion.ID,
		InsightID:    suggestion.InsightID,
		ProfessorID:  suggestion.ProfessorID,
		Text:         suggestion.Text,
		Kind:         suggestion.Kind,
		ResourceLink: suggestion.ResourceLink,
		Slot:         suggestion.Slot,
		Approved:     suggestion.Approved,
		CreatedAt:    suggestion.CreatedAt,
	}
}

// NewInsightResponse maps an insight model to its API shape.
func NewInsightResponse(insight models.Insight) InsightResponse {
	suggestions := make([]SuggestionResponse, 0, len(insight.Suggestions))
	for _, suggestion := range insight.Suggestions {
		suggestions = append(suggestions, NewSuggestionResponse(suggestion))
	}

	weaknesses := make([]string, 0, len(insight.Weaknesses))
	weaknesses = append(weaknesses, insight.Weaknesses...)

	return InsightResponse{
		ID:          insight.ID,
		StudentID:   insight.StudentID,
		CourseID:    insight.CourseID,
		CourseTitle: insight.Course.Title,
		WeekStart:   insight.WeekStart,
		Metrics: MetricsResponse{
			ProgressPct:      insight.Metrics.ProgressPct,
			AssignmentDelays: insight.Metrics.AssignmentDelays,
			AvgQuizScore:     insight.Metrics.AvgQuizScore,
			AttendancePct:    insight.Metrics.AttendancePct,
		},
		Weaknesses:  weaknesses,
		Suggestions: suggestions,
		CreatedAt:   insight.CreatedAt,
		UpdatedAt:   insight.UpdatedAt,
	}
}

// NewInsightResponseSlice maps a slice of insights.
func NewInsightResponseSlice(insights []models.Insight) []InsightResponse {
	responses := make([]InsightResponse, 0, len(insights))
	for _, insight := range insights {
		responses = append(responses, NewInsightResponse(insight))
	}
	return responses
}
