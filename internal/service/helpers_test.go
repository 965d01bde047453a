package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/eduflex-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type memoryCourseRepo struct {
	courses []models.Course
	err     error
}

func (m *memoryCourseRepo) ListWithRoster(context.Context) ([]models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.courses, nil
}

func (m *memoryCourseRepo) GetByID(_ context.Context, id uint) (models.Course, error) {
	for _, course := range m.courses {
		if course.ID == id {
			return course, nil
		}
	}
	return models.Course{}, gorm.ErrRecordNotFound
}

type memoryAssignmentRepo struct {
	byCourse map[uint][]models.Assignment
	err      error
}

func (m *memoryAssignmentRepo) ListByCourse(_ context.Context, courseID uint) ([]models.Assignment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byCourse[courseID], nil
}

type memoryQuizRepo struct {
	byCourse map[uint][]models.Quiz
	err      error
}

func (m *memoryQuizRepo) ListByCourse(_ context.Context, courseID uint) ([]models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byCourse[courseID], nil
}

type memoryInsightRepo struct {
	mu               sync.Mutex
	insights         map[string]*models.Insight
	suggestions      map[uint]*models.Suggestion
	nextInsightID    uint
	nextSuggestionID uint
	upsertErrFor     map[uint]error
	listCalls        int
}

func newMemoryInsightRepo() *memoryInsightRepo {
	return &memoryInsightRepo{
		insights:         make(map[string]*models.Insight),
		suggestions:      make(map[uint]*models.Suggestion),
		nextInsightID:    1,
		nextSuggestionID: 1,
		upsertErrFor:     make(map[uint]error),
	}
}

func insightKey(studentID, courseID uint, weekStart time.Time) string {
	return fmt.Sprintf("%d|%d|%d", studentID, courseID, weekStart.Unix())
}

func (m *memoryInsightRepo) Upsert(_ context.Context, insight *models.Insight) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.upsertErrFor[insight.StudentID]; err != nil {
		return err
	}

	key := insightKey(insight.StudentID, insight.CourseID, insight.WeekStart)
	if existing, ok := m.insights[key]; ok {
		existing.Metrics = insight.Metrics
		existing.Weaknesses = insight.Weaknesses
		existing.UpdatedAt = time.Now()
		insight.ID = existing.ID
		return nil
	}

	insight.ID = m.nextInsightID
	m.nextInsightID++
	insight.CreatedAt = time.Now()
	insight.UpdatedAt = insight.CreatedAt
	stored := *insight
	m.insights[key] = &stored
	return nil
}

func (m *memoryInsightRepo) GetByID(_ context.Context, id uint) (models.Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, insight := range m.insights {
		if insight.ID == id {
			return m.withSuggestions(*insight), nil
		}
	}
	return models.Insight{}, gorm.ErrRecordNotFound
}

func (m *memoryInsightRepo) GetByKey(_ context.Context, studentID, courseID uint, weekStart time.Time) (models.Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if insight, ok := m.insights[insightKey(studentID, courseID, weekStart)]; ok {
		return *insight, nil
	}
	return models.Insight{}, gorm.ErrRecordNotFound
}

func (m *memoryInsightRepo) ListByStudent(_ context.Context, studentID uint, courseID *uint) ([]models.Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++

	results := make([]models.Insight, 0)
	for _, insight := range m.insights {
		if insight.StudentID != studentID {
			continue
		}
		if courseID != nil && insight.CourseID != *courseID {
			continue
		}
		results = append(results, m.withSuggestions(*insight))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].WeekStart.After(results[j].WeekStart)
	})

	return results, nil
}

func (m *memoryInsightRepo) AddSuggestion(_ context.Context, suggestion *models.Suggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	suggestion.ID = m.nextSuggestionID
	m.nextSuggestionID++
	suggestion.CreatedAt = time.Now()
	stored := *suggestion
	m.suggestions[stored.ID] = &stored
	return nil
}

func (m *memoryInsightRepo) GetSuggestion(_ context.Context, insightID, suggestionID uint) (models.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if suggestion, ok := m.suggestions[suggestionID]; ok && suggestion.InsightID == insightID {
		return *suggestion, nil
	}
	return models.Suggestion{}, gorm.ErrRecordNotFound
}

func (m *memoryInsightRepo) SaveSuggestion(_ context.Context, suggestion *models.Suggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.suggestions[suggestion.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *suggestion
	m.suggestions[stored.ID] = &stored
	return nil
}

func (m *memoryInsightRepo) withSuggestions(insight models.Insight) models.Insight {
	suggestions := make([]models.Suggestion, 0)
	for _, suggestion := range m.suggestions {
		if suggestion.InsightID == insight.ID {
			suggestions = append(suggestions, *suggestion)
		}
	}
	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].ID < suggestions[j].ID })
	insight.Suggestions = suggestions
	return insight
}

type recordingNotifier struct {
	mu       sync.Mutex
	notified []uint
	events   []string
}

func (r *recordingNotifier) Notify(_ context.Context, userID uint, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, userID)
	return nil
}

func (r *recordingNotifier) PublishEvent(_ context.Context, event string, _ interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}
