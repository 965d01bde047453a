package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/eduflex-api/internal/models"
	"github.com/noah-isme/eduflex-api/internal/observability"
	"github.com/noah-isme/eduflex-api/internal/repository"
)

const defaultEngineWorkers = 4

// Weakness sentences rendered into generated insights.
const (
	weaknessLateFormat       = "You missed %d assignment deadline(s) this week"
	weaknessRegressionFormat = "Your quiz accuracy dropped by %d%% this week"
)

// RunEventPublisher receives a summary event after each engine run.
type RunEventPublisher interface {
	PublishEvent(ctx context.Context, event string, payload interface{}) error
}

// InsightEngine computes and persists one weekly insight per enrolled
// (student, course) pair. The reference timestamp is always an explicit
// parameter so runs are deterministic and repeatable.
type InsightEngine interface {
	Run(ctx context.Context, now time.Time) error
}

type insightEngine struct {
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	quizzes     repository.QuizRepository
	insights    repository.InsightRepository
	cache       *redis.Client
	events      RunEventPublisher
	workers     int
	logger      zerolog.Logger
}

// RunSummary is the payload published after a completed engine run.
type RunSummary struct {
	WeekStart time.Time `json:"week_start"`
	Courses   int       `json:"courses"`
	Processed int       `json:"processed"`
	Skipped   int       `json:"skipped"`
	Duration  string    `json:"duration"`
}

// NewInsightEngine constructs the weekly insight generator. The cache and
// event publisher may be nil.
func NewInsightEngine(
	courses repository.CourseRepository,
	assignments repository.AssignmentRepository,
	quizzes repository.QuizRepository,
	insights repository.InsightRepository,
	cache *redis.Client,
	events RunEventPublisher,
	workers int,
	logger zerolog.Logger,
) InsightEngine {
	if workers <= 0 {
		workers = defaultEngineWorkers
	}

	return &insightEngine{
		courses:     courses,
		assignments: assignments,
		quizzes:     quizzes,
		insights:    insights,
		cache:       cache,
		events:      events,
		workers:     workers,
		logger:      logger.With().Str("component", "insight_engine").Logger(),
	}
}

// Run generates or refreshes the insight of every enrolled (student, course)
// pair for the week containing now. A failure while processing one student is
// logged and counted; it never aborts the rest of the batch.
func (e *insightEngine) Run(ctx context.Context, now time.Time) error {
	started := time.Now()
	weekStart := WeekStartOf(now)
	prevWeekStart := weekStart.AddDate(0, 0, -7)

	tracer := otel.Tracer("github.com/noah-isme/eduflex-api/internal/service/insight_engine")
	ctx, span := tracer.Start(ctx, "insights.generate")
	span.SetAttributes(attribute.String("insights.week_start", weekStart.Format(time.RFC3339)))
	defer span.End()

	courses, err := e.courses.ListWithRoster(ctx)
	if err != nil {
		observability.InsightRuns().WithLabelValues("error").Inc()
		span.RecordError(err)
		return fmt.Errorf("failed to list courses: %w", err)
	}

	var processed, skipped int64
	for _, course := range courses {
		p, s := e.processCourse(ctx, course, weekStart, prevWeekStart)
		processed += p
		skipped += s
	}

	duration := time.Since(started)
	observability.InsightRuns().WithLabelValues("ok").Inc()
	observability.InsightRunDuration().Observe(duration.Seconds())

	e.logger.Info().
		Time("week_start", weekStart).
		Int("courses", len(courses)).
		Int64("processed", processed).
		Int64("skipped", skipped).
		Dur("duration", duration).
		Msg("weekly insight generation complete")

	if e.events != nil {
		summary := RunSummary{
			WeekStart: weekStart,
			Courses:   len(courses),
			Processed: int(processed),
			Skipped:   int(skipped),
			Duration:  duration.String(),
		}
		if err := e.events.PublishEvent(ctx, "insights.generated", summary); err != nil {
			e.logger.Warn().Err(err).Msg("failed to publish run summary")
		}
	}

	return nil
}

// processCourse fetches the course's assignments and quizzes once, then fans
// the per-student computation out over a bounded worker pool. A failed course
// read means no data for this run; the course is skipped, not retried.
func (e *insightEngine) processCourse(ctx context.Context, course models.Course, weekStart, prevWeekStart time.Time) (processed, skipped int64) {
	assignments, err := e.assignments.ListByCourse(ctx, course.ID)
	if err != nil {
		e.logger.Error().Err(err).Uint("course_id", course.ID).Msg("failed to load assignments, skipping course")
		return 0, int64(len(course.Students))
	}

	quizzes, err := e.quizzes.ListByCourse(ctx, course.ID)
	if err != nil {
		e.logger.Error().Err(err).Uint("course_id", course.ID).Msg("failed to load quizzes, skipping course")
		return 0, int64(len(course.Students))
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, e.workers)
	)

	for _, student := range course.Students {
		wg.Add(1)
		sem <- struct{}{}

		go func(student models.User) {
			defer wg.Done()
			defer func() { <-sem }()

			err := e.processStudent(ctx, course, student, assignments, quizzes, weekStart, prevWeekStart)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				skipped++
				observability.InsightStudentFailures().Inc()
				e.logger.Error().Err(err).
					Uint("course_id", course.ID).
					Uint("student_id", student.ID).
					Msg("insight computation skipped")
				return
			}
			processed++
			observability.InsightStudentsProcessed().Inc()
		}(student)
	}

	wg.Wait()
	return processed, skipped
}

// processStudent computes the weekly metrics and weaknesses for one student
// and upserts the insight atomically. Nothing partial is ever written.
func (e *insightEngine) processStudent(ctx context.Context, course models.Course, student models.User, assignments []models.Assignment, quizzes []models.Quiz, weekStart, prevWeekStart time.Time) error {
	var submittedCount, delays int
	for _, assignment := range assignments {
		for _, sub := range assignment.Submissions {
			if sub.StudentID != student.ID {
				continue
			}
			submittedCount++
			if sub.IsLate && inWeek(sub.SubmittedAt, weekStart) {
				delays++
			}
			break
		}
	}

	// Zero assignments means there is nothing left to complete.
	progress := 100
	if len(assignments) > 0 {
		progress = int(math.Round(float64(submittedCount) / float64(len(assignments)) * 100))
	}

	var scoreSum, scoreCount int
	for _, quiz := range quizzes {
		for _, sub := range quiz.Submissions {
			if sub.StudentID == student.ID && inWeek(sub.SubmittedAt, weekStart) {
				scoreSum += sub.Percent()
				scoreCount++
			}
		}
	}

	avgQuizScore := 0
	if scoreCount > 0 {
		avgQuizScore = int(math.Round(float64(scoreSum) / float64(scoreCount)))
	}

	weaknesses := make([]string, 0, 2)
	if delays > 0 {
		weaknesses = append(weaknesses, fmt.Sprintf(weaknessLateFormat, delays))
	}

	prevInsight, err := e.insights.GetByKey(ctx, student.ID, course.ID, prevWeekStart)
	switch {
	case err == nil:
		prev := prevInsight.Metrics.AvgQuizScore
		if prev > 0 && prev-avgQuizScore >= int(math.Round(float64(prev)*0.2)) {
			dropPct := int(math.Round(float64(prev-avgQuizScore) / float64(prev) * 100))
			weaknesses = append(weaknesses, fmt.Sprintf(weaknessRegressionFormat, dropPct))
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First tracked week for this pair; nothing to compare against.
	default:
		return fmt.Errorf("failed to load previous insight: %w", err)
	}

	insight := models.Insight{
		StudentID: student.ID,
		CourseID:  course.ID,
		WeekStart: weekStart,
		Metrics: models.Metrics{
			ProgressPct:      progress,
			AssignmentDelays: delays,
			AvgQuizScore:     avgQuizScore,
			AttendancePct:    models.AttendanceNotTracked,
		},
		Weaknesses: datatypes.NewJSONSlice(weaknesses),
	}

	if err := e.insights.Upsert(ctx, &insight); err != nil {
		return fmt.Errorf("failed to upsert insight: %w", err)
	}

	e.invalidateCache(ctx, student.ID, course.ID)

	return nil
}

func (e *insightEngine) invalidateCache(ctx context.Context, studentID, courseID uint) {
	if e.cache == nil {
		return
	}

	keys := []string{
		insightCacheKey(studentID, nil),
		insightCacheKey(studentID, &courseID),
	}
	if err := e.cache.Del(ctx, keys...).Err(); err != nil {
		e.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate insight cache")
	}
}
