package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/eduflex-api/internal/dto"
	"github.com/noah-isme/eduflex-api/internal/models"
	"github.com/noah-isme/eduflex-api/internal/repository"
)

// Sentinel errors surfaced by the insight store.
var (
	ErrInsightNotFound    = errors.New("insight not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrNotAuthorized      = errors.New("actor role not authorized")
	ErrInvalidSuggestion  = errors.New("invalid suggestion payload")
)

// Actor identifies who is performing a store operation.
type Actor struct {
	ID   uint
	Role string
}

// StudentNotifier delivers a message to one student.
type StudentNotifier interface {
	Notify(ctx context.Context, userID uint, kind, message string) error
}

// InsightService exposes reads over stored insights and the professor-driven
// suggestion workflow, including the visibility gate that hides unapproved
// suggestions from their own student.
type InsightService interface {
	GetInsightsForStudent(ctx context.Context, studentID uint, courseID *uint) ([]dto.InsightResponse, error)
	AddSuggestion(ctx context.Context, insightID uint, payload dto.SuggestionCreateRequest, actor Actor) (dto.SuggestionResponse, error)
	ApproveSuggestion(ctx context.Context, insightID, suggestionID uint, actor Actor) (dto.SuggestionResponse, error)
	GetSuggestionsForStudent(ctx context.Context, studentID uint, requester Actor) ([]dto.StudentSuggestionItem, error)
}

type insightService struct {
	insights  repository.InsightRepository
	notifier  StudentNotifier
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewInsightService constructs the insight store. The notifier and cache may
// be nil.
func NewInsightService(insights repository.InsightRepository, notifier StudentNotifier, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) InsightService {
	return &insightService{
		insights:  insights,
		notifier:  notifier,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "insight_service").Logger(),
	}
}

func insightCacheKey(studentID uint, courseID *uint) string {
	if courseID != nil {
		return fmt.Sprintf("insights:student:%d:course:%d", studentID, *courseID)
	}
	return fmt.Sprintf("insights:student:%d", studentID)
}

func (s *insightService) GetInsightsForStudent(ctx context.Context, studentID uint, courseID *uint) ([]dto.InsightResponse, error) {
	cacheKey := insightCacheKey(studentID, courseID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var responses []dto.InsightResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &responses); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("insight cache hit")
				return responses, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read insight cache")
		}
	}

	insights, err := s.insights.ListByStudent(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	responses := dto.NewInsightResponseSlice(insights)

	if s.cache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store insight cache")
			}
		}
	}

	return responses, nil
}

func (s *insightService) AddSuggestion(ctx context.Context, insightID uint, payload dto.SuggestionCreateRequest, actor Actor) (dto.SuggestionResponse, error) {
	if actor.Role != models.RoleProfessor {
		return dto.SuggestionResponse{}, ErrNotAuthorized
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SuggestionResponse{}, err
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))
	if text == "" {
		return dto.SuggestionResponse{}, fmt.Errorf("%w: text empty after sanitization", ErrInvalidSuggestion)
	}

	insight, err := s.insights.GetByID(ctx, insightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SuggestionResponse{}, ErrInsightNotFound
		}
		return dto.SuggestionResponse{}, err
	}

	kind := payload.Kind
	if kind == "" {
		kind = models.SuggestionKindResource
	}

	var slot *time.Time
	if payload.Slot != "" {
		parsed, err := time.Parse(time.RFC3339, payload.Slot)
		if err != nil {
			return dto.SuggestionResponse{}, fmt.Errorf("%w: slot must be RFC3339", ErrInvalidSuggestion)
		}
		slot = &parsed
	}

	tracer := otel.Tracer("github.com/noah-isme/eduflex-api/internal/service/insight")
	ctx, span := tracer.Start(ctx, "insights.add_suggestion",
		trace.WithAttributes(attribute.Int("insight.id", int(insightID))))
	defer span.End()

	suggestion := models.Suggestion{
		InsightID:    insight.ID,
		ProfessorID:  actor.ID,
		Text:         text,
		Kind:         kind,
		ResourceLink: payload.ResourceLink,
		Slot:         slot,
	}

	if err := s.insights.AddSuggestion(ctx, &suggestion); err != nil {
		span.RecordError(err)
		return dto.SuggestionResponse{}, err
	}

	s.invalidateCache(ctx, insight.StudentID, insight.CourseID)

	s.logger.Info().
		Uint("insight_id", insight.ID).
		Uint("suggestion_id", suggestion.ID).
		Uint("professor_id", actor.ID).
		Msg("suggestion added")

	return dto.NewSuggestionResponse(suggestion), nil
}

func (s *insightService) ApproveSuggestion(ctx context.Context, insightID, suggestionID uint, actor Actor) (dto.SuggestionResponse, error) {
	if actor.Role != models.RoleProfessor && actor.Role != models.RoleAdmin {
		return dto.SuggestionResponse{}, ErrNotAuthorized
	}

	insight, err := s.insights.GetByID(ctx, insightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SuggestionResponse{}, ErrInsightNotFound
		}
		return dto.SuggestionResponse{}, err
	}

	suggestion, err := s.insights.GetSuggestion(ctx, insight.ID, suggestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SuggestionResponse{}, ErrSuggestionNotFound
		}
		return dto.SuggestionResponse{}, err
	}

	// Approving twice is a no-op; the flag never reverts.
	if !suggestion.Approved {
		suggestion.Approved = true
		if err := s.insights.SaveSuggestion(ctx, &suggestion); err != nil {
			return dto.SuggestionResponse{}, err
		}

		s.invalidateCache(ctx, insight.StudentID, insight.CourseID)

		if s.notifier != nil {
			message := fmt.Sprintf("A new suggestion is available for %s", insight.Course.Title)
			if err := s.notifier.Notify(ctx, insight.StudentID, models.NotificationTypeSuggestion, message); err != nil {
				s.logger.Warn().Err(err).Uint("student_id", insight.StudentID).Msg("failed to notify student")
			}
		}

		s.logger.Info().
			Uint("insight_id", insight.ID).
			Uint("suggestion_id", suggestion.ID).
			Msg("suggestion approved")
	}

	return dto.NewSuggestionResponse(suggestion), nil
}

func (s *insightService) GetSuggestionsForStudent(ctx context.Context, studentID uint, requester Actor) ([]dto.StudentSuggestionItem, error) {
	insights, err := s.insights.ListByStudent(ctx, studentID, nil)
	if err != nil {
		return nil, err
	}

	// A student looking at their own record must never see anything pending
	// review. Staff see the full list.
	hideUnapproved := requester.Role == models.RoleStudent && requester.ID == studentID

	items := make([]dto.StudentSuggestionItem, 0)
	for _, insight := range insights {
		for _, suggestion := range insight.Suggestions {
			if hideUnapproved && !suggestion.Approved {
				continue
			}
			items = append(items, dto.StudentSuggestionItem{
				InsightID:   insight.ID,
				CourseID:    insight.CourseID,
				CourseTitle: insight.Course.Title,
				WeekStart:   insight.WeekStart,
				Suggestion:  dto.NewSuggestionResponse(suggestion),
			})
		}
	}

	return items, nil
}

func (s *insightService) invalidateCache(ctx context.Context, studentID, courseID uint) {
	if s.cache == nil {
		return
	}

	keys := []string{
		insightCacheKey(studentID, nil),
		insightCacheKey(studentID, &courseID),
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate insight cache")
	}
}
