package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/eduflex-api/internal/dto"
	"github.com/noah-isme/eduflex-api/internal/models"
	"github.com/noah-isme/eduflex-api/internal/repository"
)

// ErrNotificationNotFound is returned when a notification does not exist or
// belongs to another user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService persists per-user notifications, fans them out over
// NATS so other nodes and delivery channels can pick them up, and serves the
// per-user inbox. A nil NATS connection degrades to persistence only.
type NotificationService interface {
	Notify(ctx context.Context, userID uint, kind, message string) error
	PublishEvent(ctx context.Context, event string, payload interface{}) error
	ListForUser(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	nats        *nats.Conn
	subjectBase string
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewNotificationService constructs a notification publisher.
func NewNotificationService(repo repository.NotificationRepository, natsConn *nats.Conn, subjectBase string, logger zerolog.Logger) NotificationService {
	base := strings.ReplaceAll(strings.TrimSpace(subjectBase), ":", ".")
	if base == "" {
		base = "eduflex"
	}

	return &notificationService{
		repo:        repo,
		nats:        natsConn,
		subjectBase: base,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *notificationService) Notify(ctx context.Context, userID uint, kind, message string) error {
	clean := strings.TrimSpace(s.sanitizer.Sanitize(message))
	if clean == "" {
		return errors.New("notification message empty after sanitization")
	}

	notification := models.Notification{
		UserID:  userID,
		Type:    kind,
		Message: clean,
	}

	if err := s.repo.Create(ctx, &notification); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	if s.nats != nil {
		subject := fmt.Sprintf("%s.notifications.%d", s.subjectBase, userID)
		payload, err := json.Marshal(notification)
		if err == nil {
			if err := s.nats.Publish(subject, payload); err != nil {
				s.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish notification")
			}
		}
	}

	s.logger.Info().Uint("user_id", userID).Str("type", kind).Msg("notification created")

	return nil
}

func (s *notificationService) PublishEvent(_ context.Context, event string, payload interface{}) error {
	if s.nats == nil {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	subject := fmt.Sprintf("%s.events.%s", s.subjectBase, event)
	if err := s.nats.Publish(subject, body); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error) {
	notification, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		return dto.NotificationResponse{}, err
	}

	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	if updated > 0 {
		s.logger.Info().Uint("user_id", userID).Int64("updated", updated).Msg("notifications marked read")
	}

	return updated, nil
}
