package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/eduflex-api/internal/models"
)

func setupNotificationDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))
	return db
}

func TestNotificationRepositoryListNewestFirstWithPagination(t *testing.T) {
	db := setupNotificationDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	base := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		notification := models.Notification{
			UserID:    7,
			Type:      models.NotificationTypeSuggestion,
			Message:   fmt.Sprintf("message %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.Create(&notification).Error)
	}
	require.NoError(t, repo.Create(ctx, &models.Notification{
		UserID:  8,
		Type:    models.NotificationTypeSuggestion,
		Message: "someone else's",
	}))

	listed, err := repo.ListByUser(ctx, 7, 2, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "message 2", listed[0].Message)
	require.Equal(t, "message 1", listed[1].Message)

	rest, err := repo.ListByUser(ctx, 7, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, "message 0", rest[0].Message)
}

func TestNotificationRepositoryMarkReadScopedToOwner(t *testing.T) {
	db := setupNotificationDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	notification := models.Notification{UserID: 7, Type: models.NotificationTypeSuggestion, Message: "hello"}
	require.NoError(t, repo.Create(ctx, &notification))

	_, err := repo.MarkRead(ctx, notification.ID, 99)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	updated, err := repo.MarkRead(ctx, notification.ID, 7)
	require.NoError(t, err)
	require.True(t, updated.Read)

	// Marking twice stays read and does not error.
	again, err := repo.MarkRead(ctx, notification.ID, 7)
	require.NoError(t, err)
	require.True(t, again.Read)
}

func TestNotificationRepositoryMarkAllReadCountsUnreadOnly(t *testing.T) {
	db := setupNotificationDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{
			UserID:  7,
			Type:    models.NotificationTypeSuggestion,
			Message: fmt.Sprintf("unread %d", i),
		}))
	}
	require.NoError(t, db.Create(&models.Notification{
		UserID: 7, Type: models.NotificationTypeSuggestion, Message: "already read", Read: true,
	}).Error)
	require.NoError(t, repo.Create(ctx, &models.Notification{
		UserID: 8, Type: models.NotificationTypeSuggestion, Message: "other user",
	}))

	updated, err := repo.MarkAllRead(ctx, 7)
	require.NoError(t, err)
	require.EqualValues(t, 2, updated)

	listed, err := repo.ListByUser(ctx, 7, 10, 0)
	require.NoError(t, err)
	for _, notification := range listed {
		require.True(t, notification.Read)
	}

	updated, err = repo.MarkAllRead(ctx, 7)
	require.NoError(t, err)
	require.Zero(t, updated)
}
