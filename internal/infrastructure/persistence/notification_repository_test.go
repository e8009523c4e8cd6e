package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/crm/backend/internal/domain/messaging"
	"github.com/crm/backend/internal/domain/shared"
)

// NotificationModelSQLite is a SQLite-compatible version of the
// notification model for testing
type NotificationModelSQLite struct {
	ID        string `gorm:"primaryKey"`
	TenantID  string `gorm:"index;not null"`
	UserID    string `gorm:"index;not null"`
	Type      string `gorm:"not null;default:'info'"`
	Title     string `gorm:"not null"`
	Message   string
	Link      string
	Read      bool `gorm:"not null;default:false"`
	ReadAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NotificationModelSQLite) TableName() string {
	return "notifications"
}

func setupNotificationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&NotificationModelSQLite{})
	require.NoError(t, err)

	return db
}

func seedNotification(t *testing.T, repo *GormNotificationRepository, tenantID, userID uuid.UUID, title string) *messaging.Notification {
	t.Helper()
	notification, err := messaging.NewNotification(tenantID, userID, messaging.NotificationTypeInfo, title, "details")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), notification))
	return notification
}

func TestGormNotificationRepository_FindByIDForTenant(t *testing.T) {
	repo := NewGormNotificationRepository(setupNotificationTestDB(t))
	ctx := context.Background()

	tenantID := uuid.New()
	userID := uuid.New()
	notification := seedNotification(t, repo, tenantID, userID, "Deal won")

	t.Run("finds notification within tenant", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, notification.ID)
		require.NoError(t, err)
		assert.Equal(t, "Deal won", found.Title)
		assert.Equal(t, userID, found.UserID)
	})

	t.Run("other tenant sees not found", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), notification.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormNotificationRepository_FindByUser(t *testing.T) {
	repo := NewGormNotificationRepository(setupNotificationTestDB(t))
	ctx := context.Background()

	tenantID := uuid.New()
	userID := uuid.New()
	first := seedNotification(t, repo, tenantID, userID, "First")
	second := seedNotification(t, repo, tenantID, userID, "Second")
	seedNotification(t, repo, tenantID, uuid.New(), "Someone else's")

	first.MarkRead(time.Now())
	require.NoError(t, repo.Save(ctx, first))

	t.Run("returns only the user's notifications", func(t *testing.T) {
		filter := shared.Filter{}
		filter.Normalize()

		notifications, err := repo.FindByUser(ctx, tenantID, userID, filter)
		require.NoError(t, err)
		assert.Len(t, notifications, 2)
	})

	t.Run("unread filter hides read notifications", func(t *testing.T) {
		filter := shared.Filter{Filters: map[string]any{"unread": true}}
		filter.Normalize()

		notifications, err := repo.FindByUser(ctx, tenantID, userID, filter)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, second.ID, notifications[0].ID)
	})
}

func TestGormNotificationRepository_CountUnread(t *testing.T) {
	repo := NewGormNotificationRepository(setupNotificationTestDB(t))
	ctx := context.Background()

	tenantID := uuid.New()
	userID := uuid.New()
	seedNotification(t, repo, tenantID, userID, "Unread one")
	seedNotification(t, repo, tenantID, userID, "Unread two")
	read := seedNotification(t, repo, tenantID, userID, "Already read")
	read.MarkRead(time.Now())
	require.NoError(t, repo.Save(ctx, read))

	count, err := repo.CountUnread(ctx, tenantID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormNotificationRepository_MarkAllRead(t *testing.T) {
	repo := NewGormNotificationRepository(setupNotificationTestDB(t))
	ctx := context.Background()

	tenantID := uuid.New()
	userID := uuid.New()
	seedNotification(t, repo, tenantID, userID, "One")
	seedNotification(t, repo, tenantID, userID, "Two")
	untouched := seedNotification(t, repo, tenantID, uuid.New(), "Other user")

	require.NoError(t, repo.MarkAllRead(ctx, tenantID, userID))

	count, err := repo.CountUnread(ctx, tenantID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	otherCount, err := repo.CountUnread(ctx, tenantID, untouched.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), otherCount)
}

func TestGormNotificationRepository_DeleteForTenant(t *testing.T) {
	repo := NewGormNotificationRepository(setupNotificationTestDB(t))
	ctx := context.Background()

	tenantID := uuid.New()
	notification := seedNotification(t, repo, tenantID, uuid.New(), "Disposable")

	t.Run("cross-tenant delete reports not found", func(t *testing.T) {
		err := repo.DeleteForTenant(ctx, uuid.New(), notification.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("deletes within tenant", func(t *testing.T) {
		require.NoError(t, repo.DeleteForTenant(ctx, tenantID, notification.ID))

		_, err := repo.FindByIDForTenant(ctx, tenantID, notification.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
