package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	table := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  priority TEXT NOT NULL DEFAULT 'normal',
  title TEXT NOT NULL,
  body TEXT NOT NULL DEFAULT '',
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(table).Error)
	return db
}

func seedNotification(t *testing.T, repo Repository, title string, createdAt time.Time) *models.Notification {
	t.Helper()
	notification := &models.Notification{
		ID:        uuid.New(),
		Kind:      enums.NotificationKindPaymentReceived,
		Priority:  enums.NotificationPriorityNormal,
		Title:     title,
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), notification))
	return notification
}

func TestRepositoryListUnreadOnly(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	read := seedNotification(t, repo, "payment received", base)
	seedNotification(t, repo, "payment failed", base.Add(time.Hour))

	found, err := repo.MarkRead(context.Background(), read.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, found)

	rows, next, err := repo.List(context.Background(), listNotificationsParams{Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, rows, 1)
	assert.Equal(t, "payment failed", rows[0].Title)
}

func TestRepositoryListPaging(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		seedNotification(t, repo, "entry", base.Add(time.Duration(i)*time.Minute))
	}

	rows, next, err := repo.List(context.Background(), listNotificationsParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, next)

	rest, last, err := repo.List(context.Background(), listNotificationsParams{Limit: 2, Cursor: next})
	require.NoError(t, err)
	assert.Nil(t, last)
	require.Len(t, rest, 1)
}

func TestRepositoryMarkReadIsIdempotent(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	notification := seedNotification(t, repo, "dispute opened", time.Now().UTC())

	found, err := repo.MarkRead(context.Background(), notification.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, found)

	// Already read still reports found.
	found, err = repo.MarkRead(context.Background(), notification.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.MarkRead(context.Background(), uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepositoryMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	base := time.Now().UTC()

	seedNotification(t, repo, "one", base)
	seedNotification(t, repo, "two", base.Add(time.Minute))

	count, err := repo.MarkAllRead(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = repo.MarkAllRead(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
