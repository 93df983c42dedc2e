package subscriptions

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/agritechlabs/agroalert-backend/pkg/config"
	"github.com/agritechlabs/agroalert-backend/pkg/db"
	"github.com/agritechlabs/agroalert-backend/pkg/db/models"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSubscriptionsTestDB(t *testing.T) *db.Client {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		DSN:    "file::memory:?cache=shared",
		Driver: "sqlite",
	}, logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}))
	require.NoError(t, err)
	require.NoError(t, client.DB().AutoMigrate(&models.PushSubscription{}))

	t.Cleanup(func() {
		client.DB().Exec("DELETE FROM push_subscriptions")
		_ = client.Close()
	})
	return client
}

func newSubscription(userID uuid.UUID, endpoint string, at time.Time) *models.PushSubscription {
	return &models.PushSubscription{
		ID:           uuid.New(),
		UserID:       userID,
		Endpoint:     endpoint,
		P256dh:       "p256dh-key",
		Auth:         "auth-secret",
		SubscribedAt: at,
		IsActive:     true,
	}
}

func TestSubscriptionRepoActiveForUser(t *testing.T) {
	client := setupSubscriptionsTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	older := newSubscription(userID, "https://push.example/older", now.Add(-time.Hour))
	newer := newSubscription(userID, "https://push.example/newer", now)
	other := newSubscription(uuid.New(), "https://push.example/other", now)
	inactive := newSubscription(userID, "https://push.example/inactive", now)
	inactive.IsActive = false

	for _, sub := range []*models.PushSubscription{older, newer, other, inactive} {
		require.NoError(t, repo.Create(ctx, sub))
	}

	got, err := repo.ActiveForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
}

func TestSubscriptionRepoDeactivateOlderThan(t *testing.T) {
	client := setupSubscriptionsTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	stale := newSubscription(userID, "https://push.example/stale", now.Add(-48*time.Hour))
	fresh := newSubscription(userID, "https://push.example/fresh", now)
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))

	affected, err := repo.DeactivateOlderThan(ctx, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err := repo.ActiveForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fresh.ID, got[0].ID)

	var row models.PushSubscription
	require.NoError(t, client.DB().First(&row, "id = ?", stale.ID).Error)
	assert.False(t, row.IsActive)
	require.NotNil(t, row.DeactivatedAt)

	// A second sweep with the same cutoff finds nothing left to flip.
	affected, err = repo.DeactivateOlderThan(ctx, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Zero(t, affected)
}
