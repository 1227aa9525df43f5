package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxFetchAndMarkSent(t *testing.T) {
	db := setupTestDB(t)
	repo := OutboxRepository{DB: db}
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tx, err := db.Begin()
	require.NoError(t, err)
	for i, ev := range []OutboxEvent{
		{EventID: "ev-1", UserID: 1, Kind: "booking_created", BookingID: 1, BookingType: "onsite", Status: "pending", NotificationID: 10},
		{EventID: "ev-2", UserID: 2, Kind: "booking_created", BookingID: 1, BookingType: "onsite", Status: "pending"},
		{EventID: "ev-3", UserID: 1, Kind: "booking_confirmed", BookingID: 1, BookingType: "onsite", Status: "confirmed", NotificationID: 11},
	} {
		require.NoError(t, repo.InsertTx(ctx, tx, ev, now.Add(time.Duration(i)*time.Second)))
	}
	require.NoError(t, tx.Commit())

	// oldest rows first, limit respected
	batch, err := repo.FetchUnsent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "ev-1", batch[0].EventID)
	assert.Equal(t, 10, batch[0].NotificationID)
	assert.Equal(t, "ev-2", batch[1].EventID)

	require.NoError(t, repo.MarkSent(ctx, batch[0].ID))
	require.NoError(t, repo.MarkSent(ctx, batch[1].ID))

	// only the unsent row remains
	batch, err = repo.FetchUnsent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "ev-3", batch[0].EventID)

	// marking twice is harmless
	require.NoError(t, repo.MarkSent(ctx, batch[0].ID))
	require.NoError(t, repo.MarkSent(ctx, batch[0].ID))

	batch, err = repo.FetchUnsent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}
