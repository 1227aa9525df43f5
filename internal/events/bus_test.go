package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khidmaBack/internal/models"
)

func TestUserFromChannel(t *testing.T) {
	id, err := UserFromChannel("user_events:42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = UserFromChannel("other:42")
	assert.Error(t, err)

	_, err = UserFromChannel("user_events:abc")
	assert.Error(t, err)
}

func TestRedisBusPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	bus := NewRedisBus(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type delivery struct {
		userID int
		ev     Event
	}
	got := make(chan delivery, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = bus.Subscribe(ctx, func(userID int, ev Event) {
			got <- delivery{userID: userID, ev: ev}
		})
	}()

	// give the pattern subscription a moment to attach
	time.Sleep(50 * time.Millisecond)

	sent := Event{
		EventID:     "ev-1",
		Kind:        models.NotifBookingConfirmed,
		BookingID:   7,
		BookingType: models.BookingTypeOnsite,
		Status:      "confirmed",
		Notification: &models.Notification{
			ID: 3, UserID: 42, Type: models.NotifBookingConfirmed,
			Title: "Booking confirmed", Message: "Your booking was confirmed.",
			BookingID: 7, BookingType: models.BookingTypeOnsite,
		},
	}
	require.NoError(t, bus.Publish(ctx, 42, sent))

	select {
	case d := <-got:
		assert.Equal(t, 42, d.userID)
		assert.Equal(t, sent.EventID, d.ev.EventID)
		assert.Equal(t, sent.Kind, d.ev.Kind)
		require.NotNil(t, d.ev.Notification)
		assert.Equal(t, "Booking confirmed", d.ev.Notification.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}

	cancel()
	wg.Wait()
}
