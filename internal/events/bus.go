package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"khidmaBack/internal/models"
)

// Event is the change-feed payload fanned out to a user's live sessions.
// Consumers treat any event as a coarse invalidation signal and re-run
// their filtered booking read instead of patching state incrementally.
type Event struct {
	EventID      string               `json:"event_id"`
	Kind         string               `json:"kind"`
	BookingID    int                  `json:"booking_id"`
	BookingType  string               `json:"booking_type"`
	Status       string               `json:"status"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// Bus delivers events addressed to a single user.
type Bus interface {
	Publish(ctx context.Context, userID int, ev Event) error
}

const channelPrefix = "user_events:"

func channelFor(userID int) string {
	return fmt.Sprintf("%s%d", channelPrefix, userID)
}

// UserFromChannel extracts the addressed user id from a bus channel name.
func UserFromChannel(channel string) (int, error) {
	raw, ok := strings.CutPrefix(channel, channelPrefix)
	if !ok {
		return 0, fmt.Errorf("unexpected channel %q", channel)
	}
	return strconv.Atoi(raw)
}

// RedisBus publishes events over redis pub/sub so every instance's
// websocket hub sees them, not only the one that handled the write.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, userID int, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, channelFor(userID), payload).Err()
}

// Subscribe listens on every user channel and invokes handle for each
// decoded event. It returns when ctx is cancelled or the subscription
// breaks.
func (b *RedisBus) Subscribe(ctx context.Context, handle func(userID int, ev Event)) error {
	sub := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			userID, err := UserFromChannel(msg.Channel)
			if err != nil {
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			handle(userID, ev)
		}
	}
}

// NopBus drops every event. Used where fan-out is irrelevant, e.g. tests
// that only exercise the store.
type NopBus struct{}

func (NopBus) Publish(context.Context, int, Event) error { return nil }
