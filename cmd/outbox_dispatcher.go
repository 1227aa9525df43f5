package main

import (
	"context"
	"errors"
	"log"
	"time"

	"khidmaBack/internal/events"
	"khidmaBack/internal/models"
	"khidmaBack/internal/push"
	"khidmaBack/internal/repositories"
)

const (
	outboxPollInterval = 2 * time.Second
	outboxBatchSize    = 100
	outboxRunTimeout   = 30 * time.Second
)

// startOutboxDispatcher drains unsent outbox rows and fans each one out:
// a change event on the redis bus for every addressed user, plus an FCM
// push when the row carries a notification. Rows are marked sent only
// after publishing, so delivery is at-least-once and consumers must
// tolerate duplicates (they do, events are pure invalidation signals).
func startOutboxDispatcher(ctx context.Context, outboxRepo *repositories.OutboxRepository, notificationRepo *repositories.NotificationRepository, bus events.Bus, sender *push.Sender, infoLog, errorLog *log.Logger) {
	go func() {
		ticker := time.NewTicker(outboxPollInterval)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, outboxRunTimeout)
			defer cancel()

			batch, err := outboxRepo.FetchUnsent(runCtx, outboxBatchSize)
			if err != nil {
				errorLog.Printf("outbox dispatcher: fetch unsent: %v", err)
				return
			}

			for _, row := range batch {
				ev := events.Event{
					EventID:     row.EventID,
					Kind:        row.Kind,
					BookingID:   row.BookingID,
					BookingType: row.BookingType,
					Status:      row.Status,
				}

				if row.NotificationID > 0 {
					n, err := notificationRepo.GetByID(runCtx, row.NotificationID)
					switch {
					case errors.Is(err, models.ErrNotificationNotFound):
						// уведомление могли удалить, событие всё равно шлём
					case err != nil:
						errorLog.Printf("outbox dispatcher: load notification %d: %v", row.NotificationID, err)
						continue
					default:
						ev.Notification = &n
						sender.Send(runCtx, n)
					}
				}

				if err := bus.Publish(runCtx, row.UserID, ev); err != nil {
					errorLog.Printf("outbox dispatcher: publish event %s: %v", row.EventID, err)
					continue
				}
				if err := outboxRepo.MarkSent(runCtx, row.ID); err != nil {
					errorLog.Printf("outbox dispatcher: mark sent %d: %v", row.ID, err)
				}
			}
			if len(batch) > 0 {
				infoLog.Printf("outbox dispatcher: processed %d events", len(batch))
			}
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
