package repositories

import (
	"context"
	"database/sql"
	"time"
)

// OutboxEvent is a pending fan-out record written in the same transaction
// as the booking change it describes. The dispatcher drains unsent rows and
// pushes them over redis and FCM, so delivery is at-least-once.
type OutboxEvent struct {
	ID             int64
	EventID        string
	UserID         int
	Kind           string
	BookingID      int
	BookingType    string
	Status         string
	NotificationID int
	CreatedAt      time.Time
	SentAt         *time.Time
}

type OutboxRepository struct {
	DB *sql.DB
}

func (r *OutboxRepository) InsertTx(ctx context.Context, tx *sql.Tx, ev OutboxEvent, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO outbox_events (event_id, user_id, kind, booking_id, booking_type, status, notification_id, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.UserID, ev.Kind, ev.BookingID, ev.BookingType, ev.Status, ev.NotificationID, now,
	)
	return err
}

func (r *OutboxRepository) FetchUnsent(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, event_id, user_id, kind, booking_id, booking_type, status, notification_id, created_at
         FROM outbox_events
         WHERE sent_at IS NULL
         ORDER BY id
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.UserID, &ev.Kind, &ev.BookingID,
			&ev.BookingType, &ev.Status, &ev.NotificationID, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE outbox_events SET sent_at = ? WHERE id = ? AND sent_at IS NULL`,
		time.Now(), id,
	)
	return err
}
