package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"khidmaBack/internal/models"
)

// notificationListLimit caps the notification panel read.
const notificationListLimit = 20

type NotificationRepository struct {
	DB *sql.DB
}

func (r *NotificationRepository) Insert(ctx context.Context, n models.Notification) (models.Notification, error) {
	now := time.Now()
	result, err := r.DB.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, title, message, booking_id, booking_type, is_read, created_at)
         VALUES (?, ?, ?, ?, ?, ?, false, ?)`,
		n.UserID, n.Type, n.Title, n.Message, n.BookingID, n.BookingType, now,
	)
	if err != nil {
		return models.Notification{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Notification{}, err
	}
	n.ID = int(id)
	n.IsRead = false
	n.CreatedAt = now
	return n, nil
}

// InsertTx inserts the notification inside the caller's transaction so the
// row lands atomically with the booking status change that produced it.
func (r *NotificationRepository) InsertTx(ctx context.Context, tx *sql.Tx, n models.Notification, now time.Time) (models.Notification, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, title, message, booking_id, booking_type, is_read, created_at)
         VALUES (?, ?, ?, ?, ?, ?, false, ?)`,
		n.UserID, n.Type, n.Title, n.Message, n.BookingID, n.BookingType, now,
	)
	if err != nil {
		return models.Notification{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Notification{}, err
	}
	n.ID = int(id)
	n.IsRead = false
	n.CreatedAt = now
	return n, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int) (models.Notification, error) {
	var n models.Notification
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, type, title, message, booking_id, booking_type, is_read, created_at
         FROM notifications WHERE id = ?`,
		id,
	).Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
		&n.BookingID, &n.BookingType, &n.IsRead, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Notification{}, models.ErrNotificationNotFound
	}
	if err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int) ([]models.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, type, title, message, booking_id, booking_type, is_read, created_at
         FROM notifications
         WHERE user_id = ?
         ORDER BY created_at DESC, id DESC
         LIMIT ?`,
		userID, notificationListLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.BookingID, &n.BookingType, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = false`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead flips the read flag on one notification. Idempotent: marking an
// already-read notification is not an error.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Distinguish missing from already-read: already-read rows still match.
		var exists int
		err := r.DB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM notifications WHERE id = ? AND user_id = ?`, id, userID,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return models.ErrNotificationNotFound
		}
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = ? AND is_read = false`,
		userID,
	)
	return err
}
