package lifecycle

import (
	"context"
	"database/sql"
	"time"

	"khidmaBack/internal/models"
)

// Status constants used by the booking state machine. The literal values
// are user-visible and double as filter keys, so they never change.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusDeclined   = "declined"
	StatusCancelled  = "cancelled"
)

var transitions = map[string]map[string]struct{}{
	StatusPending: {
		StatusConfirmed: {},
		StatusDeclined:  {},
		StatusCancelled: {},
	},
	StatusConfirmed: {
		StatusInProgress: {},
		StatusCancelled:  {},
	},
	StatusInProgress: {
		StatusCompleted: {},
		StatusCancelled: {},
	},
	StatusCompleted: {},
	StatusDeclined:  {},
	StatusCancelled: {},
}

// ValidStatus reports whether s is one of the known status literals.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition leaves the status.
func Terminal(s string) bool {
	return len(transitions[s]) == 0 && ValidStatus(s)
}

// CanTransition returns whether a booking can move from the current status
// to the target status in one step.
func CanTransition(from, to string) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Actor roles relative to a booking.
const (
	ActorClient   = "client"
	ActorProvider = "provider"
)

// ActorAllowed returns whether the given party may request the transition.
// Only the provider advances a booking out of pending; either party may
// cancel a booking that is not yet terminal.
func ActorAllowed(actor, from, to string) bool {
	if !CanTransition(from, to) {
		return false
	}
	if to == StatusCancelled {
		return actor == ActorClient || actor == ActorProvider
	}
	return actor == ActorProvider
}

// NotificationType maps a transition target to the notification type tag
// recorded for the counterparty. The empty string means the transition
// produces no notification (confirmed -> in_progress has no tag in the
// fixed type set).
func NotificationType(to string) string {
	switch to {
	case StatusConfirmed:
		return models.NotifBookingConfirmed
	case StatusDeclined:
		return models.NotifBookingDeclined
	case StatusCompleted:
		return models.NotifBookingCompleted
	case StatusCancelled:
		return models.NotifBookingCancelled
	}
	return ""
}

// Apply updates a booking status with optimistic validation. The WHERE
// clause re-checks the expected prior status so a concurrent decision
// cannot be silently overwritten; a lost race surfaces as
// models.ErrBookingAlreadyDecided.
func Apply(ctx context.Context, tx *sql.Tx, table string, bookingID int, fromStatus, toStatus string, providerNotes *string, now time.Time) error {
	if !CanTransition(fromStatus, toStatus) {
		return models.ErrInvalidTransition
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE `+table+` SET status = ?, provider_notes = COALESCE(?, provider_notes), updated_at = ? WHERE id = ? AND status = ?`,
		toStatus, providerNotes, now, bookingID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrBookingAlreadyDecided
	}
	return nil
}
