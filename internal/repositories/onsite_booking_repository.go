package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"khidmaBack/internal/lifecycle"
	"khidmaBack/internal/models"
)

type OnsiteBookingRepository struct {
	DB *sql.DB
}

const onsiteBookingColumns = `
        b.id, b.client_id, b.provider_id, b.service_id, b.service_title, b.service_category,
        b.location, b.governorate, b.urgent, b.scheduled_at, b.client_notes, b.provider_notes,
        b.status, b.created_at, b.updated_at,
        c.id, c.name, c.email, c.phone, c.avatar_path,
        p.id, p.name, p.email, p.phone, p.avatar_path`

const onsiteBookingFrom = `
        FROM onsite_bookings b
        JOIN users c ON c.id = b.client_id
        JOIN users p ON p.id = b.provider_id`

func scanOnsiteBooking(row interface{ Scan(...any) error }) (models.OnsiteBooking, error) {
	var b models.OnsiteBooking
	err := row.Scan(
		&b.ID, &b.ClientID, &b.ProviderID, &b.ServiceID, &b.ServiceTitle, &b.ServiceCategory,
		&b.Location, &b.Governorate, &b.Urgent, &b.ScheduledAt, &b.ClientNotes, &b.ProviderNotes,
		&b.Status, &b.CreatedAt, &b.UpdatedAt,
		&b.Client.ID, &b.Client.Name, &b.Client.Email, &b.Client.Phone, &b.Client.AvatarPath,
		&b.Provider.ID, &b.Provider.Name, &b.Provider.Email, &b.Provider.Phone, &b.Provider.AvatarPath,
	)
	if err != nil {
		return models.OnsiteBooking{}, err
	}
	return b, nil
}

// CreateTx inserts the booking inside the caller's transaction so the
// booking_created notification and outbox rows land atomically with it.
func (r *OnsiteBookingRepository) CreateTx(ctx context.Context, tx *sql.Tx, b models.OnsiteBooking, now time.Time) (models.OnsiteBooking, error) {
	query := `
        INSERT INTO onsite_bookings
            (client_id, provider_id, service_id, service_title, service_category,
             location, governorate, urgent, scheduled_at, client_notes, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	result, err := tx.ExecContext(ctx, query,
		b.ClientID, b.ProviderID, b.ServiceID, b.ServiceTitle, b.ServiceCategory,
		b.Location, b.Governorate, b.Urgent, b.ScheduledAt, b.ClientNotes, b.Status, now,
	)
	if err != nil {
		return models.OnsiteBooking{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.OnsiteBooking{}, err
	}
	b.ID = int(id)
	b.CreatedAt = now
	return b, nil
}

func (r *OnsiteBookingRepository) GetByID(ctx context.Context, id int) (models.OnsiteBooking, error) {
	query := `SELECT` + onsiteBookingColumns + onsiteBookingFrom + ` WHERE b.id = ?`
	b, err := scanOnsiteBooking(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.OnsiteBooking{}, models.ErrBookingNotFound
	}
	if err != nil {
		return models.OnsiteBooking{}, err
	}
	return b, nil
}

// ListByParty returns the bookings where the user is on the given side,
// optionally narrowed to one status, newest first.
func (r *OnsiteBookingRepository) ListByParty(ctx context.Context, role string, userID int, status string) ([]models.OnsiteBooking, error) {
	var column string
	switch role {
	case models.RoleClient:
		column = "b.client_id"
	case models.RoleProvider:
		column = "b.provider_id"
	default:
		return nil, models.ErrUnknownListRole
	}

	query := `SELECT` + onsiteBookingColumns + onsiteBookingFrom + ` WHERE ` + column + ` = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND b.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY b.created_at DESC, b.id DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.OnsiteBooking
	for rows.Next() {
		b, err := scanOnsiteBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UpdateStatusTx performs the guarded status update inside the caller's
// transaction. A booking that is no longer in the expected status surfaces
// as models.ErrBookingAlreadyDecided so a concurrent decision is never
// silently overwritten.
func (r *OnsiteBookingRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int, fromStatus, toStatus string, providerNotes *string, now time.Time) error {
	return lifecycle.Apply(ctx, tx, "onsite_bookings", id, fromStatus, toStatus, providerNotes, now)
}

// UpdateStatusUnguarded is the legacy last-write-wins update that does not
// re-check the current status. Kept for the admin repair path; normal
// transitions go through UpdateStatusTx.
func (r *OnsiteBookingRepository) UpdateStatusUnguarded(ctx context.Context, id int, toStatus string, providerNotes *string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE onsite_bookings SET status = ?, provider_notes = COALESCE(?, provider_notes), updated_at = ? WHERE id = ?`,
		toStatus, providerNotes, time.Now(), id,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrBookingNotFound
	}
	return nil
}
