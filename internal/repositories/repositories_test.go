package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"khidmaBack/internal/models"
)

const testSchema = `
CREATE TABLE users (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    phone       TEXT NOT NULL UNIQUE,
    email       TEXT NOT NULL UNIQUE,
    password    TEXT NOT NULL,
    role        TEXT NOT NULL,
    avatar_path TEXT,
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME
);

CREATE TABLE provider_profiles (
    user_id       INTEGER PRIMARY KEY,
    bio           TEXT NOT NULL,
    years_of_exp  INTEGER NOT NULL DEFAULT 0,
    governorate   TEXT NOT NULL DEFAULT '',
    review_rating REAL NOT NULL DEFAULT 0,
    reviews_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE sessions (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id       INTEGER NOT NULL,
    role          TEXT NOT NULL,
    refresh_token TEXT NOT NULL UNIQUE,
    expires_at    DATETIME NOT NULL
);

CREATE TABLE notify_tokens (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    token   TEXT NOT NULL
);

CREATE TABLE services (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    provider_id INTEGER NOT NULL,
    title       TEXT NOT NULL,
    category    TEXT NOT NULL,
    description TEXT NOT NULL,
    price       REAL NOT NULL DEFAULT 0,
    online      BOOLEAN NOT NULL DEFAULT FALSE,
    status      TEXT NOT NULL DEFAULT 'active',
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME
);

CREATE TABLE onsite_bookings (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id        INTEGER NOT NULL,
    provider_id      INTEGER NOT NULL,
    service_id       INTEGER NOT NULL,
    service_title    TEXT NOT NULL,
    service_category TEXT NOT NULL,
    location         TEXT NOT NULL,
    governorate      TEXT NOT NULL,
    urgent           BOOLEAN NOT NULL DEFAULT FALSE,
    scheduled_at     DATETIME,
    client_notes     TEXT NOT NULL DEFAULT '',
    provider_notes   TEXT,
    status           TEXT NOT NULL,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME
);

CREATE TABLE online_bookings (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id           INTEGER NOT NULL,
    provider_id         INTEGER NOT NULL,
    service_id          INTEGER NOT NULL,
    service_title       TEXT NOT NULL,
    service_category    TEXT NOT NULL,
    project_title       TEXT NOT NULL,
    project_description TEXT NOT NULL,
    budget_range        TEXT NOT NULL DEFAULT '',
    timeline            TEXT NOT NULL DEFAULT '',
    client_notes        TEXT NOT NULL DEFAULT '',
    provider_notes      TEXT,
    status              TEXT NOT NULL,
    created_at          DATETIME NOT NULL,
    updated_at          DATETIME
);

CREATE TABLE notifications (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id      INTEGER NOT NULL,
    type         TEXT NOT NULL,
    title        TEXT NOT NULL,
    message      TEXT NOT NULL,
    booking_id   INTEGER NOT NULL,
    booking_type TEXT NOT NULL,
    is_read      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   DATETIME NOT NULL
);

CREATE TABLE outbox_events (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id        TEXT NOT NULL UNIQUE,
    user_id         INTEGER NOT NULL,
    kind            TEXT NOT NULL,
    booking_id      INTEGER NOT NULL,
    booking_type    TEXT NOT NULL,
    status          TEXT NOT NULL,
    notification_id INTEGER NOT NULL DEFAULT 0,
    created_at      DATETIME NOT NULL,
    sent_at         DATETIME
);
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, name, role string) int {
	t.Helper()
	repo := UserRepository{DB: db}
	u, err := repo.CreateUser(context.Background(), models.User{
		Name:     name,
		Phone:    "+216" + name,
		Email:    name + "@example.tn",
		Password: "hashed",
		Role:     role,
	})
	require.NoError(t, err)
	return u.ID
}

func insertOnsiteBooking(t *testing.T, db *sql.DB, b models.OnsiteBooking, createdAt time.Time) models.OnsiteBooking {
	t.Helper()
	repo := OnsiteBookingRepository{DB: db}
	tx, err := db.Begin()
	require.NoError(t, err)
	created, err := repo.CreateTx(context.Background(), tx, b, createdAt)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	return created
}
