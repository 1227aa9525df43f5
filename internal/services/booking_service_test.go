package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khidmaBack/internal/lifecycle"
	"khidmaBack/internal/models"
	"khidmaBack/internal/repositories"
)

const bookingTestSchema = `
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

type bookingTestEnv struct {
	db               *sql.DB
	svc              *BookingService
	userRepo         *repositories.UserRepository
	serviceRepo      *repositories.ServiceRepository
	onsiteRepo       *repositories.OnsiteBookingRepository
	onlineRepo       *repositories.OnlineBookingRepository
	notificationRepo *repositories.NotificationRepository
	outboxRepo       *repositories.OutboxRepository
}

func newBookingTestEnv(t *testing.T) *bookingTestEnv {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(bookingTestSchema)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &bookingTestEnv{
		db:               db,
		userRepo:         &repositories.UserRepository{DB: db},
		serviceRepo:      &repositories.ServiceRepository{DB: db},
		onsiteRepo:       &repositories.OnsiteBookingRepository{DB: db},
		onlineRepo:       &repositories.OnlineBookingRepository{DB: db},
		notificationRepo: &repositories.NotificationRepository{DB: db},
		outboxRepo:       &repositories.OutboxRepository{DB: db},
	}
	env.svc = &BookingService{
		DB:               db,
		OnsiteRepo:       env.onsiteRepo,
		OnlineRepo:       env.onlineRepo,
		NotificationRepo: env.notificationRepo,
		OutboxRepo:       env.outboxRepo,
		CatalogRepo:      env.serviceRepo,
	}
	return env
}

func (env *bookingTestEnv) createUser(t *testing.T, name, role string) int {
	t.Helper()
	u, err := env.userRepo.CreateUser(context.Background(), models.User{
		Name:     name,
		Phone:    "+216" + name,
		Email:    name + "@example.tn",
		Password: "hashed",
		Role:     role,
	})
	require.NoError(t, err)
	return u.ID
}

func (env *bookingTestEnv) createService(t *testing.T, providerID int, title string) int {
	t.Helper()
	svc, err := env.serviceRepo.CreateService(context.Background(), models.Service{
		ProviderID:  providerID,
		Title:       title,
		Category:    "plumbing",
		Description: "Repairs and installation",
		Price:       80,
		Status:      "active",
	})
	require.NoError(t, err)
	return svc.ID
}

func TestCreateOnsiteBookingNotifiesProvider(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	clientID := env.createUser(t, "amine", models.RoleClient)
	providerID := env.createUser(t, "fatma", models.RoleProvider)
	serviceID := env.createService(t, providerID, "Plumbing repair")

	created, err := env.svc.CreateOnsite(ctx, clientID, CreateOnsiteRequest{
		ServiceID:   serviceID,
		Location:    "12 Rue de Marseille",
		Governorate: "Tunis",
		Urgent:      true,
		ClientNotes: "Kitchen sink is leaking",
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusPending, created.Status)
	assert.Equal(t, providerID, created.ProviderID)
	assert.Equal(t, "Plumbing repair", created.ServiceTitle)

	// counterparty notification lands with the booking
	list, err := env.notificationRepo.ListByUser(ctx, providerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotifBookingCreated, list[0].Type)
	assert.Equal(t, created.ID, list[0].BookingID)
	assert.Equal(t, models.BookingTypeOnsite, list[0].BookingType)
	assert.False(t, list[0].IsRead)

	// the client does not get a notification about their own action
	clientList, err := env.notificationRepo.ListByUser(ctx, clientID)
	require.NoError(t, err)
	assert.Empty(t, clientList)

	// but both parties get a change event for live refresh
	pending, err := env.outboxRepo.FetchUnsent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, providerID, pending[0].UserID)
	assert.Equal(t, list[0].ID, pending[0].NotificationID)
	assert.Equal(t, clientID, pending[1].UserID)
	assert.Zero(t, pending[1].NotificationID)
}

func TestCreateBookingRejectsOwnService(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	providerID := env.createUser(t, "fatma", models.RoleProvider)
	serviceID := env.createService(t, providerID, "Plumbing repair")

	_, err := env.svc.CreateOnsite(ctx, providerID, CreateOnsiteRequest{
		ServiceID: serviceID, Location: "Rue A", Governorate: "Tunis",
	})
	assert.ErrorIs(t, err, models.ErrActorNotAllowed)

	_, err = env.svc.CreateOnline(ctx, providerID, CreateOnlineRequest{
		ServiceID: serviceID, ProjectTitle: "Site", ProjectDescription: "Build it",
	})
	assert.ErrorIs(t, err, models.ErrActorNotAllowed)
}

func TestProviderConfirmsWithNotes(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	clientID := env.createUser(t, "amine", models.RoleClient)
	providerID := env.createUser(t, "fatma", models.RoleProvider)
	serviceID := env.createService(t, providerID, "Plumbing repair")

	created, err := env.svc.CreateOnsite(ctx, clientID, CreateOnsiteRequest{
		ServiceID: serviceID, Location: "12 Rue de Marseille", Governorate: "Tunis",
	})
	require.NoError(t, err)

	notes := "On my way"
	err = env.svc.Transition(ctx, providerID, models.BookingTypeOnsite, created.ID, lifecycle.StatusConfirmed, &notes)
	require.NoError(t, err)

	got, err := env.svc.GetOnsite(ctx, clientID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusConfirmed, got.Status)
	require.NotNil(t, got.ProviderNotes)
	assert.Equal(t, "On my way", *got.ProviderNotes)
	require.NotNil(t, got.UpdatedAt)

	list, err := env.notificationRepo.ListByUser(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotifBookingConfirmed, list[0].Type)
	assert.Contains(t, list[0].Message, "Plumbing repair")

	// deciding again against a settled booking is a conflict
	err = env.svc.Transition(ctx, providerID, models.BookingTypeOnsite, created.ID, lifecycle.StatusDeclined, nil)
	assert.ErrorIs(t, err, models.ErrBookingAlreadyDecided)
}

func TestTransitionActorRules(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	clientID := env.createUser(t, "amine", models.RoleClient)
	providerID := env.createUser(t, "fatma", models.RoleProvider)
	strangerID := env.createUser(t, "karim", models.RoleClient)
	serviceID := env.createService(t, providerID, "Plumbing repair")

	created, err := env.svc.CreateOnsite(ctx, clientID, CreateOnsiteRequest{
		ServiceID: serviceID, Location: "Rue A", Governorate: "Tunis",
	})
	require.NoError(t, err)

	// only parties of the booking may touch it
	err = env.svc.Transition(ctx, strangerID, models.BookingTypeOnsite, created.ID, lifecycle.StatusCancelled, nil)
	assert.ErrorIs(t, err, models.ErrNotBookingParty)

	// the client cannot confirm
	err = env.svc.Transition(ctx, clientID, models.BookingTypeOnsite, created.ID, lifecycle.StatusConfirmed, nil)
	assert.ErrorIs(t, err, models.ErrActorNotAllowed)

	// the client may cancel; their provider_notes are ignored
	notes := "should not stick"
	err = env.svc.Transition(ctx, clientID, models.BookingTypeOnsite, created.ID, lifecycle.StatusCancelled, &notes)
	require.NoError(t, err)

	got, err := env.svc.GetOnsite(ctx, providerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusCancelled, got.Status)
	assert.Nil(t, got.ProviderNotes)

	// cancellation by the client notifies the provider
	list, err := env.notificationRepo.ListByUser(ctx, providerID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.NotifBookingCancelled, list[0].Type)
}

func TestInProgressTransitionSkipsNotification(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	clientID := env.createUser(t, "amine", models.RoleClient)
	providerID := env.createUser(t, "fatma", models.RoleProvider)
	serviceID := env.createService(t, providerID, "Plumbing repair")

	created, err := env.svc.CreateOnsite(ctx, clientID, CreateOnsiteRequest{
		ServiceID: serviceID, Location: "Rue A", Governorate: "Tunis",
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.Transition(ctx, providerID, models.BookingTypeOnsite, created.ID, lifecycle.StatusConfirmed, nil))

	before, err := env.notificationRepo.ListByUser(ctx, clientID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Transition(ctx, providerID, models.BookingTypeOnsite, created.ID, lifecycle.StatusInProgress, nil))

	// no new notification for starting the work
	after, err := env.notificationRepo.ListByUser(ctx, clientID)
	require.NoError(t, err)
	assert.Len(t, after, len(before))

	// the change event still goes out to both parties
	pending, err := env.outboxRepo.FetchUnsent(ctx, 100)
	require.NoError(t, err)
	var updated int
	for _, ev := range pending {
		if ev.Kind == "booking_updated" && ev.Status == lifecycle.StatusInProgress {
			updated++
			assert.Zero(t, ev.NotificationID)
		}
	}
	assert.Equal(t, 2, updated)
}

func TestTransitionUnknownVariant(t *testing.T) {
	env := newBookingTestEnv(t)
	err := env.svc.Transition(context.Background(), 1, "offline", 1, lifecycle.StatusConfirmed, nil)
	assert.ErrorIs(t, err, models.ErrUnknownBookingType)
}

func TestListBookingsMergesVariants(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	clientID := env.createUser(t, "amine", models.RoleClient)
	providerID := env.createUser(t, "fatma", models.RoleProvider)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	mkOnsite := func(createdAt time.Time, status string) models.OnsiteBooking {
		tx, err := env.db.Begin()
		require.NoError(t, err)
		b, err := env.onsiteRepo.CreateTx(ctx, tx, models.OnsiteBooking{
			ClientID: clientID, ProviderID: providerID, ServiceID: 1,
			ServiceTitle: "Plumbing repair", ServiceCategory: "plumbing",
			Location: "Rue A", Governorate: "Tunis", Status: status,
		}, createdAt)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		return b
	}
	mkOnline := func(createdAt time.Time, status string) models.OnlineBooking {
		tx, err := env.db.Begin()
		require.NoError(t, err)
		b, err := env.onlineRepo.CreateTx(ctx, tx, models.OnlineBooking{
			ClientID: clientID, ProviderID: providerID, ServiceID: 2,
			ServiceTitle: "Logo design", ServiceCategory: "design",
			ProjectTitle: "Brand refresh", ProjectDescription: "New logo", Status: status,
		}, createdAt)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		return b
	}

	oldest := mkOnsite(base, lifecycle.StatusPending)
	middle := mkOnline(base.Add(time.Hour), lifecycle.StatusPending)
	newest := mkOnsite(base.Add(2*time.Hour), lifecycle.StatusConfirmed)

	items, err := env.svc.ListBookings(ctx, models.BookingListFilter{
		UserID: clientID, Role: models.RoleClient,
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, models.BookingTypeOnsite, items[0].BookingType)
	assert.Equal(t, newest.ID, items[0].Onsite.ID)
	assert.Equal(t, models.BookingTypeOnline, items[1].BookingType)
	assert.Equal(t, middle.ID, items[1].Online.ID)
	assert.Equal(t, oldest.ID, items[2].Onsite.ID)

	// variant filter
	onlineOnly, err := env.svc.ListBookings(ctx, models.BookingListFilter{
		UserID: clientID, Role: models.RoleClient, BookingType: models.BookingTypeOnline,
	})
	require.NoError(t, err)
	require.Len(t, onlineOnly, 1)
	assert.Equal(t, middle.ID, onlineOnly[0].Online.ID)

	// status filter spans both variants
	pendingOnly, err := env.svc.ListBookings(ctx, models.BookingListFilter{
		UserID: clientID, Role: models.RoleClient, Status: lifecycle.StatusPending,
	})
	require.NoError(t, err)
	require.Len(t, pendingOnly, 2)

	_, err = env.svc.ListBookings(ctx, models.BookingListFilter{UserID: clientID, Role: "admin"})
	assert.ErrorIs(t, err, models.ErrUnknownListRole)

	_, err = env.svc.ListBookings(ctx, models.BookingListFilter{
		UserID: clientID, Role: models.RoleClient, Status: "archived",
	})
	assert.Error(t, err)
}

func TestGetBookingPartyOnly(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()

	clientID := env.createUser(t, "amine", models.RoleClient)
	providerID := env.createUser(t, "fatma", models.RoleProvider)
	strangerID := env.createUser(t, "karim", models.RoleClient)
	serviceID := env.createService(t, providerID, "Plumbing repair")

	created, err := env.svc.CreateOnsite(ctx, clientID, CreateOnsiteRequest{
		ServiceID: serviceID, Location: "Rue A", Governorate: "Tunis",
	})
	require.NoError(t, err)

	_, err = env.svc.GetOnsite(ctx, clientID, created.ID)
	require.NoError(t, err)
	_, err = env.svc.GetOnsite(ctx, providerID, created.ID)
	require.NoError(t, err)
	_, err = env.svc.GetOnsite(ctx, strangerID, created.ID)
	assert.ErrorIs(t, err, models.ErrNotBookingParty)
}
