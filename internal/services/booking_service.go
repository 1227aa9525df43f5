package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"khidmaBack/internal/lifecycle"
	"khidmaBack/internal/metrics"
	"khidmaBack/internal/models"
	"khidmaBack/internal/repositories"
)

// Store interfaces are injected explicitly so the lifecycle controller never
// reaches an ambient database handle.

type OnsiteBookingStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, b models.OnsiteBooking, now time.Time) (models.OnsiteBooking, error)
	GetByID(ctx context.Context, id int) (models.OnsiteBooking, error)
	ListByParty(ctx context.Context, role string, userID int, status string) ([]models.OnsiteBooking, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int, fromStatus, toStatus string, providerNotes *string, now time.Time) error
}

type OnlineBookingStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, b models.OnlineBooking, now time.Time) (models.OnlineBooking, error)
	GetByID(ctx context.Context, id int) (models.OnlineBooking, error)
	ListByParty(ctx context.Context, role string, userID int, status string) ([]models.OnlineBooking, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int, fromStatus, toStatus string, providerNotes *string, now time.Time) error
}

type NotificationStore interface {
	InsertTx(ctx context.Context, tx *sql.Tx, n models.Notification, now time.Time) (models.Notification, error)
}

type OutboxStore interface {
	InsertTx(ctx context.Context, tx *sql.Tx, ev repositories.OutboxEvent, now time.Time) error
}

type CatalogStore interface {
	GetServiceByID(ctx context.Context, id int) (models.Service, error)
}

// BookingService is the booking lifecycle controller. Every status change
// goes through one transaction: the guarded status update, the counterparty
// notification row and the outbox rows commit or roll back together.
type BookingService struct {
	DB               *sql.DB
	OnsiteRepo       OnsiteBookingStore
	OnlineRepo       OnlineBookingStore
	NotificationRepo NotificationStore
	OutboxRepo       OutboxStore
	CatalogRepo      CatalogStore
}

type CreateOnsiteRequest struct {
	ServiceID   int        `json:"service_id"`
	Location    string     `json:"location"`
	Governorate string     `json:"governorate"`
	Urgent      bool       `json:"urgent"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	ClientNotes string     `json:"client_notes,omitempty"`
}

type CreateOnlineRequest struct {
	ServiceID          int    `json:"service_id"`
	ProjectTitle       string `json:"project_title"`
	ProjectDescription string `json:"project_description"`
	BudgetRange        string `json:"budget_range"`
	Timeline           string `json:"timeline"`
	ClientNotes        string `json:"client_notes,omitempty"`
}

func (s *BookingService) CreateOnsite(ctx context.Context, clientID int, req CreateOnsiteRequest) (models.OnsiteBooking, error) {
	svc, err := s.CatalogRepo.GetServiceByID(ctx, req.ServiceID)
	if err != nil {
		return models.OnsiteBooking{}, err
	}
	if svc.ProviderID == clientID {
		return models.OnsiteBooking{}, models.ErrActorNotAllowed
	}

	b := models.OnsiteBooking{
		ClientID:        clientID,
		ProviderID:      svc.ProviderID,
		ServiceID:       svc.ID,
		ServiceTitle:    svc.Title,
		ServiceCategory: svc.Category,
		Location:        req.Location,
		Governorate:     req.Governorate,
		Urgent:          req.Urgent,
		ScheduledAt:     req.ScheduledAt,
		ClientNotes:     req.ClientNotes,
		Status:          lifecycle.StatusPending,
	}

	now := time.Now()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.OnsiteBooking{}, err
	}
	defer tx.Rollback()

	created, err := s.OnsiteRepo.CreateTx(ctx, tx, b, now)
	if err != nil {
		return models.OnsiteBooking{}, err
	}
	if err := s.recordEvents(ctx, tx, txEvent{
		kind:         models.NotifBookingCreated,
		bookingID:    created.ID,
		bookingType:  models.BookingTypeOnsite,
		status:       created.Status,
		serviceTitle: created.ServiceTitle,
		actorID:      clientID,
		targetID:     created.ProviderID,
	}, now); err != nil {
		return models.OnsiteBooking{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.OnsiteBooking{}, err
	}
	return created, nil
}

func (s *BookingService) CreateOnline(ctx context.Context, clientID int, req CreateOnlineRequest) (models.OnlineBooking, error) {
	svc, err := s.CatalogRepo.GetServiceByID(ctx, req.ServiceID)
	if err != nil {
		return models.OnlineBooking{}, err
	}
	if svc.ProviderID == clientID {
		return models.OnlineBooking{}, models.ErrActorNotAllowed
	}

	b := models.OnlineBooking{
		ClientID:           clientID,
		ProviderID:         svc.ProviderID,
		ServiceID:          svc.ID,
		ServiceTitle:       svc.Title,
		ServiceCategory:    svc.Category,
		ProjectTitle:       req.ProjectTitle,
		ProjectDescription: req.ProjectDescription,
		BudgetRange:        req.BudgetRange,
		Timeline:           req.Timeline,
		ClientNotes:        req.ClientNotes,
		Status:             lifecycle.StatusPending,
	}

	now := time.Now()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.OnlineBooking{}, err
	}
	defer tx.Rollback()

	created, err := s.OnlineRepo.CreateTx(ctx, tx, b, now)
	if err != nil {
		return models.OnlineBooking{}, err
	}
	if err := s.recordEvents(ctx, tx, txEvent{
		kind:         models.NotifBookingCreated,
		bookingID:    created.ID,
		bookingType:  models.BookingTypeOnline,
		status:       created.Status,
		serviceTitle: created.ServiceTitle,
		actorID:      clientID,
		targetID:     created.ProviderID,
	}, now); err != nil {
		return models.OnlineBooking{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.OnlineBooking{}, err
	}
	return created, nil
}

// bookingParties is the slice of a booking the transition logic needs,
// independent of variant.
type bookingParties struct {
	clientID     int
	providerID   int
	status       string
	serviceTitle string
}

// Transition requests a status change on behalf of actorID. The actor must
// be a party of the booking and allowed to request the target status from
// the current one; the write itself re-checks the current status so a
// concurrent decision surfaces as models.ErrBookingAlreadyDecided instead
// of being overwritten.
func (s *BookingService) Transition(ctx context.Context, actorID int, bookingType string, bookingID int, target string, providerNotes *string) error {
	var parties bookingParties
	switch bookingType {
	case models.BookingTypeOnsite:
		b, err := s.OnsiteRepo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		parties = bookingParties{b.ClientID, b.ProviderID, b.Status, b.ServiceTitle}
	case models.BookingTypeOnline:
		b, err := s.OnlineRepo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		parties = bookingParties{b.ClientID, b.ProviderID, b.Status, b.ServiceTitle}
	default:
		return models.ErrUnknownBookingType
	}

	var actor string
	switch actorID {
	case parties.providerID:
		actor = lifecycle.ActorProvider
	case parties.clientID:
		actor = lifecycle.ActorClient
	default:
		return models.ErrNotBookingParty
	}

	if !lifecycle.ValidStatus(target) || !lifecycle.CanTransition(parties.status, target) {
		if lifecycle.Terminal(parties.status) || parties.status != lifecycle.StatusPending && (target == lifecycle.StatusConfirmed || target == lifecycle.StatusDeclined) {
			return models.ErrBookingAlreadyDecided
		}
		return models.ErrInvalidTransition
	}
	if !lifecycle.ActorAllowed(actor, parties.status, target) {
		return models.ErrActorNotAllowed
	}
	if actor != lifecycle.ActorProvider {
		// provider_notes are writable by the provider only
		providerNotes = nil
	}

	counterparty := parties.providerID
	if actor == lifecycle.ActorProvider {
		counterparty = parties.clientID
	}

	now := time.Now()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	switch bookingType {
	case models.BookingTypeOnsite:
		err = s.OnsiteRepo.UpdateStatusTx(ctx, tx, bookingID, parties.status, target, providerNotes, now)
	case models.BookingTypeOnline:
		err = s.OnlineRepo.UpdateStatusTx(ctx, tx, bookingID, parties.status, target, providerNotes, now)
	}
	if err != nil {
		return err
	}

	err = s.recordEvents(ctx, tx, txEvent{
		kind:         lifecycle.NotificationType(target),
		bookingID:    bookingID,
		bookingType:  bookingType,
		status:       target,
		serviceTitle: parties.serviceTitle,
		actorID:      actorID,
		targetID:     counterparty,
	}, now)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metrics.IncTransition(bookingType, target)
	return nil
}

type txEvent struct {
	kind         string
	bookingID    int
	bookingType  string
	status       string
	serviceTitle string
	actorID      int
	targetID     int
}

// recordEvents writes the counterparty notification (when the event kind
// has a notification tag) plus the outbox rows for both parties inside the
// transaction. Fan-out itself happens later, when the dispatcher drains
// the outbox.
func (s *BookingService) recordEvents(ctx context.Context, tx *sql.Tx, ev txEvent, now time.Time) error {
	notifID := 0
	if ev.kind != "" {
		title, message := notificationText(ev.kind, ev.serviceTitle)
		notif, err := s.NotificationRepo.InsertTx(ctx, tx, models.Notification{
			UserID:      ev.targetID,
			Type:        ev.kind,
			Title:       title,
			Message:     message,
			BookingID:   ev.bookingID,
			BookingType: ev.bookingType,
		}, now)
		if err != nil {
			return err
		}
		metrics.IncNotification()
		notifID = notif.ID
	}

	kind := ev.kind
	if kind == "" {
		kind = "booking_updated"
	}
	for _, userID := range []int{ev.targetID, ev.actorID} {
		targetNotifID := 0
		if userID == ev.targetID {
			targetNotifID = notifID
		}
		if err := s.OutboxRepo.InsertTx(ctx, tx, repositories.OutboxEvent{
			EventID:        uuid.NewString(),
			UserID:         userID,
			Kind:           kind,
			BookingID:      ev.bookingID,
			BookingType:    ev.bookingType,
			Status:         ev.status,
			NotificationID: targetNotifID,
		}, now); err != nil {
			return err
		}
	}
	return nil
}

func notificationText(kind, serviceTitle string) (title, message string) {
	switch kind {
	case models.NotifBookingCreated:
		return "New booking request", fmt.Sprintf("You have a new booking request for %q.", serviceTitle)
	case models.NotifBookingConfirmed:
		return "Booking confirmed", fmt.Sprintf("Your booking for %q was confirmed.", serviceTitle)
	case models.NotifBookingDeclined:
		return "Booking declined", fmt.Sprintf("Your booking for %q was declined.", serviceTitle)
	case models.NotifBookingCompleted:
		return "Booking completed", fmt.Sprintf("Your booking for %q was marked completed.", serviceTitle)
	case models.NotifBookingCancelled:
		return "Booking cancelled", fmt.Sprintf("The booking for %q was cancelled.", serviceTitle)
	}
	return "Booking update", fmt.Sprintf("The booking for %q was updated.", serviceTitle)
}

// GetOnsite returns one on-site booking, readable only by its parties.
func (s *BookingService) GetOnsite(ctx context.Context, userID, id int) (models.OnsiteBooking, error) {
	b, err := s.OnsiteRepo.GetByID(ctx, id)
	if err != nil {
		return models.OnsiteBooking{}, err
	}
	if b.ClientID != userID && b.ProviderID != userID {
		return models.OnsiteBooking{}, models.ErrNotBookingParty
	}
	return b, nil
}

// GetOnline returns one online booking, readable only by its parties.
func (s *BookingService) GetOnline(ctx context.Context, userID, id int) (models.OnlineBooking, error) {
	b, err := s.OnlineRepo.GetByID(ctx, id)
	if err != nil {
		return models.OnlineBooking{}, err
	}
	if b.ClientID != userID && b.ProviderID != userID {
		return models.OnlineBooking{}, models.ErrNotBookingParty
	}
	return b, nil
}

// ListBookings merges both variants for one side of the marketplace,
// newest created first.
func (s *BookingService) ListBookings(ctx context.Context, filter models.BookingListFilter) ([]models.BookingListItem, error) {
	if filter.Role != models.RoleClient && filter.Role != models.RoleProvider {
		return nil, models.ErrUnknownListRole
	}
	if filter.Status != "" && !lifecycle.ValidStatus(filter.Status) {
		return nil, models.ErrInvalidTransition
	}

	var items []models.BookingListItem

	if filter.BookingType == "" || filter.BookingType == models.BookingTypeOnsite {
		onsite, err := s.OnsiteRepo.ListByParty(ctx, filter.Role, filter.UserID, filter.Status)
		if err != nil {
			return nil, err
		}
		for i := range onsite {
			items = append(items, models.BookingListItem{
				BookingType: models.BookingTypeOnsite,
				Onsite:      &onsite[i],
				CreatedAt:   onsite[i].CreatedAt,
			})
		}
	}
	if filter.BookingType == "" || filter.BookingType == models.BookingTypeOnline {
		online, err := s.OnlineRepo.ListByParty(ctx, filter.Role, filter.UserID, filter.Status)
		if err != nil {
			return nil, err
		}
		for i := range online {
			items = append(items, models.BookingListItem{
				BookingType: models.BookingTypeOnline,
				Online:      &online[i],
				CreatedAt:   online[i].CreatedAt,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
