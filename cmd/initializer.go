package main

import (
	"database/sql"
	"log"
	"time"

	"khidmaBack/internal/config"
	"khidmaBack/internal/handlers"
	"khidmaBack/internal/repositories"
	"khidmaBack/internal/services"
	"khidmaBack/utils"
)

type application struct {
	errorLog            *log.Logger
	infoLog             *log.Logger
	db                  *sql.DB
	tokens              *utils.Manager
	userRepo            *repositories.UserRepository
	serviceRepo         *repositories.ServiceRepository
	onsiteRepo          *repositories.OnsiteBookingRepository
	onlineRepo          *repositories.OnlineBookingRepository
	notificationRepo    *repositories.NotificationRepository
	outboxRepo          *repositories.OutboxRepository
	userHandler         *handlers.UserHandler
	serviceHandler      *handlers.ServiceHandler
	bookingHandler      *handlers.BookingHandler
	notificationHandler *handlers.NotificationHandler
	wsManager           *WebSocketManager
}

func initializeApp(cfg config.Config, db *sql.DB, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := repositories.UserRepository{DB: db}
	serviceRepo := repositories.ServiceRepository{DB: db}
	onsiteRepo := repositories.OnsiteBookingRepository{DB: db}
	onlineRepo := repositories.OnlineBookingRepository{DB: db}
	notificationRepo := repositories.NotificationRepository{DB: db}
	outboxRepo := repositories.OutboxRepository{DB: db}

	tokens, err := utils.NewManager(cfg.Auth.SigningKey, time.Duration(cfg.Auth.AccessTTLHours)*time.Hour)
	if err != nil {
		errorLog.Fatal(err)
	}

	// Services
	userService := &services.UserService{UserRepo: &userRepo, Tokens: tokens}
	serviceService := &services.ServiceService{ServiceRepo: &serviceRepo}
	bookingService := &services.BookingService{
		DB:               db,
		OnsiteRepo:       &onsiteRepo,
		OnlineRepo:       &onlineRepo,
		NotificationRepo: &notificationRepo,
		OutboxRepo:       &outboxRepo,
		CatalogRepo:      &serviceRepo,
	}
	notificationService := &services.NotificationService{NotificationRepo: &notificationRepo}

	// Handlers
	userHandler := &handlers.UserHandler{Service: userService}
	serviceHandler := &handlers.ServiceHandler{Service: serviceService}
	bookingHandler := &handlers.BookingHandler{Service: bookingService}
	notificationHandler := &handlers.NotificationHandler{Service: notificationService}

	return &application{
		errorLog:            errorLog,
		infoLog:             infoLog,
		db:                  db,
		tokens:              tokens,
		userRepo:            &userRepo,
		serviceRepo:         &serviceRepo,
		onsiteRepo:          &onsiteRepo,
		onlineRepo:          &onlineRepo,
		notificationRepo:    &notificationRepo,
		outboxRepo:          &outboxRepo,
		userHandler:         userHandler,
		serviceHandler:      serviceHandler,
		bookingHandler:      bookingHandler,
		notificationHandler: notificationHandler,
	}
}
