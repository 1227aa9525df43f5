package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(""))
	providerAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("provider"))

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/user/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))
	mux.Get("/user/:id", authMiddleware.ThenFunc(app.userHandler.GetUserByID))
	mux.Put("/user/:id", authMiddleware.ThenFunc(app.userHandler.UpdateUser))
	mux.Post("/user/:id/avatar", authMiddleware.ThenFunc(app.userHandler.UploadAvatar))

	// Service catalog
	mux.Post("/service", providerAuthMiddleware.ThenFunc(app.serviceHandler.CreateService))
	mux.Get("/service/provider/:provider_id", authMiddleware.ThenFunc(app.serviceHandler.ListByProvider))
	mux.Get("/service/:id", authMiddleware.ThenFunc(app.serviceHandler.GetServiceByID))

	// Bookings
	mux.Post("/bookings/onsite", authMiddleware.ThenFunc(app.bookingHandler.CreateOnsiteBooking))
	mux.Post("/bookings/online", authMiddleware.ThenFunc(app.bookingHandler.CreateOnlineBooking))
	mux.Get("/bookings", authMiddleware.ThenFunc(app.bookingHandler.ListBookings))
	mux.Get("/bookings/:variant/:id", authMiddleware.ThenFunc(app.bookingHandler.GetBooking))
	mux.Put("/bookings/:variant/:id/status", authMiddleware.ThenFunc(app.bookingHandler.UpdateBookingStatus))

	// Notifications
	mux.Get("/notifications", authMiddleware.ThenFunc(app.notificationHandler.GetNotifications))
	mux.Get("/notifications/unread_count", authMiddleware.ThenFunc(app.notificationHandler.GetUnreadCount))
	mux.Put("/notifications/read_all", authMiddleware.ThenFunc(app.notificationHandler.MarkAllRead))
	mux.Put("/notifications/:id/read", authMiddleware.ThenFunc(app.notificationHandler.MarkRead))

	// Push tokens
	mux.Post("/notify_token", authMiddleware.ThenFunc(app.userHandler.CreateNotifyToken))
	mux.Del("/notify_token/:token", authMiddleware.ThenFunc(app.userHandler.DeleteNotifyToken))

	mux.Get("/ws", http.HandlerFunc(app.WebSocketHandler))
	mux.Get("/metrics", promhttp.Handler())

	return mux
}
