package push

import (
	"context"
	"log"
	"strconv"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"

	"khidmaBack/internal/models"
)

// TokenSource resolves the FCM device tokens registered for a user.
type TokenSource interface {
	GetNotifyTokens(ctx context.Context, userID int) ([]string, error)
}

// Sender delivers booking notifications as FCM push messages.
type Sender struct {
	Client   *messaging.Client
	Tokens   TokenSource
	ErrorLog *log.Logger
}

// NewClient initializes the firebase messaging client from a service
// account credentials file. Returns nil when the path is empty so push can
// be disabled in development.
func NewClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	if credentialsFile == "" {
		return nil, nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}
	return app.Messaging(ctx)
}

// Send pushes the notification to every device token of its owner. Token
// failures are logged and skipped; push is best effort on top of the
// durable notification row.
func (s *Sender) Send(ctx context.Context, n models.Notification) {
	if s.Client == nil {
		return
	}
	tokens, err := s.Tokens.GetNotifyTokens(ctx, n.UserID)
	if err != nil {
		s.ErrorLog.Printf("push: fetch tokens for user %d: %v", n.UserID, err)
		return
	}

	for _, token := range tokens {
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Message,
			},
			Data: map[string]string{
				"type":         n.Type,
				"booking_id":   strconv.Itoa(n.BookingID),
				"booking_type": n.BookingType,
			},
			Android: &messaging.AndroidConfig{
				Priority: "high",
			},
			APNS: &messaging.APNSConfig{
				Headers: map[string]string{"apns-priority": "10"},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						Alert: &messaging.ApsAlert{
							Title: n.Title,
							Body:  n.Message,
						},
						Sound: "default",
					},
				},
			},
		}
		if _, err := s.Client.Send(ctx, msg); err != nil {
			s.ErrorLog.Printf("push: send to token %s: %v", token, err)
		}
	}
}
