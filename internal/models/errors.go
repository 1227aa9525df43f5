package models

import (
	"errors"
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrDuplicatePhone     = errors.New("models: duplicate phone number")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrServiceNotFound    = errors.New("service not found")
)

var (
	ErrBookingNotFound       = errors.New("booking not found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrBookingAlreadyDecided = errors.New("booking already decided")
	ErrNotBookingParty       = errors.New("user is not a party of the booking")
	ErrActorNotAllowed       = errors.New("actor is not allowed to perform this transition")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrUnknownBookingType    = errors.New("unknown booking type")
	ErrUnknownListRole       = errors.New("list role must be client or provider")
)
