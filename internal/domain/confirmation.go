package domain

import (
	"errors"
	"time"
)

var (
	ErrConfirmationNotFound = errors.New("confirmation not found")
	ErrConfirmationExpired  = errors.New("confirmation has expired")
	ErrAlreadyConfirmed     = errors.New("registration has already been confirmed")
	ErrConfirmationPending  = errors.New("a confirmation has already been sent and is still valid")
	ErrInvalidCode          = errors.New("invalid confirmation code")
	ErrNotificationFailed   = errors.New("failed to deliver confirmation")
)

type ConfirmationState string

const (
	ConfirmationPending   ConfirmationState = "pending"
	ConfirmationConfirmed ConfirmationState = "confirmed"
	ConfirmationExpired   ConfirmationState = "expired"
)

// Confirmation is a time-boxed, single-use token gating account activation.
// Only the most recently created confirmation of a user is actionable.
type Confirmation struct {
	ID        string
	UserID    int64
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
	Confirmed bool
}

// Expired reports whether the confirmation can no longer be used at now.
// A force-expired confirmation has ExpiresAt == the moment it was expired.
func (c *Confirmation) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func (c *Confirmation) State(now time.Time) ConfirmationState {
	switch {
	case c.Confirmed:
		return ConfirmationConfirmed
	case c.Expired(now):
		return ConfirmationExpired
	default:
		return ConfirmationPending
	}
}
