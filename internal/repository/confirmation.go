package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/domain"
)

type ConfirmationRepository interface {
	Create(ctx context.Context, c *domain.Confirmation) (*domain.Confirmation, error)
	FindByID(ctx context.Context, id string) (*domain.Confirmation, error)
	// MostRecent returns the newest confirmation of the user by creation time.
	MostRecent(ctx context.Context, userID int64) (*domain.Confirmation, error)
	// ListByUser returns all confirmations of the user ordered by expires_at ASC.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Confirmation, error)
	ForceExpire(ctx context.Context, id string, at time.Time) error
	// Confirm marks the confirmation confirmed and promotes the owner's
	// temporary password to the permanent one in a single commit.
	Confirm(ctx context.Context, id string) error
}
