package repository

import (
	"context"

	"github.com/ErlanBelekov/course-signup/internal/domain"
)

type UserRepository interface {
	// Create inserts a user with a caller-supplied ID. Unique violations map to
	// domain.ErrUserIDExists, domain.ErrEmailExists or domain.ErrPhoneExists.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	SetTemporaryPassword(ctx context.Context, id int64, hash string) error
	// Delete removes the user; confirmations and roster entries cascade.
	Delete(ctx context.Context, id int64) error
}
