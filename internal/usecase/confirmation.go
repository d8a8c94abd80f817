package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/repository"
	"github.com/google/uuid"
)

const defaultConfirmationTTL = 30 * time.Minute

type notifier interface {
	Notify(ctx context.Context, u *domain.User, c *domain.Confirmation) error
}

type ConfirmationUsecase struct {
	users         repository.UserRepository
	confirmations repository.ConfirmationRepository
	notifier      notifier
	ttl           time.Duration
	now           func() time.Time
}

func NewConfirmationUsecase(
	users repository.UserRepository,
	confirmations repository.ConfirmationRepository,
	n notifier,
	ttl time.Duration,
) *ConfirmationUsecase {
	if ttl <= 0 {
		ttl = defaultConfirmationTTL
	}
	return &ConfirmationUsecase{
		users:         users,
		confirmations: confirmations,
		notifier:      n,
		ttl:           ttl,
		now:           time.Now,
	}
}

// SendNew issues a new confirmation for u and notifies the user. A still
// pending confirmation is force-expired first so that at most one is valid.
func (u *ConfirmationUsecase) SendNew(ctx context.Context, user *domain.User) (*domain.Confirmation, error) {
	now := u.now()

	prev, err := u.confirmations.MostRecent(ctx, user.ID)
	switch {
	case errors.Is(err, domain.ErrConfirmationNotFound):
	case err != nil:
		return nil, fmt.Errorf("find most recent confirmation: %w", err)
	case prev.State(now) == domain.ConfirmationPending:
		if err := u.confirmations.ForceExpire(ctx, prev.ID, now); err != nil {
			return nil, fmt.Errorf("expire previous confirmation: %w", err)
		}
	}

	code, err := newConfirmationCode()
	if err != nil {
		return nil, err
	}
	c, err := u.confirmations.Create(ctx, &domain.Confirmation{
		ID:        strings.ReplaceAll(uuid.NewString(), "-", ""),
		UserID:    user.ID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(u.ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("create confirmation: %w", err)
	}

	if err := u.notifier.Notify(ctx, user, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Resend replaces the user's current confirmation with a new one.
// It is rejected once the registration is confirmed.
func (u *ConfirmationUsecase) Resend(ctx context.Context, userID int64) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	prev, err := u.confirmations.MostRecent(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrConfirmationNotFound) {
		return fmt.Errorf("find most recent confirmation: %w", err)
	}
	if prev != nil && prev.Confirmed {
		return domain.ErrAlreadyConfirmed
	}

	if _, err := u.SendNew(ctx, user); err != nil {
		return fmt.Errorf("resend confirmation: %w", err)
	}
	return nil
}

// ConfirmByLink confirms the confirmation with the given ID and returns its owner.
func (u *ConfirmationUsecase) ConfirmByLink(ctx context.Context, id string) (*domain.User, error) {
	c, err := u.confirmations.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find confirmation: %w", err)
	}
	if c.Expired(u.now()) {
		return nil, domain.ErrConfirmationExpired
	}
	if c.Confirmed {
		return nil, domain.ErrAlreadyConfirmed
	}

	if err := u.confirmations.Confirm(ctx, c.ID); err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}

	user, err := u.users.FindByID(ctx, c.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ConfirmByCode checks code against the user's most recent confirmation.
// Checks run in order: expiry, code, already confirmed; a rejection never mutates state.
func (u *ConfirmationUsecase) ConfirmByCode(ctx context.Context, userID int64, code string) error {
	if _, err := u.users.FindByID(ctx, userID); err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	c, err := u.confirmations.MostRecent(ctx, userID)
	if err != nil {
		return fmt.Errorf("find most recent confirmation: %w", err)
	}
	if c.Expired(u.now()) && !c.Confirmed {
		return domain.ErrConfirmationExpired
	}
	if c.Code != code {
		return domain.ErrInvalidCode
	}
	if c.Confirmed {
		return domain.ErrAlreadyConfirmed
	}

	if err := u.confirmations.Confirm(ctx, c.ID); err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	return nil
}

type ConfirmationList struct {
	CurrentTime   time.Time
	Confirmations []*domain.Confirmation
}

func (u *ConfirmationUsecase) List(ctx context.Context, userID int64) (ConfirmationList, error) {
	if _, err := u.users.FindByID(ctx, userID); err != nil {
		return ConfirmationList{}, fmt.Errorf("find user: %w", err)
	}
	cs, err := u.confirmations.ListByUser(ctx, userID)
	if err != nil {
		return ConfirmationList{}, fmt.Errorf("list confirmations: %w", err)
	}
	return ConfirmationList{CurrentTime: u.now(), Confirmations: cs}, nil
}

// MostRecent returns nil without error when the user has no confirmation.
func (u *ConfirmationUsecase) MostRecent(ctx context.Context, userID int64) (*domain.Confirmation, error) {
	c, err := u.confirmations.MostRecent(ctx, userID)
	if errors.Is(err, domain.ErrConfirmationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find most recent confirmation: %w", err)
	}
	return c, nil
}

func newConfirmationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
