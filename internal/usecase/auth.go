package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/auth"
	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/metrics"
	"github.com/ErlanBelekov/course-signup/internal/repository"
)

type AuthUsecase struct {
	users         repository.UserRepository
	confirmations repository.ConfirmationRepository
	issuer        *auth.Issuer
	denylist      auth.Denylist
}

func NewAuthUsecase(
	users repository.UserRepository,
	confirmations repository.ConfirmationRepository,
	issuer *auth.Issuer,
	denylist auth.Denylist,
) *AuthUsecase {
	return &AuthUsecase{
		users:         users,
		confirmations: confirmations,
		issuer:        issuer,
		denylist:      denylist,
	}
}

// Login checks the password and the confirmation state and returns a fresh
// access token plus a refresh token.
func (u *AuthUsecase) Login(ctx context.Context, userID int64, password string) (auth.TokenPair, error) {
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return auth.TokenPair{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("find user: %w", err)
	}
	if !user.HasPassword() {
		return auth.TokenPair{}, domain.ErrNotRegistered
	}
	if !auth.CheckPassword(*user.PasswordHash, password) {
		return auth.TokenPair{}, domain.ErrInvalidCredentials
	}

	c, err := u.confirmations.MostRecent(ctx, userID)
	if errors.Is(err, domain.ErrConfirmationNotFound) {
		return auth.TokenPair{}, domain.ErrNotConfirmed
	}
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("find most recent confirmation: %w", err)
	}
	if !c.Confirmed {
		return auth.TokenPair{}, domain.ErrNotConfirmed
	}

	return u.issuer.IssuePair(user.ID)
}

// Refresh issues a non-fresh access token for the holder of a refresh token.
func (u *AuthUsecase) Refresh(claims *auth.Claims) (string, error) {
	userID, err := claims.UserID()
	if err != nil {
		return "", domain.ErrTokenInvalid
	}
	return u.issuer.IssueAccess(userID)
}

// Logout revokes the token described by claims until it expires.
func (u *AuthUsecase) Logout(claims *auth.Claims) {
	expiresAt := time.Now()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	u.denylist.Add(claims.ID, expiresAt)
	metrics.RevokedTokens.Set(float64(u.denylist.Len()))
}
