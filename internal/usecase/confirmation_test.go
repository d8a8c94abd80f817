package usecase_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/usecase"
)

func newConfirmationUsecase(users *memUsers, cs *memConfirmations, n *fakeNotifier) *usecase.ConfirmationUsecase {
	return usecase.NewConfirmationUsecase(users, cs, n, 30*time.Minute)
}

func TestSendNew_IssuesSixDigitCode(t *testing.T) {
	users := newMemUsers(existingUser)
	cs := newMemConfirmations(users)
	var sent *domain.Confirmation
	n := &fakeNotifier{notify: func(_ context.Context, _ *domain.User, c *domain.Confirmation) error {
		sent = c
		return nil
	}}

	c, err := newConfirmationUsecase(users, cs, n).SendNew(context.Background(), existingUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(c.Code) {
		t.Errorf("code %q is not six digits", c.Code)
	}
	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(c.ID) {
		t.Errorf("id %q is not a dashless uuid", c.ID)
	}
	if sent == nil || sent.ID != c.ID {
		t.Error("notifier did not receive the new confirmation")
	}
	if ttl := c.ExpiresAt.Sub(c.CreatedAt); ttl != 30*time.Minute {
		t.Errorf("ttl: want 30m, got %v", ttl)
	}
}

func TestResendTwice_LeavesExactlyOnePending(t *testing.T) {
	users := newMemUsers(existingUser)
	cs := newMemConfirmations(users)
	uc := newConfirmationUsecase(users, cs, &fakeNotifier{})
	ctx := context.Background()

	if err := uc.Resend(ctx, 1); err != nil {
		t.Fatalf("first resend: %v", err)
	}
	if err := uc.Resend(ctx, 1); err != nil {
		t.Fatalf("second resend: %v", err)
	}

	list, err := uc.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Confirmations) != 2 {
		t.Fatalf("want 2 confirmations, got %d", len(list.Confirmations))
	}

	now := time.Now()
	first, second := list.Confirmations[0], list.Confirmations[1]
	if got := first.State(now); got != domain.ConfirmationExpired {
		t.Errorf("first: want expired, got %s", got)
	}
	if got := second.State(now); got != domain.ConfirmationPending {
		t.Errorf("second: want pending, got %s", got)
	}
}

func TestResend_AlreadyConfirmed(t *testing.T) {
	users := newMemUsers(existingUser)
	now := time.Now()
	cs := newMemConfirmations(users, &domain.Confirmation{
		ID: "done", UserID: 1, Code: "111111", CreatedAt: now, ExpiresAt: now.Add(time.Hour), Confirmed: true,
	})
	n := &fakeNotifier{}

	err := newConfirmationUsecase(users, cs, n).Resend(context.Background(), 1)
	if !errors.Is(err, domain.ErrAlreadyConfirmed) {
		t.Errorf("want ErrAlreadyConfirmed, got %v", err)
	}
	if n.calls != 0 {
		t.Error("notifier should not be called")
	}
}

func TestResend_UnknownUser(t *testing.T) {
	users := newMemUsers()
	err := newConfirmationUsecase(users, newMemConfirmations(users), &fakeNotifier{}).Resend(context.Background(), 5)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestConfirmByLink(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name          string
		c             domain.Confirmation
		wantErr       error
		wantConfirmed bool
	}{
		{
			name:          "pending is confirmed",
			c:             domain.Confirmation{ExpiresAt: now.Add(time.Hour)},
			wantConfirmed: true,
		},
		{
			name:    "expired is rejected",
			c:       domain.Confirmation{ExpiresAt: now.Add(-time.Minute)},
			wantErr: domain.ErrConfirmationExpired,
		},
		{
			name:          "confirmed is rejected",
			c:             domain.Confirmation{ExpiresAt: now.Add(time.Hour), Confirmed: true},
			wantErr:       domain.ErrAlreadyConfirmed,
			wantConfirmed: true,
		},
		{
			name:          "confirmed and expired reports expiry",
			c:             domain.Confirmation{ExpiresAt: now.Add(-time.Minute), Confirmed: true},
			wantErr:       domain.ErrConfirmationExpired,
			wantConfirmed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newMemUsers(&domain.User{ID: 1, Email: "a@example.com", TemporaryPasswordHash: ptr("temp")})
			c := tt.c
			c.ID, c.UserID, c.Code, c.CreatedAt = "link", 1, "123456", now.Add(-time.Hour)
			cs := newMemConfirmations(users, &c)

			u, err := newConfirmationUsecase(users, cs, &fakeNotifier{}).ConfirmByLink(context.Background(), "link")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if got := cs.get("link"); got.Confirmed != tt.wantConfirmed || !got.ExpiresAt.Equal(c.ExpiresAt) {
				t.Errorf("stored confirmation changed: %+v", got)
			}
			if tt.wantErr == nil {
				if u == nil || u.ID != 1 {
					t.Fatalf("want user 1, got %+v", u)
				}
				if !u.HasPassword() || *u.PasswordHash != "temp" || u.TemporaryPasswordHash != nil {
					t.Error("temporary password not promoted")
				}
			}
		})
	}
}

func TestConfirmByLink_NotFound(t *testing.T) {
	users := newMemUsers()
	_, err := newConfirmationUsecase(users, newMemConfirmations(users), &fakeNotifier{}).ConfirmByLink(context.Background(), "nope")
	if !errors.Is(err, domain.ErrConfirmationNotFound) {
		t.Errorf("want ErrConfirmationNotFound, got %v", err)
	}
}

func TestConfirmByCode(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		c       *domain.Confirmation
		code    string
		wantErr error
	}{
		{name: "no confirmation", code: "123456", wantErr: domain.ErrConfirmationNotFound},
		{
			name:    "expired",
			c:       &domain.Confirmation{Code: "123456", ExpiresAt: now.Add(-time.Second)},
			code:    "123456",
			wantErr: domain.ErrConfirmationExpired,
		},
		{
			name:    "wrong code",
			c:       &domain.Confirmation{Code: "123456", ExpiresAt: now.Add(time.Hour)},
			code:    "654321",
			wantErr: domain.ErrInvalidCode,
		},
		{
			name:    "already confirmed",
			c:       &domain.Confirmation{Code: "123456", ExpiresAt: now.Add(time.Hour), Confirmed: true},
			code:    "123456",
			wantErr: domain.ErrAlreadyConfirmed,
		},
		{
			name: "matching code",
			c:    &domain.Confirmation{Code: "123456", ExpiresAt: now.Add(time.Hour)},
			code: "123456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newMemUsers(existingUser)
			cs := newMemConfirmations(users)
			var before domain.Confirmation
			if tt.c != nil {
				c := *tt.c
				c.ID, c.UserID, c.CreatedAt = "code", 1, now.Add(-time.Hour)
				before = c
				cs = newMemConfirmations(users, &c)
			}

			err := newConfirmationUsecase(users, cs, &fakeNotifier{}).ConfirmByCode(context.Background(), 1, tt.code)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if tt.c == nil {
				return
			}
			after := cs.get("code")
			if tt.wantErr != nil && after != before {
				t.Errorf("rejected confirmation was mutated: %+v -> %+v", before, after)
			}
			if tt.wantErr == nil && !after.Confirmed {
				t.Error("confirmation not marked confirmed")
			}
		})
	}
}

func TestConfirmationList_UnknownUser(t *testing.T) {
	users := newMemUsers()
	_, err := newConfirmationUsecase(users, newMemConfirmations(users), &fakeNotifier{}).List(context.Background(), 1)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}
