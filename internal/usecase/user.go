package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/auth"
	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/metrics"
	"github.com/ErlanBelekov/course-signup/internal/repository"
)

// confirmationSender is the part of ConfirmationUsecase that registration needs.
type confirmationSender interface {
	SendNew(ctx context.Context, user *domain.User) (*domain.Confirmation, error)
	MostRecent(ctx context.Context, userID int64) (*domain.Confirmation, error)
}

type UserUsecase struct {
	users         repository.UserRepository
	confirmations confirmationSender
	logger        *slog.Logger
	now           func() time.Time
}

func NewUserUsecase(users repository.UserRepository, confirmations confirmationSender, logger *slog.Logger) *UserUsecase {
	return &UserUsecase{
		users:         users,
		confirmations: confirmations,
		logger:        logger.With("component", "user_usecase"),
		now:           time.Now,
	}
}

type RegisterInput struct {
	ID        int64
	Email     string
	Phone     *string
	Name      string
	BirthDate *time.Time
	Gender    domain.Gender
	Password  string // optional; a user without one sets a temporary password later
}

// Register creates the user and sends the first confirmation. Uniqueness is
// checked id, email, phone in that order. If anything fails after the insert
// the user row is deleted again.
func (u *UserUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := u.checkUnique(ctx, input); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:        input.ID,
		Email:     input.Email,
		Phone:     input.Phone,
		Name:      input.Name,
		BirthDate: input.BirthDate,
		Gender:    input.Gender,
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
	}

	created, err := u.users.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if _, err := u.confirmations.SendNew(ctx, created); err != nil {
		u.rollback(ctx, created.ID, err)
		return nil, fmt.Errorf("send confirmation: %w", err)
	}
	return created, nil
}

func (u *UserUsecase) checkUnique(ctx context.Context, input RegisterInput) error {
	if err := u.absent(u.users.FindByID(ctx, input.ID)); err != nil {
		if errors.Is(err, errFound) {
			return domain.ErrUserIDExists
		}
		return err
	}
	if err := u.absent(u.users.FindByEmail(ctx, input.Email)); err != nil {
		if errors.Is(err, errFound) {
			return domain.ErrEmailExists
		}
		return err
	}
	if input.Phone != nil && *input.Phone != "" {
		if err := u.absent(u.users.FindByPhone(ctx, *input.Phone)); err != nil {
			if errors.Is(err, errFound) {
				return domain.ErrPhoneExists
			}
			return err
		}
	}
	return nil
}

var errFound = errors.New("found")

// absent converts a lookup result into nil (not found), errFound, or the lookup error.
func (u *UserUsecase) absent(_ *domain.User, err error) error {
	switch {
	case err == nil:
		return errFound
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("lookup user: %w", err)
	}
}

// rollback deletes a user whose registration could not be completed.
func (u *UserUsecase) rollback(ctx context.Context, id int64, cause error) {
	metrics.RegistrationRollbacksTotal.Inc()
	if err := u.users.Delete(context.WithoutCancel(ctx), id); err != nil {
		u.logger.ErrorContext(ctx, "registration rollback failed", "user_id", id, "cause", cause, "error", err)
		return
	}
	u.logger.WarnContext(ctx, "registration rolled back", "user_id", id, "cause", cause)
}

// SetTemporaryPassword lets a pre-provisioned user without a password choose
// one. It only becomes the login password once a confirmation is accepted.
func (u *UserUsecase) SetTemporaryPassword(ctx context.Context, userID int64, password string) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user.HasPassword() {
		return domain.ErrPasswordAlreadySet
	}

	current, err := u.confirmations.MostRecent(ctx, userID)
	if err != nil {
		return err
	}
	if current != nil && current.State(u.now()) == domain.ConfirmationPending {
		return domain.ErrConfirmationPending
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := u.users.SetTemporaryPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("set temporary password: %w", err)
	}

	if _, err := u.confirmations.SendNew(ctx, user); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}

type UserView struct {
	User         *domain.User
	Confirmation *domain.Confirmation // most recent, nil if none
}

func (u *UserUsecase) Get(ctx context.Context, id int64) (UserView, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return UserView{}, fmt.Errorf("find user: %w", err)
	}
	c, err := u.confirmations.MostRecent(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	return UserView{User: user, Confirmation: c}, nil
}

// Delete removes the caller's own account.
func (u *UserUsecase) Delete(ctx context.Context, callerID, id int64) error {
	if callerID != id {
		return domain.ErrForbidden
	}
	if err := u.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ChangePassword replaces the caller's own password.
func (u *UserUsecase) ChangePassword(ctx context.Context, callerID, id int64, password string) error {
	if callerID != id {
		return domain.ErrForbidden
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := u.users.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
