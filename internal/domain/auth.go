package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserIDExists       = errors.New("a user with that id already exists")
	ErrEmailExists        = errors.New("a user with that email already exists")
	ErrPhoneExists        = errors.New("a user with that phone already exists")
	ErrPasswordAlreadySet = errors.New("user already has a password")
	ErrNotRegistered      = errors.New("user has not set a password yet")
	ErrNotConfirmed       = errors.New("user registration is not confirmed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

type User struct {
	ID                    int64
	PasswordHash          *string // nil until the user sets or confirms a password
	TemporaryPasswordHash *string
	Email                 string
	Phone                 *string
	Name                  string
	BirthDate             *time.Time
	Gender                Gender
	CreatedAt             time.Time
}

// HasPassword reports whether the user can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) HasPhone() bool {
	return u.Phone != nil && *u.Phone != ""
}
