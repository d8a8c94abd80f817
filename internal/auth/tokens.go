package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims are the JWT claims issued by this service. Subject holds the user ID.
type Claims struct {
	Type  TokenType `json:"type"`
	Fresh bool      `json:"fresh,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(key []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{key: key, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// IssuePair returns a fresh access token and a refresh token for userID.
func (i *Issuer) IssuePair(userID int64) (TokenPair, error) {
	access, err := i.sign(userID, TokenAccess, true, i.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.sign(userID, TokenRefresh, false, i.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess returns a non-fresh access token, used when refreshing.
func (i *Issuer) IssueAccess(userID int64) (string, error) {
	return i.sign(userID, TokenAccess, false, i.accessTTL)
}

func (i *Issuer) sign(userID int64, typ TokenType, fresh bool, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Type:  typ,
		Fresh: fresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry of raw and checks its type.
func (i *Issuer) Parse(raw string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.key, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if claims.Type != want || claims.ID == "" || claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
