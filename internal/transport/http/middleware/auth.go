package middleware

import (
	"net/http"
	"strings"

	"github.com/ErlanBelekov/course-signup/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	errUnauthorized  = "Unauthorized"
	errTokenRevoked  = "Token has been revoked"
	errFreshRequired = "Fresh token required"
)

type tokenParser interface {
	Parse(raw string, want auth.TokenType) (*auth.Claims, error)
}

// Authenticator builds gin middleware that validates Bearer JWTs and sets
// "userID" (int64) and "claims" (*auth.Claims) in the gin context.
type Authenticator struct {
	tokens   tokenParser
	denylist auth.Denylist
}

func NewAuthenticator(tokens tokenParser, denylist auth.Denylist) *Authenticator {
	return &Authenticator{tokens: tokens, denylist: denylist}
}

// Access requires a valid, unrevoked access token.
func (a *Authenticator) Access() gin.HandlerFunc {
	return a.require(auth.TokenAccess, false)
}

// Fresh requires an access token issued directly by login.
func (a *Authenticator) Fresh() gin.HandlerFunc {
	return a.require(auth.TokenAccess, true)
}

// Refresh requires a valid, unrevoked refresh token.
func (a *Authenticator) Refresh() gin.HandlerFunc {
	return a.require(auth.TokenRefresh, false)
}

// Optional authenticates the request when a valid access token is present
// and lets it through anonymously otherwise.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c)
		if ok {
			if claims, err := a.tokens.Parse(raw, auth.TokenAccess); err == nil && !a.denylist.Contains(claims.ID) {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

func (a *Authenticator) require(want auth.TokenType, fresh bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		claims, err := a.tokens.Parse(raw, want)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}
		if a.denylist.Contains(claims.ID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errTokenRevoked})
			return
		}
		if fresh && !claims.Fresh {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errFreshRequired})
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

func bearer(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	return raw, raw != ""
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	userID, _ := claims.UserID()
	c.Set("userID", userID)
	c.Set("claims", claims)
	c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), userID))
}
