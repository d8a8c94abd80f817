package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/auth"
	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/usecase"
	"github.com/gin-gonic/gin"
)

// userUsecaser is the subset of UserUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type userUsecaser interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	SetTemporaryPassword(ctx context.Context, userID int64, password string) error
	Get(ctx context.Context, id int64) (usecase.UserView, error)
	Delete(ctx context.Context, callerID, id int64) error
	ChangePassword(ctx context.Context, callerID, id int64, password string) error
}

type authUsecaser interface {
	Login(ctx context.Context, userID int64, password string) (auth.TokenPair, error)
	Refresh(claims *auth.Claims) (string, error)
	Logout(claims *auth.Claims)
}

type UserHandler struct {
	users  userUsecaser
	auth   authUsecaser
	logger *slog.Logger
}

func NewUserHandler(users userUsecaser, authUsecase authUsecaser, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		auth:   authUsecase,
		logger: logger.With("component", "user_handler"),
	}
}

type registerRequest struct {
	ID        int64   `json:"id"         binding:"required,min=1"`
	Email     string  `json:"email"      binding:"required,email,max=80"`
	Phone     *string `json:"phone"      binding:"omitempty,numeric,max=15"`
	Name      string  `json:"name"       binding:"max=80"`
	BirthDate string  `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Gender    string  `json:"gender"     binding:"omitempty,oneof=M F O"`
	Password  string  `json:"password"   binding:"omitempty,min=6,max=72"`
}

type temporaryPasswordRequest struct {
	UserID            int64  `json:"user_id"            binding:"required,min=1"`
	TemporaryPassword string `json:"temporary_password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	ID       int64  `json:"id"       binding:"required"`
	Password string `json:"password" binding:"required"`
}

type passwordRequest struct {
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type confirmationSummary struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
	Confirmed bool      `json:"confirmed"`
}

type userResponse struct {
	ID           int64                `json:"id"`
	Email        string               `json:"email"`
	Phone        *string              `json:"phone"`
	Name         string               `json:"name"`
	BirthDate    *string              `json:"birth_date"`
	Gender       domain.Gender        `json:"gender,omitempty"`
	Confirmation *confirmationSummary `json:"most_recent_confirmation"`
}

// POST /register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	input := usecase.RegisterInput{
		ID:       req.ID,
		Email:    req.Email,
		Name:     req.Name,
		Gender:   domain.Gender(req.Gender),
		Password: req.Password,
	}
	if req.Phone != nil && *req.Phone != "" {
		input.Phone = req.Phone
	}
	if req.BirthDate != "" {
		d, _ := time.Parse(time.DateOnly, req.BirthDate)
		input.BirthDate = &d
	}

	_, err := h.users.Register(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserIDExists):
			c.JSON(http.StatusConflict, gin.H{"error": errUserIDExists})
		case errors.Is(err, domain.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": errEmailExists})
		case errors.Is(err, domain.ErrPhoneExists):
			c.JSON(http.StatusConflict, gin.H{"error": errPhoneExists})
		case errors.Is(err, domain.ErrNotificationFailed):
			h.logger.ErrorContext(c.Request.Context(), "register: notify", "user_id", req.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errNotification})
		default:
			internalError(c, h.logger, "register", err, "user_id", req.ID)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Account created. Check your email to confirm the registration."})
}

// PUT /register
func (h *UserHandler) SetTemporaryPassword(c *gin.Context) {
	var req temporaryPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	err := h.users.SetTemporaryPassword(c.Request.Context(), req.UserID, req.TemporaryPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		case errors.Is(err, domain.ErrPasswordAlreadySet):
			c.JSON(http.StatusBadRequest, gin.H{"error": errPasswordAlreadySet})
		case errors.Is(err, domain.ErrConfirmationPending):
			c.JSON(http.StatusConflict, gin.H{"error": errConfirmationSent})
		case errors.Is(err, domain.ErrNotificationFailed):
			h.logger.ErrorContext(c.Request.Context(), "set temporary password: notify", "user_id", req.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errNotification})
		default:
			internalError(c, h.logger, "set temporary password", err, "user_id", req.UserID)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Password saved. Check your email to confirm it."})
}

// POST /login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
		case errors.Is(err, domain.ErrNotRegistered):
			c.JSON(http.StatusBadRequest, gin.H{"error": errNotRegistered})
		case errors.Is(err, domain.ErrNotConfirmed):
			c.JSON(http.StatusBadRequest, gin.H{"error": errNotConfirmed})
		default:
			internalError(c, h.logger, "login", err, "user_id", req.ID)
		}
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// POST /refresh, behind the refresh-token middleware.
func (h *UserHandler) Refresh(c *gin.Context) {
	claims := c.MustGet("claims").(*auth.Claims)

	access, err := h.auth.Refresh(claims)
	if err != nil {
		internalError(c, h.logger, "refresh", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// POST /logout
func (h *UserHandler) Logout(c *gin.Context) {
	claims := c.MustGet("claims").(*auth.Claims)
	h.auth.Logout(claims)
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User %s successfully logged out", claims.Subject)})
}

// GET /user/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	view, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		internalError(c, h.logger, "get user", err, "user_id", id)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(view))
}

// DELETE /user/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), c.GetInt64("userID"), id); err != nil {
		h.writeSelfError(c, "delete user", id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// POST /change_password/:id
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), c.GetInt64("userID"), id, req.Password); err != nil {
		h.writeSelfError(c, "change password", id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Password of user %d changed", id)})
}

func (h *UserHandler) writeSelfError(c *gin.Context, op string, id int64, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": errForbidden})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	default:
		internalError(c, h.logger, op, err, "user_id", id)
	}
}

func toUserResponse(v usecase.UserView) userResponse {
	u := v.User
	resp := userResponse{
		ID:     u.ID,
		Email:  u.Email,
		Phone:  u.Phone,
		Name:   u.Name,
		Gender: u.Gender,
	}
	if u.BirthDate != nil {
		d := u.BirthDate.Format(time.DateOnly)
		resp.BirthDate = &d
	}
	if v.Confirmation != nil {
		resp.Confirmation = &confirmationSummary{
			ID:        v.Confirmation.ID,
			ExpiresAt: v.Confirmation.ExpiresAt,
			Confirmed: v.Confirmation.Confirmed,
		}
	}
	return resp
}

// paramID parses a numeric path parameter, writing a 400 when it is not one.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidID})
		return 0, false
	}
	return id, true
}
