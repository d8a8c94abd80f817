package handler

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/usecase"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates returns the HTML pages rendered by the handlers.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type confirmationUsecaser interface {
	ConfirmByLink(ctx context.Context, id string) (*domain.User, error)
	ConfirmByCode(ctx context.Context, userID int64, code string) error
	Resend(ctx context.Context, userID int64) error
	List(ctx context.Context, userID int64) (usecase.ConfirmationList, error)
}

type ConfirmationHandler struct {
	confirmations confirmationUsecaser
	logger        *slog.Logger
}

func NewConfirmationHandler(confirmations confirmationUsecaser, logger *slog.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{
		confirmations: confirmations,
		logger:        logger.With("component", "confirmation_handler"),
	}
}

type codeRequest struct {
	Code string `json:"code" binding:"required"`
}

type confirmationResponse struct {
	ID        string                   `json:"id"`
	CreatedAt time.Time                `json:"created_at"`
	ExpiresAt time.Time                `json:"expires_at"`
	Confirmed bool                     `json:"confirmed"`
	State     domain.ConfirmationState `json:"state"`
}

type listConfirmationsResponse struct {
	CurrentTime   int64                  `json:"current_time"`
	Confirmations []confirmationResponse `json:"confirmations"`
}

// GET /user_confirm/:id renders an HTML page on success.
func (h *ConfirmationHandler) ConfirmByLink(c *gin.Context) {
	id := c.Param("id")

	user, err := h.confirmations.ConfirmByLink(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConfirmationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errConfirmationNotFound})
		case errors.Is(err, domain.ErrConfirmationExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": errLinkExpired})
		case errors.Is(err, domain.ErrAlreadyConfirmed):
			c.JSON(http.StatusBadRequest, gin.H{"error": errAlreadyConfirmed})
		default:
			internalError(c, h.logger, "confirm by link", err, "confirmation_id", id)
		}
		return
	}

	c.HTML(http.StatusOK, "confirmation.html", gin.H{"email": user.Email})
}

// POST /confirmation_code/user/:id
func (h *ConfirmationHandler) ConfirmByCode(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.confirmations.ConfirmByCode(c.Request.Context(), userID, req.Code); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		case errors.Is(err, domain.ErrConfirmationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errConfirmationNotFound})
		case errors.Is(err, domain.ErrConfirmationExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": errCodeExpired})
		case errors.Is(err, domain.ErrInvalidCode):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCode})
		case errors.Is(err, domain.ErrAlreadyConfirmed):
			c.JSON(http.StatusBadRequest, gin.H{"error": errAlreadyConfirmed})
		default:
			internalError(c, h.logger, "confirm by code", err, "user_id", userID)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registration confirmed"})
}

// POST /confirmation/user/:id
func (h *ConfirmationHandler) Resend(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.confirmations.Resend(c.Request.Context(), userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		case errors.Is(err, domain.ErrAlreadyConfirmed):
			c.JSON(http.StatusBadRequest, gin.H{"error": errAlreadyConfirmed})
		case errors.Is(err, domain.ErrNotificationFailed):
			h.logger.ErrorContext(c.Request.Context(), "resend confirmation: notify", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errNotification})
		default:
			internalError(c, h.logger, "resend confirmation", err, "user_id", userID)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Confirmation sent"})
}

// GET /confirmation/user/:id
func (h *ConfirmationHandler) List(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	list, err := h.confirmations.List(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		internalError(c, h.logger, "list confirmations", err, "user_id", userID)
		return
	}

	resp := listConfirmationsResponse{
		CurrentTime:   list.CurrentTime.Unix(),
		Confirmations: make([]confirmationResponse, len(list.Confirmations)),
	}
	for i, cf := range list.Confirmations {
		resp.Confirmations[i] = confirmationResponse{
			ID:        cf.ID,
			CreatedAt: cf.CreatedAt,
			ExpiresAt: cf.ExpiresAt,
			Confirmed: cf.Confirmed,
			State:     cf.State(list.CurrentTime),
		}
	}
	c.JSON(http.StatusOK, resp)
}
