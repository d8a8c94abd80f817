package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/gin-gonic/gin"
)

type imageUsecaser interface {
	Save(ctx context.Context, userID int64, filename string, r io.Reader) (string, error)
}

type UploadHandler struct {
	images   imageUsecaser
	maxBytes int64
	logger   *slog.Logger
}

func NewUploadHandler(images imageUsecaser, maxBytes int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{images: images, maxBytes: maxBytes, logger: logger.With("component", "upload_handler")}
}

// POST /upload/image, multipart field "image".
func (h *UploadHandler) Image(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errFileTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errImageMissing})
		return
	}

	f, err := fh.Open()
	if err != nil {
		internalError(c, h.logger, "open upload", err)
		return
	}
	defer f.Close()

	path, err := h.images.Save(c.Request.Context(), c.GetInt64("userID"), fh.Filename, f)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": errUnsupportedImage})
		case errors.Is(err, domain.ErrInvalidFileName):
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidFileName})
		case errors.Is(err, domain.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errFileTooLarge})
		default:
			internalError(c, h.logger, "save image", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Image uploaded", "path": path})
}
