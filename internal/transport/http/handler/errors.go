package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	errInternalServer   = "Internal server error"
	errValidationFailed = "validation failed"
	errInvalidID        = "Invalid id"

	errUserNotFound       = "User not found"
	errUserIDExists       = "A user with that id already exists"
	errEmailExists        = "A user with that email already exists"
	errPhoneExists        = "A user with that phone already exists"
	errPasswordAlreadySet = "User already has a password"
	errConfirmationSent   = "A confirmation was already sent and is still valid"
	errNotRegistered      = "User has not set a password yet"
	errNotConfirmed       = "User registration is not confirmed"
	errInvalidCredentials = "Invalid credentials"
	errForbidden          = "Forbidden"
	errNotification       = "Could not send the confirmation"

	errConfirmationNotFound = "Confirmation not found"
	errLinkExpired          = "Link expired"
	errCodeExpired          = "Code expired"
	errAlreadyConfirmed     = "Registration already confirmed"
	errInvalidCode          = "Invalid code"

	errCourseNotFound   = "Course not found"
	errAlreadyEnrolled  = "User is already enrolled in this course"
	errNotEnrolled      = "User is not enrolled in this course"
	errCourseFull       = "Course is full"
	errInvalidStartTime = "start_time must be HH:MM"

	errItemNotFound  = "Item not found"
	errItemExists    = "An item with that name already exists"
	errStoreNotFound = "Store not found"
	errStoreExists   = "A store with that name already exists"

	errImageMissing     = "Missing image file"
	errUnsupportedImage = "Unsupported image extension"
	errInvalidFileName  = "Invalid file name"
	errFileTooLarge     = "File is too large"
)

var registerOnce sync.Once

// UseJSONFieldNames makes gin's validator report json tag names, so
// validation errors name the fields the client actually sent.
func UseJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// bindError writes a 400 for a failed ShouldBind call. Validation failures
// get a per-field map; anything else (malformed JSON) gets the decoder error.
func bindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fieldMessage(fe)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": errValidationFailed, "fields": fields})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must match " + fe.Param()
	case "numeric":
		return "must contain only digits"
	default:
		return "is invalid"
	}
}

func internalError(c *gin.Context, logger *slog.Logger, msg string, err error, args ...any) {
	logger.ErrorContext(c.Request.Context(), msg, append(args, "error", err)...)
	c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}
