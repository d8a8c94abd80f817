package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/usecase"
	"github.com/gin-gonic/gin"
)

type courseUsecaser interface {
	Create(ctx context.Context, input usecase.CreateCourseInput) (*domain.Course, error)
	Get(ctx context.Context, id int64) (*domain.Course, error)
	FindByName(ctx context.Context, name string) ([]*domain.Course, error)
	List(ctx context.Context) ([]*domain.Course, error)
	Delete(ctx context.Context, id int64) error
	Enroll(ctx context.Context, courseID, userID int64) (*domain.Course, error)
	Disenroll(ctx context.Context, courseID, userID int64) (*domain.Course, error)
	EnrolledUsers(ctx context.Context, courseID int64) ([]domain.RosterMember, error)
}

type CourseHandler struct {
	courses courseUsecaser
	logger  *slog.Logger
}

func NewCourseHandler(courses courseUsecaser, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, logger: logger.With("component", "course_handler")}
}

type createCourseRequest struct {
	StartTime string `json:"start_time"`
	Location  string `json:"location" binding:"required,max=80"`
	Month     int    `json:"month"    binding:"omitempty,min=1,max=12"`
	Year      int    `json:"year"     binding:"omitempty,min=2000,max=2100"`
	DayWeek   *int   `json:"day_week" binding:"required,min=0,max=6"`
	Slots     int    `json:"slots"    binding:"omitempty,min=0"`
}

type membershipRequest struct {
	CourseID int64 `json:"course_id" binding:"required"`
	UserID   int64 `json:"user_id"   binding:"required"`
}

type courseResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	StartTime *string `json:"start_time"`
	Location  string  `json:"location"`
	Month     int     `json:"month"`
	Year      int     `json:"year"`
	DayWeek   int     `json:"day_week"`
	Weekday   string  `json:"weekday"`
	Slots     int     `json:"slots"`
}

type rosterMemberResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toCourseResponse(c *domain.Course) courseResponse {
	resp := courseResponse{
		ID:       c.ID,
		Name:     c.Name,
		Location: c.Location,
		Month:    c.Month,
		Year:     c.Year,
		DayWeek:  c.DayWeek,
		Weekday:  domain.WeekdayName(c.DayWeek),
		Slots:    c.Slots,
	}
	if c.StartTime != nil {
		s := c.StartTime.String()
		resp.StartTime = &s
	}
	return resp
}

func toCourseResponses(cs []*domain.Course) []courseResponse {
	out := make([]courseResponse, len(cs))
	for i, c := range cs {
		out[i] = toCourseResponse(c)
	}
	return out
}

// GET /course/:ref
// A numeric ref returns that course; otherwise every instance with that name.
func (h *CourseHandler) Get(c *gin.Context) {
	ref := c.Param("ref")

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		course, err := h.courses.Get(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, "get course", err)
			return
		}
		c.JSON(http.StatusOK, toCourseResponse(course))
		return
	}

	courses, err := h.courses.FindByName(c.Request.Context(), ref)
	if err != nil {
		h.writeError(c, "find courses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course_instances": toCourseResponses(courses)})
}

// POST /course/:ref creates a new instance of the course named ref.
func (h *CourseHandler) Create(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	course, err := h.courses.Create(c.Request.Context(), usecase.CreateCourseInput{
		Name:      c.Param("ref"),
		StartTime: req.StartTime,
		Location:  req.Location,
		Month:     req.Month,
		Year:      req.Year,
		DayWeek:   *req.DayWeek,
		Slots:     req.Slots,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStartTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidStartTime})
			return
		}
		internalError(c, h.logger, "create course", err)
		return
	}

	c.JSON(http.StatusCreated, toCourseResponse(course))
}

// DELETE /course/:ref, where ref must be the course id.
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "ref")
	if !ok {
		return
	}

	if err := h.courses.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "delete course", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}

// GET /courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "list courses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": toCourseResponses(courses)})
}

// POST /enroll/
func (h *CourseHandler) Enroll(c *gin.Context) {
	var req membershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	course, err := h.courses.Enroll(c.Request.Context(), req.CourseID, req.UserID)
	if err != nil {
		h.writeError(c, "enroll", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("User enrolled in %s (%s)", course.Name, course.Schedule()),
	})
}

// POST /disenroll/
func (h *CourseHandler) Disenroll(c *gin.Context) {
	var req membershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	course, err := h.courses.Disenroll(c.Request.Context(), req.CourseID, req.UserID)
	if err != nil {
		h.writeError(c, "disenroll", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("User removed from %s (%s)", course.Name, course.Schedule()),
	})
}

// GET /enrolled_users/:id
func (h *CourseHandler) EnrolledUsers(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	members, err := h.courses.EnrolledUsers(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "enrolled users", err)
		return
	}

	resp := make([]rosterMemberResponse, len(members))
	for i, m := range members {
		resp[i] = rosterMemberResponse{ID: m.ID, Name: m.Name}
	}
	c.JSON(http.StatusOK, gin.H{"registered_users": resp})
}

func (h *CourseHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	case errors.Is(err, domain.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errCourseNotFound})
	case errors.Is(err, domain.ErrAlreadyEnrolled):
		c.JSON(http.StatusConflict, gin.H{"error": errAlreadyEnrolled})
	case errors.Is(err, domain.ErrCourseFull):
		c.JSON(http.StatusConflict, gin.H{"error": errCourseFull})
	case errors.Is(err, domain.ErrNotEnrolled):
		c.JSON(http.StatusBadRequest, gin.H{"error": errNotEnrolled})
	default:
		internalError(c, h.logger, op, err)
	}
}
