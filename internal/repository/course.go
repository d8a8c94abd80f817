package repository

import (
	"context"

	"github.com/ErlanBelekov/course-signup/internal/domain"
)

type CourseRepository interface {
	Create(ctx context.Context, c *domain.Course) (*domain.Course, error)
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
	ListByName(ctx context.Context, name string) ([]*domain.Course, error)
	// List returns every course ordered by day_week, then start_time.
	List(ctx context.Context) ([]*domain.Course, error)
	Delete(ctx context.Context, id int64) error

	IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error)
	CountEnrolled(ctx context.Context, courseID int64) (int, error)
	// Enroll returns domain.ErrAlreadyEnrolled if the pair already exists.
	Enroll(ctx context.Context, courseID, userID int64) error
	// Disenroll returns domain.ErrNotEnrolled if the pair does not exist.
	Disenroll(ctx context.Context, courseID, userID int64) error
	ListEnrolled(ctx context.Context, courseID int64) ([]domain.RosterMember, error)

	// Both return the number of roster entries removed.
	ClearAllRosters(ctx context.Context) (int64, error)
	ClearRostersForDay(ctx context.Context, dayWeek int) (int64, error)
}
