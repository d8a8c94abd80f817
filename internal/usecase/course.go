package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/repository"
)

type CourseUsecase struct {
	courses repository.CourseRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

func NewCourseUsecase(courses repository.CourseRepository, users repository.UserRepository, logger *slog.Logger) *CourseUsecase {
	return &CourseUsecase{
		courses: courses,
		users:   users,
		logger:  logger.With("component", "course_usecase"),
	}
}

type CreateCourseInput struct {
	Name      string
	StartTime string // "HH:MM", optional
	Location  string
	Month     int
	Year      int
	DayWeek   int
	Slots     int
}

func (u *CourseUsecase) Create(ctx context.Context, input CreateCourseInput) (*domain.Course, error) {
	c := &domain.Course{
		Name:     input.Name,
		Location: input.Location,
		Month:    input.Month,
		Year:     input.Year,
		DayWeek:  input.DayWeek,
		Slots:    input.Slots,
	}
	if input.StartTime != "" {
		t, err := domain.ParseClockTime(input.StartTime)
		if err != nil {
			return nil, err
		}
		c.StartTime = &t
	}

	created, err := u.courses.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return created, nil
}

func (u *CourseUsecase) Get(ctx context.Context, id int64) (*domain.Course, error) {
	c, err := u.courses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

// FindByName returns every instance of the named course. No instances is ErrCourseNotFound.
func (u *CourseUsecase) FindByName(ctx context.Context, name string) ([]*domain.Course, error) {
	cs, err := u.courses.ListByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find courses: %w", err)
	}
	if len(cs) == 0 {
		return nil, domain.ErrCourseNotFound
	}
	return cs, nil
}

func (u *CourseUsecase) List(ctx context.Context) ([]*domain.Course, error) {
	cs, err := u.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return cs, nil
}

func (u *CourseUsecase) Delete(ctx context.Context, id int64) error {
	if err := u.courses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// Enroll adds the user to the course roster and returns the course.
func (u *CourseUsecase) Enroll(ctx context.Context, courseID, userID int64) (*domain.Course, error) {
	course, err := u.lookup(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}

	member, err := u.courses.IsEnrolled(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, domain.ErrAlreadyEnrolled
	}

	if course.Slots > 0 {
		n, err := u.courses.CountEnrolled(ctx, courseID)
		if err != nil {
			return nil, err
		}
		if n >= course.Slots {
			return nil, domain.ErrCourseFull
		}
	}

	if err := u.courses.Enroll(ctx, courseID, userID); err != nil {
		return nil, fmt.Errorf("enroll: %w", err)
	}
	return course, nil
}

// Disenroll removes the user from the course roster and returns the course.
func (u *CourseUsecase) Disenroll(ctx context.Context, courseID, userID int64) (*domain.Course, error) {
	course, err := u.lookup(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}

	member, err := u.courses.IsEnrolled(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, domain.ErrNotEnrolled
	}

	if err := u.courses.Disenroll(ctx, courseID, userID); err != nil {
		return nil, fmt.Errorf("disenroll: %w", err)
	}
	return course, nil
}

// lookup resolves the user first, then the course.
func (u *CourseUsecase) lookup(ctx context.Context, courseID, userID int64) (*domain.Course, error) {
	if _, err := u.users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	course, err := u.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	return course, nil
}

func (u *CourseUsecase) EnrolledUsers(ctx context.Context, courseID int64) ([]domain.RosterMember, error) {
	if _, err := u.courses.GetByID(ctx, courseID); err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	members, err := u.courses.ListEnrolled(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled: %w", err)
	}
	return members, nil
}

// ClearRosters empties course rosters. A nil day clears every roster, Sunday
// is a no-op, any other day clears only the courses held on that weekday.
// It returns the number of roster entries removed.
func (u *CourseUsecase) ClearRosters(ctx context.Context, day *int) (int64, error) {
	if day == nil {
		n, err := u.courses.ClearAllRosters(ctx)
		if err != nil {
			return 0, err
		}
		u.logger.InfoContext(ctx, "cleared all rosters", "removed", n)
		return n, nil
	}

	if *day == domain.Sunday {
		u.logger.InfoContext(ctx, "roster cleanup skipped", "day_week", *day)
		return 0, nil
	}

	n, err := u.courses.ClearRostersForDay(ctx, *day)
	if err != nil {
		return 0, err
	}
	u.logger.InfoContext(ctx, "cleared rosters", "day_week", *day, "weekday", domain.WeekdayName(*day), "removed", n)
	return n, nil
}
