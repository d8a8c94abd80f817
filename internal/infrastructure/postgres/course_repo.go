package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `id, name, start_time, location, month, year, day_week, slots`

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) (*domain.Course, error) {
	query := `
		INSERT INTO courses (name, start_time, location, month, year, day_week, slots)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + courseColumns

	row := r.pool.QueryRow(ctx, query,
		c.Name, toPgTime(c.StartTime), c.Location, c.Month, c.Year, c.DayWeek, c.Slots,
	)
	return scanCourse(row)
}

func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	return scanCourse(row)
}

func (r *CourseRepository) ListByName(ctx context.Context, name string) ([]*domain.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses WHERE name = $1 ORDER BY day_week, start_time, id`, name)
}

func (r *CourseRepository) List(ctx context.Context) ([]*domain.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY day_week, start_time, id`)
}

func (r *CourseRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Course, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []*domain.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return courses, nil
}

func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM course_enrollments WHERE course_id = $1 AND user_id = $2)`,
		courseID, userID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return ok, nil
}

func (r *CourseRepository) CountEnrolled(ctx context.Context, courseID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM course_enrollments WHERE course_id = $1`, courseID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}

func (r *CourseRepository) Enroll(ctx context.Context, courseID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO course_enrollments (course_id, user_id) VALUES ($1, $2)`,
		courseID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyEnrolled
		}
		return fmt.Errorf("enroll: %w", err)
	}
	return nil
}

func (r *CourseRepository) Disenroll(ctx context.Context, courseID, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM course_enrollments WHERE course_id = $1 AND user_id = $2`,
		courseID, userID)
	if err != nil {
		return fmt.Errorf("disenroll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotEnrolled
	}
	return nil
}

func (r *CourseRepository) ListEnrolled(ctx context.Context, courseID int64) ([]domain.RosterMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name
		FROM course_enrollments e
		JOIN users u ON u.id = e.user_id
		WHERE e.course_id = $1
		ORDER BY e.enrolled_at, u.id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled: %w", err)
	}
	defer rows.Close()

	members := []domain.RosterMember{}
	for rows.Next() {
		var m domain.RosterMember
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan roster member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}
	return members, nil
}

func (r *CourseRepository) ClearAllRosters(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM course_enrollments`)
	if err != nil {
		return 0, fmt.Errorf("clear all rosters: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CourseRepository) ClearRostersForDay(ctx context.Context, dayWeek int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM course_enrollments e
		USING courses c
		WHERE c.id = e.course_id AND c.day_week = $1`, dayWeek)
	if err != nil {
		return 0, fmt.Errorf("clear rosters for day %d: %w", dayWeek, err)
	}
	return tag.RowsAffected(), nil
}

func scanCourse(row rowScanner) (*domain.Course, error) {
	var (
		c     domain.Course
		start pgtype.Time
	)
	err := row.Scan(&c.ID, &c.Name, &start, &c.Location, &c.Month, &c.Year, &c.DayWeek, &c.Slots)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("scan course: %w", err)
	}
	c.StartTime = fromPgTime(start)
	return &c, nil
}

func toPgTime(t *domain.ClockTime) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	d := time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}
}

func fromPgTime(t pgtype.Time) *domain.ClockTime {
	if !t.Valid {
		return nil
	}
	d := time.Duration(t.Microseconds) * time.Microsecond
	return &domain.ClockTime{Hour: int(d / time.Hour), Minute: int(d%time.Hour) / int(time.Minute)}
}
