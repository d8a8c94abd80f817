package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/usecase"
)

func newCourseFixture(courses ...*domain.Course) (*usecase.CourseUsecase, *memCourses) {
	users := newMemUsers(
		&domain.User{ID: 1, Email: "a@example.com", Name: "Ana"},
		&domain.User{ID: 2, Email: "b@example.com", Name: "Bia"},
	)
	repo := newMemCourses(courses...)
	return usecase.NewCourseUsecase(repo, users, discardLogger()), repo
}

func TestEnroll_TwiceIsRejected(t *testing.T) {
	uc, repo := newCourseFixture(&domain.Course{ID: 10, Name: "Yoga", DayWeek: 1})
	ctx := context.Background()

	course, err := uc.Enroll(ctx, 10, 1)
	if err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if course.Name != "Yoga" {
		t.Errorf("course: want Yoga, got %q", course.Name)
	}

	if _, err := uc.Enroll(ctx, 10, 1); !errors.Is(err, domain.ErrAlreadyEnrolled) {
		t.Errorf("second enroll: want ErrAlreadyEnrolled, got %v", err)
	}
	if n := repo.rosterSize(10); n != 1 {
		t.Errorf("roster size: want 1, got %d", n)
	}
}

func TestEnroll_NotFound(t *testing.T) {
	uc, _ := newCourseFixture(&domain.Course{ID: 10, Name: "Yoga"})
	ctx := context.Background()

	if _, err := uc.Enroll(ctx, 10, 99); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("unknown user: want ErrUserNotFound, got %v", err)
	}
	if _, err := uc.Enroll(ctx, 99, 1); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Errorf("unknown course: want ErrCourseNotFound, got %v", err)
	}
}

func TestEnroll_FullCourse(t *testing.T) {
	uc, repo := newCourseFixture(&domain.Course{ID: 10, Name: "Pilates", Slots: 1})
	ctx := context.Background()

	if _, err := uc.Enroll(ctx, 10, 1); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := uc.Enroll(ctx, 10, 2); !errors.Is(err, domain.ErrCourseFull) {
		t.Errorf("want ErrCourseFull, got %v", err)
	}
	if n := repo.rosterSize(10); n != 1 {
		t.Errorf("roster size: want 1, got %d", n)
	}
}

func TestDisenroll_NonMemberAndSecondCallRejected(t *testing.T) {
	uc, repo := newCourseFixture(&domain.Course{ID: 10, Name: "Yoga"})
	ctx := context.Background()

	if _, err := uc.Disenroll(ctx, 10, 1); !errors.Is(err, domain.ErrNotEnrolled) {
		t.Fatalf("non-member: want ErrNotEnrolled, got %v", err)
	}

	if _, err := uc.Enroll(ctx, 10, 1); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := uc.Enroll(ctx, 10, 2); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := uc.Disenroll(ctx, 10, 1); err != nil {
		t.Fatalf("disenroll: %v", err)
	}
	if _, err := uc.Disenroll(ctx, 10, 1); !errors.Is(err, domain.ErrNotEnrolled) {
		t.Errorf("second disenroll: want ErrNotEnrolled, got %v", err)
	}

	members, err := uc.EnrolledUsers(ctx, 10)
	if err != nil {
		t.Fatalf("enrolled users: %v", err)
	}
	if len(members) != 1 || members[0].ID != 2 || repo.rosterSize(10) != 1 {
		t.Errorf("roster: want [2], got %+v", members)
	}
}

func TestClearRosters(t *testing.T) {
	monday := &domain.Course{ID: 1, Name: "Mon", DayWeek: 0}
	tuesday := &domain.Course{ID: 2, Name: "Tue", DayWeek: 1}
	tuesdayLate := &domain.Course{ID: 3, Name: "Tue late", DayWeek: 1}
	saturday := &domain.Course{ID: 4, Name: "Sat", DayWeek: 5}

	tests := []struct {
		name        string
		day         *int
		wantRemoved int64
		wantLeft    map[int64]int
	}{
		{
			name:        "tuesday clears only tuesday",
			day:         ptr(1),
			wantRemoved: 3,
			wantLeft:    map[int64]int{1: 2, 2: 0, 3: 0, 4: 1},
		},
		{
			name:        "no day clears everything",
			wantRemoved: 6,
			wantLeft:    map[int64]int{1: 0, 2: 0, 3: 0, 4: 0},
		},
		{
			name:        "sunday is a no-op",
			day:         ptr(domain.Sunday),
			wantRemoved: 0,
			wantLeft:    map[int64]int{1: 2, 2: 2, 3: 1, 4: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, repo := newCourseFixture(monday, tuesday, tuesdayLate, saturday)
			ctx := context.Background()
			for _, e := range [][2]int64{{1, 1}, {1, 2}, {2, 1}, {2, 2}, {3, 1}, {4, 2}} {
				if _, err := uc.Enroll(ctx, e[0], e[1]); err != nil {
					t.Fatalf("enroll %v: %v", e, err)
				}
			}

			removed, err := uc.ClearRosters(ctx, tt.day)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if removed != tt.wantRemoved {
				t.Errorf("removed: want %d, got %d", tt.wantRemoved, removed)
			}
			for id, want := range tt.wantLeft {
				if got := repo.rosterSize(id); got != want {
					t.Errorf("course %d roster: want %d, got %d", id, want, got)
				}
			}
		})
	}
}

func TestCreateCourse_StartTime(t *testing.T) {
	uc, _ := newCourseFixture()
	ctx := context.Background()

	c, err := uc.Create(ctx, usecase.CreateCourseInput{Name: "Yoga", StartTime: "18:30", Location: "Hall A", DayWeek: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Schedule(); got != "Tuesday - 18:30" {
		t.Errorf("schedule: want %q, got %q", "Tuesday - 18:30", got)
	}

	if _, err := uc.Create(ctx, usecase.CreateCourseInput{Name: "Yoga", StartTime: "6pm"}); !errors.Is(err, domain.ErrInvalidStartTime) {
		t.Errorf("want ErrInvalidStartTime, got %v", err)
	}
}

func TestFindByName_NoInstances(t *testing.T) {
	uc, _ := newCourseFixture(&domain.Course{ID: 1, Name: "Yoga"}, &domain.Course{ID: 2, Name: "Yoga", DayWeek: 3})

	cs, err := uc.FindByName(context.Background(), "Yoga")
	if err != nil || len(cs) != 2 {
		t.Fatalf("want 2 instances, got %d (%v)", len(cs), err)
	}
	if _, err := uc.FindByName(context.Background(), "Boxing"); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Errorf("want ErrCourseNotFound, got %v", err)
	}
}
