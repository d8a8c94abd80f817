package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/transport/http/handler"
	"github.com/ErlanBelekov/course-signup/internal/usecase"
	"github.com/gin-gonic/gin"
)

type fakeCourseUsecase struct {
	create        func(ctx context.Context, input usecase.CreateCourseInput) (*domain.Course, error)
	get           func(ctx context.Context, id int64) (*domain.Course, error)
	findByName    func(ctx context.Context, name string) ([]*domain.Course, error)
	list          func(ctx context.Context) ([]*domain.Course, error)
	delete        func(ctx context.Context, id int64) error
	enroll        func(ctx context.Context, courseID, userID int64) (*domain.Course, error)
	disenroll     func(ctx context.Context, courseID, userID int64) (*domain.Course, error)
	enrolledUsers func(ctx context.Context, courseID int64) ([]domain.RosterMember, error)
}

func (f *fakeCourseUsecase) Create(ctx context.Context, input usecase.CreateCourseInput) (*domain.Course, error) {
	return f.create(ctx, input)
}

func (f *fakeCourseUsecase) Get(ctx context.Context, id int64) (*domain.Course, error) {
	return f.get(ctx, id)
}

func (f *fakeCourseUsecase) FindByName(ctx context.Context, name string) ([]*domain.Course, error) {
	return f.findByName(ctx, name)
}

func (f *fakeCourseUsecase) List(ctx context.Context) ([]*domain.Course, error) { return f.list(ctx) }

func (f *fakeCourseUsecase) Delete(ctx context.Context, id int64) error { return f.delete(ctx, id) }

func (f *fakeCourseUsecase) Enroll(ctx context.Context, courseID, userID int64) (*domain.Course, error) {
	return f.enroll(ctx, courseID, userID)
}

func (f *fakeCourseUsecase) Disenroll(ctx context.Context, courseID, userID int64) (*domain.Course, error) {
	return f.disenroll(ctx, courseID, userID)
}

func (f *fakeCourseUsecase) EnrolledUsers(ctx context.Context, courseID int64) ([]domain.RosterMember, error) {
	return f.enrolledUsers(ctx, courseID)
}

func newCourseEngine(uc *fakeCourseUsecase) *gin.Engine {
	h := handler.NewCourseHandler(uc, discardLogger())
	r := gin.New()
	r.GET("/course/:ref", h.Get)
	r.POST("/course/:ref", h.Create)
	r.DELETE("/course/:ref", h.Delete)
	r.GET("/courses", h.List)
	r.POST("/enroll/", h.Enroll)
	r.POST("/disenroll/", h.Disenroll)
	r.GET("/enrolled_users/:id", h.EnrolledUsers)
	return r
}

var yoga = &domain.Course{ID: 4, Name: "Yoga", StartTime: &domain.ClockTime{Hour: 18, Minute: 30}, DayWeek: 1}

func TestGetCourse_ByIDOrName(t *testing.T) {
	uc := &fakeCourseUsecase{
		get: func(_ context.Context, id int64) (*domain.Course, error) {
			if id == 4 {
				return yoga, nil
			}
			return nil, domain.ErrCourseNotFound
		},
		findByName: func(_ context.Context, name string) ([]*domain.Course, error) {
			if name == "Yoga" {
				return []*domain.Course{yoga}, nil
			}
			return nil, domain.ErrCourseNotFound
		},
	}
	r := newCourseEngine(uc)

	w := doJSON(r, http.MethodGet, "/course/4", "")
	if w.Code != http.StatusOK {
		t.Fatalf("by id: status = %d", w.Code)
	}
	body := decode(t, w)
	if body["start_time"] != "18:30" || body["weekday"] != "Tuesday" {
		t.Errorf("by id body = %v", body)
	}

	w = doJSON(r, http.MethodGet, "/course/Yoga", "")
	if w.Code != http.StatusOK {
		t.Fatalf("by name: status = %d", w.Code)
	}
	if list, _ := decode(t, w)["course_instances"].([]any); len(list) != 1 {
		t.Errorf("by name: instances = %v", list)
	}

	for _, path := range []string{"/course/99", "/course/Boxing"} {
		if w := doJSON(r, http.MethodGet, path, ""); w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, w.Code)
		}
	}
}

func TestCreateCourse(t *testing.T) {
	var got usecase.CreateCourseInput
	uc := &fakeCourseUsecase{
		create: func(_ context.Context, input usecase.CreateCourseInput) (*domain.Course, error) {
			got = input
			if input.StartTime == "late" {
				return nil, domain.ErrInvalidStartTime
			}
			return yoga, nil
		},
	}
	r := newCourseEngine(uc)

	w := doJSON(r, http.MethodPost, "/course/Yoga", `{"start_time":"18:30","location":"Hall A","day_week":1,"slots":12}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if got.Name != "Yoga" || got.DayWeek != 1 || got.Slots != 12 {
		t.Errorf("input = %+v", got)
	}

	if w := doJSON(r, http.MethodPost, "/course/Yoga", `{"location":"Hall A"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing day_week: status = %d, want 400", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/course/Yoga", `{"location":"Hall A","day_week":7}`); w.Code != http.StatusBadRequest {
		t.Errorf("day_week 7: status = %d, want 400", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/course/Yoga", `{"start_time":"late","location":"Hall A","day_week":0}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad start time: status = %d, want 400", w.Code)
	}
}

func TestEnroll_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrCourseNotFound, http.StatusNotFound},
		{domain.ErrAlreadyEnrolled, http.StatusConflict},
		{domain.ErrCourseFull, http.StatusConflict},
	}
	for _, tt := range tests {
		uc := &fakeCourseUsecase{
			enroll: func(_ context.Context, _, _ int64) (*domain.Course, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return yoga, nil
			},
		}
		w := doJSON(newCourseEngine(uc), http.MethodPost, "/enroll/", `{"course_id":4,"user_id":1}`)
		if w.Code != tt.want {
			t.Errorf("%v: status = %d, want %d", tt.err, w.Code, tt.want)
			continue
		}
		if tt.err == nil && !strings.Contains(w.Body.String(), "Yoga (Tuesday - 18:30)") {
			t.Errorf("message = %s", w.Body.String())
		}
	}
}

func TestDisenroll_NotMember_Returns400(t *testing.T) {
	uc := &fakeCourseUsecase{
		disenroll: func(_ context.Context, _, _ int64) (*domain.Course, error) { return nil, domain.ErrNotEnrolled },
	}
	if w := doJSON(newCourseEngine(uc), http.MethodPost, "/disenroll/", `{"course_id":4,"user_id":1}`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEnrolledUsers(t *testing.T) {
	uc := &fakeCourseUsecase{
		enrolledUsers: func(_ context.Context, _ int64) ([]domain.RosterMember, error) {
			return []domain.RosterMember{{ID: 1, Name: "Ana"}}, nil
		},
	}
	w := doJSON(newCourseEngine(uc), http.MethodGet, "/enrolled_users/4", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	users, _ := decode(t, w)["registered_users"].([]any)
	if len(users) != 1 || users[0].(map[string]any)["name"] != "Ana" {
		t.Errorf("registered_users = %v", users)
	}
}

func TestDeleteCourse_RequiresNumericID(t *testing.T) {
	uc := &fakeCourseUsecase{
		delete: func(_ context.Context, _ int64) error { return domain.ErrCourseNotFound },
	}
	r := newCourseEngine(uc)
	if w := doJSON(r, http.MethodDelete, "/course/Yoga", ""); w.Code != http.StatusBadRequest {
		t.Errorf("name: status = %d, want 400", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, "/course/9", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", w.Code)
	}
}
