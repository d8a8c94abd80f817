package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// ---- users ----

type memUsers struct {
	mu        sync.Mutex
	rows      map[int64]*domain.User
	createErr error
	deleted   []int64
}

func newMemUsers(users ...*domain.User) *memUsers {
	r := &memUsers{rows: make(map[int64]*domain.User)}
	for _, u := range users {
		cp := *u
		r.rows[u.ID] = &cp
	}
	return r
}

func (r *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.rows[u.ID]; ok {
		return nil, domain.ErrUserIDExists
	}
	cp := *u
	cp.CreatedAt = time.Now()
	r.rows[u.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) FindByPhone(_ context.Context, phone string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Phone != nil && *u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = &hash
	return nil
}

func (r *memUsers) SetTemporaryPassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TemporaryPasswordHash = &hash
	return nil
}

func (r *memUsers) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.rows, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *memUsers) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// ---- confirmations ----

type memConfirmations struct {
	mu    sync.Mutex
	rows  []*domain.Confirmation
	users *memUsers
}

func newMemConfirmations(users *memUsers, cs ...*domain.Confirmation) *memConfirmations {
	r := &memConfirmations{users: users}
	for _, c := range cs {
		cp := *c
		r.rows = append(r.rows, &cp)
	}
	return r
}

func (r *memConfirmations) Create(_ context.Context, c *domain.Confirmation) (*domain.Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.rows = append(r.rows, &cp)
	out := cp
	return &out, nil
}

func (r *memConfirmations) FindByID(_ context.Context, id string) (*domain.Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrConfirmationNotFound
}

func (r *memConfirmations) MostRecent(_ context.Context, userID int64) (*domain.Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *domain.Confirmation
	for _, c := range r.rows {
		if c.UserID != userID {
			continue
		}
		if best == nil || !c.CreatedAt.Before(best.CreatedAt) {
			best = c
		}
	}
	if best == nil {
		return nil, domain.ErrConfirmationNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *memConfirmations) ListByUser(_ context.Context, userID int64) ([]*domain.Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Confirmation
	for _, c := range r.rows {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

func (r *memConfirmations) ForceExpire(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID == id {
			if c.ExpiresAt.After(at) {
				c.ExpiresAt = at
			}
			return nil
		}
	}
	return domain.ErrConfirmationNotFound
}

func (r *memConfirmations) Confirm(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID != id {
			continue
		}
		c.Confirmed = true
		if r.users != nil {
			r.users.mu.Lock()
			if u, ok := r.users.rows[c.UserID]; ok && u.TemporaryPasswordHash != nil {
				u.PasswordHash, u.TemporaryPasswordHash = u.TemporaryPasswordHash, nil
			}
			r.users.mu.Unlock()
		}
		return nil
	}
	return domain.ErrConfirmationNotFound
}

func (r *memConfirmations) get(id string) domain.Confirmation {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID == id {
			return *c
		}
	}
	return domain.Confirmation{}
}

// ---- notifier ----

type fakeNotifier struct {
	notify func(ctx context.Context, u *domain.User, c *domain.Confirmation) error
	calls  int
}

func (n *fakeNotifier) Notify(ctx context.Context, u *domain.User, c *domain.Confirmation) error {
	n.calls++
	if n.notify == nil {
		return nil
	}
	return n.notify(ctx, u, c)
}

// ---- courses ----

type memCourses struct {
	mu      sync.Mutex
	rows    map[int64]*domain.Course
	rosters map[int64]map[int64]bool
	nextID  int64
}

func newMemCourses(cs ...*domain.Course) *memCourses {
	r := &memCourses{rows: make(map[int64]*domain.Course), rosters: make(map[int64]map[int64]bool)}
	for _, c := range cs {
		cp := *c
		r.rows[c.ID] = &cp
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *memCourses) Create(_ context.Context, c *domain.Course) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	cp := *c
	cp.ID = r.nextID
	r.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memCourses) GetByID(_ context.Context, id int64) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCourses) ListByName(_ context.Context, name string) ([]*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Course
	for _, c := range r.rows {
		if c.Name == name {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCourses) List(_ context.Context) ([]*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Course{}
	for _, c := range r.rows {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayWeek < out[j].DayWeek })
	return out, nil
}

func (r *memCourses) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrCourseNotFound
	}
	delete(r.rows, id)
	delete(r.rosters, id)
	return nil
}

func (r *memCourses) IsEnrolled(_ context.Context, courseID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosters[courseID][userID], nil
}

func (r *memCourses) CountEnrolled(_ context.Context, courseID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rosters[courseID]), nil
}

func (r *memCourses) Enroll(_ context.Context, courseID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rosters[courseID][userID] {
		return domain.ErrAlreadyEnrolled
	}
	if r.rosters[courseID] == nil {
		r.rosters[courseID] = make(map[int64]bool)
	}
	r.rosters[courseID][userID] = true
	return nil
}

func (r *memCourses) Disenroll(_ context.Context, courseID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.rosters[courseID][userID] {
		return domain.ErrNotEnrolled
	}
	delete(r.rosters[courseID], userID)
	return nil
}

func (r *memCourses) ListEnrolled(_ context.Context, courseID int64) ([]domain.RosterMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := []domain.RosterMember{}
	for id := range r.rosters[courseID] {
		members = append(members, domain.RosterMember{ID: id})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (r *memCourses) ClearAllRosters(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, roster := range r.rosters {
		n += int64(len(roster))
		delete(r.rosters, id)
	}
	return n, nil
}

func (r *memCourses) ClearRostersForDay(_ context.Context, dayWeek int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, roster := range r.rosters {
		if c, ok := r.rows[id]; ok && c.DayWeek == dayWeek {
			n += int64(len(roster))
			delete(r.rosters, id)
		}
	}
	return n, nil
}

func (r *memCourses) rosterSize(courseID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rosters[courseID])
}

// ---- catalog ----

type fakeItemRepo struct {
	getByName    func(ctx context.Context, name string) (*domain.Item, error)
	list         func(ctx context.Context) ([]*domain.Item, error)
	create       func(ctx context.Context, item *domain.Item) (*domain.Item, error)
	upsert       func(ctx context.Context, item *domain.Item) (*domain.Item, error)
	deleteByName func(ctx context.Context, name string) error
}

func (r *fakeItemRepo) GetByName(ctx context.Context, name string) (*domain.Item, error) {
	return r.getByName(ctx, name)
}

func (r *fakeItemRepo) List(ctx context.Context) ([]*domain.Item, error) { return r.list(ctx) }

func (r *fakeItemRepo) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	return r.create(ctx, item)
}

func (r *fakeItemRepo) Upsert(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	return r.upsert(ctx, item)
}

func (r *fakeItemRepo) DeleteByName(ctx context.Context, name string) error {
	return r.deleteByName(ctx, name)
}

type fakeStoreRepo struct {
	getByName    func(ctx context.Context, name string) (*domain.Store, error)
	exists       func(ctx context.Context, id int64) (bool, error)
	list         func(ctx context.Context) ([]*domain.Store, error)
	create       func(ctx context.Context, name string) (*domain.Store, error)
	deleteByName func(ctx context.Context, name string) error
}

func (r *fakeStoreRepo) GetByName(ctx context.Context, name string) (*domain.Store, error) {
	return r.getByName(ctx, name)
}

func (r *fakeStoreRepo) Exists(ctx context.Context, id int64) (bool, error) { return r.exists(ctx, id) }

func (r *fakeStoreRepo) List(ctx context.Context) ([]*domain.Store, error) { return r.list(ctx) }

func (r *fakeStoreRepo) Create(ctx context.Context, name string) (*domain.Store, error) {
	return r.create(ctx, name)
}

func (r *fakeStoreRepo) DeleteByName(ctx context.Context, name string) error {
	return r.deleteByName(ctx, name)
}
