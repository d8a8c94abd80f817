package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/ErlanBelekov/course-signup/internal/metrics"
	"github.com/robfig/cron/v3"
)

// RosterCleaner empties course rosters; a nil day means every roster.
type RosterCleaner interface {
	ClearRosters(ctx context.Context, day *int) (int64, error)
}

type Scope string

const (
	ScopeWeekday Scope = "weekday"
	ScopeAll     Scope = "all"
)

// Cleanup clears course rosters on a cron schedule. With ScopeWeekday only
// courses held on the weekday of the run are cleared.
type Cleanup struct {
	cleaner RosterCleaner
	spec    string
	scope   Scope
	logger  *slog.Logger
	now     func() time.Time
}

func NewCleanup(cleaner RosterCleaner, spec string, scope Scope, logger *slog.Logger) (*Cleanup, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	if scope != ScopeWeekday && scope != ScopeAll {
		return nil, fmt.Errorf("invalid cleanup scope %q", scope)
	}
	return &Cleanup{
		cleaner: cleaner,
		spec:    spec,
		scope:   scope,
		logger:  logger.With("component", "cleanup"),
		now:     time.Now,
	}, nil
}

// Start runs the cleanup on its schedule until ctx is done. A run that is
// still going when the next one fires causes that one to be skipped.
func (c *Cleanup) Start(ctx context.Context) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(c.logger.Handler(), slog.LevelError))
	cr := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger)))
	// spec was validated by NewCleanup.
	_, _ = cr.AddFunc(c.spec, func() {
		_ = c.runRecovered(ctx)
	})

	c.logger.Info("cleanup scheduled", "spec", c.spec, "scope", c.scope)
	cr.Start()

	<-ctx.Done()
	<-cr.Stop().Done()
	c.logger.Info("cleanup shut down")
}

// runRecovered is Run with a panic turned into a failed run.
func (c *Cleanup) runRecovered(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.CleanupRunsTotal.WithLabelValues("error").Inc()
			c.logger.ErrorContext(ctx, "roster cleanup panicked", "scope", c.scope, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("cleanup panicked: %v", r)
		}
	}()
	return c.Run(ctx)
}

// Run performs one cleanup. The weekday is taken at call time.
func (c *Cleanup) Run(ctx context.Context) error {
	var day *int
	if c.scope == ScopeWeekday {
		d := domain.WeekdayIndex(c.now().Weekday())
		day = &d
	}

	removed, err := c.cleaner.ClearRosters(ctx, day)
	if err != nil {
		metrics.CleanupRunsTotal.WithLabelValues("error").Inc()
		c.logger.ErrorContext(ctx, "roster cleanup failed", "scope", c.scope, "error", err)
		return err
	}

	metrics.CleanupRunsTotal.WithLabelValues("success").Inc()
	metrics.RosterEntriesClearedTotal.Add(float64(removed))
	c.logger.InfoContext(ctx, "roster cleanup done", "scope", c.scope, "removed", removed)
	return nil
}
