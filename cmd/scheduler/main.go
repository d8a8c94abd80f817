package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/course-signup/config"
	"github.com/ErlanBelekov/course-signup/internal/health"
	"github.com/ErlanBelekov/course-signup/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/course-signup/internal/log"
	"github.com/ErlanBelekov/course-signup/internal/metrics"
	"github.com/ErlanBelekov/course-signup/internal/scheduler"
	"github.com/ErlanBelekov/course-signup/internal/usecase"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	once := flag.Bool("once", false, "run the roster cleanup once and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	courses := usecase.NewCourseUsecase(postgres.NewCourseRepository(pool), postgres.NewUserRepository(pool), logger)

	cleanup, err := scheduler.NewCleanup(courses, cfg.CleanupCron, scheduler.Scope(cfg.CleanupScope), logger)
	if err != nil {
		stop()
		log.Fatalf("cleanup: %v", err)
	}

	if *once {
		err := cleanup.Run(ctx)
		stop()
		if err != nil {
			pool.Close()
			log.Fatalf("cleanup: %v", err)
		}
		return
	}

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	go cleanup.Start(ctx)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("scheduler shut down")
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
