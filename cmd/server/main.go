package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/course-signup/config"
	"github.com/ErlanBelekov/course-signup/internal/auth"
	"github.com/ErlanBelekov/course-signup/internal/email"
	"github.com/ErlanBelekov/course-signup/internal/health"
	"github.com/ErlanBelekov/course-signup/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/course-signup/internal/log"
	"github.com/ErlanBelekov/course-signup/internal/metrics"
	"github.com/ErlanBelekov/course-signup/internal/sms"
	httptransport "github.com/ErlanBelekov/course-signup/internal/transport/http"
	"github.com/ErlanBelekov/course-signup/internal/transport/http/handler"
	"github.com/ErlanBelekov/course-signup/internal/transport/http/middleware"
	"github.com/ErlanBelekov/course-signup/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

const denylistSweepInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		stop()
		log.Fatalf("upload dir: %v", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	confirmationRepo := postgres.NewConfirmationRepository(pool)
	courseRepo := postgres.NewCourseRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)

	// Notifications
	emailSender := email.NewSender(email.Options{
		ResendAPIKey: cfg.ResendAPIKey,
		ResendFrom:   cfg.ResendFrom,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUser:     cfg.SMTPUser,
		SMTPPassword: cfg.SMTPPassword,
		SMTPFrom:     cfg.SMTPFrom,
	}, logger)
	smsSender := sms.NewSender(sms.Options{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		From:       cfg.TwilioFrom,
	}, logger)
	notifier := usecase.NewConfirmationNotifier(emailSender, smsSender, cfg.PublicBaseURL, cfg.SMSCountryPrefix, logger)

	// Auth
	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	denylist := auth.NewMemoryDenylist()
	go denylist.Run(ctx, denylistSweepInterval)

	// Usecases
	confirmationUsecase := usecase.NewConfirmationUsecase(userRepo, confirmationRepo, notifier, cfg.ConfirmationTTL)
	userUsecase := usecase.NewUserUsecase(userRepo, confirmationUsecase, logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, confirmationRepo, issuer, denylist)
	courseUsecase := usecase.NewCourseUsecase(courseRepo, userRepo, logger)
	catalogUsecase := usecase.NewCatalogUsecase(itemRepo, storeRepo)
	imageUsecase := usecase.NewImageUsecase(cfg.UploadDir, cfg.UploadMaxBytes, logger)

	handlers := httptransport.Handlers{
		Users:         handler.NewUserHandler(userUsecase, authUsecase, logger),
		Confirmations: handler.NewConfirmationHandler(confirmationUsecase, logger),
		Courses:       handler.NewCourseHandler(courseUsecase, logger),
		Catalog:       handler.NewCatalogHandler(catalogUsecase, logger),
		Uploads:       handler.NewUploadHandler(imageUsecase, cfg.UploadMaxBytes, logger),
	}

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)
	checker.Add("uploads", health.DirWritable(cfg.UploadDir))

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, handlers, middleware.NewAuthenticator(issuer, denylist)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
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
