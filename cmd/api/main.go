package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medpraxis/practice-api/internal/config"
	"github.com/medpraxis/practice-api/internal/email"
	"github.com/medpraxis/practice-api/internal/handler"
	approvalHandler "github.com/medpraxis/practice-api/internal/handler/approval"
	assistantHandler "github.com/medpraxis/practice-api/internal/handler/assistant"
	authHandler "github.com/medpraxis/practice-api/internal/handler/auth"
	hospitalHandler "github.com/medpraxis/practice-api/internal/handler/hospital"
	patientHandler "github.com/medpraxis/practice-api/internal/handler/patient"
	profileHandler "github.com/medpraxis/practice-api/internal/handler/profile"
	"github.com/medpraxis/practice-api/internal/middleware"
	"github.com/medpraxis/practice-api/internal/repository/postgres"
	"github.com/medpraxis/practice-api/internal/router"
	approvalService "github.com/medpraxis/practice-api/internal/service/approval"
	assistantService "github.com/medpraxis/practice-api/internal/service/assistant"
	authService "github.com/medpraxis/practice-api/internal/service/auth"
	hospitalService "github.com/medpraxis/practice-api/internal/service/hospital"
	patientService "github.com/medpraxis/practice-api/internal/service/patient"
	profileService "github.com/medpraxis/practice-api/internal/service/profile"
	pkgauth "github.com/medpraxis/practice-api/pkg/auth"
	"github.com/medpraxis/practice-api/pkg/lock"
	"github.com/medpraxis/practice-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	hospitalRepo := postgres.NewHospitalRepository(db)
	adminRepo := postgres.NewHospitalAdminRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	assistantRepo := postgres.NewAssistantRepository(db)
	patientRepo := postgres.NewPatientRepository(db)

	// Reconciliation lock: Redis when configured, in-process otherwise
	var locker lock.Locker
	if cfg.Redis.URL != "" {
		logger := log.Logger
		redisLocker, err := lock.NewRedisLocker(cfg.Redis.URL, &logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisLocker.Close()
		locker = redisLocker
	} else {
		log.Warn().Msg("no Redis configured, using in-process reconciliation lock")
		locker = lock.NewKeyedMutex()
	}

	var emailSvc email.Service = email.Noop{}
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewService(cfg.SMTP)
	}

	appMetrics := metrics.NewMetrics("practice_api")

	// Initialize services
	jwtSvc := pkgauth.NewJWTService(cfg.JWT)
	authSvc := authService.NewService(accountRepo, profileRepo, hospitalRepo, doctorRepo, adminRepo, jwtSvc)
	profileSvc := profileService.NewService(profileRepo, accountRepo, log.Logger)
	hospitalSvc := hospitalService.NewService(hospitalRepo)
	assistantSvc := assistantService.NewService(accountRepo, profileRepo, doctorRepo, assistantRepo)
	approvalSvc := approvalService.NewService(profileRepo, hospitalRepo, doctorRepo, assistantRepo, accountRepo, emailSvc, appMetrics, log.Logger)
	patientSvc := patientService.NewService(patientRepo, profileRepo, assistantRepo, hospitalRepo, locker, appMetrics, log.Logger)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	// Initialize handlers
	handler.RegisterValidators()
	h := handler.NewHandler(db)

	public := []router.Handler{
		authHandler.NewHandler(authSvc),
		hospitalHandler.NewHandler(hospitalSvc),
	}
	private := []router.Handler{
		profileHandler.NewHandler(profileSvc),
		approvalHandler.NewHandler(approvalSvc, authMiddleware),
		assistantHandler.NewHandler(assistantSvc, authMiddleware),
		patientHandler.NewHandler(patientSvc, authMiddleware),
	}

	r := router.NewRouter(authMiddleware, h, public, private, router.Config{
		RateLimit:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:  cfg.RateLimit.Burst,
		CORSConfig: middleware.DefaultCORSConfig(),
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}
