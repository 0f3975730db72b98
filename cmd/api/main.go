package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/dentalops/clinic-api/internal/config"
	"github.com/dentalops/clinic-api/internal/email"
	"github.com/dentalops/clinic-api/internal/handler"
	appointmentHandler "github.com/dentalops/clinic-api/internal/handler/appointment"
	availabilityHandler "github.com/dentalops/clinic-api/internal/handler/availability"
	catalogHandler "github.com/dentalops/clinic-api/internal/handler/catalog"
	doctorHandler "github.com/dentalops/clinic-api/internal/handler/doctor"
	paymentHandler "github.com/dentalops/clinic-api/internal/handler/payment"
	recordHandler "github.com/dentalops/clinic-api/internal/handler/record"
	"github.com/dentalops/clinic-api/internal/middleware"
	"github.com/dentalops/clinic-api/internal/repository/postgres"
	"github.com/dentalops/clinic-api/internal/router"
	appointmentService "github.com/dentalops/clinic-api/internal/service/appointment"
	availabilityService "github.com/dentalops/clinic-api/internal/service/availability"
	catalogService "github.com/dentalops/clinic-api/internal/service/catalog"
	doctorService "github.com/dentalops/clinic-api/internal/service/doctor"
	paymentService "github.com/dentalops/clinic-api/internal/service/payment"
	recordService "github.com/dentalops/clinic-api/internal/service/record"
	"github.com/dentalops/clinic-api/pkg/auth"
	"github.com/dentalops/clinic-api/pkg/cache"
	"github.com/dentalops/clinic-api/pkg/logger"
	"github.com/dentalops/clinic-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(cfg.Logging)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	recordRepo := postgres.NewClinicalRecordRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	// Slot cache is optional: without redis every request recomputes
	// from postgres, which is correct, just slower.
	var (
		apptCache  appointmentService.SlotCache
		availCache availabilityService.SlotCache
	)
	if !cfg.Redis.Disabled && cfg.Redis.URL != "" {
		slotCache, err := cache.NewSlotCache(cfg.Redis.URL, cfg.Redis.SlotTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer slotCache.Close()
		apptCache = slotCache
		availCache = slotCache
	} else {
		log.Info().Msg("slot cache disabled, computing slots per request")
	}

	var notifier email.Service = email.Noop{}
	if cfg.SMTP.Host != "" {
		notifier = email.NewService(cfg.SMTP)
	}

	m := metrics.NewMetrics("clinic_api")

	// Services
	appointmentSvc := appointmentService.NewService(
		appointmentRepo,
		availabilityRepo,
		serviceRepo,
		doctorRepo,
		patientRepo,
		notifier,
		apptCache,
		m,
		cfg.Scheduling.GridSizeMinutes,
	)
	availabilitySvc := availabilityService.NewService(
		availabilityRepo,
		doctorRepo,
		availCache,
		m,
		cfg.Scheduling.GridSizeMinutes,
		cfg.Scheduling.DayStartMinutes,
		cfg.Scheduling.DayEndMinutes,
	)
	catalogSvc := catalogService.NewService(serviceRepo)
	doctorSvc := doctorService.NewService(doctorRepo)
	recordSvc := recordService.NewService(recordRepo, patientRepo)
	paymentSvc := paymentService.NewService(paymentRepo)

	// Middleware and handlers
	authMW := middleware.NewAuthMiddleware(auth.NewVerifier(cfg.JWT.Secret))
	h := handler.NewHandler(db)

	r := router.NewRouter(
		authMW,
		h,
		appointmentHandler.NewHandler(appointmentSvc),
		availabilityHandler.NewHandler(availabilitySvc),
		catalogHandler.NewHandler(catalogSvc),
		doctorHandler.NewHandler(doctorSvc),
		recordHandler.NewHandler(recordSvc),
		paymentHandler.NewHandler(paymentSvc),
		router.Config{
			RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:      cfg.RateLimit.Burst,
			RequestTimeout: cfg.Server.RequestTimeout,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "clinic_api_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
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
