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

	"github.com/servease/marketplace-api/internal/config"
	"github.com/servease/marketplace-api/internal/email"
	"github.com/servease/marketplace-api/internal/handler"
	authhandler "github.com/servease/marketplace-api/internal/handler/auth"
	bookinghandler "github.com/servease/marketplace-api/internal/handler/booking"
	listinghandler "github.com/servease/marketplace-api/internal/handler/listing"
	notificationhandler "github.com/servease/marketplace-api/internal/handler/notification"
	quotehandler "github.com/servease/marketplace-api/internal/handler/quote"
	requesthandler "github.com/servease/marketplace-api/internal/handler/request"
	reviewhandler "github.com/servease/marketplace-api/internal/handler/review"
	wshandler "github.com/servease/marketplace-api/internal/handler/ws"
	"github.com/servease/marketplace-api/internal/middleware"
	"github.com/servease/marketplace-api/internal/repository/postgres"
	"github.com/servease/marketplace-api/internal/router"
	authservice "github.com/servease/marketplace-api/internal/service/auth"
	bookingservice "github.com/servease/marketplace-api/internal/service/booking"
	listingservice "github.com/servease/marketplace-api/internal/service/listing"
	notificationservice "github.com/servease/marketplace-api/internal/service/notification"
	quoteservice "github.com/servease/marketplace-api/internal/service/quote"
	requestservice "github.com/servease/marketplace-api/internal/service/request"
	reviewservice "github.com/servease/marketplace-api/internal/service/review"
	"github.com/servease/marketplace-api/internal/ws"
	"github.com/servease/marketplace-api/pkg/auth"
	"github.com/servease/marketplace-api/pkg/event"
	"github.com/servease/marketplace-api/pkg/logger"
	"github.com/servease/marketplace-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Logger.Pretty,
	}).ZL

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	baseRepo := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(baseRepo)
	notificationRepo := postgres.NewNotificationRepository(baseRepo)
	listingRepo := postgres.NewListingRepository(baseRepo)
	requestRepo := postgres.NewRequestRepository(baseRepo)
	quoteRepo := postgres.NewQuoteRepository(baseRepo)
	bookingRepo := postgres.NewBookingRepository(baseRepo)
	reviewRepo := postgres.NewReviewRepository(baseRepo)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)

	m := metrics.New("marketplace_api")
	registry := ws.NewRegistry(m)
	dispatcher := ws.NewDispatcher(registry, log, m)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:             cfg.JWT.Secret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		ExpiryHours:        cfg.JWT.ExpiryHours,
		RefreshExpiryHours: cfg.JWT.RefreshExpiryHours,
	})

	var emailSvc email.Service
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	recorder := event.NewRecorder(outboxRepo, log)

	notificationSvc := notificationservice.NewService(notificationRepo, userRepo, dispatcher, log)
	authSvc := authservice.NewService(userRepo, jwtSvc, emailSvc, cfg.JWT.ExpiryHours, log)
	listingSvc := listingservice.NewService(listingRepo)
	requestSvc := requestservice.NewService(requestRepo, listingRepo, notificationSvc, recorder)
	quoteSvc := quoteservice.NewService(quoteRepo, requestRepo, listingRepo, notificationSvc, recorder, log)
	bookingSvc := bookingservice.NewService(bookingRepo, quoteRepo, requestRepo, listingRepo, notificationSvc, recorder, log)
	reviewSvc := reviewservice.NewService(reviewRepo, bookingRepo, listingRepo, notificationSvc, recorder, log)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.New(authMiddleware, router.Handlers{
		Auth:         authhandler.NewHandler(authSvc),
		Listing:      listinghandler.NewHandler(listingSvc),
		Request:      requesthandler.NewHandler(requestSvc),
		Quote:        quotehandler.NewHandler(quoteSvc),
		Booking:      bookinghandler.NewHandler(bookingSvc),
		Review:       reviewhandler.NewHandler(reviewSvc),
		Notification: notificationhandler.NewHandler(notificationSvc),
		WS:           wshandler.NewHandler(registry, authSvc, log),
		Ops:          handler.NewHandler(db),
	}, log, router.Config{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		CORS:           middleware.DefaultCORSConfig(),
		MetricsPrefix:  "marketplace_api",
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

	registry.CloseAll()
	log.Info().Msg("server exited properly")
}
