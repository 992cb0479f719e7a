package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

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
)

type Handlers struct {
	Auth         *authhandler.Handler
	Listing      *listinghandler.Handler
	Request      *requesthandler.Handler
	Quote        *quotehandler.Handler
	Booking      *bookinghandler.Handler
	Review       *reviewhandler.Handler
	Notification *notificationhandler.Handler
	WS           *wshandler.Handler
	Ops          *handler.Handler
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig
	MetricsPrefix  string
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func New(auth *middleware.AuthMiddleware, handlers Handlers, logger zerolog.Logger, config Config) *Router {
	engine := gin.New()
	middleware.RegisterValidators()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  newRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		r.metricsMiddleware(),
		middleware.CORS(config.CORS),
	)

	if config.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
		engine.Use(limiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)
	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)

	// The websocket handshake authenticates via query token, so it sits
	// outside the bearer-token group.
	r.handlers.WS.RegisterRoutes(api)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("", r.handlers.Ops.HealthCheck)
		health.GET("/live", r.handlers.Ops.LivenessCheck)
		health.GET("/ready", r.handlers.Ops.ReadinessCheck)
		health.GET("/metrics", r.handlers.Ops.MetricsHandler)
	}
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	r.handlers.Auth.RegisterRoutes(rg)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.handlers.Listing.RegisterRoutes(rg, r.auth)
	r.handlers.Request.RegisterRoutes(rg, r.auth)
	r.handlers.Quote.RegisterRoutes(rg, r.auth)
	r.handlers.Booking.RegisterRoutes(rg, r.auth)
	r.handlers.Review.RegisterRoutes(rg)
	r.handlers.Notification.RegisterRoutes(rg)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func newRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
