package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/dentalops/clinic-api/internal/handler"
	"github.com/dentalops/clinic-api/internal/handler/appointment"
	"github.com/dentalops/clinic-api/internal/handler/availability"
	"github.com/dentalops/clinic-api/internal/handler/catalog"
	"github.com/dentalops/clinic-api/internal/handler/doctor"
	"github.com/dentalops/clinic-api/internal/handler/payment"
	"github.com/dentalops/clinic-api/internal/handler/record"
	"github.com/dentalops/clinic-api/internal/middleware"
	"github.com/dentalops/clinic-api/pkg/auth"
)

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	h             *handler.Handler
	appointmentH  *appointment.Handler
	availabilityH *availability.Handler
	catalogH      *catalog.Handler
	doctorH       *doctor.Handler
	recordH       *record.Handler
	paymentH      *payment.Handler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type Config struct {
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	CORSConfig     middleware.CORSConfig
	MetricsPrefix  string
}

func NewRouter(
	authMW *middleware.AuthMiddleware,
	h *handler.Handler,
	appointmentH *appointment.Handler,
	availabilityH *availability.Handler,
	catalogH *catalog.Handler,
	doctorH *doctor.Handler,
	recordH *record.Handler,
	paymentH *payment.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = middleware.DefaultTimeoutConfig().Duration
	}

	r := &Router{
		engine:        engine,
		auth:          authMW,
		h:             h,
		appointmentH:  appointmentH,
		availabilityH: availabilityH,
		catalogH:      catalogH,
		doctorH:       doctorH,
		recordH:       recordH,
		paymentH:      paymentH,
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)
	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

// Public routes: browsing the catalog, the doctor list, a doctor's weekly
// schedule and the free slots for a day needs no session.
func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	doctors := rg.Group("/doctors")
	{
		doctors.GET("", r.doctorH.ListDoctors)
		doctors.GET("/:id", r.doctorH.GetDoctor)
		doctors.GET("/:id/availability", r.availabilityH.GetWeeklySchedule)
	}

	services := rg.Group("/services")
	{
		services.GET("", r.catalogH.ListServices)
		services.GET("/:id", r.catalogH.GetService)
	}

	rg.GET("/availability/slots", r.appointmentH.ListSlots)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	appointments := rg.Group("/appointments")
	{
		appointments.POST("", r.appointmentH.BookAppointment)
		appointments.GET("", r.appointmentH.ListAppointments)
		appointments.GET("/:id", r.appointmentH.GetAppointment)
		appointments.GET("/:id/payment", r.paymentH.GetAppointmentPayment)
	}

	doctorOnly := rg.Group("")
	doctorOnly.Use(r.auth.RequireRole(auth.RoleDoctor))
	{
		doctorOnly.PUT("/availability", r.availabilityH.UpdateWeeklySchedule)
		doctorOnly.PUT("/appointments/:id/status", r.appointmentH.UpdateStatus)

		doctorOnly.POST("/services", r.catalogH.CreateService)
		doctorOnly.PUT("/services/:id", r.catalogH.UpdateService)
		doctorOnly.DELETE("/services/:id", r.catalogH.DeleteService)

		doctorOnly.POST("/records", r.recordH.CreateRecord)
		doctorOnly.GET("/records/:id", r.recordH.GetRecord)
		doctorOnly.PUT("/records/:id", r.recordH.UpdateRecord)
		doctorOnly.DELETE("/records/:id", r.recordH.DeleteRecord)
		doctorOnly.GET("/patients/:id/records", r.recordH.ListPatientRecords)

		doctorOnly.GET("/payments/:id", r.paymentH.GetPayment)
		doctorOnly.PUT("/payments/:id/status", r.paymentH.UpdateStatus)
		doctorOnly.GET("/patients/:id/payments", r.paymentH.ListPatientPayments)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
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
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
