package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/config"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/service"
	"github.com/dmehra2102/prod-golang-projects/spabook/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/spabook/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Appointments *service.AppointmentService
	Clients      *service.ClientService
	Auth         *service.AuthService
	JWT          *auth.JWTManager
	Metrics      *metrics.Collector
	Hours        appointment.BusinessHours
	CORS         config.CORSConfig
	Log          *zap.Logger

	// Optional. A nil limiter disables rate limiting for its route group.
	RateLimiter     *middleware.RateLimiter
	AuthRateLimiter *middleware.RateLimiter

	// Ping reports backing store health for /health; nil means always healthy.
	Ping func(ctx context.Context) error
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(d.Log),
		middleware.Logger(d.Log),
		middleware.Metrics(d.Metrics),
		middleware.CORS(d.CORS),
	)

	r.GET("/health", health(d.Ping))
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := r.Group("/api/v1")
	if d.RateLimiter != nil {
		api.Use(d.RateLimiter.Middleware())
	}

	authH := NewAuthHandler(d.Auth)
	authGroup := api.Group("/auth")
	if d.AuthRateLimiter != nil {
		authGroup.Use(d.AuthRateLimiter.Middleware())
	}
	authGroup.POST("/login", authH.Login)
	authGroup.POST("/refresh", authH.Refresh)

	private := api.Group("")
	private.Use(middleware.Auth(d.JWT))

	clientH := NewClientHandler(d.Clients)
	clients := private.Group("/clients")
	clients.POST("", clientH.Create)
	clients.GET("", clientH.Search)
	clients.GET("/:id", clientH.Get)

	apptH := NewAppointmentHandler(d.Appointments, d.Hours)
	appts := private.Group("/appointments")
	appts.GET("", apptH.List)
	appts.POST("", apptH.Create)
	appts.GET("/client/:clientId", apptH.ClientHistory)
	appts.GET("/:id", apptH.Get)
	appts.PUT("/:id", apptH.Update)
	appts.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin, domain.RoleReceptionist), apptH.Delete)

	return r
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
