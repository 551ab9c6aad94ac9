package gateway

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/futa-medical/clinic-booking/internal/iam"
	"github.com/futa-medical/clinic-booking/internal/scheduling"
	"github.com/futa-medical/clinic-booking/internal/students"
	"github.com/futa-medical/clinic-booking/pkg/api"
	"github.com/futa-medical/clinic-booking/pkg/config"
	"github.com/futa-medical/clinic-booking/pkg/interfaces"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/monitoring"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

// Dependencies holds everything NewRouter wires into the HTTP surface
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Metrics     *monitoring.MetricsCollector
	Tracing     *monitoring.TracingManager
	Health      *monitoring.HealthManager
	Tokens      interfaces.TokenValidator
	RateLimiter interfaces.RateLimiter

	Auth       *iam.Handlers
	Admin      *iam.AdminHandlers
	Scheduling *scheduling.Handlers
	Students   *students.Handlers
}

// NewRouter builds the gin engine serving the clinic API
func NewRouter(deps *Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(deps.Metrics, deps.Logger))
	router.Use(cors.New(corsConfig(deps.Config.CORS)))
	router.Use(SecurityHeaders())
	router.Use(monitoring.NewMonitoringMiddleware(deps.Metrics, deps.Tracing, deps.Logger).Handler())

	router.NoRoute(func(c *gin.Context) {
		api.Fail(c, http.StatusNotFound, "Resource not found")
	})

	if deps.Config.Monitoring.Enabled {
		if deps.Health != nil {
			router.GET(deps.Config.Monitoring.HealthPath, deps.Health.Handler())
		}
		router.GET(deps.Config.Monitoring.MetricsPath, gin.WrapH(deps.Metrics.Handler()))
	}

	authenticated := AuthMiddleware(deps.Tokens, deps.Logger)

	apiGroup := router.Group("/api")

	var public []gin.HandlerFunc
	if deps.Config.RateLimit.Enabled && deps.RateLimiter != nil {
		public = append(public, RateLimit(deps.RateLimiter, deps.Metrics, deps.Logger))
	}
	deps.Auth.RegisterRoutes(apiGroup, public...)
	deps.Admin.RegisterRoutes(apiGroup, authenticated, RequireRoles(types.RoleAdmin))

	apiGroup.GET("/departments", deps.Scheduling.ListDepartments)

	appointments := apiGroup.Group("/appointments", authenticated)
	appointments.POST("", RequireRoles(types.RoleStudent), deps.Scheduling.CreateAppointment)
	appointments.PATCH("/:id/status", RequireRoles(types.RoleStudent, types.RoleDoctor), deps.Scheduling.TransitionAppointment)

	studentGroup := apiGroup.Group("/students", authenticated, RequireRoles(types.RoleStudent))
	studentGroup.GET("/profile", deps.Students.GetProfile)
	studentGroup.PATCH("/profile", deps.Students.UpdateProfile)

	return router
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", monitoring.RequestIDHeader},
		ExposeHeaders:    []string{monitoring.RequestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}
