package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hrms/internal/auth"
	"hrms/internal/config"
	"hrms/internal/employee"
	"hrms/internal/httpmiddleware"
	"hrms/internal/presence"
	"hrms/internal/queue"
	"hrms/internal/store"
	"hrms/internal/survey"
	"hrms/internal/training"
)

// Handler wires the HTTP surface to the domain services.
type Handler struct {
	cfg         config.App
	redis       *store.Redis
	employees   *employee.Repository
	trainings   *training.Repository
	trainingSvc *training.Service
	presences   *presence.Repository
	presenceSvc *presence.Service
	surveys     *survey.Repository
	surveySvc   *survey.Service
	q           queue.Queue
}

// New creates a handler.
func New(cfg config.App, redis *store.Redis,
	employees *employee.Repository, trainings *training.Repository, trainingSvc *training.Service,
	presences *presence.Repository, presenceSvc *presence.Service,
	surveys *survey.Repository, surveySvc *survey.Service, q queue.Queue) *Handler {
	return &Handler{
		cfg:         cfg,
		redis:       redis,
		employees:   employees,
		trainings:   trainings,
		trainingSvc: trainingSvc,
		presences:   presences,
		presenceSvc: presenceSvc,
		surveys:     surveys,
		surveySvc:   surveySvc,
		q:           q,
	}
}

// Router builds the gin engine with middleware and all routes mounted.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(h.cfg.RateLimitPerMin, h.cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	r.POST("/auth/login", h.Login)

	// QCM endpoints are reachable without a session token: trainees identify
	// themselves by CIN.
	qcm := r.Group("/v1/qcm")
	qcm.POST("/access", h.QCMAccess)
	qcm.POST("/submit", h.QCMSubmit)

	v1 := r.Group("/v1", auth.Bearer(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))

	v1.GET("/departments", h.ListDepartments)
	v1.POST("/departments", h.CreateDepartment)
	v1.PUT("/departments/:id", h.UpdateDepartment)
	v1.DELETE("/departments/:id", h.DeleteDepartment)
	v1.GET("/stats/departments", h.DepartmentStats)

	v1.GET("/employees", h.ListEmployees)
	v1.POST("/employees", h.CreateEmployee)
	v1.GET("/employees/:id", h.GetEmployee)
	v1.PUT("/employees/:id", h.UpdateEmployee)
	v1.DELETE("/employees/:id", h.DeleteEmployee)
	v1.GET("/employee-by-cin/:cin", h.GetEmployeeByCIN)
	v1.GET("/employees/:id/presences", h.EmployeePresences)
	v1.POST("/employees/:id/diplomas", h.AddDiploma)
	v1.GET("/employees/:id/diplomas", h.ListDiplomas)
	v1.DELETE("/diplomas/:id", h.DeleteDiploma)
	v1.POST("/employees/:id/experiences", h.AddExperience)
	v1.GET("/employees/:id/experiences", h.ListExperiences)
	v1.DELETE("/experiences/:id", h.DeleteExperience)

	v1.GET("/trainers", h.ListTrainers)
	v1.POST("/trainers", h.CreateTrainer)
	v1.GET("/trainers/:id", h.GetTrainer)
	v1.PUT("/trainers/:id", h.UpdateTrainer)

	v1.GET("/trainings", h.ListTrainings)
	v1.POST("/trainings", h.CreateTraining)
	v1.GET("/trainings/:id", h.GetTraining)
	v1.PUT("/trainings/:id", h.UpdateTraining)
	v1.DELETE("/trainings/:id", h.DeleteTraining)
	v1.POST("/trainings/:id/status", h.SetTrainingStatus)
	v1.GET("/stats/trainings", h.TrainingStats)

	v1.GET("/trainings/:id/participants", h.ListParticipants)
	v1.POST("/trainings/:id/participants", h.AddParticipants)
	v1.DELETE("/trainings/:id/participants/:employeeID", h.DeleteParticipation)

	v1.GET("/trainings/:id/presences", h.ListPresences)
	v1.GET("/trainings/:id/presences/sheet", h.PresenceSheet)
	v1.GET("/trainings/:id/presences/record", h.GetPresence)
	v1.GET("/trainings/:id/presences/export", h.ExportPresenceSheet)
	v1.POST("/trainings/:id/presences", h.MarkPresences)
	v1.POST("/trainings/:id/presences/auto-mark", h.AutoMarkDay)

	v1.POST("/trainings/:id/form", h.EnsureForm)
	v1.GET("/trainings/:id/form", h.GetForm)
	v1.POST("/forms/:id/questions", h.AddQuestion)
	v1.DELETE("/questions/:id", h.DeleteQuestion)
	v1.GET("/forms/:id/answers", h.ListAnswers)

	return r
}

// Healthz reports dependency health.
func (h *Handler) Healthz(c *gin.Context) {
	redisHealthy := h.redis.Healthy(c.Request.Context())
	status := http.StatusOK
	if !redisHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy})
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
