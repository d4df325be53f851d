package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"safebite/internal/handler"
	"safebite/internal/middleware"
	"safebite/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Allergen  *handler.AllergenHandler
	Document  *handler.DocumentHandler
	Candidate *handler.CandidateHandler
	Check     *handler.CheckHandler
	Health    *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	logger *zap.Logger,
	authSvc service.AuthService,
	h Handlers,
	gatherer prometheus.Gatherer,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Protected routes - require valid JWT
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(authSvc))

	allergens := v1.Group("/allergens")
	allergens.GET("", h.Allergen.List)
	allergens.POST("", h.Allergen.Register)
	allergens.POST("/batch", h.Allergen.AddBatch)
	allergens.PUT("/rename", h.Allergen.Rename)
	allergens.POST("/batch-delete", h.Allergen.DeleteBatch)
	allergens.DELETE("/:name", h.Allergen.Delete)

	documents := v1.Group("/documents")
	documents.POST("/upload", h.Document.Upload)
	documents.POST("/reconcile", h.Document.Reconcile)

	candidates := v1.Group("/candidates")
	candidates.GET("", h.Candidate.List)
	candidates.POST("/confirm", h.Candidate.Confirm)
	candidates.POST("/discard", h.Candidate.Discard)

	checks := v1.Group("/checks")
	checks.POST("", h.Check.Check)
	checks.POST("/batch", h.Check.CheckBatch)

	return r
}
