package api

import (
	"github.com/RishiKendai/textaegis/internal/config"
	"github.com/RishiKendai/textaegis/internal/metrics"
	"github.com/RishiKendai/textaegis/internal/plagiarism"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	cfg *config.Config,
	documents DocumentStore,
	ingestor Ingestor,
	status StatusStore,
	workerPool JobSubmitter,
	publisher plagiarism.ReportPublisher,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Create handler
	handler := NewHandler(cfg, documents, ingestor, status, workerPool, publisher, metrics.ObserveComparison)

	// Create rate limiter
	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, max(1, int(cfg.RateLimitRPS*2)))

	// Middleware
	router.Use(RequestLogMiddleware())
	router.Use(metrics.GinMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/compare", handler.CompareTexts)
		api.POST("/compare/documents", handler.CompareDocuments)
		api.GET("/compare/jobs/:jobId", handler.JobStatus)
		api.POST("/documents", handler.CreateDocument)
		api.GET("/documents", handler.ListDocuments)
		api.DELETE("/documents/:documentId", handler.DeleteDocument)
	}

	return router
}
