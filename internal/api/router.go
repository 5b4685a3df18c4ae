package api

import (
	"github.com/gin-gonic/gin"

	"github.com/etudehq/etude-api/internal/api/handlers"
	apimiddleware "github.com/etudehq/etude-api/internal/api/middleware"
	"github.com/etudehq/etude-api/internal/config"
	"github.com/etudehq/etude-api/internal/library"
)

func SetupRouter(lib *library.Library, cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(version)
	router.GET("/health", healthHandler.HealthCheck)

	// Protected API routes v1
	auth := apimiddleware.NoAuth()
	if cfg.IsGatewayMode() {
		auth = apimiddleware.GatewayAuth()
	}

	v1 := router.Group("/api/v1")
	v1.Use(auth)
	{
		// Exercise generation and catalogue
		exerciseHandler := handlers.NewExerciseHandler(lib)
		v1.POST("/exercises", exerciseHandler.Generate)
		v1.POST("/exercises/preview", exerciseHandler.Preview)
		v1.GET("/exercises", exerciseHandler.List)
		v1.GET("/exercises/:id", exerciseHandler.Get)
		v1.DELETE("/exercises/:id", exerciseHandler.Delete)
		v1.GET("/recommendations", exerciseHandler.Recommend)

		// Scores: persistence, validation, conversion
		scoreHandler := handlers.NewScoreHandler(lib)
		v1.POST("/scores", scoreHandler.Save)
		v1.GET("/scores", scoreHandler.List)
		v1.GET("/scores/:id", scoreHandler.Get)
		v1.POST("/scores/validate", scoreHandler.Validate)
		v1.POST("/scores/:id/extract/:voiceId", scoreHandler.ExtractVoice)
		v1.POST("/convert/to-score", scoreHandler.ToScore)
		v1.POST("/convert/to-flat", scoreHandler.ToFlat)

		// Repertoire and practice sessions
		repertoireHandler := handlers.NewRepertoireHandler(lib)
		v1.POST("/repertoire", repertoireHandler.SetStatus)
		v1.GET("/repertoire", repertoireHandler.List)
		v1.POST("/practice-sessions", repertoireHandler.RecordSession)
	}

	return router
}
