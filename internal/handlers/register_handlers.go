package handlers

import (
	"fmt"

	"github.com/SscSPs/autoledger/cmd/docs"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/middleware"
	"github.com/SscSPs/autoledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	if err := setupAPIV1Routes(r, cfg, services); err != nil {
		return err
	}

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) error {
	eventLimiter, err := middleware.NewLimiter(cfg.EventRateLimit)
	if err != nil {
		return fmt.Errorf("invalid EVENT_RATE_LIMIT %q: %w", cfg.EventRateLimit, err)
	}
	// producers share one budget across the sync and queued paths
	limitProducers := middleware.RateLimit(eventLimiter)

	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerEventRoutes(v1, service.Producer, limitProducers)
	registerOutboxRoutes(v1, service.Outbox, limitProducers)
	registerReportingRoutes(v1, service.Reconciliation)
	registerAccountRoutes(v1, service.Chart, service.Reconciliation)
	registerJournalRoutes(v1, service.Ledger, service.Poster)
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
