package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	router *gin.RouterGroup
	db     Pinger
}

func NewHealthController(router *gin.RouterGroup, db Pinger) *HealthController {
	return &HealthController{
		router: router,
		db:     db,
	}
}

func (controller *HealthController) SetupRoutes() {
	controller.router.GET("/health", controller.healthHandler)
	controller.router.HEAD("/health", controller.healthHandler)
}

func (controller *HealthController) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := controller.db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("Database ping failed")
		c.JSON(503, gin.H{
			"status":  "error",
			"message": "Database unavailable",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "ok",
		"message": "Healthy",
	})
}
