package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the API under /api/v1 next to the health and metrics
// endpoints.
func NewRouter(h *DocumentHandler, logger *zap.Logger, metrics http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger.Named("http")))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	h.Register(router.Group("/api/v1"))
	return router
}
