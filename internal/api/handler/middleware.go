package handler

import (
	"net/http"
	"strconv"
	"time"

	"haccp-flow/internal/api/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	actorKey        = "actor_id"
	ActorHeader     = "X-User-ID"
	RequestIDHeader = "X-Request-ID"
)

// RequestLogger tags every request with an id and logs it once it is done.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			logger.Error("request failed", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

// RequireActor reads the already authenticated user id put in front of us
// by the auth proxy.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.GetHeader(ActorHeader), 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "missing or invalid " + ActorHeader, Code: "unauthenticated"})
			return
		}
		c.Set(actorKey, uint(id))
		c.Next()
	}
}

func actor(c *gin.Context) uint {
	return c.GetUint(actorKey)
}
