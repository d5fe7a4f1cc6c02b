package middleware

import (
	"resto-pos/internal/logger"
	"resto-pos/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestLogger tags every request with an id, logs it on completion and
// feeds the request counters. A client-supplied X-Request-ID is preserved
// so log lines can be correlated across systems.
func RequestLogger(registry *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		timer := metrics.StartTimer()
		c.Next()

		registry.Requests.Inc()
		status := c.Writer.Status()
		if status >= 500 {
			registry.FailedRequests.Inc()
		}

		log := logger.FromCtx(ctx).With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", timer.Duration()),
		)

		if status >= 500 {
			log.Error("request completed")
		} else {
			log.Info("request completed")
		}
	}
}
