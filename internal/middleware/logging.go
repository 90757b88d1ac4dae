package middleware

import (
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLoggingMiddleware logs one line per completed request.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		startTime := time.Now()
		c.Next()

		log := logger.ForComponent(logger.ComponentMiddleware)
		fields := []zap.Field{
			zap.String("correlation_id", GetCorrelationID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(startTime)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		for _, err := range c.Errors {
			fields = append(fields, zap.NamedError("request_error", err.Err))
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("Request completed", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("Request completed", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}
