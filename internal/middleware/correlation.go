package middleware

import (
	"context"

	"github.com/cyphera/cyphera-wallet-policy/internal/audit"
	"github.com/cyphera/cyphera-wallet-policy/internal/constants"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const correlationIDKey = "correlationID"

// CorrelationIDMiddleware ensures every request has a correlation ID. The
// id is echoed in the response and attached to the request context, where
// audit events pick it up.
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(constants.CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(correlationIDKey, correlationID)
		c.Header(constants.CorrelationIDHeader, correlationID)
		c.Request = c.Request.WithContext(audit.WithCorrelationID(c.Request.Context(), correlationID))

		c.Next()
	}
}

// GetCorrelationID retrieves the correlation ID from the Gin context.
func GetCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(correlationIDKey); exists {
		if correlationID, ok := id.(string); ok {
			return correlationID
		}
	}
	return ""
}

// LogWithCorrelationID returns the global logger tagged with the request's
// correlation ID when there is one.
func LogWithCorrelationID(ctx context.Context) *zap.Logger {
	if correlationID := audit.CorrelationID(ctx); correlationID != "" {
		return logger.Log.With(zap.String("correlation_id", correlationID))
	}
	return logger.Log
}
