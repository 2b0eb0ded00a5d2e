package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	// RequestIDKey ключ для request ID в контексте
	RequestIDKey contextKey = "request_id"

	// StartTimeKey ключ для времени начала запроса в контексте
	StartTimeKey contextKey = "start_time"
)

// TracingMiddleware создает gin middleware для трассировки запросов.
// Request ID берется из заголовка X-Request-ID или генерируется заново.
func TracingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		startTime := time.Now()
		ctx := context.WithValue(c.Request.Context(), RequestIDKey, requestID)
		ctx = context.WithValue(ctx, StartTimeKey, startTime)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		logger.Info("Start processing HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestID))

		c.Next()

		duration := time.Since(startTime)
		status := c.Writer.Status()

		if status >= 500 {
			logger.Error("HTTP request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestID),
				zap.Int("status", status),
				zap.Duration("duration", duration))
		} else {
			logger.Info("HTTP request completed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestID),
				zap.Int("status", status),
				zap.Duration("duration", duration))
		}
	}
}

// GetRequestID извлекает request ID из контекста
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID добавляет request ID в логгер
func WithRequestID(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if requestID := GetRequestID(ctx); requestID != "" {
		return logger.With(zap.String("request_id", requestID))
	}
	return logger
}
