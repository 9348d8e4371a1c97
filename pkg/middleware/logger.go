package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const CorrelationIDHeader = "X-Correlation-ID"

// RequestLogger tags every request with a correlation id and logs
// method, path, status and latency through zap.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			correlationID := c.Request().Header.Get(CorrelationIDHeader)
			if correlationID == "" {
				correlationID = uuid.New().String()
			}
			c.Response().Header().Set(CorrelationIDHeader, correlationID)

			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("correlationId", correlationID),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.Error(err),
			)
			return err
		}
	}
}
