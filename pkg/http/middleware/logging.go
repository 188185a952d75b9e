package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"StockMon/pkg/logger"
)

// RequestLogging logs each request at debug level.
func RequestLogging(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			log.Debug("request",
				logger.String("method", c.Request().Method),
				logger.String("route", c.Path()),
				logger.Int("status", c.Response().Status),
				logger.Duration("latency", time.Since(start)),
			)
			return err
		}
	}
}
