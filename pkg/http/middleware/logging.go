package middleware

import (
	"time"

	"VolPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one structured line per request.
func RequestLogging(log *logger.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)

			log.Info("http request",
				logger.String("method", req.Method),
				logger.String("uri", req.RequestURI),
				logger.String("remote", req.RemoteAddr),
				logger.Int("status", c.Response().Status),
				logger.Duration("elapsed", time.Since(start)))

			return err
		}
	}
}
