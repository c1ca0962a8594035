package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"VolPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover returns middleware that converts handler panics into 500
// responses and logs the stack through the application logger.
func Recover(log *logger.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					log.Error("handler panic",
						logger.String("path", c.Path()),
						logger.String("stack", string(debug.Stack())),
						logger.Error(err))
					_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{
						"success": false,
						"error":   map[string]string{"code": "internal", "message": "internal server error"},
					})
				}
			}()
			return next(c)
		}
	}
}
