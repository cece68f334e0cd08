package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punchlist-api/internal/infrastructure/metrics"
)

// MetricsMiddleware registra conteo y duración por método, ruta (patrón) y status.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Method(), route, strconv.Itoa(status), time.Since(start))
		return err
	}
}
