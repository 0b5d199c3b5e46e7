package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"inkwell/internal/metrics"
)

// Metrics records request counts and latencies. Errors from later handlers
// are rendered here through the app's ErrorHandler so the recorded status is
// the one the client sees.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		route := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		m.HTTPRequestsTotal.WithLabelValues(c.Method(), route, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return nil
	}
}
