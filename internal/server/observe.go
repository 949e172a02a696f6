package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/hubs-api/hubs-api/internal/logging"
	"github.com/hubs-api/hubs-api/internal/metrics"
)

// observeMiddleware 在链路内提前渲染错误，保证访问日志与指标拿到最终状态码。
func observeMiddleware(logger *logrus.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if renderErr := renderError(c, logger, err); renderErr != nil {
				return renderErr
			}
		}

		latency := time.Since(start)
		status := c.Response().StatusCode()
		route := routePath(c)

		if m != nil {
			m.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(latency.Seconds())
		}

		entry := logger.WithFields(logging.RequestFields(RequestID(c), c.Method(), c.Path(), route, status, latency))
		if status >= fiber.StatusInternalServerError {
			entry.Warn("request completed")
		} else {
			entry.Debug("request completed")
		}
		return nil
	}
}

func routePath(c fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}
	return "unmatched"
}
