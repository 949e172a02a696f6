package routes

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath 是 Prometheus 抓取地址。
const MetricsPath = "/metrics"

// RegisterDiagnostics 暴露 /metrics，供 Prometheus 抓取。
func RegisterDiagnostics(app *fiber.App, gatherer prometheus.Gatherer) {
	if app == nil || gatherer == nil {
		return
	}
	handler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	app.Get(MetricsPath, adaptor.HTTPHandler(handler))
}
