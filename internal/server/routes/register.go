package routes

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/hubs-api/hubs-api/internal/hubs"
	"github.com/hubs-api/hubs-api/internal/server"
)

// Dependencies 汇总注册路由所需的外部组件。
type Dependencies struct {
	Database hubs.Database
	Logger   *logrus.Logger
	Clock    func() time.Time
	// Gatherer 为空时不注册 /metrics。
	Gatherer prometheus.Gatherer
}

// Register 按固定顺序注册全部路由，兜底路由最后注册。
func Register(app *fiber.App, deps Dependencies) {
	RegisterRootRoutes(app, deps.Clock)
	RegisterHubRoutes(app, deps.Database, deps.Logger)
	RegisterDiagnostics(app, deps.Gatherer)
	server.RegisterFallback(app)
}
