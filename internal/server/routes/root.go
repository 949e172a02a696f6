package routes

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/hubs-api/hubs-api/internal/hubs"
)

const greeting = "hello world from express!!"

// RegisterRootRoutes 暴露问候语与当前时间，clock 为空时使用 time.Now。
func RegisterRootRoutes(app *fiber.App, clock func() time.Time) {
	if app == nil {
		return
	}
	if clock == nil {
		clock = time.Now
	}

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(greeting)
	})

	app.Get("/now", func(c fiber.Ctx) error {
		return c.SendString(clock().UTC().Format(hubs.TimeLayout))
	})
}
