package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hubs-api/hubs-api/internal/metrics"
)

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger *logrus.Logger
	// Metrics 为空时不记录 HTTP 指标。
	Metrics *metrics.Metrics
	// BodyLimit 以字节计，<=0 时使用 Fiber 默认值。
	BodyLimit int
}

const (
	contextKeyRequestID = "_hubs_request_id"
	contextKeyBody      = "_hubs_body"

	// HeaderRequestID 在每个响应上回写请求 ID。
	HeaderRequestID = "X-Request-ID"
)

// NewApp builds a Fiber application with request id, access log, recovery and
// JSON body parsing middleware. Routes are registered by the caller and the
// fallback must be registered last.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}

	cfg := fiber.Config{
		CaseSensitive: true,
		ErrorHandler:  newErrorHandler(opts.Logger),
	}
	if opts.BodyLimit > 0 {
		cfg.BodyLimit = opts.BodyLimit
	}
	app := fiber.New(cfg)

	app.Use(requestContextMiddleware())
	app.Use(observeMiddleware(opts.Logger, opts.Metrics))
	app.Use(recover.New())
	app.Use(bodyParserMiddleware())

	return app, nil
}

// requestContextMiddleware 负责生成请求 ID 并写入响应头。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set(HeaderRequestID, reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
