package server

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// Failure 是 success:false 的响应信封。Err 承载存储层错误，Message 承载说明文字。
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Err     any    `json:"err,omitempty"`
}

func newErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		return renderError(c, logger, err)
	}
}

// renderError 将 *fiber.Error 保留原状态码，其余错误（含 recover 捕获的 panic）按 500 处理。
func renderError(c fiber.Ctx, logger *logrus.Logger, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	} else {
		logger.WithFields(logrus.Fields{
			"action":     "unhandled_error",
			"request_id": RequestID(c),
			"path":       c.Path(),
		}).WithError(err).Error("request failed")
	}

	return c.Status(code).JSON(Failure{Success: false, Message: message})
}

// RegisterFallback 注册显式兜底路由，必须在所有业务路由之后调用。
func RegisterFallback(app *fiber.App) {
	app.All("/*", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(Failure{
			Success: false,
			Message: fmt.Sprintf("Cannot %s %s", c.Method(), c.Path()),
		})
	})
}
