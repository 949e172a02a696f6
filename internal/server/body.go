package server

import (
	"bytes"
	"mime"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/hubs-api/hubs-api/internal/hubs"
)

// bodyParserMiddleware 仅在声明 JSON 媒体类型且正文非空时解析，
// 解析失败在任何处理器运行前返回 400。
func bodyParserMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if !isJSONContentType(c.Get(fiber.HeaderContentType)) {
			return c.Next()
		}
		raw := c.Body()
		if len(bytes.TrimSpace(raw)) == 0 {
			return c.Next()
		}

		var fields hubs.Fields
		if err := c.App().Config().JSONDecoder(raw, &fields); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "request body is not a valid JSON object")
		}
		if fields == nil {
			// JSON null
			return fiber.NewError(fiber.StatusBadRequest, "request body is not a valid JSON object")
		}

		c.Locals(contextKeyBody, fields)
		return c.Next()
	}
}

func isJSONContentType(header string) bool {
	if header == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == fiber.MIMEApplicationJSON || strings.HasSuffix(mediaType, "+json")
}

// Body 返回中间件解析出的 JSON 对象；未声明 JSON 或正文为空时返回 nil。
func Body(c fiber.Ctx) hubs.Fields {
	if value := c.Locals(contextKeyBody); value != nil {
		if fields, ok := value.(hubs.Fields); ok {
			return fields
		}
	}
	return nil
}
