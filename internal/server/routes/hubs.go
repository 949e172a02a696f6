package routes

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/hubs-api/hubs-api/internal/hubs"
	"github.com/hubs-api/hubs-api/internal/logging"
	"github.com/hubs-api/hubs-api/internal/server"
)

const (
	msgHubNotFoundFind   = "I cannot find the hub you are looking for."
	msgHubNotFoundModify = "I cannot find the hub you are looking for"
)

type createdPayload struct {
	Success bool      `json:"success"`
	Hub     *hubs.Hub `json:"hub"`
}

type updatedPayload struct {
	Success bool      `json:"success"`
	Updated *hubs.Hub `json:"updated"`
}

type hubHandlers struct {
	db     hubs.Database
	logger *logrus.Logger
}

// RegisterHubRoutes 绑定 /hubs 集合的五个处理器。处理器不做输入校验，
// 路径 id 与请求体原样交给存储层。
func RegisterHubRoutes(app *fiber.App, db hubs.Database, logger *logrus.Logger) {
	if app == nil || db == nil {
		return
	}
	h := &hubHandlers{db: db, logger: logger}

	app.Get("/hubs", h.list)
	app.Get("/hubs/:id", h.get)
	app.Post("/hubs", h.create)
	app.Put("/hubs/:id", h.update)
	app.Delete("/hubs/:id", h.remove)
}

func (h *hubHandlers) list(c fiber.Ctx) error {
	result, err := h.db.Find(c.Context())
	if err != nil {
		return h.storeFailure(c, "find", "", err)
	}
	return c.JSON(result)
}

func (h *hubHandlers) get(c fiber.Ctx) error {
	id := c.Params("id")
	hub, err := h.db.FindByID(c.Context(), id)
	if err != nil {
		return h.storeFailure(c, "findById", id, err)
	}
	if hub == nil {
		return notFound(c, msgHubNotFoundFind)
	}
	return c.JSON(hub)
}

func (h *hubHandlers) create(c fiber.Ctx) error {
	hub, err := h.db.Add(c.Context(), server.Body(c))
	if err != nil {
		return h.storeFailure(c, "add", "", err)
	}
	return c.Status(fiber.StatusCreated).JSON(createdPayload{Success: true, Hub: hub})
}

func (h *hubHandlers) update(c fiber.Ctx) error {
	id := c.Params("id")
	updated, err := h.db.Update(c.Context(), id, server.Body(c))
	if err != nil {
		return h.storeFailure(c, "update", id, err)
	}
	if updated == nil {
		return notFound(c, msgHubNotFoundModify)
	}
	return c.JSON(updatedPayload{Success: true, Updated: updated})
}

func (h *hubHandlers) remove(c fiber.Ctx) error {
	id := c.Params("id")
	removed, err := h.db.Remove(c.Context(), id)
	if err != nil {
		return h.storeFailure(c, "remove", id, err)
	}
	if !removed {
		return notFound(c, msgHubNotFoundModify)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func notFound(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(server.Failure{Success: false, Message: message})
}

// storeFailure 记录失败并以 500 回显错误详情。
func (h *hubHandlers) storeFailure(c fiber.Ctx, op, id string, err error) error {
	if h.logger != nil {
		h.logger.WithFields(logging.StoreFields(server.RequestID(c), op, id)).WithError(err).Error("store operation failed")
	}
	return c.Status(fiber.StatusInternalServerError).JSON(server.Failure{
		Success: false,
		Err:     errorDetail(op, err),
	})
}

// errorDetail 保证 err 字段总是一个对象；未包装的错误补上操作名。
func errorDetail(op string, err error) any {
	var opErr *hubs.OpError
	if errors.As(err, &opErr) {
		return opErr
	}
	return &hubs.OpError{Op: op, Err: err}
}
