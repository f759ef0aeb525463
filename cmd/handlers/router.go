package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/diogomassis/fixgo-payments/internal/dto"
)

func NewApp(h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	for _, path := range []string{"/", "/payments"} {
		app.Post(path, h.HandlePostPayment)
		app.All(path, h.HandleMethodNotAllowed)
	}
	app.Get("/health", h.HandleGetHealth)
	app.Get("/reconciliation", h.HandleGetReconciliation)
	return app
}

func (h *Handlers) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Error: fe.Message})
	}
	log := h.requestLogger(c)
	log.Error().Err(err).Msg("unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error:   dto.MessageInternalError,
		Details: err.Error(),
	})
}
