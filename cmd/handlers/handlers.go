package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/diogomassis/fixgo-payments/internal/dto"
	"github.com/diogomassis/fixgo-payments/internal/models"
	"github.com/diogomassis/fixgo-payments/internal/services/cache"
	"github.com/diogomassis/fixgo-payments/internal/services/health"
	"github.com/diogomassis/fixgo-payments/internal/services/orchestrator"
	"github.com/diogomassis/fixgo-payments/internal/services/processor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultReconciliationLimit = 50

type PaymentExecutor interface {
	ExecutePayment(ctx context.Context, req models.PaymentRequest) (*models.CompletedPayment, error)
}

type HealthReporter interface {
	Snapshot() map[string]health.Status
	Healthy() bool
}

type Handlers struct {
	payments PaymentExecutor
	ledger   cache.Ledger
	health   HealthReporter
	logger   zerolog.Logger
}

func New(payments PaymentExecutor, ledger cache.Ledger, health HealthReporter, logger zerolog.Logger) *Handlers {
	if ledger == nil {
		ledger = cache.NopLedger{}
	}
	return &Handlers{
		payments: payments,
		ledger:   ledger,
		health:   health,
		logger:   logger.With().Str("component", "handlers").Logger(),
	}
}

func (h *Handlers) requestLogger(c *fiber.Ctx) zerolog.Logger {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return h.logger.With().Str("request_id", id).Logger()
	}
	return h.logger
}

func (h *Handlers) HandlePostPayment(c *fiber.Ctx) error {
	log := h.requestLogger(c)

	var req models.PaymentRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Error().Err(err).Msg("failed to decode payment request")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   dto.MessageInternalError,
			Details: err.Error(),
		})
	}

	completed, err := h.payments.ExecutePayment(c.UserContext(), req)
	if err != nil {
		return h.writePaymentError(c, log, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.NewPaymentResponse(completed))
}

func (h *Handlers) writePaymentError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var declined *processor.DeclinedError
	var workErr *orchestrator.WorkUpdateError

	switch {
	case errors.Is(err, orchestrator.ErrMissingField),
		errors.Is(err, orchestrator.ErrMissingNonce),
		errors.Is(err, orchestrator.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})

	case errors.As(err, &declined):
		return c.Status(fiber.StatusBadRequest).JSON(dto.GatewayFailureResponse{
			Success: false,
			Message: declined.Message,
			Errors:  declined.Errors,
		})

	case errors.As(err, &workErr):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.WorkUpdateFailureResponse{
			Success:         false,
			Message:         dto.MessageWorkUpdateFailed,
			PaymentCaptured: true,
			TransactionID:   workErr.TransactionID,
			WorkID:          workErr.WorkID,
			Error:           workErr.Err.Error(),
		})
	}

	log.Error().Err(err).Msg("payment failed with internal error")
	details := err.Error()
	if errors.Is(err, processor.ErrServiceUnavailable) {
		details = dto.MessageGatewayUnavailable + ": " + details
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error:   dto.MessageInternalError,
		Details: details,
	})
}

func (h *Handlers) HandleMethodNotAllowed(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, fiber.MethodPost)
	return c.Status(fiber.StatusMethodNotAllowed).SendString(dto.MessageMethodNotAllowed)
}

func (h *Handlers) HandleGetHealth(c *fiber.Ctx) error {
	res := dto.HealthResponse{Status: "ok", Dependencies: map[string]string{}}
	if h.health == nil {
		return c.JSON(res)
	}
	for name, status := range h.health.Snapshot() {
		if status.Healthy {
			res.Dependencies[name] = "up"
		} else {
			res.Dependencies[name] = "down: " + status.Error
		}
	}
	if !h.health.Healthy() {
		res.Status = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(res)
	}
	return c.JSON(res)
}

func (h *Handlers) HandleGetReconciliation(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultReconciliationLimit)
	entries, err := h.ledger.List(c.UserContext(), int64(limit))
	if err != nil {
		log := h.requestLogger(c)
		log.Error().Err(err).Msg("failed to list reconciliation entries")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   dto.MessageInternalError,
			Details: err.Error(),
		})
	}
	if entries == nil {
		entries = []models.ReconciliationEntry{}
	}
	return c.JSON(dto.ReconciliationResponse{Count: len(entries), Entries: entries})
}
