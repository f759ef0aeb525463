package dto

import (
	"github.com/shopspring/decimal"

	"github.com/diogomassis/fixgo-payments/internal/models"
	"github.com/diogomassis/fixgo-payments/internal/services/processor"
)

const (
	MessagePaymentProcessed   = "payment processed successfully"
	MessageMethodNotAllowed   = "Method not allowed"
	MessageInternalError      = "internal server error"
	MessageWorkUpdateFailed   = "payment processed but work record update failed"
	MessageGatewayUnavailable = "payment gateway unavailable"
)

type SideEffects struct {
	Quotation   models.Outcome `json:"quotation"`
	ChatMessage models.Outcome `json:"chat_message"`
}

type PaymentResponse struct {
	Success          bool            `json:"success"`
	TransactionID    string          `json:"transaction_id"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentStatus    string          `json:"payment_status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AppFee           string          `json:"app_fee"`
	TechnicianPayout string          `json:"technician_payout"`
	Message          string          `json:"message"`
	WorkID           string          `json:"work_id"`
	Status           string          `json:"status"`
	SideEffects      SideEffects     `json:"side_effects"`
}

func NewPaymentResponse(p *models.CompletedPayment) PaymentResponse {
	return PaymentResponse{
		Success:          true,
		TransactionID:    p.TransactionID,
		PaymentMethod:    p.PaymentMethod,
		PaymentStatus:    p.PaymentStatus,
		TotalAmount:      p.Split.Total,
		AppFee:           p.Split.AppFee.StringFixed(2),
		TechnicianPayout: p.Split.TechnicianPayout.StringFixed(2),
		Message:          MessagePaymentProcessed,
		WorkID:           p.WorkID,
		Status:           models.WorkStatusReadyToStart,
		SideEffects: SideEffects{
			Quotation:   p.Quotation,
			ChatMessage: p.ChatMessage,
		},
	}
}

type GatewayFailureResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Errors  []processor.FieldError `json:"errors,omitempty"`
}

type WorkUpdateFailureResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	PaymentCaptured bool   `json:"payment_captured"`
	TransactionID   string `json:"transaction_id"`
	WorkID          string `json:"work_id"`
	Error           string `json:"error"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type ReconciliationResponse struct {
	Count   int                          `json:"count"`
	Entries []models.ReconciliationEntry `json:"entries"`
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}
