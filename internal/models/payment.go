package models

import (
	"bytes"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	PaymentMethodBraintree = "braintree"
	PaymentStatusCompleted = "completed"
	WorkStatusInProgress   = "in_progress"
	WorkStatusReadyToStart = "ready_to_start"
	QuotationStatusAccept  = "accepted"
	ChatMessageTypeSystem  = "system"
)

// FlexString holds a JSON value sent either as a string or as a bare number.
// Client apps are inconsistent about quoting identifiers and amounts.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n jsoniter.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		// A numeric zero counts as absent, the same as an empty string.
		if v, err := n.Float64(); err == nil && v == 0 {
			*f = ""
			return nil
		}
		*f = FlexString(n.String())
	default:
		return fmt.Errorf("expected string or number, got %s", data)
	}
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

type PaymentRequest struct {
	Nonce        FlexString `json:"nonce"`
	Amount       FlexString `json:"amount"`
	WorkID       FlexString `json:"workId"`
	DeviceData   FlexString `json:"deviceData,omitempty"`
	QuotationID  FlexString `json:"quotationId,omitempty"`
	TechnicianID FlexString `json:"technicianId"`
}

func NewPaymentRequest(nonce, amount, workID, technicianID string) *PaymentRequest {
	return &PaymentRequest{
		Nonce:        FlexString(nonce),
		Amount:       FlexString(amount),
		WorkID:       FlexString(workID),
		TechnicianID: FlexString(technicianID),
	}
}

func (p *PaymentRequest) WithQuotation(quotationID string) *PaymentRequest {
	p.QuotationID = FlexString(quotationID)
	return p
}

func (p *PaymentRequest) WithDeviceData(deviceData string) *PaymentRequest {
	p.DeviceData = FlexString(deviceData)
	return p
}

// PaymentMetadata is stored as JSON on the work record.
type PaymentMetadata struct {
	TransactionID    string    `json:"transaction_id"`
	CardType         string    `json:"card_type"`
	AppFee           string    `json:"app_fee"`
	TechnicianAmount string    `json:"technician_amount"`
	Timestamp        time.Time `json:"timestamp"`
}

type WorkPaymentUpdate struct {
	PaymentMethod    string
	PaymentAmount    decimal.Decimal
	AppFee           decimal.Decimal
	TechnicianPayout decimal.Decimal
	PaymentReference string
	PaymentStatus    string
	PaymentMetadata  PaymentMetadata
	Status           string
	PaidAt           time.Time
}

func NewWorkPaymentUpdate(transactionID, cardType string, split PaymentSplit, paidAt time.Time) *WorkPaymentUpdate {
	paidAt = paidAt.UTC()
	return &WorkPaymentUpdate{
		PaymentMethod:    PaymentMethodBraintree,
		PaymentAmount:    split.Total,
		AppFee:           split.AppFee,
		TechnicianPayout: split.TechnicianPayout,
		PaymentReference: transactionID,
		PaymentStatus:    PaymentStatusCompleted,
		PaymentMetadata: PaymentMetadata{
			TransactionID:    transactionID,
			CardType:         cardType,
			AppFee:           split.AppFee.StringFixed(2),
			TechnicianAmount: split.TechnicianPayout.StringFixed(2),
			Timestamp:        paidAt,
		},
		Status: WorkStatusInProgress,
		PaidAt: paidAt,
	}
}

func (w *WorkPaymentUpdate) Fields() map[string]any {
	return map[string]any{
		"payment_method":    w.PaymentMethod,
		"payment_amount":    w.PaymentAmount,
		"app_fee":           w.AppFee,
		"technician_payout": w.TechnicianPayout,
		"payment_reference": w.PaymentReference,
		"payment_status":    w.PaymentStatus,
		"payment_metadata":  w.PaymentMetadata,
		"status":            w.Status,
		"paid_at":           w.PaidAt,
	}
}

type ChatMessage struct {
	WorkID      string
	SenderID    string
	MessageText string
	MessageType string
	IsRead      bool
}

func NewPaymentConfirmedMessage(workID, senderID string, total decimal.Decimal) *ChatMessage {
	return &ChatMessage{
		WorkID:      workID,
		SenderID:    senderID,
		MessageText: fmt.Sprintf("✅ Payment confirmed. Total amount: $%s. The work has started.", total.StringFixed(2)),
		MessageType: ChatMessageTypeSystem,
		IsRead:      false,
	}
}

func (c *ChatMessage) Fields() map[string]any {
	return map[string]any{
		"work_id":      c.WorkID,
		"sender_id":    c.SenderID,
		"message_text": c.MessageText,
		"message_type": c.MessageType,
		"is_read":      c.IsRead,
	}
}

// ReconciliationEntry records a charge the gateway accepted but the work record
// never reflected. Entries are resolved by an operator.
type ReconciliationEntry struct {
	TransactionID string    `json:"transactionId"`
	WorkID        string    `json:"workId"`
	TechnicianID  string    `json:"technicianId"`
	QuotationID   string    `json:"quotationId,omitempty"`
	Amount        string    `json:"amount"`
	Reason        string    `json:"reason"`
	RecordedAt    time.Time `json:"recordedAt"`
}
