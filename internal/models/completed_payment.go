package models

import "time"

type OutcomeStatus string

const (
	OutcomeApplied OutcomeStatus = "applied"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome reports what happened to a best-effort write after the charge.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

func Applied() Outcome {
	return Outcome{Status: OutcomeApplied}
}

func Skipped(reason string) Outcome {
	return Outcome{Status: OutcomeSkipped, Reason: reason}
}

func Failed(err error) Outcome {
	return Outcome{Status: OutcomeFailed, Reason: err.Error()}
}

type CompletedPayment struct {
	TransactionID string
	PaymentMethod string
	PaymentStatus string
	CardType      string
	WorkID        string
	Split         PaymentSplit
	ProcessedAt   time.Time
	Quotation     Outcome
	ChatMessage   Outcome
}
