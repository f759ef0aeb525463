package orchestrator

import (
	"errors"
	"fmt"

	"github.com/diogomassis/fixgo-payments/internal/models"
)

var (
	ErrMissingField     = errors.New("missing required fields: amount, workId or technicianId")
	ErrMissingNonce     = errors.New("payment nonce is required")
	ErrInvalidAmount    = models.ErrInvalidAmount
	ErrWorkUpdateFailed = errors.New("payment processed but work record update failed")
)

// WorkUpdateError is returned when the charge went through but the work record
// could not be written. The caller must surface the transaction for manual
// reconciliation.
type WorkUpdateError struct {
	TransactionID string
	WorkID        string
	Err           error
}

func (e *WorkUpdateError) Error() string {
	return fmt.Sprintf("%s (transaction %s, work %s): %v", ErrWorkUpdateFailed, e.TransactionID, e.WorkID, e.Err)
}

func (e *WorkUpdateError) Unwrap() []error {
	return []error{ErrWorkUpdateFailed, e.Err}
}
