package processor

import (
	"errors"
	"strings"
)

var (
	// ErrServiceUnavailable marks failures where the gateway could not be reached
	// or answered with something other than a transaction verdict.
	ErrServiceUnavailable = errors.New("payment gateway is unavailable")
	// ErrPaymentDeclined marks a definitive rejection of the sale.
	ErrPaymentDeclined = errors.New("payment declined by gateway")
	// ErrInvalidSaleAmount is returned before contacting the gateway when the
	// amount cannot be expressed as cents.
	ErrInvalidSaleAmount = errors.New("sale amount cannot be sent to the gateway")
)

type FieldError struct {
	Field   string `json:"attribute"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DeclinedError carries the gateway's verdict for a rejected sale.
type DeclinedError struct {
	Message string
	Errors  []FieldError
}

func (e *DeclinedError) Error() string {
	if e.Message == "" {
		return ErrPaymentDeclined.Error()
	}
	var b strings.Builder
	b.WriteString(ErrPaymentDeclined.Error())
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *DeclinedError) Is(target error) bool {
	return target == ErrPaymentDeclined
}
