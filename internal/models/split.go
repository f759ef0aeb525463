package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	maxAmountExponent = 12
	minAmountExponent = -12
)

var (
	appFeeRate = decimal.RequireFromString("0.10")
	maxAmount  = decimal.RequireFromString("1000000000.00")

	ErrInvalidAmount = errors.New("amount is not a valid number")
)

// PaymentSplit divides a charge between the app and the technician.
// AppFee + TechnicianPayout == Total always holds: the fee is rounded to cents
// and the payout takes the remainder.
type PaymentSplit struct {
	Total            decimal.Decimal
	AppFee           decimal.Decimal
	TechnicianPayout decimal.Decimal
}

// NewPaymentSplit expects a total that went through ParseAmount.
func NewPaymentSplit(total decimal.Decimal) PaymentSplit {
	fee := total.Mul(appFeeRate).Round(2)
	return PaymentSplit{
		Total:            total,
		AppFee:           fee,
		TechnicianPayout: total.Sub(fee),
	}
}

// ParseAmount accepts a decimal with at most two fractional digits and an
// absolute value no larger than maxAmount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	// Bound the exponent before any arithmetic rescales the coefficient.
	if exp := amount.Exponent(); exp > maxAmountExponent || exp < minAmountExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.Abs().GreaterThan(maxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(2)) {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}
