package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/braintree-go/braintree-go"
	"github.com/braintree-go/braintree-go/customfields"
	"github.com/shopspring/decimal"
)

const (
	CardTypePayPal  = "paypal"
	CardTypeUnknown = "unknown"
)

type SaleRequest struct {
	Amount       decimal.Decimal
	Nonce        string
	DeviceData   string
	CustomFields map[string]string
}

type SaleResult struct {
	TransactionID string
	CardType      string
}

// Gateway executes sale transactions that are submitted for settlement immediately.
type Gateway interface {
	GetName() string
	Sale(ctx context.Context, req *SaleRequest) (*SaleResult, error)
}

type transactionCreator interface {
	Create(ctx context.Context, tx *braintree.TransactionRequest) (*braintree.Transaction, error)
}

type BraintreeGateway struct {
	name         string
	transactions transactionCreator
}

func NewBraintreeGateway(environment, merchantID, publicKey, privateKey string) *BraintreeGateway {
	env := braintree.Sandbox
	if environment == "production" {
		env = braintree.Production
	}
	bt := braintree.New(env, merchantID, publicKey, privateKey)
	return &BraintreeGateway{
		name:         "braintree",
		transactions: bt.Transaction(),
	}
}

func (g *BraintreeGateway) GetName() string {
	return g.name
}

func (g *BraintreeGateway) Sale(ctx context.Context, req *SaleRequest) (*SaleResult, error) {
	amount := new(braintree.Decimal)
	if err := amount.UnmarshalText([]byte(req.Amount.StringFixed(2))); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSaleAmount, req.Amount, err)
	}
	txReq := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             amount,
		PaymentMethodNonce: req.Nonce,
		DeviceData:         req.DeviceData,
		CustomFields:       customfields.CustomFields(req.CustomFields),
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}

	tx, err := g.transactions.Create(ctx, txReq)
	if err != nil {
		var btErr *braintree.BraintreeError
		if errors.As(err, &btErr) {
			return nil, declinedFrom(btErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if tx == nil || tx.Id == "" {
		return nil, fmt.Errorf("%w: empty transaction in sale response", ErrServiceUnavailable)
	}

	return &SaleResult{
		TransactionID: tx.Id,
		CardType:      cardType(tx),
	}, nil
}

func declinedFrom(btErr *braintree.BraintreeError) *DeclinedError {
	declined := &DeclinedError{Message: btErr.Error()}
	for _, fe := range btErr.All() {
		declined.Errors = append(declined.Errors, FieldError{
			Field:   fe.Attribute,
			Code:    fe.Code,
			Message: fe.Message,
		})
	}
	return declined
}

func cardType(tx *braintree.Transaction) string {
	switch {
	case tx.CreditCard != nil && tx.CreditCard.CardType != "":
		return tx.CreditCard.CardType
	case tx.PayPalDetails != nil:
		return CardTypePayPal
	default:
		return CardTypeUnknown
	}
}
