package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogomassis/fixgo-payments/internal/models"
	"github.com/diogomassis/fixgo-payments/internal/persistence"
	"github.com/diogomassis/fixgo-payments/internal/services/cache"
	"github.com/diogomassis/fixgo-payments/internal/services/processor"
)

type Config struct {
	ChatSenderID              string
	AppMerchantAccount        string
	TechnicianMerchantAccount string
}

// PaymentOrchestrator charges the gateway and then applies the payment to the
// work record, the quotation and the work's chat. The three writes are
// independent; only the work record write can fail the request.
type PaymentOrchestrator struct {
	gateway processor.Gateway
	store   persistence.Datastore
	ledger  cache.Ledger
	cfg     Config
	logger  zerolog.Logger
	now     func() time.Time
}

func NewPaymentOrchestrator(gateway processor.Gateway, store persistence.Datastore, ledger cache.Ledger, cfg Config, logger zerolog.Logger) *PaymentOrchestrator {
	if ledger == nil {
		ledger = cache.NopLedger{}
	}
	return &PaymentOrchestrator{
		gateway: gateway,
		store:   store,
		ledger:  ledger,
		cfg:     cfg,
		logger:  logger.With().Str("component", "orchestrator").Logger(),
		now:     time.Now,
	}
}

func (o *PaymentOrchestrator) ExecutePayment(ctx context.Context, req models.PaymentRequest) (*models.CompletedPayment, error) {
	amountRaw := strings.TrimSpace(req.Amount.String())
	workID := strings.TrimSpace(req.WorkID.String())
	technicianID := strings.TrimSpace(req.TechnicianID.String())
	quotationID := strings.TrimSpace(req.QuotationID.String())
	nonce := strings.TrimSpace(req.Nonce.String())

	if amountRaw == "" || workID == "" || technicianID == "" {
		return nil, ErrMissingField
	}
	if nonce == "" {
		return nil, ErrMissingNonce
	}
	amount, err := models.ParseAmount(amountRaw)
	if err != nil {
		return nil, err
	}

	split := models.NewPaymentSplit(amount)
	log := o.logger.With().Str("work_id", workID).Str("technician_id", technicianID).Logger()
	log.Info().
		Str("total", split.Total.StringFixed(2)).
		Str("app_fee", split.AppFee.StringFixed(2)).
		Str("technician_payout", split.TechnicianPayout.StringFixed(2)).
		Msg("processing payment")

	sale, err := o.gateway.Sale(ctx, &processor.SaleRequest{
		Amount:     split.Total,
		Nonce:      nonce,
		DeviceData: req.DeviceData.String(),
		CustomFields: map[string]string{
			"work_id":       workID,
			"technician_id": technicianID,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("gateway", o.gateway.GetName()).Msg("sale failed")
		return nil, err
	}
	log = log.With().Str("transaction_id", sale.TransactionID).Logger()
	log.Info().Str("card_type", sale.CardType).Msg("sale settled")

	paidAt := o.now().UTC()
	update := models.NewWorkPaymentUpdate(sale.TransactionID, sale.CardType, split, paidAt)
	if err := o.store.Update(ctx, persistence.TableAcceptedWorks, persistence.ByID(workID), update.Fields()); err != nil {
		log.Error().Err(err).Msg("work record update failed after charge")
		o.recordForReconciliation(ctx, log, models.ReconciliationEntry{
			TransactionID: sale.TransactionID,
			WorkID:        workID,
			TechnicianID:  technicianID,
			QuotationID:   quotationID,
			Amount:        split.Total.StringFixed(2),
			Reason:        err.Error(),
			RecordedAt:    paidAt,
		})
		return nil, &WorkUpdateError{TransactionID: sale.TransactionID, WorkID: workID, Err: err}
	}
	log.Info().Msg("work record updated")

	completed := &models.CompletedPayment{
		TransactionID: sale.TransactionID,
		PaymentMethod: models.PaymentMethodBraintree,
		PaymentStatus: models.PaymentStatusCompleted,
		CardType:      sale.CardType,
		WorkID:        workID,
		Split:         split,
		ProcessedAt:   paidAt,
	}
	completed.Quotation = o.acceptQuotation(ctx, log, quotationID)
	completed.ChatMessage = o.announcePayment(ctx, log, workID, split)

	log.Info().
		Str("app_fee", split.AppFee.StringFixed(2)).
		Str("app_account", o.cfg.AppMerchantAccount).
		Str("technician_payout", split.TechnicianPayout.StringFixed(2)).
		Str("technician_account", o.cfg.TechnicianMerchantAccount).
		Msg("payment distribution")
	return completed, nil
}

func (o *PaymentOrchestrator) acceptQuotation(ctx context.Context, log zerolog.Logger, quotationID string) models.Outcome {
	if quotationID == "" {
		return models.Skipped("no quotation supplied")
	}
	fields := persistence.Fields{"status": models.QuotationStatusAccept}
	if err := o.store.Update(ctx, persistence.TableQuotations, persistence.ByID(quotationID), fields); err != nil {
		log.Warn().Err(err).Str("quotation_id", quotationID).Msg("failed to close quotation")
		return models.Failed(err)
	}
	log.Info().Str("quotation_id", quotationID).Msg("quotation closed")
	return models.Applied()
}

func (o *PaymentOrchestrator) announcePayment(ctx context.Context, log zerolog.Logger, workID string, split models.PaymentSplit) models.Outcome {
	msg := models.NewPaymentConfirmedMessage(workID, o.cfg.ChatSenderID, split.Total)
	if err := o.store.Insert(ctx, persistence.TableChatMessages, msg.Fields()); err != nil {
		log.Warn().Err(err).Msg("failed to create chat message")
		return models.Failed(err)
	}
	log.Info().Msg("chat message created")
	return models.Applied()
}

func (o *PaymentOrchestrator) recordForReconciliation(ctx context.Context, log zerolog.Logger, entry models.ReconciliationEntry) {
	// The request context may already be done; the entry must still land.
	ctx = context.WithoutCancel(ctx)
	if err := o.ledger.Record(ctx, entry); err != nil {
		log.Error().Err(err).Msg("failed to record payment for reconciliation")
	}
}
