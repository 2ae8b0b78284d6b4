package receipt

import (
	"context"
	"log/slog"

	"github.com/VictoriaMetrics/metrics"

	"github.com/henriod/featherweight-mpesaCallback/internal/db"
	"github.com/henriod/featherweight-mpesaCallback/internal/payload"
)

// Metadata item names carried in a success-shaped callback.
const (
	metadataAmount          = "Amount"
	metadataReceiptNumber   = "MpesaReceiptNumber"
	metadataTransactionDate = "TransactionDate"
	metadataPhoneNumber     = "PhoneNumber"
)

var (
	webhookSuccessCounter         = metrics.GetOrCreateCounter(`receipt_webhook_total{result="success"}`)
	webhookUpstreamFailureCounter = metrics.GetOrCreateCounter(`receipt_webhook_total{result="upstream_failure"}`)
	webhookInvalidPayloadCounter  = metrics.GetOrCreateCounter(`receipt_webhook_total{result="invalid_payload"}`)
	webhookStoreErrorCounter      = metrics.GetOrCreateCounter(`receipt_webhook_total{result="store_error"}`)
)

// Store persists receipt records keyed by checkout request id.
type Store interface {
	Save(ctx context.Context, checkoutRequestID string, record db.ReceiptRecord) error
}

type Processor struct {
	store  Store
	logger *slog.Logger
}

func NewProcessor(store Store, logger *slog.Logger) *Processor {
	return &Processor{store: store, logger: logger}
}

// Process validates the callback envelope, persists exactly one receipt
// record and returns the confirmation for the provider.
//
// A non-zero result code still persists a (failure-shaped) record, then
// returns an UpstreamFailureError so the HTTP layer answers 400 with the
// provider's description.
func (p *Processor) Process(ctx context.Context, envelope *payload.CallbackEnvelope) (*payload.PaymentConfirmation, error) {
	callback, err := envelope.Callback()
	if err != nil {
		webhookInvalidPayloadCounter.Inc()
		return nil, err
	}

	record := db.ReceiptRecord{
		MerchantRequestID: *callback.MerchantRequestID,
		CheckoutRequestID: *callback.CheckoutRequestID,
		ResultCode:        *callback.ResultCode,
		ResultDesc:        *callback.ResultDesc,
	}

	if record.ResultCode != 0 {
		if err := p.store.Save(ctx, record.CheckoutRequestID, record); err != nil {
			p.logger.ErrorContext(ctx, "Error storing failure receipt", "checkoutRequestId", record.CheckoutRequestID, "error", err)
			webhookStoreErrorCounter.Inc()
			return nil, err
		}

		p.logger.WarnContext(ctx, "Payment provider reported failure",
			"checkoutRequestId", record.CheckoutRequestID,
			"resultCode", record.ResultCode,
			"resultDesc", record.ResultDesc,
		)
		webhookUpstreamFailureCounter.Inc()
		return nil, &payload.UpstreamFailureError{Desc: record.ResultDesc}
	}

	if record.Amount, err = callback.MetadataValue(metadataAmount); err != nil {
		webhookInvalidPayloadCounter.Inc()
		return nil, err
	}
	if record.MpesaReceiptNumber, err = callback.MetadataString(metadataReceiptNumber); err != nil {
		webhookInvalidPayloadCounter.Inc()
		return nil, err
	}
	if record.TransactionDate, err = callback.MetadataValue(metadataTransactionDate); err != nil {
		webhookInvalidPayloadCounter.Inc()
		return nil, err
	}
	if record.PhoneNumber, err = callback.MetadataValue(metadataPhoneNumber); err != nil {
		webhookInvalidPayloadCounter.Inc()
		return nil, err
	}

	if err := p.store.Save(ctx, record.CheckoutRequestID, record); err != nil {
		p.logger.ErrorContext(ctx, "Error storing receipt", "checkoutRequestId", record.CheckoutRequestID, "error", err)
		webhookStoreErrorCounter.Inc()
		return nil, err
	}

	p.logger.InfoContext(ctx, "Successfully stored receipt",
		"checkoutRequestId", record.CheckoutRequestID,
		"receiptId", record.MpesaReceiptNumber,
	)
	webhookSuccessCounter.Inc()

	return &payload.PaymentConfirmation{
		ReceiptID: record.MpesaReceiptNumber,
		Success:   record.ResultCode == 0,
		Errors:    record.ResultDesc,
	}, nil
}
