package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// CallbackEnvelope is the JSON body posted by the payment provider. Required
// fields are pointers so a missing key is distinguishable from a zero value.
type CallbackEnvelope struct {
	Body *CallbackBody `json:"Body"`
}

type CallbackBody struct {
	StkCallback *StkCallback `json:"stkCallback"`
}

type StkCallback struct {
	MerchantRequestID *string           `json:"MerchantRequestID"`
	CheckoutRequestID *string           `json:"CheckoutRequestID"`
	ResultCode        *int              `json:"ResultCode"`
	ResultDesc        *string           `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata"`
}

type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

// MetadataItem is one Name/Value pair of the ordered callback metadata
// sequence. Value stays any so numeric literals decode as json.Number.
type MetadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

// PaymentConfirmation is the response body returned to the provider on the
// success path.
type PaymentConfirmation struct {
	ReceiptID string `json:"receipt_id"`
	Success   bool   `json:"success"`
	Errors    string `json:"errors"`
}

// MissingFieldError reports a required field absent from the inbound envelope.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Missing required field: %s", e.Field)
}

// UpstreamFailureError reports that the provider signalled a non-zero result
// code. The record has already been persisted when this error is returned.
type UpstreamFailureError struct {
	Desc string
}

func (e *UpstreamFailureError) Error() string {
	return e.Desc
}

// DecodeEnvelope parses the raw webhook body, preserving numeric literals via
// json.Number.
func DecodeEnvelope(r io.Reader) (*CallbackEnvelope, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var envelope CallbackEnvelope
	if err := decoder.Decode(&envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// DecodeEnvelopeBytes is a convenience wrapper over DecodeEnvelope.
func DecodeEnvelopeBytes(data []byte) (*CallbackEnvelope, error) {
	return DecodeEnvelope(bytes.NewReader(data))
}

// Callback validates the required top-level fields and returns the inner
// callback structure.
func (e *CallbackEnvelope) Callback() (*StkCallback, error) {
	if e == nil || e.Body == nil {
		return nil, &MissingFieldError{Field: "Body"}
	}
	cb := e.Body.StkCallback
	if cb == nil {
		return nil, &MissingFieldError{Field: "stkCallback"}
	}

	switch {
	case cb.MerchantRequestID == nil:
		return nil, &MissingFieldError{Field: "MerchantRequestID"}
	case cb.CheckoutRequestID == nil:
		return nil, &MissingFieldError{Field: "CheckoutRequestID"}
	case cb.ResultCode == nil:
		return nil, &MissingFieldError{Field: "ResultCode"}
	case cb.ResultDesc == nil:
		return nil, &MissingFieldError{Field: "ResultDesc"}
	}

	return cb, nil
}

// MetadataValue returns the value of the first item in sequence order whose
// Name matches. Repeated names keep first-match semantics.
func (c *StkCallback) MetadataValue(name string) (any, error) {
	if c.CallbackMetadata == nil {
		return nil, &MissingFieldError{Field: "CallbackMetadata"}
	}
	for _, item := range c.CallbackMetadata.Item {
		if item.Name == name {
			return item.Value, nil
		}
	}
	return nil, &MissingFieldError{Field: name}
}

// MetadataString is MetadataValue coerced to a string, for values the
// provider documents as strings but occasionally sends as numbers.
func (c *StkCallback) MetadataString(name string) (string, error) {
	value, err := c.MetadataValue(name)
	if err != nil {
		return "", err
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}
