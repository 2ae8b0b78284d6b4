package payload_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henriod/featherweight-mpesaCallback/internal/payload"
)

const successEnvelope = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 0,
			"ResultDesc": "The service request is processed successfully.",
			"CallbackMetadata": {
				"Item": [
					{"Name": "Amount", "Value": 1.00},
					{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
					{"Name": "TransactionDate", "Value": 20191219102115},
					{"Name": "PhoneNumber", "Value": 254708374149}
				]
			}
		}
	}
}`

func TestDecodeEnvelope_Success(t *testing.T) {
	envelope, err := payload.DecodeEnvelopeBytes([]byte(successEnvelope))
	require.NoError(t, err)

	callback, err := envelope.Callback()
	require.NoError(t, err)

	assert.Equal(t, "29115-34620561-1", *callback.MerchantRequestID)
	assert.Equal(t, "ws_CO_191220191020363925", *callback.CheckoutRequestID)
	assert.Equal(t, 0, *callback.ResultCode)
	assert.Equal(t, "The service request is processed successfully.", *callback.ResultDesc)

	amount, err := callback.MetadataValue("Amount")
	require.NoError(t, err)
	assert.Equal(t, json.Number("1.00"), amount)

	receiptNumber, err := callback.MetadataString("MpesaReceiptNumber")
	require.NoError(t, err)
	assert.Equal(t, "NLJ7RT61SV", receiptNumber)

	transactionDate, err := callback.MetadataValue("TransactionDate")
	require.NoError(t, err)
	assert.Equal(t, json.Number("20191219102115"), transactionDate)

	phoneNumber, err := callback.MetadataValue("PhoneNumber")
	require.NoError(t, err)
	assert.Equal(t, json.Number("254708374149"), phoneNumber)
}

func TestCallback_MissingFields(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedField string
	}{
		{
			name:          "missing Body",
			body:          `{}`,
			expectedField: "Body",
		},
		{
			name:          "missing stkCallback",
			body:          `{"Body": {}}`,
			expectedField: "stkCallback",
		},
		{
			name:          "missing MerchantRequestID",
			body:          `{"Body": {"stkCallback": {"CheckoutRequestID": "x", "ResultCode": 0, "ResultDesc": "ok"}}}`,
			expectedField: "MerchantRequestID",
		},
		{
			name:          "missing CheckoutRequestID",
			body:          `{"Body": {"stkCallback": {"MerchantRequestID": "x", "ResultCode": 0, "ResultDesc": "ok"}}}`,
			expectedField: "CheckoutRequestID",
		},
		{
			name:          "missing ResultCode",
			body:          `{"Body": {"stkCallback": {"MerchantRequestID": "x", "CheckoutRequestID": "y", "ResultDesc": "ok"}}}`,
			expectedField: "ResultCode",
		},
		{
			name:          "missing ResultDesc",
			body:          `{"Body": {"stkCallback": {"MerchantRequestID": "x", "CheckoutRequestID": "y", "ResultCode": 0}}}`,
			expectedField: "ResultDesc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelope, err := payload.DecodeEnvelopeBytes([]byte(tt.body))
			require.NoError(t, err)

			_, err = envelope.Callback()
			require.Error(t, err)

			var missingField *payload.MissingFieldError
			require.ErrorAs(t, err, &missingField)
			assert.Equal(t, tt.expectedField, missingField.Field)
			assert.Equal(t, "Missing required field: "+tt.expectedField, err.Error())
		})
	}
}

func TestMetadataValue_FirstMatchWins(t *testing.T) {
	body := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "x",
				"CheckoutRequestID": "y",
				"ResultCode": 0,
				"ResultDesc": "ok",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 100},
						{"Name": "Amount", "Value": 999}
					]
				}
			}
		}
	}`

	envelope, err := payload.DecodeEnvelopeBytes([]byte(body))
	require.NoError(t, err)

	callback, err := envelope.Callback()
	require.NoError(t, err)

	amount, err := callback.MetadataValue("Amount")
	require.NoError(t, err)
	assert.Equal(t, json.Number("100"), amount)
}

func TestMetadataValue_MissingMetadata(t *testing.T) {
	body := `{"Body": {"stkCallback": {"MerchantRequestID": "x", "CheckoutRequestID": "y", "ResultCode": 0, "ResultDesc": "ok"}}}`

	envelope, err := payload.DecodeEnvelopeBytes([]byte(body))
	require.NoError(t, err)

	callback, err := envelope.Callback()
	require.NoError(t, err)

	_, err = callback.MetadataValue("Amount")

	var missingField *payload.MissingFieldError
	require.ErrorAs(t, err, &missingField)
	assert.Equal(t, "CallbackMetadata", missingField.Field)
}

func TestMetadataValue_MissingItemName(t *testing.T) {
	body := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "x",
				"CheckoutRequestID": "y",
				"ResultCode": 0,
				"ResultDesc": "ok",
				"CallbackMetadata": {"Item": [{"Name": "Amount", "Value": 100}]}
			}
		}
	}`

	envelope, err := payload.DecodeEnvelopeBytes([]byte(body))
	require.NoError(t, err)

	callback, err := envelope.Callback()
	require.NoError(t, err)

	_, err = callback.MetadataValue("MpesaReceiptNumber")

	var missingField *payload.MissingFieldError
	require.ErrorAs(t, err, &missingField)
	assert.Equal(t, "MpesaReceiptNumber", missingField.Field)
}

func TestMetadataString_CoercesNumbers(t *testing.T) {
	body := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "x",
				"CheckoutRequestID": "y",
				"ResultCode": 0,
				"ResultDesc": "ok",
				"CallbackMetadata": {"Item": [{"Name": "MpesaReceiptNumber", "Value": 12345}]}
			}
		}
	}`

	envelope, err := payload.DecodeEnvelopeBytes([]byte(body))
	require.NoError(t, err)

	callback, err := envelope.Callback()
	require.NoError(t, err)

	receiptNumber, err := callback.MetadataString("MpesaReceiptNumber")
	require.NoError(t, err)
	assert.Equal(t, "12345", receiptNumber)
}
