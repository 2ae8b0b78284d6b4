package db

// ReceiptRecord is the normalized structure persisted per payment callback,
// keyed by receipt:<CheckoutRequestID>. Failure-shaped records (ResultCode != 0)
// carry no metadata fields.
//
// Amount, TransactionDate and PhoneNumber hold json.Number values so that the
// provider's numeric literals survive a round trip without precision loss.
type ReceiptRecord struct {
	MerchantRequestID  string `json:"MerchantRequestID"`
	CheckoutRequestID  string `json:"CheckoutRequestID"`
	ResultCode         int    `json:"ResultCode"`
	ResultDesc         string `json:"ResultDesc"`
	Amount             any    `json:"Amount,omitempty"`
	MpesaReceiptNumber string `json:"MpesaReceiptNumber,omitempty"`
	TransactionDate    any    `json:"TransactionDate,omitempty"`
	PhoneNumber        any    `json:"PhoneNumber,omitempty"`
}
