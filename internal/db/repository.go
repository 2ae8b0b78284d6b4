package db

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const receiptKeyPrefix = "receipt:"

// ErrReceiptNotFound is returned by Get when no record exists for the id.
var ErrReceiptNotFound = errors.New("receipt not found")

type ReceiptRepository struct {
	client *redis.Client
}

func NewReceiptRepository(client *redis.Client) *ReceiptRepository {
	return &ReceiptRepository{client: client}
}

// Save writes the record under receipt:<CheckoutRequestID>, overwriting any
// prior record with the same key. No TTL: lifetime is delegated to the store.
func (r *ReceiptRepository) Save(ctx context.Context, checkoutRequestID string, record ReceiptRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshalling receipt record")
	}

	if err := r.client.Set(ctx, receiptKeyPrefix+checkoutRequestID, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "storing receipt %s", checkoutRequestID)
	}
	return nil
}

// Get reads the record stored under receipt:<CheckoutRequestID>.
func (r *ReceiptRepository) Get(ctx context.Context, checkoutRequestID string) (*ReceiptRecord, error) {
	value, err := r.client.Get(ctx, receiptKeyPrefix+checkoutRequestID).Result()
	if err == redis.Nil {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "fetching receipt %s", checkoutRequestID)
	}

	var record ReceiptRecord
	decoder := json.NewDecoder(bytes.NewReader([]byte(value)))
	decoder.UseNumber()
	if err := decoder.Decode(&record); err != nil {
		return nil, errors.Wrapf(err, "decoding receipt %s", checkoutRequestID)
	}
	return &record, nil
}
