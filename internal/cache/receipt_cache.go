package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mrmailer/mrmailer/internal/model"
	"github.com/redis/go-redis/v9"
)

// ErrReceiptNotFound is returned when no receipt is cached for a message id
var ErrReceiptNotFound = errors.New("receipt not found")

// ReceiptCache maps transport message ids to stored records
type ReceiptCache interface {
	StoreReceipt(ctx context.Context, receipt model.Receipt) error
	Receipt(ctx context.Context, messageID string) (*model.Receipt, error)
}

// RedisReceiptCache keeps receipts in Redis with a fixed TTL
type RedisReceiptCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisReceiptCache creates a new RedisReceiptCache
func NewRedisReceiptCache(rdb redis.Cmdable, ttl time.Duration) *RedisReceiptCache {
	return &RedisReceiptCache{rdb: rdb, ttl: ttl}
}

func receiptKey(messageID string) string {
	return "receipt:" + messageID
}

// StoreReceipt writes the receipt, replacing any previous one for the same message id
func (c *RedisReceiptCache) StoreReceipt(ctx context.Context, receipt model.Receipt) error {
	if receipt.MessageID == "" {
		return errors.New("receipt has no message id")
	}
	receipt.SentAt = receipt.SentAt.UTC()

	b, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, receiptKey(receipt.MessageID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store receipt: %w", err)
	}
	return nil
}

// Receipt looks up the receipt for messageID
func (c *RedisReceiptCache) Receipt(ctx context.Context, messageID string) (*model.Receipt, error) {
	raw, err := c.rdb.Get(ctx, receiptKey(messageID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}

	var receipt model.Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("failed to decode receipt: %w", err)
	}
	return &receipt, nil
}
