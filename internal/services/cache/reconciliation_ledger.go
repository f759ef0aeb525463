package cache

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/diogomassis/fixgo-payments/internal/models"
)

const ReconciliationKey = "payments:reconciliation"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ledger keeps charges that still need a manual fix on the work record.
type Ledger interface {
	Record(ctx context.Context, entry models.ReconciliationEntry) error
	List(ctx context.Context, limit int64) ([]models.ReconciliationEntry, error)
}

type RedisLedger struct {
	client *redis.Client
	key    string
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{
		client: client,
		key:    ReconciliationKey,
	}
}

func (l *RedisLedger) Record(ctx context.Context, entry models.ReconciliationEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("[cache] failed to marshal reconciliation entry: %w", err)
	}
	if _, err := l.client.LPush(ctx, l.key, payload).Result(); err != nil {
		return fmt.Errorf("[cache] failed to record reconciliation entry: %w", err)
	}
	return nil
}

// List returns the newest entries first. A limit <= 0 returns everything.
func (l *RedisLedger) List(ctx context.Context, limit int64) ([]models.ReconciliationEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = limit - 1
	}
	items, err := l.client.LRange(ctx, l.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("[cache] failed to list reconciliation entries: %w", err)
	}

	entries := make([]models.ReconciliationEntry, 0, len(items))
	for _, item := range items {
		var entry models.ReconciliationEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("[cache] failed to unmarshal reconciliation entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// NopLedger is used when no Redis address is configured.
type NopLedger struct{}

func (NopLedger) Record(context.Context, models.ReconciliationEntry) error {
	return nil
}

func (NopLedger) List(context.Context, int64) ([]models.ReconciliationEntry, error) {
	return nil, nil
}
