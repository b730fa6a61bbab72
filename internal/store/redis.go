package store

import (
	"context"
	"encoding/json"
	"fmt"

	"calcburst/internal/calculator"

	"github.com/redis/go-redis/v9"
)

// Redis stores each record as a JSON document under prefix+calculation_id,
// written with SETNX and expiring after the record's TTL.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(id string) string {
	return r.prefix + id
}

func (r *Redis) PutIfAbsent(ctx context.Context, rec calculator.Record) error {
	data, err := json.Marshal(newDocument(rec))
	if err != nil {
		return fmt.Errorf("redis marshal error: %w", err)
	}

	ttl := rec.ExpiresAt.Sub(rec.Timestamp)
	ok, err := r.client.SetNX(ctx, r.key(rec.CalculationID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx error: %w", err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}
