package guestcart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

const keyPrefix = "guestcart:"

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis returns a Repository backed by a single JSON value per guest.
// The TTL bounds how long an abandoned guest cart survives; it is refreshed
// on every write.
func NewRedis(client *redis.Client, ttl time.Duration, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisRepo{client: client, ttl: ttl, logger: logger}
}

func (r *redisRepo) Get(ctx context.Context, ownerID string) ([]domain.LineItem, error) {
	raw, err := r.client.Get(ctx, keyPrefix+ownerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.LineItem{}, nil
		}
		r.logger.Error("guest cart repo: get", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, fmt.Errorf("get guest cart: %w", err)
	}

	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		r.logger.Error("guest cart repo: decode", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, fmt.Errorf("decode guest cart: %w", err)
	}
	return items, nil
}

func (r *redisRepo) Set(ctx context.Context, ownerID string, items []domain.LineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+ownerID, raw, r.ttl).Err(); err != nil {
		r.logger.Error("guest cart repo: set", zap.String("owner_id", ownerID), zap.Error(err))
		return fmt.Errorf("set guest cart: %w", err)
	}
	return nil
}

// updateRetries bounds how often a WATCH-guarded update is retried when a
// concurrent write invalidates the transaction.
const updateRetries = 5

func (r *redisRepo) Update(ctx context.Context, ownerID string, fn func(items []domain.LineItem) ([]domain.LineItem, error)) error {
	key := keyPrefix + ownerID
	for attempt := 0; attempt < updateRetries; attempt++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			var items []domain.LineItem
			raw, err := tx.Get(ctx, key).Bytes()
			switch {
			case errors.Is(err, redis.Nil):
			case err != nil:
				return fmt.Errorf("get guest cart: %w", err)
			default:
				if err := json.Unmarshal(raw, &items); err != nil {
					return fmt.Errorf("decode guest cart: %w", err)
				}
			}

			next, err := fn(items)
			if err != nil {
				return err
			}
			encoded, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("encode guest cart: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, r.ttl)
				return nil
			})
			return err
		}, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	r.logger.Error("guest cart repo: update contention", zap.String("owner_id", ownerID))
	return fmt.Errorf("update guest cart: too many conflicting writes")
}

func (r *redisRepo) Delete(ctx context.Context, ownerID string) error {
	if err := r.client.Del(ctx, keyPrefix+ownerID).Err(); err != nil {
		r.logger.Error("guest cart repo: delete", zap.String("owner_id", ownerID), zap.Error(err))
		return fmt.Errorf("delete guest cart: %w", err)
	}
	return nil
}
