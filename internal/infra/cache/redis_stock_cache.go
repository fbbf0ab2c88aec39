package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const stockKeyPrefix = "inventory:stock:"

type RedisStockCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStockCache(client *redis.Client, ttl time.Duration) *RedisStockCache {
	return &RedisStockCache{client: client, ttl: ttl}
}

func stockKey(skuCode string) string {
	return stockKeyPrefix + skuCode
}

// ヒットしたSKUだけ返す
func (c *RedisStockCache) GetMany(ctx context.Context, skuCodes []string) (map[string]int, error) {
	out := make(map[string]int, len(skuCodes))
	if len(skuCodes) == 0 {
		return out, nil
	}

	keys := make([]string, len(skuCodes))
	for i, sku := range skuCodes {
		keys[i] = stockKey(sku)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		qty, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		out[skuCodes[i]] = qty
	}
	return out, nil
}

func (c *RedisStockCache) SetMany(ctx context.Context, quantities map[string]int) error {
	if len(quantities) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for sku, qty := range quantities {
			p.Set(ctx, stockKey(sku), qty, c.ttl)
		}
		return nil
	})
	return err
}

func (c *RedisStockCache) Invalidate(ctx context.Context, skuCodes ...string) error {
	if len(skuCodes) == 0 {
		return nil
	}
	keys := make([]string, len(skuCodes))
	for i, sku := range skuCodes {
		keys[i] = stockKey(sku)
	}
	return c.client.Del(ctx, keys...).Err()
}

// REDIS_ADDR未設定のとき用（常にミス）
type NopStockCache struct{}

func (NopStockCache) GetMany(ctx context.Context, skuCodes []string) (map[string]int, error) {
	return map[string]int{}, nil
}

func (NopStockCache) SetMany(ctx context.Context, quantities map[string]int) error { return nil }

func (NopStockCache) Invalidate(ctx context.Context, skuCodes ...string) error { return nil }
