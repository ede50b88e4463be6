package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

type RedisBalanceCache struct {
	client *redis.Client
}

func NewRedisBalanceCache(addr string, password string, db int) *RedisBalanceCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisBalanceCache{client: client}
}

func (c *RedisBalanceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisBalanceCache) Close() error {
	return c.client.Close()
}

func balanceKey(tenantID, customerID uuid.UUID) string {
	return "balance:" + tenantID.String() + ":" + customerID.String()
}

func (c *RedisBalanceCache) Get(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerBalance, bool, error) {
	val, err := c.client.Get(ctx, balanceKey(tenantID, customerID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var balance CustomerBalance
	if err := json.Unmarshal([]byte(val), &balance); err != nil {
		return nil, false, err
	}
	return &balance, true, nil
}

func (c *RedisBalanceCache) Set(ctx context.Context, tenantID uuid.UUID, balance *CustomerBalance, ttl time.Duration) error {
	if balance == nil {
		return nil
	}
	payload, err := json.Marshal(balance)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, balanceKey(tenantID, balance.CustomerID), payload, ttl).Err()
}

func (c *RedisBalanceCache) Invalidate(ctx context.Context, tenantID, customerID uuid.UUID) error {
	return c.client.Del(ctx, balanceKey(tenantID, customerID)).Err()
}
