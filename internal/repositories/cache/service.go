package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nimwema/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Order caching
func (s *CacheService) CacheOrder(ctx context.Context, order *models.Order) error {
	if order == nil {
		return errors.New("cannot cache nil order")
	}
	return s.Set(ctx, s.GenerateKey("order", "id", order.ID), order)
}

func (s *CacheService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	found, err := s.Get(ctx, s.GenerateKey("order", "id", orderID), &order)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("order not found in cache")
	}
	return &order, nil
}

func (s *CacheService) InvalidateOrder(ctx context.Context, orderID string) error {
	return s.Delete(ctx, s.GenerateKey("order", "id", orderID))
}

// Voucher caching. Entries are short-lived: the validate endpoint is a
// pre-flight check and must not serve a long-stale status.
func (s *CacheService) CacheVoucher(ctx context.Context, v *models.Voucher) error {
	if v == nil {
		return errors.New("cannot cache nil voucher")
	}
	return s.SetWithTTL(ctx, s.GenerateKey("voucher", "code", v.Code), v, time.Minute)
}

func (s *CacheService) GetVoucher(ctx context.Context, code string) (*models.Voucher, error) {
	var v models.Voucher
	found, err := s.Get(ctx, s.GenerateKey("voucher", "code", code), &v)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("voucher not found in cache")
	}
	return &v, nil
}

func (s *CacheService) InvalidateVoucher(ctx context.Context, code string) error {
	return s.Delete(ctx, s.GenerateKey("voucher", "code", code))
}

// FlushAll flushes all keys from the cache
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
