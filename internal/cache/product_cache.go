package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/craftbay/marketplace-api/internal/config"
	"github.com/craftbay/marketplace-api/internal/logging"
	"github.com/craftbay/marketplace-api/internal/models"
)

const (
	productKeyPrefix = "product:"
	defaultCacheTTL  = 5 * time.Minute
)

// RedisProductCache is a read-through cache for product lookups. The store
// stays authoritative; a miss or error always falls back to the store.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisProductCache connects a product cache to Redis.
func NewRedisProductCache(cfg config.RedisConfig) *RedisProductCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisProductCache{
		client: client,
		ttl:    ttl,
		logger: logging.New("product-cache"),
	}
}

// Get returns the cached product, or nil on a miss.
func (c *RedisProductCache) Get(ctx context.Context, id string) (*models.Product, error) {
	data, err := c.client.Get(ctx, productKeyPrefix+id).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss", "product_id", id)
		return nil, nil
	}
	if err != nil {
		c.logger.Error("cache get error", "product_id", id, "error", err.Error())
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}

	c.logger.Debug("cache hit", "product_id", id)
	return &product, nil
}

// Set stores a product for the configured TTL.
func (c *RedisProductCache) Set(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, productKeyPrefix+product.ID, data, c.ttl).Err(); err != nil {
		c.logger.Error("cache set error", "product_id", product.ID, "error", err.Error())
		return err
	}
	return nil
}

// Delete evicts a product after a mutation.
func (c *RedisProductCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, productKeyPrefix+id).Err(); err != nil {
		c.logger.Error("cache delete error", "product_id", id, "error", err.Error())
		return err
	}
	return nil
}

// Close releases the Redis connection.
func (c *RedisProductCache) Close() error {
	return c.client.Close()
}
