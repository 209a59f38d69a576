package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"vitrine/internal/models"

	"github.com/redis/go-redis/v9"
)

// ProductsVersionKey counts product creations. The cached list is stored
// under a key derived from it, so a create retires every list loaded before it.
const ProductsVersionKey = "products:version"

// AllProductsCacheKey returns the key of the product list cached at version.
func AllProductsCacheKey(version int64) string {
	return "products:all:" + strconv.FormatInt(version, 10)
}

// ListCache is the small key/value surface the cached repository needs.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// RedisListCache implements ListCache on a Redis client.
type RedisListCache struct {
	client redis.Cmdable
}

// NewRedisListCache wraps client as a ListCache.
func NewRedisListCache(client redis.Cmdable) *RedisListCache {
	return &RedisListCache{client: client}
}

func (c *RedisListCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisListCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisListCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisListCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// CachedProductRepository serves GetAll from a read-through cache keyed by the
// products version, which Create bumps. Cache failures are logged and never
// fail the request.
type CachedProductRepository struct {
	next  ProductRepository
	cache ListCache
	ttl   time.Duration
}

// NewCachedProductRepository decorates next with cache.
func NewCachedProductRepository(next ProductRepository, cache ListCache, ttl time.Duration) *CachedProductRepository {
	return &CachedProductRepository{next: next, cache: cache, ttl: ttl}
}

// GetAll returns the cached list when present, otherwise loads and caches it.
// The version is read before loading: a create that lands during the load
// bumps it, so the list written here is never served after that create.
func (r *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	version, err := r.version(ctx)
	if err != nil {
		log.Printf("Product cache version read failed: %v", err)
		return r.next.GetAll(ctx)
	}
	key := AllProductsCacheKey(version)

	data, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		log.Printf("Product cache read failed: %v", err)
	}
	if ok {
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		log.Printf("Discarding undecodable product cache entry")
	}

	products, err := r.next.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err != nil {
		log.Printf("Failed to marshal products for cache: %v", err)
	} else if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		log.Printf("Product cache write failed: %v", err)
	}
	return products, nil
}

// Create persists product and retires the cached list by bumping the version.
func (r *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.next.Create(ctx, product); err != nil {
		return err
	}
	if _, err := r.cache.Incr(ctx, ProductsVersionKey); err != nil {
		log.Printf("Warning: failed to bump product cache version: %v", err)
		r.dropCurrent(ctx)
	}
	return nil
}

// dropCurrent deletes the list cached at the current version.
func (r *CachedProductRepository) dropCurrent(ctx context.Context) {
	version, err := r.version(ctx)
	if err != nil {
		log.Printf("Warning: failed to invalidate product cache: %v", err)
		return
	}
	if err := r.cache.Del(ctx, AllProductsCacheKey(version)); err != nil {
		log.Printf("Warning: failed to invalidate product cache: %v", err)
	}
}

func (r *CachedProductRepository) version(ctx context.Context) (int64, error) {
	data, ok, err := r.cache.Get(ctx, ProductsVersionKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(string(data), 10, 64)
}
