// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"shop_backend/internal/feature/product/domain/entity"
	"shop_backend/internal/feature/product/usecase"
)

// DefaultTTL is used when no positive TTL is configured.
const DefaultTTL = 5 * time.Minute

// CachingProductRepository decorates a ProductRepository with Redis caching.
// Reads by id and the full listing are cached under the namespace's current
// generation. Every write bumps the generation before returning, so the next
// read misses and a value fetched before the write can never be served again.
type CachingProductRepository struct {
	inner     usecase.ProductRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ProductRepository = (*CachingProductRepository)(nil)

// NewCachingProductRepository decorates a ProductRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "products".
func NewCachingProductRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ProductRepository, namespace string) *CachingProductRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "products"
	}
	return &CachingProductRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create stores the product and invalidates the cache.
func (c *CachingProductRepository) Create(ctx context.Context, p *entity.Product) error {
	if err := c.inner.Create(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// FindByID retrieves a product, checking cache first then falling back to the database.
// Misses of the underlying repository are not cached.
func (c *CachingProductRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	gen, ok := c.generation(ctx)
	if !ok {
		return c.inner.FindByID(ctx, id)
	}

	key := c.idKey(gen, id)
	var cached entity.Product
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, p)
	return p, nil
}

// List retrieves all products, checking cache first then falling back to the database.
func (c *CachingProductRepository) List(ctx context.Context) ([]entity.Product, error) {
	gen, ok := c.generation(ctx)
	if !ok {
		return c.inner.List(ctx)
	}

	key := c.listKey(gen)
	var cached []entity.Product
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	ps, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, ps)
	return ps, nil
}

// Update applies the patch and invalidates the cache.
func (c *CachingProductRepository) Update(ctx context.Context, id string, patch entity.ProductPatch) (*entity.Product, error) {
	p, err := c.inner.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return p, nil
}

// Delete removes the product and invalidates the cache.
func (c *CachingProductRepository) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// generation returns the namespace's current cache generation.
// ok is false when Redis is not configured or unreachable; callers then bypass the cache.
func (c *CachingProductRepository) generation(ctx context.Context) (string, bool) {
	if c.rdb == nil {
		return "", false
	}
	gen, err := c.rdb.Get(ctx, c.genKey()).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "0", true
	case err != nil:
		slog.Warn("product cache generation read failed", "error", err)
		return "", false
	}
	return gen, true
}

// get decodes the cached value at key into dst and reports whether it was a hit.
func (c *CachingProductRepository) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// set stores v at key (best effort).
func (c *CachingProductRepository) set(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		slog.Warn("product cache write failed", "key", key, "error", err)
	}
}

// invalidate moves the namespace to a new generation. Entries of older
// generations are left to expire with their TTL.
func (c *CachingProductRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, c.genKey()).Err(); err != nil {
		slog.Warn("product cache invalidation failed", "key", c.genKey(), "error", err)
	}
}

// genKey is the counter holding the namespace's current generation.
func (c *CachingProductRepository) genKey() string {
	return c.namespace + ":gen"
}

// idKey generates the cache key for a single product.
func (c *CachingProductRepository) idKey(gen, id string) string {
	return c.namespace + ":g" + gen + ":id:" + safe(id)
}

// listKey generates the cache key for the full listing.
func (c *CachingProductRepository) listKey(gen string) string {
	return c.namespace + ":g" + gen + ":list"
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
