package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
	"shortlink-go/constant"
	"shortlink-go/internal/model"
)

// LinkCache short_code -> Link 的读穿缓存。实现必须吞掉自身错误，缓存故障只降级为回源
type LinkCache interface {
	// Get 返回 (link, found, hit)。hit=false 表示未命中；hit=true 且 found=false 表示命中负缓存
	Get(ctx context.Context, code string) (link *model.Link, found bool, hit bool)
	Set(ctx context.Context, link *model.Link)
	SetMissing(ctx context.Context, code string)
	Invalidate(ctx context.Context, code string)
}

// NopLinkCache 未启用 Redis 时使用
type NopLinkCache struct{}

func (NopLinkCache) Get(context.Context, string) (*model.Link, bool, bool) {
	return nil, false, false
}

func (NopLinkCache) Set(context.Context, *model.Link) {}

func (NopLinkCache) SetMissing(context.Context, string) {}

func (NopLinkCache) Invalidate(context.Context, string) {}

// cachedLink 缓存中的结构，model.Link 的 json 会隐藏密码哈希，这里必须保留
type cachedLink struct {
	ID             string     `json:"id"`
	AccountID      string     `json:"accountId"`
	DestinationURL string     `json:"destinationUrl"`
	ShortCode      string     `json:"shortCode"`
	Title          *string    `json:"title,omitempty"`
	PasswordHash   *string    `json:"passwordHash,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toCached(l *model.Link) cachedLink {
	return cachedLink{
		ID:             l.ID,
		AccountID:      l.AccountID,
		DestinationURL: l.DestinationURL,
		ShortCode:      l.ShortCode,
		Title:          l.Title,
		PasswordHash:   l.PasswordHash,
		ExpiresAt:      l.ExpiresAt,
		IsActive:       l.IsActive,
		CreatedAt:      l.CreatedAt,
	}
}

func (c cachedLink) toModel() *model.Link {
	link := &model.Link{
		AccountID:      c.AccountID,
		DestinationURL: c.DestinationURL,
		ShortCode:      c.ShortCode,
		Title:          c.Title,
		PasswordHash:   c.PasswordHash,
		ExpiresAt:      c.ExpiresAt,
		IsActive:       c.IsActive,
	}
	link.ID = c.ID
	link.CreatedAt = c.CreatedAt
	return link
}

// RedisLinkCache 基于 redigo 的 LinkCache
type RedisLinkCache struct {
	pool        *redis.Pool
	ttl         time.Duration
	negativeTTL time.Duration
	logger      *zap.Logger
}

func NewRedisLinkCache(pool *redis.Pool, ttl, negativeTTL time.Duration, logger *zap.Logger) *RedisLinkCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if negativeTTL <= 0 {
		negativeTTL = 5 * time.Minute
	}
	return &RedisLinkCache{
		pool:        pool,
		ttl:         ttl,
		negativeTTL: negativeTTL,
		logger:      logger.Named("link_cache"),
	}
}

func (c *RedisLinkCache) Get(ctx context.Context, code string) (*model.Link, bool, bool) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		c.logger.Warn("Redis unavailable, skip cache", zap.Error(err))
		return nil, false, false
	}
	defer closeConn(conn, c.logger)

	cacheKey := constant.GetShortCodeKey(code)
	cachedValue, err := redis.Bytes(conn.Do("GET", cacheKey))
	if err != nil {
		if !errors.Is(err, redis.ErrNil) {
			c.logger.Warn("Error getting from Redis",
				zap.String("cache_key", cacheKey),
				zap.Error(err))
		}
		return nil, false, false
	}

	if string(cachedValue) == constant.MissingMarker {
		return nil, false, true
	}

	var cached cachedLink
	if err := json.Unmarshal(cachedValue, &cached); err != nil {
		c.logger.Warn("Failed to unmarshal cached value",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
		return nil, false, false
	}
	return cached.toModel(), true, true
}

func (c *RedisLinkCache) Set(ctx context.Context, link *model.Link) {
	value, err := json.Marshal(toCached(link))
	if err != nil {
		c.logger.Error("Failed to marshal link for cache", zap.String("link_id", link.ID), zap.Error(err))
		return
	}
	c.set(ctx, constant.GetShortCodeKey(link.ShortCode), value, c.ttl)
}

// SetMissing 缓存空值，防止缓存穿透
func (c *RedisLinkCache) SetMissing(ctx context.Context, code string) {
	c.set(ctx, constant.GetShortCodeKey(code), []byte(constant.MissingMarker), c.negativeTTL)
}

func (c *RedisLinkCache) Invalidate(ctx context.Context, code string) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		c.logger.Warn("Redis unavailable, skip invalidate", zap.String("short_code", code), zap.Error(err))
		return
	}
	defer closeConn(conn, c.logger)

	cacheKey := constant.GetShortCodeKey(code)
	if _, err := conn.Do("DEL", cacheKey); err != nil {
		c.logger.Warn("Redis 删除缓存失败",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	}
}

func (c *RedisLinkCache) set(ctx context.Context, cacheKey string, value []byte, ttl time.Duration) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		c.logger.Warn("Redis unavailable, skip cache set", zap.Error(err))
		return
	}
	defer closeConn(conn, c.logger)

	if _, err := conn.Do("SET", cacheKey, value, "PX", ttl.Milliseconds()); err != nil {
		c.logger.Error("设置缓存失败",
			zap.String("cache_key", cacheKey),
			zap.Error(err),
		)
	}
}
