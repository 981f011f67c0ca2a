package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Provider отдаёт справочники, загруженные не чаще одного раза за период кэша.
type Provider interface {
	Tables(ctx context.Context) (*Tables, error)
}

// MemoryCache — кэш в процессе.
type MemoryCache struct {
	load LoadFunc
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	cached  *Tables
	expires time.Time
}

func NewMemoryCache(load LoadFunc, ttl time.Duration) *MemoryCache {
	return &MemoryCache{load: load, ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Tables(ctx context.Context) (*Tables, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.now().Before(c.expires) {
		return c.cached, nil
	}
	t, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.cached = t
	c.expires = c.now().Add(c.ttl)
	return t, nil
}

// RedisCache — общий кэш для нескольких инстансов сервиса.
type RedisCache struct {
	rdb    redis.UniversalClient
	load   LoadFunc
	ttl    time.Duration
	key    string
	logger zerolog.Logger

	// при недоступном redis справочники держатся в процессе
	local *MemoryCache
}

const redisKey = "invoice-recon:lookup-tables"

func NewRedisCache(rdb redis.UniversalClient, load LoadFunc, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	return &RedisCache{
		rdb:    rdb,
		load:   load,
		ttl:    ttl,
		key:    redisKey,
		logger: logger,
		local:  NewMemoryCache(load, ttl),
	}
}

func (c *RedisCache) Tables(ctx context.Context) (*Tables, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var t Tables
		uerr := json.Unmarshal(raw, &t)
		if uerr == nil {
			return &t, nil
		}
		c.logger.Warn().Err(uerr).Msg("lookup cache: corrupt entry, reloading")
	case errors.Is(err, redis.Nil):
		// промах
	default:
		c.logger.Warn().Err(err).Msg("lookup cache: redis get, using local copy")
		return c.local.Tables(ctx)
	}

	t, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal lookup tables: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key, b, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("lookup cache: redis set")
	}
	return t, nil
}
