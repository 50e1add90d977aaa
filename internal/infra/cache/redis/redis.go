package redisx

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EgorLis/task-manager/internal/domain"
)

// Обёртка над Redis: JSON-значения по строковым ключам, TTL в миллисекундах.
// Любой транспортный сбой оборачивается в domain.ErrCacheUnavailable —
// вызывающая сторона решает, деградировать ли к БД.

type Cache struct {
	rdb    *redis.Client
	logger *log.Logger
}

type Config struct {
	Addr     string
	DB       int
	Password string
}

var _ domain.Cache = (*Cache)(nil)

func New(cfg Config, logger *log.Logger) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return &Cache{rdb: rdb, logger: logger}
}

func (c *Cache) Ping(ctx context.Context) error {
	err := c.rdb.Ping(ctx).Err()
	if err != nil {
		c.logger.Printf("PING failed: %v", err)
		return unavailable(err)
	}
	c.logger.Println("PING ok")
	return nil
}

func (c *Cache) Close() {
	if c.rdb == nil {
		c.logger.Println("nothing to close")
		return
	}

	if err := c.rdb.Close(); err != nil {
		c.logger.Printf("error while closing: %v", err)
		return
	}

	c.logger.Println("closed")
}

// Get возвращает (nil, nil) на промахе — отсутствие ключа не ошибка.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Printf("GET %q: miss", key)
		return nil, nil
	}
	if err != nil {
		c.logger.Printf("GET %q: error: %v", key, err)
		return nil, unavailable(err)
	}
	c.logger.Printf("GET %q: hit (%d bytes)", key, len(b))
	return b, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttlMs int) error {
	var ttl time.Duration
	if ttlMs > 0 {
		ttl = time.Duration(ttlMs) * time.Millisecond
	}
	if err := c.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		c.logger.Printf("SET %q failed: %v", key, err)
		return unavailable(err)
	}
	c.logger.Printf("SET %q ok (ttl=%s)", key, ttl)
	return nil
}

// Del идемпотентен: удаление отсутствующего ключа — не ошибка.
func (c *Cache) Del(ctx context.Context, keys ...string) error {
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Printf("DEL %v failed: %v", keys, err)
		return unavailable(err)
	}
	c.logger.Printf("DEL %v: deleted=%d", keys, n)
	return nil
}

// DelPattern собирает ключи по glob-паттерну через SCAN и удаляет их
// одним DEL. Ноль совпадений — no-op.
func (c *Cache) DelPattern(ctx context.Context, pattern string) error {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Printf("SCAN %q failed: %v", pattern, err)
		return unavailable(err)
	}
	if len(keys) == 0 {
		c.logger.Printf("DEL pattern %q: no keys", pattern)
		return nil
	}
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Printf("DEL pattern %q failed: %v", pattern, err)
		return unavailable(err)
	}
	c.logger.Printf("DEL pattern %q: deleted=%d", pattern, n)
	return nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		c.logger.Printf("EXISTS %q failed: %v", key, err)
		return false, unavailable(err)
	}
	return n == 1, nil
}

// SetNX устанавливает значение только если ключ ещё не существует.
func (c *Cache) SetNX(ctx context.Context, key string, val []byte, ttlMs int) (bool, error) {
	var ttl time.Duration
	if ttlMs > 0 {
		ttl = time.Duration(ttlMs) * time.Millisecond
	}
	ok, err := c.rdb.SetNX(ctx, key, val, ttl).Result()
	if err != nil {
		c.logger.Printf("SETNX %q failed: %v", key, err)
		return false, unavailable(err)
	}
	if ok {
		c.logger.Printf("SETNX %q ok (ttl=%s)", key, ttl)
	} else {
		c.logger.Printf("SETNX %q skipped (already exists)", key)
	}
	return ok, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
}
