// Package rdx holds the redis connection shared by the dashboard caches.
package rdx

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

// Init connects to addr. An empty addr leaves Conn nil and caching off.
func Init(ctx context.Context, addr, password string) error {
	if addr == "" {
		log.Println("[rdx] REDIS_URL not set; catalog cache is in-process only")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return err
	}
	Conn = client
	log.Println("[rdx] connected to", addr)
	return nil
}

func Close() error {
	if Conn == nil {
		return nil
	}
	return Conn.Close()
}

// Cache adapts a redis client to byte get/set/delete with expiry.
type Cache struct {
	Client *redis.Client
}

// Get reports ok=false on a miss.
func (c Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.Client.Set(ctx, key, val, ttl).Err()
}

func (c Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}
