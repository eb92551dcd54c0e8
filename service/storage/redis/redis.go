package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	once sync.Once
	mgr  *Manager
)

type Manager struct {
	client *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// Init connects once and pings to fail fast on a bad address.
func Init(c Config) error {
	var initErr error
	once.Do(func() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Addr,
			Password: c.Password,
			DB:       c.DB,
			PoolSize: c.PoolSize,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := rdb.Ping(ctx).Err(); err != nil {
			initErr = err
			return
		}
		mgr = &Manager{client: rdb}
	})
	return initErr
}

// Client returns the shared client, nil when Init was never called or
// failed. Callers treat nil as "cache/presence disabled".
func Client() *redis.Client {
	if mgr == nil {
		return nil
	}
	return mgr.client
}

func Close() error {
	if mgr != nil && mgr.client != nil {
		return mgr.client.Close()
	}
	return nil
}
