package storage

import (
	"context"
	"fmt"
	"time"

	"TDProject/logger"

	"github.com/redis/go-redis/v9"
)

const presenceTTL = 2 * time.Hour

// presence key: td:presence:<playerID>, value: connection id.
// Diagnostics only — the in-process registry stays authoritative, so
// slight inconsistency here is acceptable. With several devices on one
// player the last connect wins.
func presenceKey(playerID int64) string {
	return fmt.Sprintf("td:presence:%d", playerID)
}

// Presence mirrors connect/disconnect into redis, best-effort.
type Presence struct {
	rdb *redis.Client
}

func NewPresence(rdb *redis.Client) *Presence {
	return &Presence{rdb: rdb}
}

func (p *Presence) Online(ctx context.Context, playerID int64, connID string) {
	if p == nil || p.rdb == nil {
		return
	}
	if err := p.rdb.Set(ctx, presenceKey(playerID), connID, presenceTTL).Err(); err != nil {
		logger.Warnf("[presence] online player=%d: %v", playerID, err)
	}
}

func (p *Presence) Offline(ctx context.Context, playerID int64, connID string) {
	if p == nil || p.rdb == nil {
		return
	}
	if err := p.rdb.Del(ctx, presenceKey(playerID)).Err(); err != nil {
		logger.Warnf("[presence] offline player=%d: %v", playerID, err)
	}
}

// Lookup reports whether a player has a mirrored live connection.
func (p *Presence) Lookup(ctx context.Context, playerID int64) (connID string, online bool, err error) {
	if p == nil || p.rdb == nil {
		return "", false, nil
	}
	val, err := p.rdb.Get(ctx, presenceKey(playerID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
