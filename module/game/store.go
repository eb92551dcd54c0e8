package game

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"time"

	"TDProject/logger"
	"TDProject/module/game/model"
	"TDProject/tools/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const cacheTTL = 10 * time.Minute

func cacheKey(playerID int64) string {
	return fmt.Sprintf("td:state:%d", playerID)
}

// Store persists game-state snapshots in Postgres with an optional
// redis read-through cache. cache may be nil; every cache path is
// best-effort and never fails the request.
type Store struct {
	pool  *pgxpool.Pool
	cache *redis.Client
}

func NewStore(pool *pgxpool.Pool, cache *redis.Client) *Store {
	return &Store{pool: pool, cache: cache}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_state (
			player_id    BIGINT PRIMARY KEY REFERENCES players(id),
			wave_number  INT NOT NULL DEFAULT 1,
			resources    INT NOT NULL DEFAULT 100,
			player_lives INT NOT NULL DEFAULT 20,
			towers_data  JSONB,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return errs.WrapMsg(err, "ensure game_state schema")
}

// Load returns the player's snapshot, errs.ErrNotFound when none exists.
func (s *Store) Load(ctx context.Context, playerID int64) (*model.Snapshot, error) {
	if snap := s.cacheGet(ctx, playerID); snap != nil {
		return snap, nil
	}
	snap, err := s.loadDB(ctx, playerID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, snap)
	return snap, nil
}

// LoadOrCreate returns the snapshot, creating and persisting the default
// one on a player's first connection.
func (s *Store) LoadOrCreate(ctx context.Context, playerID int64) (*model.Snapshot, error) {
	snap, err := s.Load(ctx, playerID)
	if err == nil {
		return snap, nil
	}
	if !goerrors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	logger.Infof("[game] no saved game for player %d, creating default state", playerID)
	snap = model.NewDefault(playerID)
	if err := s.upsert(ctx, snap); err != nil {
		return nil, err
	}
	s.cacheSet(ctx, snap)
	return snap, nil
}

// Save applies a partial update on top of the stored snapshot (or the
// defaults when the player has never saved) and persists the result.
// Caller is responsible for checking the player exists.
func (s *Store) Save(ctx context.Context, req *model.SaveRequest) (*model.Snapshot, error) {
	snap, err := s.loadDB(ctx, req.PlayerID)
	if goerrors.Is(err, errs.ErrNotFound) {
		snap = model.NewDefault(req.PlayerID)
	} else if err != nil {
		return nil, err
	}

	snap.Apply(req)
	if err := s.upsert(ctx, snap); err != nil {
		return nil, err
	}
	s.cacheSet(ctx, snap)
	return snap, nil
}

func (s *Store) loadDB(ctx context.Context, playerID int64) (*model.Snapshot, error) {
	var snap model.Snapshot
	err := s.pool.QueryRow(ctx,
		`SELECT player_id, wave_number, resources, player_lives, towers_data
		   FROM game_state WHERE player_id = $1`, playerID,
	).Scan(&snap.PlayerID, &snap.WaveNumber, &snap.Resources, &snap.PlayerLives, &snap.TowersData)
	if goerrors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.ErrStore.WithDetail(err.Error())
	}
	return &snap, nil
}

func (s *Store) upsert(ctx context.Context, snap *model.Snapshot) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_state (player_id, wave_number, resources, player_lives, towers_data, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (player_id) DO UPDATE SET
			wave_number  = EXCLUDED.wave_number,
			resources    = EXCLUDED.resources,
			player_lives = EXCLUDED.player_lives,
			towers_data  = EXCLUDED.towers_data,
			updated_at   = now()`,
		snap.PlayerID, snap.WaveNumber, snap.Resources, snap.PlayerLives, snap.TowersData)
	if err != nil {
		return errs.ErrStore.WithDetail(err.Error())
	}
	return nil
}

func (s *Store) cacheGet(ctx context.Context, playerID int64) *model.Snapshot {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, cacheKey(playerID)).Bytes()
	if goerrors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		logger.Warnf("[game] cache get player %d: %v", playerID, err)
		return nil
	}
	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		logger.Warnf("[game] cache decode player %d: %v", playerID, err)
		return nil
	}
	return &snap
}

func (s *Store) cacheSet(ctx context.Context, snap *model.Snapshot) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(snap.PlayerID), raw, cacheTTL).Err(); err != nil {
		logger.Warnf("[game] cache set player %d: %v", snap.PlayerID, err)
	}
}
