package player

import (
	"context"
	goerrors "errors"

	"TDProject/module/player/model"
	"TDProject/tools/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Store is the pgx-backed credential store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the players table when absent. Proper migrations
// are out of scope; this mirrors create-on-boot behavior.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS players (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			high_score    BIGINT NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return errs.WrapMsg(err, "ensure players schema")
}

// Create inserts a new credential record and returns its id.
// A taken username comes back as errs.ErrDuplicate.
func (s *Store) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO players (username, password_hash) VALUES ($1, $2) RETURNING id`,
		username, passwordHash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if goerrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, errs.ErrDuplicate
		}
		return 0, errs.ErrStore.WithDetail(err.Error())
	}
	return id, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*model.Player, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, high_score, created_at
		   FROM players WHERE username = $1`, username))
}

func (s *Store) FindByID(ctx context.Context, id int64) (*model.Player, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, high_score, created_at
		   FROM players WHERE id = $1`, id))
}

func (s *Store) scanOne(row pgx.Row) (*model.Player, error) {
	var p model.Player
	err := row.Scan(&p.ID, &p.Username, &p.PasswordHash, &p.HighScore, &p.CreatedAt)
	if goerrors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.ErrStore.WithDetail(err.Error())
	}
	return &p, nil
}
