package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the session as a single row keyed by name, so the
// three values are always written and removed in one statement.
type PostgresStore struct {
	pool *pgxpool.Pool
	key  string
}

func NewPostgresStore(pool *pgxpool.Pool, key string) *PostgresStore {
	return &PostgresStore{pool: pool, key: key}
}

// Migrate creates the session table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS client_sessions (
    session_key   TEXT PRIMARY KEY,
    access_token  TEXT NOT NULL,
    refresh_token TEXT NOT NULL,
    user_profile  JSONB,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
  )`
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.pool.Exec(ctx, q)
	return err
}

func (p *PostgresStore) Load(ctx context.Context) (*domain.Session, error) {
	const q = `SELECT access_token, refresh_token, user_profile
  FROM client_sessions WHERE session_key=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s := &domain.Session{}
	var profile []byte
	err := p.pool.QueryRow(ctx, q, p.key).Scan(&s.AccessToken, &s.RefreshToken, &profile)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(profile) > 0 && string(profile) != "null" {
		var u domain.User
		if err := json.Unmarshal(profile, &u); err != nil {
			return nil, fmt.Errorf("stored user is corrupt: %w", err)
		}
		s.User = &u
	}
	return s, nil
}

func (p *PostgresStore) Save(ctx context.Context, s *domain.Session) error {
	const q = `INSERT INTO client_sessions (session_key, access_token, refresh_token, user_profile, updated_at)
  VALUES ($1,$2,$3,$4,now())
  ON CONFLICT (session_key) DO UPDATE
  SET access_token=EXCLUDED.access_token,
      refresh_token=EXCLUDED.refresh_token,
      user_profile=EXCLUDED.user_profile,
      updated_at=now()`

	var profile []byte
	if s.User != nil {
		b, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		profile = b
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := p.pool.Exec(ctx, q, p.key, s.AccessToken, s.RefreshToken, profile); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context) error {
	const q = `DELETE FROM client_sessions WHERE session_key=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := p.pool.Exec(ctx, q, p.key); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
