package authtoken

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// PostgresStore is an alternate Store backend for deployments that already
// run Postgres for other state and would rather not manage a JSON file
// alongside it. It implements the identical Store contract as
// JSONFileStore; Manager is agnostic to which one it's handed.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore opens dsn and ensures the refresh_tokens table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "connect to refresh token database")
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "migrate refresh token schema")
	}
	return &PostgresStore{db: db}, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS refresh_tokens (
	token_hash  TEXT PRIMARY KEY,
	username    TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	expires_at  TEXT NOT NULL,
	used        BOOLEAN NOT NULL DEFAULT FALSE,
	rotated_to  TEXT
)`

type refreshRow struct {
	TokenHash   string         `db:"token_hash"`
	Username    string         `db:"username"`
	Fingerprint string         `db:"fingerprint"`
	CreatedAt   string         `db:"created_at"`
	ExpiresAt   string         `db:"expires_at"`
	Used        bool           `db:"used"`
	RotatedTo   sql.NullString `db:"rotated_to"`
}

func (r refreshRow) toRecord() RefreshRecord {
	rec := RefreshRecord{
		Username:    r.Username,
		Fingerprint: r.Fingerprint,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
		Used:        r.Used,
	}
	if r.RotatedTo.Valid {
		rec.RotatedTo = &r.RotatedTo.String
	}
	return rec
}

func (s *PostgresStore) Get(ctx context.Context, tokenHash string) (RefreshRecord, bool, error) {
	var row refreshRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return RefreshRecord{}, false, nil
	}
	if err != nil {
		return RefreshRecord{}, false, apperr.Wrap(err, apperr.CodeInternal, "query refresh token")
	}
	return row.toRecord(), true, nil
}

func (s *PostgresStore) Put(ctx context.Context, tokenHash string, record RefreshRecord) error {
	var rotatedTo sql.NullString
	if record.RotatedTo != nil {
		rotatedTo = sql.NullString{String: *record.RotatedTo, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token_hash, username, fingerprint, created_at, expires_at, used, rotated_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (token_hash) DO UPDATE SET
			username = EXCLUDED.username,
			fingerprint = EXCLUDED.fingerprint,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at,
			used = EXCLUDED.used,
			rotated_to = EXCLUDED.rotated_to`,
		tokenHash, record.Username, record.Fingerprint, record.CreatedAt, record.ExpiresAt, record.Used, rotatedTo)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "upsert refresh token")
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "delete refresh token")
	}
	return nil
}

func (s *PostgresStore) FindRotatedFrom(ctx context.Context, target string) ([]string, error) {
	var hashes []string
	err := s.db.SelectContext(ctx, &hashes, `SELECT token_hash FROM refresh_tokens WHERE rotated_to = $1`, target)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "query rotated-from tokens")
	}
	return hashes, nil
}

func (s *PostgresStore) DeleteByUsername(ctx context.Context, username string) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE username = $1`, username)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeInternal, "delete user refresh tokens")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeInternal, "count deleted refresh tokens")
	}
	return int(n), nil
}
