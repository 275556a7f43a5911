// Package pgstore keeps credentials in the 'credentials' postgres table
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
)

// Common interface for pgxpool.Pool, pgx.Conn and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	DB DBTX
}

func New(db DBTX) *Store {
	return &Store{DB: db}
}

const getEntry = `-- name: GetEntry
SELECT value
FROM credentials
WHERE name = $1
`

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	rows, _ := s.DB.Query(ctx, getEntry, key)
	value, err := pgx.CollectOneRow(rows, pgx.RowTo[string])

	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, pgx.ErrNoRows):
		return "", fmt.Errorf("key %q: %w", key, apperrors.ErrEntryNotFound)
	default:
		return "", classify(err)
	}
}

const setEntry = `-- name: SetEntry
INSERT INTO credentials (name, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE
SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`

func (s *Store) Set(ctx context.Context, key string, value string) error {
	_, err := s.DB.Exec(ctx, setEntry, key, value)
	if err != nil {
		return classify(err)
	}
	return nil
}

const clearEntries = `-- name: ClearEntries
DELETE FROM credentials
`

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, clearEntries)
	if err != nil {
		return classify(err)
	}
	return nil
}

// Tell apart "database is gone" from "schema is wrong" from any other db error
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		// No answer from the server at all
		return fmt.Errorf("db error: %w: %w", apperrors.ErrStoreUnavailable, err)
	}

	switch {
	case pgErr.Code == pgerrcode.UndefinedTable:
		return fmt.Errorf("credentials table not found, migrations not applied? Err: %w", err)
	case pgerrcode.IsConnectionException(pgErr.Code),
		pgerrcode.IsOperatorIntervention(pgErr.Code),
		pgerrcode.IsInsufficientResources(pgErr.Code):
		return fmt.Errorf("db error: %w: %w", apperrors.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
