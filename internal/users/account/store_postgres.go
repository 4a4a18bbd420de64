// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account (Postgres) implements the relational user registry.

# Schema Table Mapping
  - users.profile: one row per user, profile fields in a JSONB object.
*/
package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/geodrop/internal/platform/apperr"
	"github.com/taibuivan/geodrop/internal/platform/database/schema"
)

// DBTX is the subset of pgx used by the repository; satisfied by *pgxpool.Pool.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	db DBTX
}

// NewPostgresUserRepository creates a new Postgres implementation of the registry.
func NewPostgresUserRepository(db DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

/*
Upsert inserts the user or merges its attributes into the existing row.

Description: JSONB concatenation keeps fields absent from the new write and
replaces the ones present in both.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Storage failures
*/
func (repository *PostgresUserRepository) Upsert(context context.Context, user *User) error {
	attributes, err := json.Marshal(user.Attributes)
	if err != nil {
		return fmt.Errorf("postgres_user_encode_failed: %w", err)
	}

	table := schema.UserProfile
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
		ON CONFLICT (%s) DO UPDATE
		SET %s = %s.%s || EXCLUDED.%s, %s = NOW()`,
		table.Table, table.ID, table.Attributes,
		table.ID,
		table.Attributes, table.Table, table.Attributes, table.Attributes, table.UpdatedAt,
	)

	if _, err := repository.db.Exec(context, query, user.ID, attributes); err != nil {
		return fmt.Errorf("postgres_user_upsert_failed: %w", err)
	}
	return nil
}

// Exists reports whether a row with the id is present.
func (repository *PostgresUserRepository) Exists(context context.Context, id string) (bool, error) {
	table := schema.UserProfile
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, table.Table, table.ID)

	var exists bool
	if err := repository.db.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_user_exists_failed: %w", err)
	}
	return exists, nil
}

/*
FindByID retrieves a user row from the users.profile table.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated user
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	table := schema.UserProfile
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, table.Attributes, table.Table, table.ID)

	var raw []byte
	if err := repository.db.QueryRow(context, query, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_find_failed: %w", err)
	}

	attributes := map[string]string{}
	if err := json.Unmarshal(raw, &attributes); err != nil {
		return nil, fmt.Errorf("postgres_user_decode_failed: %w", err)
	}

	return newUser(id, attributes), nil
}
