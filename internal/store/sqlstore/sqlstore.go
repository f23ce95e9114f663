// Package sqlstore implements store.Repository with sqlx over either Postgres
// (pgx) or an embedded SQLite file (modernc). The SQL is shared; the dialect
// only decides column types, numeric casts and the row-lock clause.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"vendorhub/backend/internal/store"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

type Store struct {
	db      *sqlx.DB
	dialect dialect
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping is used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// forUpdate is appended to the product lookup inside stock-mutating
// transactions. SQLite runs with a single connection, so an open transaction
// already excludes every other writer.
func (s *Store) forUpdate() string {
	if s.dialect == dialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// num wraps a decimal column so SQLite compares and sorts it numerically; it
// stores decimals as text to keep them exact.
func (s *Store) num(expr string) string {
	if s.dialect == dialectSQLite {
		return "CAST(" + expr + " AS REAL)"
	}
	return expr
}

func (s *Store) isUniqueViolation(err error) bool {
	if s.dialect == dialectPostgres {
		return isPgUniqueViolation(err)
	}
	return isSQLiteUniqueViolation(err)
}

func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w (statement: %s)", err, firstLine(stmt))
		}
	}
	return nil
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if idx := strings.IndexByte(stmt, '\n'); idx > 0 {
		return stmt[:idx]
	}
	return stmt
}

// requireRow maps an UPDATE or DELETE that touched nothing to ErrNotFound.
func requireRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
