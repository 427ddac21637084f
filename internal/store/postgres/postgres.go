// Package postgres implements store.Store on PostgreSQL through database/sql.
// Steps and settings are kept as JSONB documents next to relational columns.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/seuros/jogo/internal/store"
)

const uniqueViolation = "23505"

// Store is a Postgres-backed store.Store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open pool. The pool is owned by the caller unless Close is called.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// validID reports whether id can be compared against a UUID column.
// Anything else cannot match a row, so callers treat it as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// encodeJSON renders v for a JSONB parameter; nil slices become [] and nil maps {}.
func encodeJSON(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func likePattern(term string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(term) + "%"
}

// conditions accumulates WHERE clauses with positional arguments.
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) add(format string, arg any) {
	c.args = append(c.args, arg)
	placeholder := fmt.Sprintf("$%d", len(c.args))
	c.clauses = append(c.clauses, strings.ReplaceAll(format, "?", placeholder))
}

func (c *conditions) raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT and OFFSET placeholders; a zero limit means no limit.
func (c *conditions) page(limit, offset int) string {
	c.args = append(c.args, limit, offset)
	return fmt.Sprintf(" LIMIT NULLIF($%d, 0) OFFSET $%d", len(c.args)-1, len(c.args))
}

func nullableUUID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
