package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnknownQuery is returned when a query name is not in the book.
var ErrUnknownQuery = errors.New("unknown query")

// DB is the subset of pgx shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Gateway executes named queries from a QueryBook. Callers never build SQL;
// they name a query and pass positional parameters. A nil parameter is sent
// as SQL NULL, which is distinct from the empty string.
type Gateway struct {
	db      DB
	queries *QueryBook
}

// NewGateway binds a query book to a database handle.
func NewGateway(db DB, queries *QueryBook) *Gateway {
	return &Gateway{db: db, queries: queries}
}

func (g *Gateway) lookup(name string) (string, error) {
	sql, ok := g.queries.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownQuery, name)
	}
	return sql, nil
}

// Execute runs a named query and returns all result rows.
func (g *Gateway) Execute(ctx context.Context, name string, params ...any) ([]Row, error) {
	sql, err := g.lookup(name)
	if err != nil {
		return nil, err
	}

	rows, err := g.db.Query(ctx, sql, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}

	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return out, nil
}

// Exec runs a named statement and returns the number of affected rows.
func (g *Gateway) Exec(ctx context.Context, name string, params ...any) (int64, error) {
	sql, err := g.lookup(name)
	if err != nil {
		return 0, err
	}
	tag, err := g.db.Exec(ctx, sql, params...)
	if err != nil {
		return 0, fmt.Errorf("exec %s: %w", name, err)
	}
	return tag.RowsAffected(), nil
}

// InTx runs fn with a Gateway bound to a new transaction. The transaction
// commits when fn returns nil and rolls back otherwise. Calling InTx on a
// transactional Gateway opens a savepoint.
func (g *Gateway) InTx(ctx context.Context, fn func(tx *Gateway) error) error {
	return pgx.BeginFunc(ctx, g.db, func(tx pgx.Tx) error {
		return fn(&Gateway{db: tx, queries: g.queries})
	})
}

// Ping checks connectivity with a trivial round trip.
func (g *Gateway) Ping(ctx context.Context) error {
	_, err := g.db.Exec(ctx, "SELECT 1")
	return err
}

//go:embed schema.sql
var schema string

// Migrate applies the embedded schema. All statements are idempotent.
func (g *Gateway) Migrate(ctx context.Context) error {
	if _, err := g.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// NullIfEmpty maps "" to SQL NULL, for optional filter parameters.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
