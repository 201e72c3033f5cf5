// Package repository maps domain operations onto named queries executed
// through the database gateway. No SQL lives here; every statement is
// referenced by name from the query book.
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Shivanand-hulikatti/tickethub/internal/database"
	"github.com/Shivanand-hulikatti/tickethub/internal/model"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// one returns the single row of a lookup, translating an empty result into
// model.ErrNotFound.
func one(rows []database.Row, err error, what string) (database.Row, error) {
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", what, err)
	}
	if len(rows) == 0 {
		return nil, model.ErrNotFound
	}
	return rows[0], nil
}

func returnedID(rows []database.Row, err error, what string) (int64, error) {
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", what, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("insert %s: no id returned", what)
	}
	return rows[0].Int64("id"), nil
}
