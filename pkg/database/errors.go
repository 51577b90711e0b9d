package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLState returns the postgres error code carried by err, or "" when err did not come from the server.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
