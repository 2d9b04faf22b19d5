package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRep      = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool { return pgCode(err) == codeUniqueViolation }

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool { return pgCode(err) == codeForeignKeyViolation }

// IsPgInvalidInputError reports malformed input such as a non-UUID id.
func IsPgInvalidInputError(err error) bool { return pgCode(err) == codeInvalidTextRep }

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
