package database

import (
	stderrors "errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

const codeUniqueViolation = "23505" // SQLSTATE

func sqlState(err error) string {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err comes from a unique constraint, whichever driver raised it.
func IsUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

// TrapWriteErr wraps err with msg, replacing unique violations with core.ErrUniqueViolation.
func TrapWriteErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return errors.Wrapf(core.ErrUniqueViolation, "%s: %v", msg, err)
	}
	return errors.Wrap(err, msg)
}
