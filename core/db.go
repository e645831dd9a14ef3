package core

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
	DBExecutor interface {
		sqlx.ExtContext
	}

	// Transactor runs fn inside a single transaction, committing when fn returns nil
	// and rolling back otherwise. Every repository call made by fn must be given tx.
	Transactor interface {
		WithTx(ctx context.Context, fn func(tx DBExecutor) error) error
	}

	Pinger interface {
		PingContext(ctx context.Context) error
	}
)
