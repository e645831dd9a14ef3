package database

import (
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
)

func TestTrapWriteErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantUnique bool
		wantNil    bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "pq unique violation", err: &pq.Error{Code: "23505", Message: "duplicate key"}, wantUnique: true},
		{name: "pgx unique violation", err: &pgconn.PgError{Code: "23505", Message: "duplicate key"}, wantUnique: true},
		{name: "wrapped pgx unique violation", err: errors.Wrap(&pgconn.PgError{Code: "23505"}, "inserting"), wantUnique: true},
		{name: "pq fk violation", err: &pq.Error{Code: "23503"}},
		{name: "other error", err: sql.ErrConnDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TrapWriteErr(tt.err, "creating attendances")
			if tt.wantNil {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.wantUnique, core.IsUniqueViolation(err))
			assert.Equal(t, tt.wantUnique, IsUniqueViolation(tt.err))
		})
	}
}

func TestURL(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{
		User:          "app",
		Password:      "s3cr3t",
		AdminUser:     "root",
		AdminPassword: "toor",
		Host:          "db",
		Port:          "5432",
		DisableTLS:    true,
	}}

	assert.Equal(t, "postgres://app:s3cr3t@db:5432/school?sslmode=disable&timezone=utc", URL("school", false, conf))
	assert.Equal(t, "postgres://root:toor@db:5432/postgres?sslmode=disable&timezone=utc", URL("postgres", true, conf))

	conf.Database.DisableTLS = false
	assert.Contains(t, URL("school", false, conf), "sslmode=require")
}
