package dbgateway

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConnStringIncludesAllFields(t *testing.T) {
	cfg := Config{Host: "db.internal", Port: 6432, User: "ckdb", Password: "s3cret", DBName: "ckdb_prod"}
	cs := cfg.connString()
	assert.Contains(t, cs, "host=db.internal")
	assert.Contains(t, cs, "port=6432")
	assert.Contains(t, cs, "user=ckdb")
	assert.Contains(t, cs, "dbname=ckdb_prod")
	assert.Contains(t, cs, "sslmode=disable")
}

func TestConnStringDefaultsSSLMode(t *testing.T) {
	cfg := Config{Host: "h", Port: 1, User: "u", Password: "p", DBName: "d"}
	assert.Contains(t, cfg.connString(), "sslmode=disable")
}

func TestIsRetryableStringMatches(t *testing.T) {
	assert.True(t, isRetryable(errors.New("read: connection reset by peer")))
	assert.True(t, isRetryable(errors.New("driver: bad connection")))
	assert.False(t, isRetryable(errors.New("syntax error at or near")))
	assert.False(t, isRetryable(nil))
}

func TestIsRetryablePgErrorCodes(t *testing.T) {
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, isRetryable(&pgconn.PgError{Code: "23505"}))
}
