//go:build integration

package dbgateway

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ckpool/ckdb/internal/ckerr"
)

// TestNextIDAgainstRealPostgres only runs when CKDB_TEST_DSN names a
// reachable Postgres instance (host:port:dbname:user:password, colon
// separated) with schema.sql already applied. It is excluded from the
// default build (go test ./...) by the integration tag.
func TestNextIDAgainstRealPostgres(t *testing.T) {
	dsn := os.Getenv("CKDB_TEST_DSN")
	if dsn == "" {
		t.Skip("CKDB_TEST_DSN not set")
	}
	cfg := parseTestDSN(t, dsn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gw, err := Connect(ctx, cfg)
	require.NoError(t, err)
	defer gw.Close()

	idname := "userid_test"
	_, err = gw.Exec(ctx, `INSERT INTO idcontrol (idname, lastid) VALUES ($1, 0) ON CONFLICT DO NOTHING`, idname)
	require.NoError(t, err)

	first, err := gw.NextID(ctx, idname, 1)
	require.NoError(t, err)
	second, err := gw.NextID(ctx, idname, 1)
	require.NoError(t, err)
	require.Equal(t, first+1, second)
}

// TestNextIDMissingIdnameFails confirms NextID fails closed instead of
// autovivifying a row when idname was never seeded (spec.md's schema
// contract: idcontrol rows must exist before NextID is invoked for them).
func TestNextIDMissingIdnameFails(t *testing.T) {
	dsn := os.Getenv("CKDB_TEST_DSN")
	if dsn == "" {
		t.Skip("CKDB_TEST_DSN not set")
	}
	cfg := parseTestDSN(t, dsn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gw, err := Connect(ctx, cfg)
	require.NoError(t, err)
	defer gw.Close()

	_, err = gw.NextID(ctx, "never_seeded_idname", 1)
	require.Error(t, err)
	require.True(t, ckerr.IsNotFound(err))
}

func parseTestDSN(t *testing.T, dsn string) Config {
	t.Helper()
	parts := strings.SplitN(dsn, ":", 5)
	require.Len(t, parts, 5, "CKDB_TEST_DSN must be host:port:dbname:user:password")
	port, err := strconv.Atoi(parts[1])
	require.NoError(t, err)
	return Config{Host: parts[0], Port: port, DBName: parts[2], User: parts[3], Password: parts[4]}
}
