package config

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cmd := &cobra.Command{}
	v := Flags(cmd)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "ckdb", cfg.Name)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.False(t, cfg.KillStale)
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	cmd := &cobra.Command{}
	v := Flags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"-n", "ckdb2", "-k", "-l", "7", "--db-host", "10.0.0.5"}))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "ckdb2", cfg.Name)
	assert.True(t, cfg.KillStale)
	assert.Equal(t, 7, cfg.LogLevel)
	assert.Equal(t, "10.0.0.5", cfg.DBHost)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CKDB_DB_NAME", "ckdb_test")

	cmd := &cobra.Command{}
	v := Flags(cmd)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "ckdb_test", cfg.DBName)
}

func TestScrubArgvHidesCredentials(t *testing.T) {
	args := []string{"ckdbd", "-u", "secretuser", "--db-pass=hunter2", "-l", "6"}
	ScrubArgv(args)
	assert.Equal(t, "********", args[2])
	assert.Equal(t, "--db-pass=********", args[3])
	assert.Equal(t, "-l", args[4])
}
