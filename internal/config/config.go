// Package config loads ckdbd's configuration from, in ascending priority:
// compiled-in defaults, an optional config file (read only when a path is
// given with -c/--config), and CKDB_-prefixed environment variables,
// then exposes it as a typed Config plus a cobra/pflag command line that
// binds to the same keys (spec.md §6).
//
// Grounded on the teacher's viper+cobra stack (confirmed via
// internal/config/config_test.go's "Initialize viper" fixtures in the
// retrieved pack, though the concrete beads config schema did not survive
// retrieval) and on beads' cmd/bd/main.go cobra root-command pattern.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ckpool/ckdb/internal/ckdlog"
)

// Config is ckdbd's fully resolved runtime configuration.
type Config struct {
	ConfigFile string
	KillStale  bool
	LogLevel   int
	Name       string
	SocketDir  string
	LogDir     string

	DBHost string
	DBPort int
	DBName string
	DBUser string
	DBPass string
}

const envPrefix = "CKDB"

func defaults(v *viper.Viper) {
	v.SetDefault("kill-stale", false)
	v.SetDefault("log-level", ckdlog.LevelInfo)
	v.SetDefault("name", "ckdb")
	v.SetDefault("socket-dir", "/opt/ckdb")
	v.SetDefault("log-dir", "/opt/ckdb/logs")
	v.SetDefault("db-host", "localhost")
	v.SetDefault("db-port", 5432)
	v.SetDefault("db-name", "ckdb")
	v.SetDefault("db-user", "postgres")
	v.SetDefault("db-pass", "")
}

// Flags registers ckdbd's command-line surface on cmd's pflag set and
// returns the viper instance the flags are bound to; Load then resolves it
// against file and environment sources once cobra has parsed argv.
func Flags(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	defaults(v)

	fs := cmd.Flags()
	fs.StringP("config", "c", "", "config file path")
	fs.BoolP("kill-stale", "k", false, "remove a stale pidfile left by a dead instance before starting")
	fs.IntP("log-level", "l", ckdlog.LevelInfo, "log level 0-7 (3=error 4=warn 6=info 7=debug)")
	fs.StringP("name", "n", "ckdb", "instance name, used for the pidfile and log file names")
	fs.StringP("socket-dir", "s", "/opt/ckdb", "directory holding the unix listening socket")
	fs.String("log-dir", "/opt/ckdb/logs", "directory holding log files")
	fs.String("db-host", "localhost", "database host")
	fs.Int("db-port", 5432, "database port")
	fs.String("db-name", "ckdb", "database name")
	fs.StringP("db-user", "u", "", "database user")
	fs.StringP("db-pass", "p", "", "database password")

	_ = v.BindPFlags(fs)
	return v
}

// Load resolves final configuration from v (already populated with
// defaults and bound flags), an optional config file, and CKDB_-prefixed
// environment variables, then unmarshals into a Config.
func Load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	cfg := &Config{
		ConfigFile: v.GetString("config"),
		KillStale:  v.GetBool("kill-stale"),
		LogLevel:   v.GetInt("log-level"),
		Name:       v.GetString("name"),
		SocketDir:  v.GetString("socket-dir"),
		LogDir:     v.GetString("log-dir"),
		DBHost:     v.GetString("db-host"),
		DBPort:     v.GetInt("db-port"),
		DBName:     v.GetString("db-name"),
		DBUser:     v.GetString("db-user"),
		DBPass:     v.GetString("db-pass"),
	}
	return cfg, nil
}

// WatchLogLevel installs a fsnotify-backed watch on the config file (if
// any) that live-reloads only the log level, matching spec.md §6's note
// that ckdbd re-reads its log level without a restart. Nothing else is
// hot-reloaded: socket paths, db credentials and the instance name are
// bootstrap-only.
func WatchLogLevel(v *viper.Viper) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		ckdlog.SetLevel(v.GetInt("log-level"))
		ckdlog.Infof("config: reloaded log-level=%d from %s", v.GetInt("log-level"), e.Name)
	})
	v.WatchConfig()
}

// ScrubArgv replaces the values of -u/-p (and their long forms) in args
// with a fixed placeholder. It mutates the elements of args in place; the
// process's original argv memory, which /proc/<pid>/cmdline and process
// listings read, is not overwritten.
func ScrubArgv(args []string) {
	scrub := map[string]bool{"-u": true, "--db-user": true, "-p": true, "--db-pass": true}
	for i := 0; i < len(args); i++ {
		a := args[i]
		name, _, hasEq := strings.Cut(a, "=")
		if scrub[name] {
			if hasEq {
				args[i] = name + "=********"
			} else if i+1 < len(args) {
				args[i+1] = "********"
			}
		}
	}
}
