// Command ckdbd is the ckpool accounting daemon: it loads configuration,
// acquires its single-instance pidfile, connects to Postgres, fills its
// in-memory mirrors, and serves requests over a unix-domain socket until
// told to shut down (spec.md §6).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ckpool/ckdb/internal/ckdb"
	"github.com/ckpool/ckdb/internal/ckdlog"
	"github.com/ckpool/ckdb/internal/config"
	"github.com/ckpool/ckdb/internal/dbgateway"
	"github.com/ckpool/ckdb/internal/dispatch"
	"github.com/ckpool/ckdb/internal/handler"
	"github.com/ckpool/ckdb/internal/listener"
	"github.com/ckpool/ckdb/internal/lockfile"
)

func main() {
	args := append([]string(nil), os.Args[1:]...)
	config.ScrubArgv(os.Args)

	root := &cobra.Command{
		Use:   "ckdbd",
		Short: "ckpool accounting and persistence daemon",
	}
	v := config.Flags(root)
	root.SetArgs(args)
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return run(v)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	ckdlog.SetLevel(cfg.LogLevel)
	config.WatchLogLevel(v)

	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return fmt.Errorf("ckdbd: create log dir: %w", err)
	}
	logPath := filepath.Join(cfg.LogDir, cfg.Name+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("ckdbd: open log file: %w", err)
	}
	defer logFile.Close()
	ckdlog.SetOutput(logFile)

	if err := os.MkdirAll(cfg.SocketDir, 0700); err != nil {
		return fmt.Errorf("ckdbd: create socket dir: %w", err)
	}
	pidPath := filepath.Join(cfg.SocketDir, cfg.Name+".pid")
	if err := lockfile.CheckStale(pidPath, cfg.KillStale); err != nil {
		return fmt.Errorf("ckdbd: %w", err)
	}
	pidFile, err := lockfile.Acquire(pidPath)
	if err != nil {
		return fmt.Errorf("ckdbd: %w", err)
	}
	defer pidFile.Close()
	defer os.Remove(pidPath)

	ctx := context.Background()

	gw, err := dbgateway.Connect(ctx, dbgateway.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		DBName:   cfg.DBName,
	})
	if err != nil {
		return fmt.Errorf("ckdbd: connect to database: %w", err)
	}
	defer gw.Close()

	state := ckdb.New(gw)
	ckdlog.Infof("ckdbd: loading entity mirrors from database")
	if err := state.Fill(ctx); err != nil {
		return fmt.Errorf("ckdbd: fill entity mirrors: %w", err)
	}

	tbl := dispatch.NewTable()
	handler.New(state).Register(tbl)

	socketPath := filepath.Join(cfg.SocketDir, "listener")
	l := listener.New(socketPath, tbl)

	ckdlog.Infof("ckdbd: %s starting, socket=%s", cfg.Name, socketPath)
	if err := l.Serve(ctx); err != nil {
		return fmt.Errorf("ckdbd: %w", err)
	}
	ckdlog.Infof("ckdbd: %s shut down cleanly", cfg.Name)
	return nil
}
