// Package ckdlog is a minimal leveled wrapper around the standard log
// package, matching spec.md §6's "-l <level> (log level 0..7)" CLI surface.
// No external structured-logging library is adopted here — see DESIGN.md
// for why plain `log` was kept.
package ckdlog

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Severity levels, syslog-numbered per spec.md §6 (0 = emergency .. 7 =
// debug). ckdb only distinguishes the four it actually emits.
const (
	LevelError = 3
	LevelWarn  = 4
	LevelInfo  = 6
	LevelDebug = 7
)

var level int32 = LevelInfo

var std = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)

// SetOutput redirects all subsequent log output to w, used by ckdbd to
// switch from stderr to its logfile once --log-dir has been resolved.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetLevel adjusts the minimum severity that gets printed. Safe to call
// concurrently with logging calls (the daemon's config watcher calls this
// from viper's OnConfigChange callback on its own goroutine).
func SetLevel(l int) {
	atomic.StoreInt32(&level, int32(l))
}

// Level returns the current minimum severity.
func Level() int {
	return int(atomic.LoadInt32(&level))
}

func enabled(l int) bool {
	return l <= Level()
}

// Debugf logs at LevelDebug.
func Debugf(format string, args ...interface{}) {
	if enabled(LevelDebug) {
		std.Printf("DEBUG "+format, args...)
	}
}

// Infof logs at LevelInfo.
func Infof(format string, args ...interface{}) {
	if enabled(LevelInfo) {
		std.Printf("INFO  "+format, args...)
	}
}

// Warnf logs at LevelWarn.
func Warnf(format string, args ...interface{}) {
	if enabled(LevelWarn) {
		std.Printf("WARN  "+format, args...)
	}
}

// Errorf logs at LevelError.
func Errorf(format string, args ...interface{}) {
	if enabled(LevelError) {
		std.Printf("ERROR "+format, args...)
	}
}

// Fatalf logs unconditionally and terminates the process. Reserved for
// bootstrap failures and structural invariant violations (spec.md §7).
func Fatalf(format string, args ...interface{}) {
	std.Fatalf("FATAL "+format, args...)
}
