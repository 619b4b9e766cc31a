// Package listener runs ckdbd's unix-domain-socket request loop: accept a
// connection, read exactly one request, dispatch it through a
// dispatch.Table, write exactly one reply, close the connection. Every
// ckpool component talks to ckdb this way (spec.md §4.A), unlike the
// teacher's persistent multi-request-per-connection RPC loop — one-shot
// framing is the one place this package deliberately departs from the
// teacher's shape rather than reusing it.
package listener

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang.org/x/mod/semver"

	"github.com/ckpool/ckdb/internal/ckdlog"
	"github.com/ckpool/ckdb/internal/dispatch"
	"github.com/ckpool/ckdb/internal/reqparse"
)

// ProtocolVersion is stamped into the listener's log output on startup.
// It is not negotiated with clients; ckdb's wire format has no version
// handshake, unlike the teacher's checkVersionCompatibility.
const ProtocolVersion = "v1.0.0"

// requestTimeout bounds how long a single accepted connection may take to
// send its request and receive its reply before the listener gives up on
// it.
const requestTimeout = 30 * time.Second

// Listener accepts one ckpool client connection at a time over a
// unix-domain socket and answers each with a single reply line.
type Listener struct {
	socketPath string
	table      *dispatch.Table

	mu       sync.RWMutex
	ln       net.Listener
	shutdown bool
	stopOnce sync.Once

	readyChan chan struct{}
}

// New returns a Listener that will serve socketPath using table to
// dispatch requests. socketPath's parent directory must already exist.
func New(socketPath string, table *dispatch.Table) *Listener {
	return &Listener{
		socketPath: socketPath,
		table:      table,
		readyChan:  make(chan struct{}),
	}
}

// WaitReady returns a channel that closes once Serve is accepting
// connections.
func (l *Listener) WaitReady() <-chan struct{} {
	return l.readyChan
}

// Serve opens the listening socket and runs the accept loop until the
// "shutdown" command is dispatched, a real SIGTERM/SIGINT is delivered, or
// ctx is cancelled. It returns nil on a clean shutdown.
func (l *Listener) Serve(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.socketPath), 0700); err != nil {
		return fmt.Errorf("listener: ensure socket dir: %w", err)
	}
	if err := l.removeStaleSocket(); err != nil {
		return fmt.Errorf("listener: remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", l.socketPath)
	if err != nil {
		return fmt.Errorf("listener: listen %s: %w", l.socketPath, err)
	}
	if err := os.Chmod(l.socketPath, 0600); err != nil {
		ln.Close()
		return fmt.Errorf("listener: chmod socket: %w", err)
	}

	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()

	ckdlog.Infof("listener: accepting on %s (protocol %s)", l.socketPath, ProtocolVersion)
	if !semver.IsValid(ProtocolVersion) {
		ckdlog.Warnf("listener: ProtocolVersion %q is not valid semver", ProtocolVersion)
	}

	close(l.readyChan)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		select {
		case <-sigChan:
			ckdlog.Infof("listener: received termination signal, shutting down")
			l.Stop()
		case <-ctx.Done():
			l.Stop()
		}
	}()
	defer signal.Stop(sigChan)

	for {
		conn, err := ln.Accept()
		if err != nil {
			l.mu.RLock()
			stopped := l.shutdown
			l.mu.RUnlock()
			if stopped {
				return nil
			}
			return fmt.Errorf("listener: accept: %w", err)
		}

		if l.handleConnection(conn) {
			l.Stop()
			return nil
		}
	}
}

// handleConnection reads one request from conn, dispatches it, writes one
// reply, and closes conn. It returns true if the dispatched command was
// "shutdown", telling Serve to stop the accept loop.
func (l *Listener) handleConnection(conn net.Conn) bool {
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(requestTimeout)); err != nil {
		return false
	}

	msg, err := readMessage(conn)
	if err != nil {
		ckdlog.Warnf("listener: read: %v", err)
		return false
	}

	id, cmd, tm, err := reqparse.Breakdown(msg)
	if err != nil {
		writeReply(conn, "", err.Error())
		return false
	}

	command, ok := l.table.Lookup(cmd)
	if !ok {
		writeReply(conn, id, "?")
		return false
	}

	reply := command.Handle(context.Background(), tm)
	writeReply(conn, id, reply)
	return cmd == "shutdown"
}

// Stop closes the listening socket and unlinks the socket file. It is
// idempotent and safe to call from the signal-handling goroutine and from
// the accept loop itself.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.shutdown = true
		ln := l.ln
		l.ln = nil
		l.mu.Unlock()

		if ln != nil {
			ln.Close()
		}
		if err := l.removeStaleSocket(); err != nil {
			ckdlog.Warnf("listener: remove socket on stop: %v", err)
		}
	})
}

func (l *Listener) removeStaleSocket() error {
	err := os.Remove(l.socketPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// readMessage reads a single newline-terminated request off conn. ckpool
// clients send one line per request; the trailing newline is left intact
// for reqparse.Breakdown to trim.
func readMessage(conn net.Conn) ([]byte, error) {
	buf := make([]byte, 0, 512)
	chunk := make([]byte, 512)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if buf[len(buf)-1] == '\n' {
				return buf, nil
			}
		}
		if err != nil {
			if len(buf) > 0 {
				return buf, nil
			}
			return nil, err
		}
	}
}

// writeReply sends "<id>.<unix-seconds>.<reply>\n", the reply envelope
// every ckdb response uses regardless of which handler produced reply
// (spec.md §4.I).
func writeReply(conn net.Conn, id, reply string) {
	line := fmt.Sprintf("%s.%d.%s\n", id, time.Now().Unix(), reply)
	_, _ = conn.Write([]byte(line))
}
