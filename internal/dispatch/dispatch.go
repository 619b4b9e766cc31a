// Package dispatch implements spec.md §4.G's command table: a
// name→Command lookup carrying an advisory access class alongside each
// handler function.
//
// Grounded on the teacher's internal/rpc method-table pattern (a
// map[string]handlerFunc built once at init and looked up per request).
package dispatch

import (
	"context"
	"strings"

	"github.com/ckpool/ckdb/internal/transfer"
)

// Access is the advisory access class recorded on a Command. Per
// spec.md §4.G and §9's open-question decision, it is never checked
// against peer credentials — it documents intent only.
type Access int

const (
	AccessSystem Access = iota
	AccessPool
	AccessWeb
	AccessWebAndSystem
)

// HandlerFunc processes one request's fields and returns the reply
// fragment the listener appends after "<id>.<now>." (spec.md §6).
type HandlerFunc func(ctx context.Context, tm *transfer.Map) string

// Command pairs a handler with its advisory access class.
type Command struct {
	Name   string
	Access Access
	Handle HandlerFunc
}

// Table is the command name → Command lookup, built by Register calls
// at startup (see internal/handler's init-time registration).
type Table struct {
	commands map[string]Command
}

// NewTable returns an empty command table.
func NewTable() *Table {
	return &Table{commands: make(map[string]Command)}
}

// Register adds cmd to the table, case-folded to lower so lookups are
// case-insensitive the way spec.md §4.F requires of cmd matching.
func (t *Table) Register(cmd Command) {
	t.commands[strings.ToLower(cmd.Name)] = cmd
}

// Lookup returns the Command for name (already lower-cased by the
// caller, typically reqparse.Breakdown) and whether it was found.
func (t *Table) Lookup(name string) (Command, bool) {
	c, ok := t.commands[name]
	return c, ok
}
