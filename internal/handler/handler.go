// Package handler implements one handler per verb in spec.md §4.G's
// command table. Each handler reads its required/optional fields from
// the request's transfer.Map, mutates internal/ckdb.State (DB first,
// then the in-memory mirror, per spec.md §4.D's error policy), and
// returns the reply fragment the listener appends after "<id>.<now>."
//
// Grounded on the teacher's internal/rpc method handlers (one function
// per RPC verb, returning a typed result the server layer serializes) —
// generalized here to return the plain reply string spec.md §6 and §7
// specify instead of a protobuf-style response message.
package handler

import (
	"github.com/ckpool/ckdb/internal/ckdb"
	"github.com/ckpool/ckdb/internal/dispatch"
)

// Reply fragments named in spec.md §6/§7.
const (
	replyOK      = "ok"
	replyBad     = "bad"
	replyAdded   = "added."
	replyBadData = "bad.DATA"
	replyBadDBE  = "bad.DBE"
)

// Handlers bundles the state every verb operates on.
type Handlers struct {
	State *ckdb.State
}

// New constructs a Handlers bound to state.
func New(state *ckdb.State) *Handlers {
	return &Handlers{State: state}
}

// Register adds every verb in spec.md §4.G to tbl.
func (h *Handlers) Register(tbl *dispatch.Table) {
	tbl.Register(dispatch.Command{Name: "shutdown", Access: dispatch.AccessSystem, Handle: h.Shutdown})
	tbl.Register(dispatch.Command{Name: "ping", Access: dispatch.AccessWebAndSystem, Handle: h.Ping})
	tbl.Register(dispatch.Command{Name: "sharelog", Access: dispatch.AccessPool, Handle: h.Sharelog})
	tbl.Register(dispatch.Command{Name: "authorise", Access: dispatch.AccessPool, Handle: h.Authorise})
	tbl.Register(dispatch.Command{Name: "adduser", Access: dispatch.AccessWeb, Handle: h.AddUser})
	tbl.Register(dispatch.Command{Name: "chkpass", Access: dispatch.AccessWeb, Handle: h.ChkPass})
	tbl.Register(dispatch.Command{Name: "poolstats", Access: dispatch.AccessWeb, Handle: h.PoolStats})
	tbl.Register(dispatch.Command{Name: "newid", Access: dispatch.AccessSystem, Handle: h.NewID})
	tbl.Register(dispatch.Command{Name: "payments", Access: dispatch.AccessWeb, Handle: h.Payments})
}
