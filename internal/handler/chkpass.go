package handler

import (
	"context"

	"github.com/ckpool/ckdb/internal/transfer"
)

// ChkPass compares a supplied passwordhash against the live user's
// stored hash (spec.md §4.G, scenario S2). Replies "ok" on match, "bad"
// otherwise — including when username does not resolve to a live user,
// to avoid confirming account existence to an unauthenticated caller.
func (h *Handlers) ChkPass(ctx context.Context, tm *transfer.Map) string {
	username, err := tm.RequireName("username", 1, transfer.PatternUsername)
	if err != nil {
		return err.Error()
	}
	passwordhash, err := tm.RequireName("passwordhash", 64, transfer.PatternHex)
	if err != nil {
		return err.Error()
	}

	user, ok := h.State.Users.Find(username)
	if !ok || user.PasswordHash != passwordhash {
		return replyBad
	}
	return replyOK
}
