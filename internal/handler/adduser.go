package handler

import (
	"context"

	"github.com/ckpool/ckdb/internal/ckdlog"
	"github.com/ckpool/ckdb/internal/ckerr"
	"github.com/ckpool/ckdb/internal/transfer"
)

// AddUser registers a new user (spec.md §4.G, scenario S1). Required
// fields: username, emailaddress, passwordhash (64 hex chars — a sha256
// digest, per the original's convention).
func (h *Handlers) AddUser(ctx context.Context, tm *transfer.Map) string {
	username, err := tm.RequireName("username", 1, transfer.PatternUsername)
	if err != nil {
		return err.Error()
	}
	emailaddress, err := tm.RequireName("emailaddress", 1, transfer.PatternEmail)
	if err != nil {
		return err.Error()
	}
	passwordhash, err := tm.RequireName("passwordhash", 64, transfer.PatternHex)
	if err != nil {
		return err.Error()
	}

	row, addErr := h.State.Users.Add(ctx, h.State.DB, "adduser", username, emailaddress, passwordhash)
	if addErr != nil {
		if ckerr.IsConflict(addErr) {
			return replyBadDBE
		}
		ckdlog.Errorf("handler.AddUser: %v", addErr)
		return replyBadDBE
	}

	return replyAdded + row.Username
}
