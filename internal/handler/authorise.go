package handler

import (
	"context"

	"github.com/ckpool/ckdb/internal/ckdlog"
	"github.com/ckpool/ckdb/internal/codec"
	"github.com/ckpool/ckdb/internal/transfer"
)

// Authorise auto-provisions a worker record for (username, workername)
// if one does not already exist, records an auths event, and replies
// with the user's secondaryuserid (spec.md §4.G, scenario S3). Requires
// method=authorise per the command's own framing.
func (h *Handlers) Authorise(ctx context.Context, tm *transfer.Map) string {
	method, err := tm.RequireName("method", 1, transfer.PatternUsername)
	if err != nil {
		return err.Error()
	}
	if method != "authorise" {
		return "bad.method"
	}

	username, err := tm.RequireName("username", 1, transfer.PatternUsername)
	if err != nil {
		return err.Error()
	}
	workername, err := tm.RequireName("workername", 1, transfer.PatternUsername)
	if err != nil {
		return err.Error()
	}
	clientidText, err := tm.RequireName("clientid", 1, transfer.PatternPosInt)
	if err != nil {
		return err.Error()
	}
	enonce1, err := tm.RequireName("enonce1", 0, transfer.PatternHex)
	if err != nil {
		return err.Error()
	}
	useragent, _ := tm.OptionalName("useragent")

	clientid, decErr := codec.DecodeInt64(clientidText)
	if decErr != nil {
		return "failed.invalid clientid"
	}

	user, ok := h.State.Users.Find(username)
	if !ok {
		return replyBadData
	}

	if _, _, err := h.State.Workers.EnsureExists(ctx, h.State.DB, "authorise", user.UserID, workername); err != nil {
		ckdlog.Errorf("handler.Authorise: EnsureExists: %v", err)
		return replyBadDBE
	}

	if _, err := h.State.Auths.Add(ctx, h.State.DB, "authorise", user.UserID, workername, clientid, enonce1, useragent); err != nil {
		ckdlog.Errorf("handler.Authorise: Auths.Add: %v", err)
		return replyBadDBE
	}

	return replyAdded + user.SecondaryUserID
}
