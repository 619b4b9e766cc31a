package handler

import (
	"context"

	"github.com/ckpool/ckdb/internal/ckdlog"
	"github.com/ckpool/ckdb/internal/ckerr"
	"github.com/ckpool/ckdb/internal/transfer"
)

// NewID manually provisions an idcontrol row for idname with lastid=0
// (spec.md §4.G), used to pre-register a sequence before it is first
// incremented by Next.
func (h *Handlers) NewID(ctx context.Context, tm *transfer.Map) string {
	idname, err := tm.RequireName("idname", 1, transfer.PatternIDName)
	if err != nil {
		return err.Error()
	}

	if seqErr := h.State.IDControl.NewSequence(ctx, h.State.DB, idname); seqErr != nil {
		if ckerr.IsConflict(seqErr) {
			return replyBadData
		}
		ckdlog.Errorf("handler.NewID: %v", seqErr)
		return replyBadDBE
	}
	return replyOK
}
