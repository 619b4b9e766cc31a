package handler

import (
	"context"

	"github.com/ckpool/ckdb/internal/transfer"
)

// Shutdown replies "exiting". The listener treats this verb specially:
// after writing the reply it ends the accept loop (spec.md §4.G, §4.H).
func (h *Handlers) Shutdown(ctx context.Context, tm *transfer.Map) string {
	return "exiting"
}
