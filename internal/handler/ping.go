package handler

import (
	"context"

	"github.com/ckpool/ckdb/internal/transfer"
)

// Ping replies "pong" unconditionally (spec.md §4.G).
func (h *Handlers) Ping(ctx context.Context, tm *transfer.Map) string {
	return "pong"
}
