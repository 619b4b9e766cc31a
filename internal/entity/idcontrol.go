package entity

import (
	"context"

	"github.com/ckpool/ckdb/internal/ckerr"
	"github.com/ckpool/ckdb/internal/dbgateway"
)

// IDControl is the spec.md §3 "idcontrol" entity: a table of named
// monotonic counters, Modify-kind (not History), and explicitly
// "not memory-indexed: DB-only" — every call goes straight to
// dbgateway.NextID, which already implements the
// SELECT ... FOR UPDATE / UPDATE sequence (spec.md §4.C).
type IDControl struct{}

// NewIDControl constructs the (stateless) idcontrol accessor.
func NewIDControl() *IDControl { return &IDControl{} }

// NewSequence creates an idcontrol row for idname with lastid=0, used by
// the "newid" command (spec.md §4.G) to manually provision a sequence
// before it is first incremented. It fails with ckerr.ErrConflict if the
// row already exists.
func (IDControl) NewSequence(ctx context.Context, gw dbgateway.DB, idname string) error {
	tag, err := gw.Exec(ctx, `INSERT INTO idcontrol (idname, lastid) VALUES ($1, 0) ON CONFLICT DO NOTHING`, idname)
	if err != nil {
		return ckerr.Wrap("entity.IDControl.NewSequence", err)
	}
	if tag.RowsAffected() == 0 {
		return ckerr.ErrConflict
	}
	return nil
}

// Next allocates the next id for idname, applying spec.md §3 invariant
// 4's per-name increment policy: "userid" advances by a random gap in
// [UserIDGapMin, UserIDGapMax]; every other sequence advances by 1.
func (IDControl) Next(ctx context.Context, gw dbgateway.DB, idname string) (int64, error) {
	increment := int64(1)
	if idname == "userid" {
		increment = randUserIDGap()
	}
	id, err := gw.NextID(ctx, idname, increment)
	if err != nil {
		return 0, ckerr.Wrap("entity.IDControl.Next", err)
	}
	return id, nil
}
