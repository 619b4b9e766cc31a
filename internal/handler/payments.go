package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/ckpool/ckdb/internal/codec"
	"github.com/ckpool/ckdb/internal/entity"
	"github.com/ckpool/ckdb/internal/reqparse"
	"github.com/ckpool/ckdb/internal/transfer"
)

// Payments returns every live payment row for a user in paydate
// ascending order, as the FLDSEP-joined tabular reply from spec.md §6 /
// scenario S6: "ok." followed by paydateN=...|payaddressN=...|amountN=...
// for each row, terminated by "rows=N".
func (h *Handlers) Payments(ctx context.Context, tm *transfer.Map) string {
	username, err := tm.RequireName("username", 1, transfer.PatternUsername)
	if err != nil {
		return err.Error()
	}

	user, ok := h.State.Users.Find(username)
	if !ok {
		return replyBadData
	}

	var rows []entity.Payment
	h.State.Payments.ForUser(user.UserID, func(p entity.Payment) bool {
		rows = append(rows, p)
		return true
	})

	sep := string(rune(reqparse.FieldSep))
	var b strings.Builder
	b.WriteString("ok.")
	for i, p := range rows {
		fmt.Fprintf(&b, "paydate%d=%s%spayaddress%d=%s%samount%d=%s%s",
			i, codec.EncodeTimestamp(p.PayDate), sep,
			i, codec.EncodeString(p.PayAddress), sep,
			i, codec.EncodeDouble(p.Amount), sep)
	}
	fmt.Fprintf(&b, "rows=%d", len(rows))
	return b.String()
}
