package entity

import (
	"context"
	"time"

	"github.com/ckpool/ckdb/internal/ckconst"
	"github.com/ckpool/ckdb/internal/ckerr"
	"github.com/ckpool/ckdb/internal/dbgateway"
	"github.com/ckpool/ckdb/internal/table"
)

// Payment is the spec.md §3 "payments" row.
type Payment struct {
	PaymentID     int64
	UserID        int64
	PayDate       time.Time
	PayAddress    string
	OriginalTxn   string
	Amount        float64
	CommitTxn     string
	CommitBlockHash string
	History
}

// paymentLess orders by (userid, paydate, payaddress, expirydate desc),
// with paymentid as a final tiebreak so distinct payments at the same
// instant still compare unequal (spec.md §3 "payments" Indexes).
func paymentLess(a, b Payment) bool {
	if a.UserID != b.UserID {
		return a.UserID < b.UserID
	}
	if !a.PayDate.Equal(b.PayDate) {
		return a.PayDate.Before(b.PayDate)
	}
	if a.PayAddress != b.PayAddress {
		return a.PayAddress < b.PayAddress
	}
	if !a.ExpiryDate.Equal(b.ExpiryDate) {
		return a.ExpiryDate.After(b.ExpiryDate)
	}
	return a.PaymentID < b.PaymentID
}

// Payments is the in-memory mirror of the payments table.
type Payments struct {
	tb *table.Table[Payment]
}

// NewPayments constructs an empty Payments mirror.
func NewPayments() *Payments {
	return &Payments{tb: table.New(paymentLess)}
}

// Add records a new payment. Payments are an append-only event log — there
// is no update/expire path, only new rows (spec.md §4.D lists no special
// case for payments beyond the common add/fill/reload shape).
func (p *Payments) Add(ctx context.Context, gw dbgateway.DB, code string, userid int64, paydate time.Time, payaddress, originaltxn string, amount float64) (Payment, error) {
	paymentid, err := gw.NextID(ctx, "paymentid", 1)
	if err != nil {
		return Payment{}, ckerr.Wrap("entity.Payments.Add allocate paymentid", err)
	}

	row := Payment{
		PaymentID:   paymentid,
		UserID:      userid,
		PayDate:     paydate,
		PayAddress:  payaddress,
		OriginalTxn: originaltxn,
		Amount:      amount,
		History:     NewHistory(code),
	}

	_, err = gw.Exec(ctx, `INSERT INTO payments
		(payid, userid, paydate, payaddress, originaltxn, amount, diffacc, createdate, createby, createcode, createinet, expirydate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		row.PaymentID, row.UserID, row.PayDate, row.PayAddress, row.OriginalTxn, row.Amount, 0.0,
		row.CreateDate, row.CreateBy, row.CreateCode, row.CreateInet, row.ExpiryDate)
	if err != nil {
		return Payment{}, ckerr.Wrap("entity.Payments.Add insert", err)
	}

	p.tb.Insert(row)
	return row, nil
}

// ForUser iterates every live payment for userid in ascending paydate
// order, matching scenario S6.
func (p *Payments) ForUser(userid int64, fn func(Payment) bool) {
	from := Payment{UserID: userid, History: History{ExpiryDate: ckconst.DateEOT}}
	to := Payment{UserID: userid + 1, History: History{ExpiryDate: ckconst.DateEOT}}
	p.tb.Ascend(from, to, func(row Payment) bool {
		if !row.IsLive() {
			return true
		}
		return fn(row)
	})
}

// Fill populates the mirror from every live row in the database.
func (p *Payments) Fill(ctx context.Context, gw dbgateway.DB) error {
	rows, err := gw.Query(ctx, `SELECT payid, userid, paydate, payaddress, originaltxn, amount,
		createdate, createby, createcode, createinet, expirydate
		FROM payments WHERE expirydate = $1`, ckconst.DefaultExpiry)
	if err != nil {
		return ckerr.Wrap("entity.Payments.Fill query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row Payment
		if err := rows.Scan(&row.PaymentID, &row.UserID, &row.PayDate, &row.PayAddress, &row.OriginalTxn, &row.Amount,
			&row.CreateDate, &row.CreateBy, &row.CreateCode, &row.CreateInet, &row.ExpiryDate); err != nil {
			return ckerr.Wrap("entity.Payments.Fill scan", err)
		}
		p.tb.Insert(row)
	}
	return ckerr.Wrap("entity.Payments.Fill rows", rows.Err())
}

// Reload discards the mirror and repopulates it from the database.
func (p *Payments) Reload(ctx context.Context, gw dbgateway.DB) error {
	p.tb.Clear()
	return p.Fill(ctx, gw)
}

// Len reports how many rows the mirror holds.
func (p *Payments) Len() int { return p.tb.Len() }
