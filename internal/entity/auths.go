package entity

import (
	"context"

	"github.com/ckpool/ckdb/internal/ckconst"
	"github.com/ckpool/ckdb/internal/ckerr"
	"github.com/ckpool/ckdb/internal/dbgateway"
	"github.com/ckpool/ckdb/internal/table"
)

// Auth is the spec.md §3 "auths" row: a record of a worker authorisation
// event.
type Auth struct {
	AuthID     int64
	UserID     int64
	WorkerName string
	ClientID   int64
	Enonce1    string
	UserAgent  string
	History
}

func authLess(a, b Auth) bool {
	if a.AuthID != b.AuthID {
		return a.AuthID < b.AuthID
	}
	return a.ExpiryDate.After(b.ExpiryDate)
}

// Auths is the in-memory mirror of the auths table.
type Auths struct {
	tb *table.Table[Auth]
}

// NewAuths constructs an empty Auths mirror.
func NewAuths() *Auths {
	return &Auths{tb: table.New(authLess)}
}

// Add records an authorisation event. Every successful authorise request
// adds one auths row, regardless of whether the worker already existed.
func (a *Auths) Add(ctx context.Context, gw dbgateway.DB, code string, userid int64, workername string, clientid int64, enonce1, useragent string) (Auth, error) {
	authid, err := gw.NextID(ctx, "authid", 1)
	if err != nil {
		return Auth{}, ckerr.Wrap("entity.Auths.Add allocate authid", err)
	}

	row := Auth{
		AuthID:     authid,
		UserID:     userid,
		WorkerName: workername,
		ClientID:   clientid,
		Enonce1:    enonce1,
		UserAgent:  useragent,
		History:    NewHistory(code),
	}

	_, err = gw.Exec(ctx, `INSERT INTO auths
		(authid, userid, workername, clientid, enonce1, useragent, createdate, createby, createcode, createinet, expirydate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		row.AuthID, row.UserID, row.WorkerName, row.ClientID, row.Enonce1, row.UserAgent,
		row.CreateDate, row.CreateBy, row.CreateCode, row.CreateInet, row.ExpiryDate)
	if err != nil {
		return Auth{}, ckerr.Wrap("entity.Auths.Add insert", err)
	}

	a.tb.Insert(row)
	return row, nil
}

// Fill populates the mirror from every live row in the database.
func (a *Auths) Fill(ctx context.Context, gw dbgateway.DB) error {
	rows, err := gw.Query(ctx, `SELECT authid, userid, workername, clientid, enonce1, useragent,
		createdate, createby, createcode, createinet, expirydate
		FROM auths WHERE expirydate = $1`, ckconst.DefaultExpiry)
	if err != nil {
		return ckerr.Wrap("entity.Auths.Fill query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row Auth
		if err := rows.Scan(&row.AuthID, &row.UserID, &row.WorkerName, &row.ClientID, &row.Enonce1, &row.UserAgent,
			&row.CreateDate, &row.CreateBy, &row.CreateCode, &row.CreateInet, &row.ExpiryDate); err != nil {
			return ckerr.Wrap("entity.Auths.Fill scan", err)
		}
		a.tb.Insert(row)
	}
	return ckerr.Wrap("entity.Auths.Fill rows", rows.Err())
}

// Reload discards the mirror and repopulates it from the database.
func (a *Auths) Reload(ctx context.Context, gw dbgateway.DB) error {
	a.tb.Clear()
	return a.Fill(ctx, gw)
}

// Len reports how many rows the mirror holds.
func (a *Auths) Len() int { return a.tb.Len() }
