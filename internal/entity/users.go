package entity

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/ckpool/ckdb/internal/ckconst"
	"github.com/ckpool/ckdb/internal/ckerr"
	"github.com/ckpool/ckdb/internal/dbgateway"
	"github.com/ckpool/ckdb/internal/table"
)

// User is the spec.md §3 "users" row: userid, username (unique among
// live), emailaddress, passwordhash, secondaryuserid.
type User struct {
	UserID          int64
	Username        string
	EmailAddress    string
	PasswordHash    string
	SecondaryUserID string
	History
}

func userLess(a, b User) bool {
	if a.Username != b.Username {
		return a.Username < b.Username
	}
	return a.ExpiryDate.After(b.ExpiryDate)
}

func userSameKey(a, b User) bool { return a.Username == b.Username }
func userIsLive(u User) bool     { return u.IsLive() }

// Users is the in-memory mirror of the users table.
type Users struct {
	tb *table.Table[User]
}

// NewUsers constructs an empty Users mirror.
func NewUsers() *Users {
	return &Users{tb: table.New(userLess)}
}

// BernsteinHash implements spec.md §3 invariant 3's
// h = ((h<<5)+h) + c accumulation (djb2-style), over the literal
// "{username}&#{emailaddress}".
func BernsteinHash(username, emailaddress string) uint64 {
	var h uint64
	for _, c := range []byte(username + "&#" + emailaddress) {
		h = ((h << 5) + h) + uint64(c)
	}
	return h
}

// SecondaryUserID renders BernsteinHash as a lowercase 16-hex-char digest.
func SecondaryUserID(username, emailaddress string) string {
	return fmt.Sprintf("%016x", BernsteinHash(username, emailaddress))
}

// randUserIDGap returns a uniform random increment in
// [ckconst.UserIDGapMin, ckconst.UserIDGapMax], the privacy-preserving gap
// from spec.md §3 invariant 4.
func randUserIDGap() int64 {
	return int64(ckconst.UserIDGapMin + rand.Intn(ckconst.UserIDGapMax-ckconst.UserIDGapMin+1))
}

// Find returns the live user row for username.
func (u *Users) Find(username string) (User, bool) {
	return u.tb.Find(User{Username: username, History: History{ExpiryDate: ckconst.DefaultExpiry}}, userSameKey, userIsLive)
}

// Add registers a brand-new user. It fails with ckerr.ErrConflict if a live
// row for username already exists (spec.md §3 invariant 1).
func (u *Users) Add(ctx context.Context, gw dbgateway.DB, code, username, emailaddress, passwordhash string) (User, error) {
	if _, ok := u.Find(username); ok {
		return User{}, ckerr.ErrConflict
	}

	userid, err := gw.NextID(ctx, "userid", randUserIDGap())
	if err != nil {
		return User{}, ckerr.Wrap("entity.Users.Add allocate userid", err)
	}

	row := User{
		UserID:          userid,
		Username:        username,
		EmailAddress:    emailaddress,
		PasswordHash:    passwordhash,
		SecondaryUserID: SecondaryUserID(username, emailaddress),
		History:         NewHistory(code),
	}

	_, err = gw.Exec(ctx, `INSERT INTO users
		(userid, username, emailaddress, passwordhash, secondaryuserid, createdate, createby, createcode, createinet, expirydate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		row.UserID, row.Username, row.EmailAddress, row.PasswordHash, row.SecondaryUserID,
		row.CreateDate, row.CreateBy, row.CreateCode, row.CreateInet, row.ExpiryDate)
	if err != nil {
		return User{}, ckerr.Wrap("entity.Users.Add insert", err)
	}

	u.tb.Insert(row)
	return row, nil
}

// Fill populates the mirror from every live row in the database, for use
// at bootstrap and by Reload.
func (u *Users) Fill(ctx context.Context, gw dbgateway.DB) error {
	rows, err := gw.Query(ctx, `SELECT userid, username, emailaddress, passwordhash, secondaryuserid,
		createdate, createby, createcode, createinet, expirydate
		FROM users WHERE expirydate = $1`, ckconst.DefaultExpiry)
	if err != nil {
		return ckerr.Wrap("entity.Users.Fill query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row User
		if err := rows.Scan(&row.UserID, &row.Username, &row.EmailAddress, &row.PasswordHash, &row.SecondaryUserID,
			&row.CreateDate, &row.CreateBy, &row.CreateCode, &row.CreateInet, &row.ExpiryDate); err != nil {
			return ckerr.Wrap("entity.Users.Fill scan", err)
		}
		u.tb.Insert(row)
	}
	return ckerr.Wrap("entity.Users.Fill rows", rows.Err())
}

// Reload discards the mirror and repopulates it from the database.
func (u *Users) Reload(ctx context.Context, gw dbgateway.DB) error {
	u.tb.Clear()
	return u.Fill(ctx, gw)
}

// Len reports how many rows (live and historical) the mirror holds.
func (u *Users) Len() int { return u.tb.Len() }
