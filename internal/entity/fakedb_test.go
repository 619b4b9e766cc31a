package entity

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB is an in-memory stand-in for dbgateway.DB, grounded on the
// teacher's pattern of testing storage logic against a lightweight fake
// rather than a live database (spec_full §1.4). It only implements enough
// behavior for entity package tests: NextID sequence bookkeeping and
// ExpireAndInsert/Exec as no-ops that simply succeed, since entity tests
// assert on the in-memory mirror, not on round-tripped SQL text.
type fakeDB struct {
	mu   sync.Mutex
	seqs map[string]int64

	failNextExec   bool
	failNextNextID bool
	zeroRowsExec   bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{seqs: make(map[string]int64)}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	if f.failNextExec {
		f.failNextExec = false
		return pgconn.CommandTag{}, errFakeDB
	}
	if f.zeroRowsExec {
		f.zeroRowsExec = false
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row { return nil }

func (f *fakeDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, errFakeDB
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) { return nil, errFakeDB }

func (f *fakeDB) NextID(ctx context.Context, idname string, increment int64) (int64, error) {
	if f.failNextNextID {
		f.failNextNextID = false
		return 0, errFakeDB
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seqs[idname] += increment
	return f.seqs[idname], nil
}

func (f *fakeDB) ExpireAndInsert(ctx context.Context, table, expireWhere string, expireArgs []interface{}, now time.Time, insertSQL string, insertArgs []interface{}) error {
	if f.failNextExec {
		f.failNextExec = false
		return errFakeDB
	}
	return nil
}

var errFakeDB = context.DeadlineExceeded // reused as a stand-in "database error" sentinel
