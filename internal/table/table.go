// Package table implements the temporal in-memory table abstraction from
// spec.md §4.A: an ordered, lock-guarded container holding the rows (live
// and expired) of one entity, where ordering always places "expirydate desc" last so the
// live row (max expirydate) sorts first within any business-key prefix.
//
// The container is backed by github.com/google/btree, a balanced tree with
// stable sorted iteration — exactly the kind of "any container with stable
// iteration" §4.A calls for, replacing the source's hand-rolled tree plus
// free-list allocator (an implementation detail out of scope per spec.md
// §1). Locking follows the teacher's internal/rpc/label_cache.go idiom: one
// sync.RWMutex guarding a single data structure, writers exclusive, readers
// shared.
package table

import (
	"sync"

	"github.com/google/btree"
)

// Less reports whether a sorts strictly before b under the table's total
// order. Implementations must place the entity's history-expiry field last,
// ordered descending, so that among rows sharing a business key the live
// row (maximum expirydate) comes first.
type Less[V any] func(a, b V) bool

// degree is the branching factor handed to btree.NewG; 32 is the value the
// btree package's own docs recommend for general use.
const degree = 32

// Table is a generic temporal table over rows of type V.
type Table[V any] struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[V]
	less Less[V]
}

// New creates an empty table ordered by less.
func New[V any](less Less[V]) *Table[V] {
	return &Table[V]{
		tree: btree.NewG(degree, btree.LessFunc[V](less)),
		less: less,
	}
}

// Insert adds v to the table. Callers are responsible for not inserting two
// rows that compare equal under less (e.g. two live rows for the same
// business key) — the caller-side invariant from spec.md §3 invariant 1.
func (t *Table[V]) Insert(v V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tree.ReplaceOrInsert(v)
}

// Delete removes the row equal to v under less (exact business-key+expiry
// match) and reports whether it was present.
func (t *Table[V]) Delete(v V) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tree.Delete(v)
}

// Find locates the live row for the business key encoded in probe. probe
// must carry the same-key fields as the row being searched for and an
// expiry value that sorts first among same-key rows (the entity's live
// sentinel). sameKey reports whether two rows share a business key
// (ignoring expirydate); isLive reports whether a row is the current
// version. Find returns the first same-key row in ascending order and
// confirms it is live; if the first same-key row is already expired (or
// there is no same-key row at all), Find reports not-found — the correct
// behavior, since an expired key has no live row.
func (t *Table[V]) Find(probe V, sameKey func(a, b V) bool, isLive func(V) bool) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var (
		found V
		ok    bool
	)
	t.tree.AscendGreaterOrEqual(probe, func(item V) bool {
		if !sameKey(probe, item) {
			return false
		}
		if isLive(item) {
			found, ok = item, true
		}
		return false
	})
	return found, ok
}

// Ascend iterates rows in [from, to) order (greater-or-equal from, strictly
// less than to), calling fn for each until fn returns false or the range is
// exhausted. The whole call runs under a read lock, so iteration is stable
// with respect to concurrent writers (§4.A's contract) but must not block
// for long — callers should copy rows out rather than do expensive work per
// callback.
func (t *Table[V]) Ascend(from, to V, fn func(V) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.tree.AscendRange(from, to, func(item V) bool {
		return fn(item)
	})
}

// DescendLessOrEqual iterates rows less-than-or-equal-to pivot in
// descending order, implementing §4.A's find_before(key): the first row fn
// sees is the closest row at or before pivot.
func (t *Table[V]) DescendLessOrEqual(pivot V, fn func(V) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.tree.DescendLessOrEqual(pivot, func(item V) bool {
		return fn(item)
	})
}

// AscendAll iterates every row in order.
func (t *Table[V]) AscendAll(fn func(V) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.tree.Ascend(func(item V) bool {
		return fn(item)
	})
}

// Len returns the number of rows currently stored (live and historical).
func (t *Table[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Len()
}

// Clear removes every row, used by Reload to purge an entity's indexes
// before re-populating from the database (spec.md §3 "Lifecycle").
func (t *Table[V]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tree.Clear(false)
}
