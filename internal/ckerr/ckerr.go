// Package ckerr defines ckdb's error taxonomy (spec.md §7): sentinel
// errors for the handler/request layer, distinct from the fatal
// log.Fatalf-triggering invariant violations that abort the process at
// bootstrap.
//
// Grounded on the teacher's internal/storage/sqlite/errors.go
// wrapDBError/sentinel-error idiom.
package ckerr

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the storage and entity layers.
var (
	// ErrNotFound indicates a lookup (business key, or a referenced
	// workinfo/worker row) found nothing live.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique-constraint race: another writer
	// already holds the live row for this business key.
	ErrConflict = errors.New("conflict")

	// ErrIntegrity indicates a share/shareerror failed to resolve its
	// required workinfo or worker reference (spec.md §3 invariant 2).
	ErrIntegrity = errors.New("referential integrity violation")

	// ErrDB wraps any otherwise-unclassified database failure.
	ErrDB = errors.New("database error")
)

// Wrap annotates err with an operation label and, when err is sql.ErrNoRows
// (or a pgx "no rows" condition already translated to ErrNotFound by the
// caller), keeps the sentinel classifiable via errors.Is.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is or wraps ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsIntegrity reports whether err is or wraps ErrIntegrity.
func IsIntegrity(err error) bool { return errors.Is(err, ErrIntegrity) }
