package port

import "errors"

var (
	// ErrOptimisticLock means the row changed (or vanished) since it was read.
	ErrOptimisticLock = errors.New("optimistic lock conflict")

	// ErrDuplicateKey is returned by InsertItem when the id is already taken.
	ErrDuplicateKey = errors.New("duplicate key")
)
