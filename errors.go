package mvbtree

import (
	"errors"

	"github.com/hupe1980/mvbtree/btree"
)

var (
	// ErrNotFound is returned when an item is not found.
	ErrNotFound = errors.New("not found")

	// ErrUnknownSnapshot is returned when a query names a snapshot that was
	// never taken or has been released.
	ErrUnknownSnapshot = btree.ErrUnknownSnapshot
)
