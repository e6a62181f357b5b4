package btree

import (
	"errors"
	"fmt"
)

// ErrUnknownSnapshot is returned when a query references a snapshot id that
// was never issued or has already been released. It is a caller error and is
// never retried internally.
var ErrUnknownSnapshot = errors.New("unknown snapshot")

// InvariantError is the panic value raised on a fatal engine invariant
// breach: appending a version with a non-increasing timestamp, or failing to
// resolve a visible version on a node that must have one. Both indicate a
// construction bug, not bad input, and must never be swallowed.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("btree: invariant violated in %s: %s", e.Op, e.Detail)
}

func invariantf(op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
