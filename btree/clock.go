package btree

import "sync/atomic"

// Clock is a process-wide monotonically increasing logical timestamp source.
// Every mutation and every snapshot advances it by exactly one, so no two
// operations ever observe the same instant as distinct points in time.
//
// A Clock is safe for concurrent use and may be shared across trees to put
// them in a single timestamp domain.
type Clock struct {
	ts atomic.Uint64
}

// NewClock creates a Clock starting at the given value. Tests typically pin
// the start to make stamped timestamps deterministic.
func NewClock(start uint64) *Clock {
	c := &Clock{}
	c.ts.Store(start)
	return c
}

// Now returns the current timestamp without advancing it.
func (c *Clock) Now() uint64 {
	return c.ts.Load()
}

// Next advances the clock by one and returns the new value.
func (c *Clock) Next() uint64 {
	return c.ts.Add(1)
}
