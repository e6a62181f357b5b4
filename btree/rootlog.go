package btree

import "sync/atomic"

// rootEntry records which node was the root from a given timestamp onward.
type rootEntry[V any] struct {
	ts   uint64
	root *node[V]
}

// rootLog is the append-only history of root identities, ascending by
// timestamp. Root splits (and the very first insert) append to it; a query
// bound to a timestamp starts its descent from the root in effect then.
// Growth swaps in a copied slice through an atomic pointer, keeping
// snapshot-bound readers lock-free.
type rootLog[V any] struct {
	entries atomic.Pointer[[]rootEntry[V]]
}

// current returns the present root, or nil if the tree has never held a key.
func (l *rootLog[V]) current() *node[V] {
	p := l.entries.Load()
	if p == nil || len(*p) == 0 {
		return nil
	}
	return (*p)[len(*p)-1].root
}

// at returns the root in effect at asOf, or nil if the tree was empty then.
func (l *rootLog[V]) at(asOf uint64) *node[V] {
	p := l.entries.Load()
	if p == nil {
		return nil
	}
	entries := *p
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].ts <= asOf {
			return entries[i].root
		}
	}
	return nil
}

// push appends a new root effective from ts. Writer-only.
func (l *rootLog[V]) push(ts uint64, root *node[V]) {
	var entries []rootEntry[V]
	if p := l.entries.Load(); p != nil {
		entries = *p
	}
	if len(entries) > 0 && ts <= entries[len(entries)-1].ts {
		panic(invariantf("rootlog", "non-increasing root timestamp %d", ts))
	}
	grown := make([]rootEntry[V], len(entries)+1)
	copy(grown, entries)
	grown[len(entries)] = rootEntry[V]{ts: ts, root: root}
	l.entries.Store(&grown)
}

// len returns the number of root transitions.
func (l *rootLog[V]) len() int {
	p := l.entries.Load()
	if p == nil {
		return 0
	}
	return len(*p)
}

// all returns the recorded entries. Writer/introspection use.
func (l *rootLog[V]) all() []rootEntry[V] {
	p := l.entries.Load()
	if p == nil {
		return nil
	}
	return *p
}
