package btree

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidState is returned when an imported TreeState is internally
// inconsistent (bad child references, non-increasing timestamps, payload
// length mismatches).
var ErrInvalidState = errors.New("invalid tree state")

// TreeState is the serializable form of a tree: every node with its full
// chain, the root history, the snapshot table and the clock. It exists for
// the checkpoint layer; the engine itself never touches IO.
type TreeState[V any] struct {
	BranchingFactor int
	Clock           uint64
	NextSnapshotID  SnapshotID
	Snapshots       map[SnapshotID]uint64
	Nodes           []NodeState[V]
	Roots           []RootState
}

// NodeState holds one node identity's chain, oldest version first.
type NodeState[V any] struct {
	Leaf     bool
	Versions []VersionState[V]
}

// VersionState is one version record; Children are indices into
// TreeState.Nodes.
type VersionState[V any] struct {
	Timestamp uint64
	Keys      []int64
	Values    []V
	Dead      []bool
	Seps      []int64
	Children  []int
}

// RootState records a root transition; Node indexes TreeState.Nodes.
type RootState struct {
	Timestamp uint64
	Node      int
}

// ExportState captures the complete engine state. Must be serialized with
// mutations, like any current-state read.
func (t *Tree[V]) ExportState() *TreeState[V] {
	index := make(map[*node[V]]int)
	var order []*node[V]
	t.walkNodes(func(n *node[V]) {
		index[n] = len(order)
		order = append(order, n)
	})

	s := &TreeState[V]{
		BranchingFactor: t.branching,
		Clock:           t.clock.Now(),
		Nodes:           make([]NodeState[V], len(order)),
	}
	s.NextSnapshotID, s.Snapshots = t.snapshots.export()

	for i, n := range order {
		ns := NodeState[V]{Leaf: n.leaf}
		// Chains are stored newest-first; serialize oldest-first so import
		// can replay appends.
		var chain []*version[V]
		for id := n.headID(); id != noVersion; {
			v := t.arena.at(id)
			chain = append(chain, v)
			id = v.older
		}
		for j := len(chain) - 1; j >= 0; j-- {
			v := chain[j]
			// Copy payloads: the head version may be mutated in place
			// while the caller is still serializing the export.
			vs := VersionState[V]{
				Timestamp: v.ts,
				Keys:      slices.Clone(v.keys),
				Values:    slices.Clone(v.vals),
				Dead:      slices.Clone(v.dead),
				Seps:      slices.Clone(v.seps),
			}
			for _, child := range v.children {
				vs.Children = append(vs.Children, index[child])
			}
			ns.Versions = append(ns.Versions, vs)
		}
		s.Nodes[i] = ns
	}

	for _, e := range t.roots.all() {
		s.Roots = append(s.Roots, RootState{Timestamp: e.ts, Node: index[e.root]})
	}
	return s
}

// NewFromState rebuilds a tree from an exported state. The state is
// validated up front; replaying a corrupt checkpoint returns ErrInvalidState
// instead of tripping engine invariants later.
func NewFromState[V any](s *TreeState[V]) (*Tree[V], error) {
	if s.BranchingFactor < MinBranchingFactor {
		return nil, fmt.Errorf("btree: %w: branching factor %d", ErrInvalidState, s.BranchingFactor)
	}
	if err := validateState(s); err != nil {
		return nil, err
	}

	clock := NewClock(s.Clock)
	snapshots := &SnapshotTable{
		nextID: s.NextSnapshotID,
		live:   make(map[SnapshotID]uint64, len(s.Snapshots)),
	}
	for id, ts := range s.Snapshots {
		snapshots.live[id] = ts
	}

	t := &Tree[V]{branching: s.BranchingFactor, clock: clock, snapshots: snapshots}

	nodes := make([]*node[V], len(s.Nodes))
	for i, ns := range s.Nodes {
		nodes[i] = newNode[V](ns.Leaf)
	}
	for i, ns := range s.Nodes {
		for _, vs := range ns.Versions {
			rec := version[V]{
				ts:   vs.Timestamp,
				keys: vs.Keys,
				vals: vs.Values,
				dead: vs.Dead,
				seps: vs.Seps,
			}
			for _, ci := range vs.Children {
				rec.children = append(rec.children, nodes[ci])
			}
			t.appendVersion(nodes[i], rec)
		}
	}
	for _, r := range s.Roots {
		t.roots.push(r.Timestamp, nodes[r.Node])
	}
	return t, nil
}

func validateState[V any](s *TreeState[V]) error {
	for i, ns := range s.Nodes {
		if len(ns.Versions) == 0 {
			return fmt.Errorf("btree: %w: node %d has an empty chain", ErrInvalidState, i)
		}
		last := uint64(0)
		for j, vs := range ns.Versions {
			if j > 0 && vs.Timestamp <= last {
				return fmt.Errorf("btree: %w: node %d has non-increasing version timestamps", ErrInvalidState, i)
			}
			last = vs.Timestamp
			if vs.Timestamp > s.Clock {
				return fmt.Errorf("btree: %w: node %d stamped past the clock", ErrInvalidState, i)
			}
			if ns.Leaf {
				if len(vs.Keys) != len(vs.Values) || len(vs.Keys) != len(vs.Dead) {
					return fmt.Errorf("btree: %w: node %d leaf payload length mismatch", ErrInvalidState, i)
				}
			} else if len(vs.Children) != len(vs.Seps)+1 {
				return fmt.Errorf("btree: %w: node %d has %d children for %d separators",
					ErrInvalidState, i, len(vs.Children), len(vs.Seps))
			}
			for _, ci := range vs.Children {
				if ci < 0 || ci >= len(s.Nodes) {
					return fmt.Errorf("btree: %w: node %d references child %d", ErrInvalidState, i, ci)
				}
			}
		}
	}
	last := uint64(0)
	for i, r := range s.Roots {
		if r.Node < 0 || r.Node >= len(s.Nodes) {
			return fmt.Errorf("btree: %w: root %d references node %d", ErrInvalidState, i, r.Node)
		}
		if i > 0 && r.Timestamp <= last {
			return fmt.Errorf("btree: %w: non-increasing root timestamps", ErrInvalidState)
		}
		last = r.Timestamp
	}
	return nil
}

// export snapshots the table contents for serialization.
func (st *SnapshotTable) export() (SnapshotID, map[SnapshotID]uint64) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make(map[SnapshotID]uint64, len(st.live))
	for id, ts := range st.live {
		out[id] = ts
	}
	return st.nextID, out
}
