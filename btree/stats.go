package btree

// Stats is a read-only structural summary of a tree.
type Stats struct {
	// Nodes counts node identities ever created (old roots included).
	Nodes int
	// Keys counts live keys in the current state.
	Keys int
	// Height is the root-to-leaf path length of the current state; 0 when
	// the tree is empty.
	Height int
	// Versions counts version records ever published.
	Versions int
	// MaxChainLength is the longest version chain of any node.
	MaxChainLength int
	// CurrentTimestamp is the clock value at the time of the call.
	CurrentTimestamp uint64
	// Snapshots counts live snapshots.
	Snapshots int
}

// Stats computes the current structural summary. It walks every node
// identity reachable from any root the tree ever had, so chain lengths of
// historical structure are included.
func (t *Tree[V]) Stats() Stats {
	s := Stats{
		Versions:         t.arena.len(),
		CurrentTimestamp: t.clock.Now(),
		Snapshots:        t.snapshots.Count(),
	}

	t.walkNodes(func(n *node[V]) {
		s.Nodes++
		if l := t.chainLen(n); l > s.MaxChainLength {
			s.MaxChainLength = l
		}
	})

	now := t.clock.Now()
	if root := t.roots.at(now); root != nil {
		for n := root; ; {
			s.Height++
			if n.leaf {
				break
			}
			n = t.resolveMust(n, now).children[0]
		}
		s.Keys = len(t.keysAsOf(now))
	}
	return s
}

// walkNodes visits every node identity exactly once, including nodes only
// reachable from historical roots or historical versions.
func (t *Tree[V]) walkNodes(fn func(*node[V])) {
	visited := make(map[*node[V]]struct{})
	var stack []*node[V]
	for _, e := range t.roots.all() {
		if _, ok := visited[e.root]; !ok {
			visited[e.root] = struct{}{}
			stack = append(stack, e.root)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(n)
		for id := n.headID(); id != noVersion; {
			v := t.arena.at(id)
			for _, child := range v.children {
				if _, ok := visited[child]; !ok {
					visited[child] = struct{}{}
					stack = append(stack, child)
				}
			}
			id = v.older
		}
	}
}

// VersionInfo describes one version record for reclamation queries.
type VersionInfo struct {
	// ID is the record's arena id.
	ID VersionID
	// Timestamp is the instant the version became current.
	Timestamp uint64
	// SuccessorTimestamp is the timestamp of the next newer version in the
	// chain; meaningful only when IsHead is false.
	SuccessorTimestamp uint64
	// IsHead reports whether the version is its chain's head, i.e. visible
	// to the current state.
	IsHead bool
	// Leaf reports the owning node's kind.
	Leaf bool
}

// WalkVersions visits every version record of every node. fn returning false
// stops the walk. Reclamation trackers use this to decide which versions no
// live snapshot can still reach.
func (t *Tree[V]) WalkVersions(fn func(VersionInfo) bool) {
	stopped := false
	t.walkNodes(func(n *node[V]) {
		if stopped {
			return
		}
		successor := uint64(0)
		isHead := true
		for id := n.headID(); id != noVersion; {
			v := t.arena.at(id)
			if !fn(VersionInfo{
				ID:                 id,
				Timestamp:          v.ts,
				SuccessorTimestamp: successor,
				IsHead:             isHead,
				Leaf:               n.leaf,
			}) {
				stopped = true
				return
			}
			successor = v.ts
			isHead = false
			id = v.older
		}
	})
}
