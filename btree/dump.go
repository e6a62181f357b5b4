package btree

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented structural listing of the current state to w.
// Debugging aid; the format is not stable.
func (t *Tree[V]) Dump(w io.Writer) error {
	return t.dumpAsOf(w, t.clock.Now())
}

// DumpAt writes the structure of the cut pinned by the given snapshot.
func (t *Tree[V]) DumpAt(w io.Writer, snap SnapshotID) error {
	asOf, err := t.snapshots.Lookup(snap)
	if err != nil {
		return err
	}
	return t.dumpAsOf(w, asOf)
}

func (t *Tree[V]) dumpAsOf(w io.Writer, asOf uint64) error {
	root := t.roots.at(asOf)
	if root == nil {
		_, err := fmt.Fprintln(w, "(empty tree)")
		return err
	}
	return t.dumpNode(w, root, asOf, 0)
}

func (t *Tree[V]) dumpNode(w io.Writer, n *node[V], asOf uint64, depth int) error {
	indent := strings.Repeat("  ", depth)
	v := t.resolveMust(n, asOf)

	if n.leaf {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%sLeaf[ts=%d]", indent, v.ts)
		for i, k := range v.keys {
			if v.dead[i] {
				fmt.Fprintf(&sb, " %d=<tombstone>", k)
			} else {
				fmt.Fprintf(&sb, " %d=%v", k, v.vals[i])
			}
		}
		_, err := fmt.Fprintln(w, sb.String())
		return err
	}

	if _, err := fmt.Fprintf(w, "%sInternal[ts=%d] seps=%v\n", indent, v.ts, v.seps); err != nil {
		return err
	}
	for _, child := range v.children {
		if err := t.dumpNode(w, child, asOf, depth+1); err != nil {
			return err
		}
	}
	return nil
}
