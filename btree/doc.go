// Package btree implements the versioned B-Tree engine underlying mvbtree.
//
// Every node is an identity whose mutable state lives entirely in an
// append-only chain of immutable versions, ordered newest-first by logical
// timestamp. Mutations either copy-on-write (append a version stamped with
// the operation's timestamp) or, when no snapshot could observe the
// superseded payload, mutate the chain head in place. Queries resolve every
// node they touch independently at a single timestamp, which is what makes
// a snapshot-bound read a consistent cut of the tree.
//
// # Concurrency Contract
//
//   - One writer at a time. Insert, Erase and the snapshot-table mutations
//     must be externally serialized (the mvbtree facade holds a write lock).
//   - Snapshot-bound reads (FindAt/RangeAt with a timestamp pinned by a live
//     snapshot) never block and need no lock: versions are fully constructed
//     before their node's head pointer is published, and a reader walking
//     "older" links only ever crosses immutable records.
//   - Current-timestamp reads race with in-place mutation by design and must
//     share the writer's lock.
//
// The Clock and SnapshotTable are the only global mutable state; both are
// internally synchronized so several trees can share one timestamp domain.
package btree
