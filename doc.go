// Package mvbtree provides an embedded multiversion B-tree for Go.
//
// Every mutation stamps a new logical timestamp, and superseded node
// versions stay reachable, so the tree answers queries against any
// snapshot of its history as cheaply as against the current state:
//
//   - Ordered int64 keys with generic values
//   - Point lookups, half-open range queries and key listing
//   - O(1) snapshots with snapshot-isolated, lock-free reads
//   - In-place mutation of the newest version when no snapshot pins it
//   - Self-describing compressed checkpoints on local disk, S3 or MinIO
//   - DynamoDB-backed commit catalog for coordinating writers
//
// # Quick Start
//
// Build a tree with the fluent builder:
//
//	db, err := mvbtree.New[string]().
//	    BranchingFactor(32).
//	    Build()
//	if err != nil {
//	    panic(err)
//	}
//
//	ctx := context.Background()
//	db.Insert(ctx, 42, "answer")
//
//	snap := db.TakeSnapshot(ctx)
//	db.Erase(ctx, 42)
//
//	// The snapshot still sees the erased key.
//	v, found, _ := db.Find(ctx, 42, mvbtree.AtSnapshot(snap))
//
// Persist and restore:
//
//	mgr := checkpoint.NewManager(store)
//	name, err := db.SaveCheckpoint(ctx, mgr)
//
//	db2, err := mvbtree.New[string]().BuildFromCheckpoint(ctx, mgr)
//
// For the mutation and visibility rules, see package btree.
package mvbtree
