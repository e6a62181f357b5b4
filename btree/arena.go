package btree

import "sync/atomic"

// VersionID is the arena index of a version record. IDs are assigned
// monotonically and never reused; "older" links between versions are plain
// ids rather than pointers.
type VersionID uint32

// noVersion marks the tail of a chain and the head of a node that has not
// published a version yet.
const noVersion = ^VersionID(0)

const (
	arenaChunkBits = 10
	arenaChunkSize = 1 << arenaChunkBits
	arenaChunkMask = arenaChunkSize - 1
)

type arenaChunk[V any] [arenaChunkSize]version[V]

// arena is a chunked, append-only store of version records. Chunks are never
// relocated, so a record's address stays valid once published; growth swaps
// in a copied outer slice through an atomic pointer so lock-free readers can
// index concurrently with the single writer.
type arena[V any] struct {
	chunks atomic.Pointer[[]*arenaChunk[V]]
	count  atomic.Uint32
}

// alloc stores rec and returns its id. Writer-only: the record is fully
// written before the count is published.
func (a *arena[V]) alloc(rec version[V]) VersionID {
	id := a.count.Load()
	ci := int(id >> arenaChunkBits)

	var chunks []*arenaChunk[V]
	if p := a.chunks.Load(); p != nil {
		chunks = *p
	}
	if ci == len(chunks) {
		grown := make([]*arenaChunk[V], ci+1)
		copy(grown, chunks)
		grown[ci] = new(arenaChunk[V])
		a.chunks.Store(&grown)
		chunks = grown
	}

	chunks[ci][id&arenaChunkMask] = rec
	a.count.Store(id + 1)
	return VersionID(id)
}

// at returns the record with the given id. The pointer stays valid for the
// lifetime of the arena.
func (a *arena[V]) at(id VersionID) *version[V] {
	chunks := *a.chunks.Load()
	return &chunks[uint32(id)>>arenaChunkBits][uint32(id)&arenaChunkMask]
}

// len returns the number of records ever allocated.
func (a *arena[V]) len() int {
	return int(a.count.Load())
}
