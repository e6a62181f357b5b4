// Package checkpoint serializes whole-tree state to durable blobs.
//
// A checkpoint file is self-describing: a fixed header carries the magic
// number, format version, compression scheme and codec name, followed by the
// compressed state payload and a CRC32 of the payload bytes. Load validates
// all of it before handing the state back, so a truncated or corrupted blob
// fails loudly instead of reviving a broken tree.
//
// Manager layers checkpoint naming, retention and discovery on top of a
// blobstore.Store.
package checkpoint
