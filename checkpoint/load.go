package checkpoint

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/hupe1980/mvbtree/btree"
	"github.com/hupe1980/mvbtree/codec"
)

// Load reads a checkpoint file from r and returns the decoded tree state.
// The codec and compression scheme come from the file header; the payload
// checksum is verified before decoding.
func Load[V any](r io.Reader) (*btree.TreeState[V], error) {
	var fixed [8]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, fmt.Errorf("checkpoint: read header: %w", err)
	}

	if magic := binary.BigEndian.Uint32(fixed[0:4]); magic != MagicNumber {
		return nil, fmt.Errorf("%w: 0x%08X", ErrInvalidMagic, magic)
	}
	if version := binary.BigEndian.Uint16(fixed[4:6]); version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	scheme := Compression(fixed[6])
	if !scheme.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, fixed[6])
	}

	nameBytes := make([]byte, fixed[7])
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return nil, fmt.Errorf("checkpoint: read codec name: %w", err)
	}
	c, ok := codec.ByName(string(nameBytes))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, nameBytes)
	}

	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("checkpoint: read payload length: %w", err)
	}

	payload := make([]byte, binary.BigEndian.Uint64(lenBuf[:]))
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("checkpoint: read payload: %w", err)
	}

	var crcBuf [4]byte
	if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
		return nil, fmt.Errorf("checkpoint: read checksum: %w", err)
	}
	if want, got := binary.BigEndian.Uint32(crcBuf[:]), crc32.ChecksumIEEE(payload); want != got {
		return nil, fmt.Errorf("%w: header 0x%08X, payload 0x%08X", ErrChecksumMismatch, want, got)
	}

	raw, err := decompress(scheme, payload)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: decompress payload: %w", err)
	}

	var state btree.TreeState[V]
	if err := c.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("checkpoint: unmarshal state: %w", err)
	}
	return &state, nil
}
