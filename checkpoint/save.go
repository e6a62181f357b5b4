package checkpoint

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/hupe1980/mvbtree/btree"
	"github.com/hupe1980/mvbtree/codec"
)

// SaveOption configures Save.
type SaveOption func(*saveConfig)

type saveConfig struct {
	codec       codec.Codec
	compression Compression
}

// WithCodec selects the codec used to serialize the state.
// Defaults to codec.Default.
func WithCodec(c codec.Codec) SaveOption {
	return func(cfg *saveConfig) { cfg.codec = c }
}

// WithCompression selects the payload compression scheme.
// Defaults to CompressionZstd.
func WithCompression(scheme Compression) SaveOption {
	return func(cfg *saveConfig) { cfg.compression = scheme }
}

// Save writes the tree state to w as a self-describing checkpoint file.
func Save[V any](w io.Writer, state *btree.TreeState[V], opts ...SaveOption) error {
	cfg := saveConfig{
		codec:       codec.Default,
		compression: CompressionZstd,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.compression.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCompression, cfg.compression)
	}

	name := cfg.codec.Name()
	if len(name) > maxCodecNameLen {
		return fmt.Errorf("checkpoint: codec name too long: %q", name)
	}

	raw, err := cfg.codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal state: %w", err)
	}

	payload, err := compress(cfg.compression, raw)
	if err != nil {
		return fmt.Errorf("checkpoint: compress payload: %w", err)
	}

	header := make([]byte, 0, 8+1+len(name)+8)
	header = binary.BigEndian.AppendUint32(header, MagicNumber)
	header = binary.BigEndian.AppendUint16(header, FormatVersion)
	header = append(header, byte(cfg.compression), byte(len(name)))
	header = append(header, name...)
	header = binary.BigEndian.AppendUint64(header, uint64(len(payload)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("checkpoint: write header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("checkpoint: write payload: %w", err)
	}

	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(payload))
	if _, err := w.Write(crc[:]); err != nil {
		return fmt.Errorf("checkpoint: write checksum: %w", err)
	}
	return nil
}
