package checkpoint

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const (
	// MagicNumber identifies checkpoint files (ASCII: "MVB1").
	MagicNumber = 0x4D564231
	// FormatVersion is the current file format version.
	FormatVersion = 1

	// maxCodecNameLen bounds the codec name field in the header.
	maxCodecNameLen = 255
)

var (
	ErrInvalidMagic       = errors.New("checkpoint: invalid magic number")
	ErrUnsupportedVersion = errors.New("checkpoint: unsupported format version")
	ErrUnknownCompression = errors.New("checkpoint: unknown compression scheme")
	ErrUnknownCodec       = errors.New("checkpoint: unknown codec")
	ErrChecksumMismatch   = errors.New("checkpoint: checksum mismatch")
)

// Compression selects how the state payload is compressed on disk.
type Compression uint8

const (
	// CompressionNone stores the payload as-is.
	CompressionNone Compression = 0
	// CompressionZstd uses zstandard, the default. Best ratio at good speed.
	CompressionZstd Compression = 1
	// CompressionLZ4 trades ratio for the fastest decompression.
	CompressionLZ4 Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionLZ4
}

func compress(scheme Compression, data []byte) ([]byte, error) {
	switch scheme {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, scheme)
	}
}

func decompress(scheme Compression, data []byte) ([]byte, error) {
	switch scheme {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, scheme)
	}
}
