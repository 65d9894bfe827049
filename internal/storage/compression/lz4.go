package compression

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4"
)

// ErrCorrupt is returned when compressed data cannot be decoded.
var ErrCorrupt = errors.New("corrupt compressed data")

// NoCompressor implements a pass-through compressor that doesn't compress data.
type NoCompressor struct{}

// Name returns the name of the compressor.
func (c *NoCompressor) Name() string {
	return "none"
}

// Compress returns a copy of data.
func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	return append([]byte{}, data...), nil
}

// Decompress returns a copy of data.
func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	return append([]byte{}, data...), nil
}

const (
	blockRaw byte = 0
	blockLZ4 byte = 1
)

// LZ4Compressor stores data as an LZ4 block prefixed by a mode byte and the
// uvarint uncompressed length. Data that does not shrink is stored raw.
type LZ4Compressor struct{}

// Name returns the name of the compressor.
func (c *LZ4Compressor) Name() string {
	return "lz4"
}

// Compress compresses data using LZ4.
func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	header := make([]byte, 1+binary.MaxVarintLen64)
	n := binary.PutUvarint(header[1:], uint64(len(data)))
	header = header[:1+n]

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	size, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	// CompressBlock reports 0 for incompressible input
	if size == 0 || size >= len(data) {
		header[0] = blockRaw
		return append(header, data...), nil
	}
	header[0] = blockLZ4
	return append(header, compressed[:size]...), nil
}

// Decompress decompresses LZ4 data.
func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, ErrCorrupt
	}
	length, n := binary.Uvarint(data[1:])
	if n <= 0 {
		return nil, ErrCorrupt
	}
	body := data[1+n:]

	switch data[0] {
	case blockRaw:
		if uint64(len(body)) != length {
			return nil, ErrCorrupt
		}
		return append([]byte{}, body...), nil
	case blockLZ4:
		out := make([]byte, length)
		size, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		if uint64(size) != length {
			return nil, ErrCorrupt
		}
		return out, nil
	default:
		return nil, ErrCorrupt
	}
}
