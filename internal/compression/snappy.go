package compression

import (
	"fmt"

	"github.com/golang/snappy"
)

// SnappyCompressor implements Compressor using the Snappy block format
type SnappyCompressor struct{}

// NewSnappyCompressor creates a new Snappy compressor
func NewSnappyCompressor() *SnappyCompressor {
	return &SnappyCompressor{}
}

// Compress compresses data using Snappy
func (s *SnappyCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	return snappy.Encode(nil, data), nil
}

// Decompress decompresses Snappy compressed data. The decoded length is
// checked before allocating.
func (s *SnappyCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	n, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress failed: %w", err)
	}
	if n > MaxDecodedSize {
		return nil, fmt.Errorf("snappy decompress failed: decoded size %d exceeds %d", n, MaxDecodedSize)
	}

	decompressed, err := snappy.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress failed: %w", err)
	}
	return decompressed, nil
}

// Algorithm returns Snappy
func (s *SnappyCompressor) Algorithm() Algorithm {
	return Snappy
}

// MaxDecodedSize bounds the size of a decoded payload
const MaxDecodedSize = 64 << 20
