// Package compression frames queue payloads: a one-byte algorithm header
// followed by the (possibly compressed) body, so consumers can decode
// messages from producers configured with a different algorithm.
package compression

import (
	"errors"
	"fmt"
	"strings"
)

// Algorithm defines compression types
type Algorithm uint8

const (
	None   Algorithm = 0
	Snappy Algorithm = 1
)

// MinCompressSize is the body size below which Encode leaves data uncompressed
const MinCompressSize = 256

// ErrEmptyFrame is returned when decoding a frame without a header
var ErrEmptyFrame = errors.New("empty frame")

// Compressor interface for compression algorithms
type Compressor interface {
	// Compress compresses data
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data
	Decompress(data []byte) ([]byte, error)

	// Algorithm returns the compression algorithm type
	Algorithm() Algorithm
}

// String returns the configuration name of the algorithm
func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// ParseAlgorithm maps a configuration name to an Algorithm. The empty
// string selects Snappy.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "snappy":
		return Snappy, nil
	case "none":
		return None, nil
	default:
		return None, fmt.Errorf("unsupported compression algorithm: %s (supported: snappy, none)", name)
	}
}

// GetCompressor returns a compressor for the given algorithm
func GetCompressor(algo Algorithm) (Compressor, error) {
	switch algo {
	case None:
		return &NoneCompressor{}, nil
	case Snappy:
		return NewSnappyCompressor(), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %d", algo)
	}
}

// Encode compresses data with algo and prepends the algorithm header.
// Bodies shorter than MinCompressSize are stored uncompressed.
func Encode(algo Algorithm, data []byte) ([]byte, error) {
	if len(data) < MinCompressSize {
		algo = None
	}

	c, err := GetCompressor(algo)
	if err != nil {
		return nil, err
	}
	body, err := c.Compress(data)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 1+len(body))
	frame[0] = byte(algo)
	copy(frame[1:], body)
	return frame, nil
}

// Decode reads the algorithm header of frame and returns the decompressed body
func Decode(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}

	c, err := GetCompressor(Algorithm(frame[0]))
	if err != nil {
		return nil, err
	}
	return c.Decompress(frame[1:])
}

// NoneCompressor is a no-op compressor
type NoneCompressor struct{}

func (n *NoneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (n *NoneCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

func (n *NoneCompressor) Algorithm() Algorithm {
	return None
}
