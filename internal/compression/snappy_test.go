package compression

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang/snappy"
)

func TestSnappyCompressor_Algorithm(t *testing.T) {
	if got := NewSnappyCompressor().Algorithm(); got != Snappy {
		t.Errorf("Expected algorithm Snappy (%d), got %d", Snappy, got)
	}
}

func TestSnappyCompressor_CompressDecompress(t *testing.T) {
	compressor := NewSnappyCompressor()
	original := []byte(strings.Repeat(`{"values":[1200.5,1300.25,1250.75]}`, 50))

	compressed, err := compressor.Compress(original)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if len(compressed) >= len(original) {
		t.Errorf("Expected repetitive payload to shrink: %d >= %d", len(compressed), len(original))
	}

	decompressed, err := compressor.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(original, decompressed) {
		t.Error("Decompressed data does not match original")
	}
}

func TestSnappyCompressor_EmptyData(t *testing.T) {
	compressor := NewSnappyCompressor()

	compressed, err := compressor.Compress([]byte{})
	if err != nil || len(compressed) != 0 {
		t.Errorf("Compress(empty) = %v, %v", compressed, err)
	}
	decompressed, err := compressor.Decompress([]byte{})
	if err != nil || len(decompressed) != 0 {
		t.Errorf("Decompress(empty) = %v, %v", decompressed, err)
	}
}

func TestSnappyCompressor_CorruptData(t *testing.T) {
	if _, err := NewSnappyCompressor().Decompress([]byte{0xff, 0xff, 0xff, 0xff, 0xff}); err == nil {
		t.Error("Expected error for corrupt data")
	}
}

func TestSnappyCompressor_DecodedSizeLimit(t *testing.T) {
	// A varint header claiming MaxDecodedSize+1 bytes
	header := make([]byte, 0, 8)
	n := uint64(MaxDecodedSize + 1)
	for n >= 0x80 {
		header = append(header, byte(n)|0x80)
		n >>= 7
	}
	header = append(header, byte(n))

	if got, err := snappy.DecodedLen(header); err != nil || got != MaxDecodedSize+1 {
		t.Fatalf("DecodedLen = %d, %v", got, err)
	}
	if _, err := NewSnappyCompressor().Decompress(header); err == nil {
		t.Error("Expected error for oversized payload")
	}
}
