package compression

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name    string
		want    Algorithm
		wantErr bool
	}{
		{"", Snappy, false},
		{"snappy", Snappy, false},
		{" SNAPPY ", Snappy, false},
		{"none", None, false},
		{"zstd", None, true},
	}

	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAlgorithm(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAlgorithm_String(t *testing.T) {
	if Snappy.String() != "snappy" || None.String() != "none" {
		t.Errorf("Unexpected names %s/%s", Snappy, None)
	}
	if Algorithm(9).String() != "algorithm(9)" {
		t.Errorf("Unexpected name %s", Algorithm(9))
	}
}

func TestGetCompressor(t *testing.T) {
	for _, algo := range []Algorithm{None, Snappy} {
		c, err := GetCompressor(algo)
		if err != nil {
			t.Fatalf("GetCompressor(%v) failed: %v", algo, err)
		}
		if c.Algorithm() != algo {
			t.Errorf("GetCompressor(%v).Algorithm() = %v", algo, c.Algorithm())
		}
	}
	if _, err := GetCompressor(Algorithm(7)); err == nil {
		t.Error("Expected error for unknown algorithm")
	}
}

func TestEncodeDecode(t *testing.T) {
	large := []byte(strings.Repeat("forecast job payload ", 40))
	small := []byte(`{"id":"j1"}`)

	tests := []struct {
		name       string
		algo       Algorithm
		data       []byte
		wantHeader Algorithm
	}{
		{"large snappy", Snappy, large, Snappy},
		{"small snappy stays raw", Snappy, small, None},
		{"large none", None, large, None},
		{"empty", Snappy, []byte{}, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Encode(tt.algo, tt.data)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if Algorithm(frame[0]) != tt.wantHeader {
				t.Errorf("header = %v, want %v", Algorithm(frame[0]), tt.wantHeader)
			}

			decoded, err := Decode(frame)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !bytes.Equal(decoded, tt.data) {
				t.Error("Decoded data does not match original")
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Decode(nil) error = %v, want ErrEmptyFrame", err)
	}
	if _, err := Decode([]byte{42, 1, 2}); err == nil {
		t.Error("Expected error for unknown algorithm header")
	}
	if _, err := Decode([]byte{byte(Snappy), 0xff, 0xff, 0xff, 0xff, 0xff}); err == nil {
		t.Error("Expected error for corrupt snappy body")
	}
}

func TestNoneCompressor(t *testing.T) {
	c := &NoneCompressor{}
	data := []byte("raw")
	out, _ := c.Compress(data)
	back, _ := c.Decompress(out)
	if !bytes.Equal(back, data) || c.Algorithm() != None {
		t.Error("NoneCompressor should pass data through")
	}
}
