package utils

import (
	"encoding/json"
	"testing"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{}
		want   float64
		wantOK bool
	}{
		{"float64", float64(1.5), 1.5, true},
		{"float32", float32(2.5), 2.5, true},
		{"int", 42, 42, true},
		{"int64", int64(-7), -7, true},
		{"uint8", uint8(255), 255, true},
		{"json number", json.Number("12.25"), 12.25, true},
		{"numeric string", "1500.75", 1500.75, true},
		{"grouped string", " 1,234,567.5 ", 1234567.5, true},
		{"nil", nil, 0, false},
		{"text", "twelve", 0, false},
		{"bad json number", json.Number("x"), 0, false},
		{"bool", true, 0, false},
		{"slice", []int{1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.input)
			if ok != tt.wantOK {
				t.Errorf("ToFloat64(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ToFloat64(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseValues(t *testing.T) {
	got, err := ParseValues([]interface{}{1, 2.5, "3", json.Number("4")})
	if err != nil {
		t.Fatalf("ParseValues() error = %v", err)
	}
	want := []float64{1, 2.5, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := ParseValues([]interface{}{1, nil, 3}); err == nil {
		t.Error("expected error for nil value")
	}

	empty, err := ParseValues(nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("ParseValues(nil) = %v, %v", empty, err)
	}
}
