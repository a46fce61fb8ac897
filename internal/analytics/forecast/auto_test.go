package forecast

import (
	"testing"
)

func TestSelectMethod(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    Method
	}{
		{"seasonal wins first", Profile{SeasonalityStrength: 0.31, TrendStrength: 0.9, Volatility: 0.1}, MethodSeasonal},
		{"strong calm trend", Profile{SeasonalityStrength: 0.3, TrendStrength: 0.51, Volatility: 0.29}, MethodLinear},
		{"strong volatile trend", Profile{TrendStrength: 0.8, Volatility: 0.3}, MethodExponential},
		{"weak trend", Profile{TrendStrength: 0.5, Volatility: 0.1}, MethodExponential},
		{"flat", Profile{}, MethodExponential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectMethod(tt.profile); got != tt.want {
				t.Errorf("SelectMethod() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectMethodFor(t *testing.T) {
	method, profile, err := SelectMethodFor(seasonalValues(2))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if method != MethodSeasonal {
		t.Errorf("method = %v, want seasonal (profile %+v)", method, profile)
	}

	method, _, err = SelectMethodFor([]float64{10, 12, 11, 13, 12})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if method != MethodExponential {
		t.Errorf("method = %v, want exponential", method)
	}
}

func TestResolveMethod_KeepsConcrete(t *testing.T) {
	for _, m := range []Method{MethodLinear, MethodExponential, MethodSeasonal} {
		got, err := resolveMethod(m, []float64{1})
		if err != nil || got != m {
			t.Errorf("resolveMethod(%v) = %v, %v", m, got, err)
		}
	}
}

func TestParseMethod(t *testing.T) {
	tests := map[string]Method{
		"":             MethodAdaptive,
		"auto":         MethodAdaptive,
		"Adaptive":     MethodAdaptive,
		"linear":       MethodLinear,
		" exponential": MethodExponential,
		"SEASONAL":     MethodSeasonal,
	}
	for input, want := range tests {
		got, err := ParseMethod(input)
		if err != nil {
			t.Errorf("ParseMethod(%q) error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseMethod(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := ParseMethod("arima"); err == nil {
		t.Error("Expected error for unknown method")
	}
}

func TestMethod_TextRoundTrip(t *testing.T) {
	for _, m := range Methods {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", m, err)
		}
		var back Method
		if err := back.UnmarshalText(text); err != nil || back != m {
			t.Errorf("round trip %v -> %s -> %v (%v)", m, text, back, err)
		}
	}
	if _, err := Method(42).MarshalText(); err == nil {
		t.Error("Expected error for invalid method")
	}
}
