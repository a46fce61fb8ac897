package forecast

import (
	"testing"
)

func TestSeasonalForecaster_Name(t *testing.T) {
	f := NewSeasonalForecaster()
	if f.Name() != "seasonal" {
		t.Errorf("Expected name 'seasonal', got '%s'", f.Name())
	}
}

func TestSeasonalForecaster_FollowsIndex(t *testing.T) {
	f := NewSeasonalForecaster()
	result, err := f.Forecast(seasonalValues(2), Horizon{Periods: SeasonLength, Anchor: testAnchor})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Points) != SeasonLength {
		t.Fatalf("Expected %d points, got %d", SeasonLength, len(result.Points))
	}

	// 24 observations: step 1 lands on slot 0 (low), step 7 on slot 6 (high)
	low, high := result.Points[0].Value, result.Points[6].Value
	if low >= high {
		t.Errorf("Expected low season < high season, got %v >= %v", low, high)
	}
	if high/low < 2.5 {
		t.Errorf("high/low ratio = %v, want at least 2.5", high/low)
	}

	for i, p := range result.Points {
		if p.Confidence < 0.5 || p.Confidence > 1 {
			t.Errorf("Point %d confidence %v outside [0.5, 1]", i, p.Confidence)
		}
		if p.Value < 0 {
			t.Errorf("Point %d negative: %v", i, p.Value)
		}
	}
	if result.Parameters["season_06"] != 1.5 {
		t.Errorf("season_06 = %v, want 1.5", result.Parameters["season_06"])
	}
}

func TestSeasonalForecaster_ShortSeriesUsesNeutralIndex(t *testing.T) {
	f := NewSeasonalForecaster()
	result, err := f.Forecast([]float64{10, 10, 10}, Horizon{Periods: 2, Anchor: testAnchor})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// slots 3 and 4 were never observed, so the factor is 1
	for i, p := range result.Points {
		if p.Value != 10 {
			t.Errorf("Point %d = %v, want 10", i, p.Value)
		}
		if p.Confidence != 1 {
			t.Errorf("Point %d confidence = %v, want 1", i, p.Confidence)
		}
	}
}
