package forecast

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{100, 100, 1},
		{0, 0, 1},
		{100, 0, 0},
		{100, 50, 1 - 50.0/75},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); !approxEqual(got, tt.want, 1e-12) {
			t.Errorf("similarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRelativeAccuracy(t *testing.T) {
	score, ok := relativeAccuracy([]float64{100, 0, 200}, []float64{90, 50, 400})
	if !ok {
		t.Fatal("Expected a score")
	}
	// 0.9 and 0 (clamped), zero actual skipped
	if !approxEqual(score, 0.45, 1e-12) {
		t.Errorf("score = %v, want 0.45", score)
	}

	if _, ok := relativeAccuracy([]float64{0, 0}, []float64{1, 1}); ok {
		t.Error("Expected no score when every actual is zero")
	}
}

func TestCrossValidationScore_TooShortForFolds(t *testing.T) {
	score, err := crossValidationScore(context.Background(), NewLinearForecaster(), []float64{1, 2, 3, 4}, Horizon{Anchor: testAnchor})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if score != 0 {
		t.Errorf("score = %v, want 0", score)
	}
}

func TestCrossValidationScore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := crossValidationScore(ctx, NewLinearForecaster(), linearValues(20, 10, 1), Horizon{Anchor: testAnchor}); err == nil {
		t.Error("Expected context error")
	}
}

// gatedForecaster blocks every call until expected calls are in flight at
// once, or until timeout passes.
type gatedForecaster struct {
	MethodForecaster
	expected int
	timeout  time.Duration

	mu       sync.Mutex
	arrived  int
	open     chan struct{}
	timedOut bool
}

func newGatedForecaster(expected int) *gatedForecaster {
	return &gatedForecaster{
		MethodForecaster: NewLinearForecaster(),
		expected:         expected,
		timeout:          2 * time.Second,
		open:             make(chan struct{}),
	}
}

func (g *gatedForecaster) Forecast(values []float64, h Horizon) (*MethodForecast, error) {
	g.mu.Lock()
	g.arrived++
	if g.arrived == g.expected {
		close(g.open)
	}
	g.mu.Unlock()

	select {
	case <-g.open:
	case <-time.After(g.timeout):
		g.mu.Lock()
		g.timedOut = true
		g.mu.Unlock()
	}
	return g.MethodForecaster.Forecast(values, h)
}

func TestCrossValidationScore_FoldsRunConcurrently(t *testing.T) {
	values := linearValues(20, 10, 1)
	gated := newGatedForecaster(crossValidationFolds)

	score, err := crossValidationScore(context.Background(), gated, values, Horizon{Anchor: testAnchor})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gated.timedOut {
		t.Fatalf("Folds did not overlap: %d of %d arrived together", gated.arrived, crossValidationFolds)
	}

	want, err := crossValidationScore(context.Background(), NewLinearForecaster(), values, Horizon{Anchor: testAnchor})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !approxEqual(score, want, 1e-12) {
		t.Errorf("score = %v, want %v", score, want)
	}
}

func TestHoldoutScore_PerfectLine(t *testing.T) {
	score := holdoutScore(NewLinearForecaster(), linearValues(30, 10, 10), Horizon{Anchor: testAnchor})
	if !approxEqual(score, 1, 1e-9) {
		t.Errorf("holdout = %v, want 1", score)
	}
}

func TestStabilityScore_ConstantSeries(t *testing.T) {
	score := stabilityScore(NewLinearForecaster(), []float64{8, 8, 8, 8, 8}, Horizon{Anchor: testAnchor})
	if score != 1 {
		t.Errorf("stability = %v, want 1", score)
	}
}

func TestValidate_ScoresInUnitRange(t *testing.T) {
	series := [][]float64{
		{100, 5, 100, 5, 100, 5},
		{1, 2, 3},
		linearValues(30, 10, 10),
		seasonalValues(3),
		{0, 0, 0, 0, 0, 0, 0},
		{50, 40, 30, 20, 10, 5, 1},
	}
	for _, values := range series {
		m, err := validate(context.Background(), values, Horizon{Anchor: testAnchor})
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", values, err)
		}
		for name, score := range map[string]float64{
			"cross_validation": m.CrossValidationScore,
			"holdout":          m.HoldoutScore,
			"stability":        m.StabilityScore,
		} {
			if score < 0 || score > 1 {
				t.Errorf("%v: %s score %v outside [0, 1]", values, name, score)
			}
		}
	}
}

func TestValidationRecommendations(t *testing.T) {
	all := validationRecommendations(ValidationMetrics{})
	if len(all) != 3 {
		t.Errorf("Expected 3 recommendations, got %v", all)
	}
	none := validationRecommendations(ValidationMetrics{CrossValidationScore: 0.9, HoldoutScore: 0.9, StabilityScore: 0.9})
	if len(none) != 0 {
		t.Errorf("Expected no recommendations, got %v", none)
	}
	if !(ValidationMetrics{CrossValidationScore: 0.61, HoldoutScore: 0.61, StabilityScore: 0.71}).passes() {
		t.Error("Expected metrics just above the thresholds to pass")
	}
	if (ValidationMetrics{CrossValidationScore: 0.6, HoldoutScore: 0.9, StabilityScore: 0.9}).passes() {
		t.Error("Expected cross-validation at the threshold to fail")
	}
}
