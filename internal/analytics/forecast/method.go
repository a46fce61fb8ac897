package forecast

import (
	"fmt"
	"strings"
	"time"
)

// Method identifies a forecasting method. The zero value is MethodAdaptive.
type Method int

const (
	// MethodAdaptive picks one of the concrete methods from series characteristics.
	MethodAdaptive Method = iota
	// MethodLinear extrapolates a least-squares line.
	MethodLinear
	// MethodExponential uses simple exponential smoothing with a tuned alpha.
	MethodExponential
	// MethodSeasonal applies a 12-slot multiplicative seasonal index to the trend.
	MethodSeasonal
)

// Methods lists every method in declaration order.
var Methods = []Method{MethodAdaptive, MethodLinear, MethodExponential, MethodSeasonal}

func (m Method) String() string {
	switch m {
	case MethodAdaptive:
		return "adaptive"
	case MethodLinear:
		return "linear"
	case MethodExponential:
		return "exponential"
	case MethodSeasonal:
		return "seasonal"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// Valid reports whether m is one of the declared methods.
func (m Method) Valid() bool {
	return m >= MethodAdaptive && m <= MethodSeasonal
}

// ParseMethod converts a method name. The empty string and "auto" map to MethodAdaptive.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "adaptive", "auto":
		return MethodAdaptive, nil
	case "linear":
		return MethodLinear, nil
	case "exponential":
		return MethodExponential, nil
	case "seasonal":
		return MethodSeasonal, nil
	default:
		return MethodAdaptive, fmt.Errorf("unknown forecasting method: %s", name)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Method) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid method: %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Horizon describes the steps a method must produce.
type Horizon struct {
	Periods int
	// Anchor is the time of the last observation; step i is stamped i months after it.
	Anchor time.Time
	// OutlierRatio is the share of the history replaced during preprocessing.
	OutlierRatio float64
}

func (h Horizon) timestamp(step int) time.Time {
	return h.Anchor.AddDate(0, step, 0)
}

// MethodForecast is the raw output of a single method.
type MethodForecast struct {
	Method     Method
	Points     []ForecastPoint
	Parameters map[string]float64
}

// Values returns the predicted values in order.
func (m *MethodForecast) Values() []float64 {
	return pointValues(m.Points)
}

// MethodForecaster is implemented by each concrete method.
type MethodForecaster interface {
	Name() string
	Forecast(values []float64, h Horizon) (*MethodForecast, error)
}

// forecasterFor returns the implementation of a concrete method.
func forecasterFor(m Method) (MethodForecaster, error) {
	switch m {
	case MethodLinear:
		return NewLinearForecaster(), nil
	case MethodExponential:
		return NewExponentialSmoothingForecaster(), nil
	case MethodSeasonal:
		return NewSeasonalForecaster(), nil
	case MethodAdaptive:
		return nil, fmt.Errorf("adaptive method must be resolved before dispatch")
	default:
		return nil, fmt.Errorf("unknown forecasting method: %d", int(m))
	}
}
