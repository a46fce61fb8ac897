// Package anomaly provides outlier detectors over plain value sequences.
// Detectors register themselves by name; the forecasting preprocessor uses
// the "iqr" detector to decide which observations to replace.
package anomaly

import (
	"fmt"
	"sort"
)

// AnomalyType represents the type of anomaly detected
type AnomalyType string

const (
	AnomalyTypeSpike AnomalyType = "spike" // Above the upper bound
	AnomalyTypeDrop  AnomalyType = "drop"  // Below the lower bound
)

// Range represents expected value range
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DetectorConfig holds configuration for anomaly detection
type DetectorConfig struct {
	// Threshold is the detector sensitivity. For IQR it is the fence multiplier.
	Threshold float64

	// MinDataPoints minimum number of points required for detection
	MinDataPoints int
}

// DefaultConfig returns default detector configuration
func DefaultConfig() DetectorConfig {
	return DetectorConfig{
		Threshold:     1.5, // Tukey fences
		MinDataPoints: 3,
	}
}

// Detector is implemented by every anomaly detection algorithm
type Detector interface {
	// Name returns the algorithm name
	Name() string

	// Detect returns the anomalous observations in values, in index order
	Detect(values []float64, config DetectorConfig) []Result
}

// Result contains detection result for a single point
type Result struct {
	Index    int         `json:"index"`
	Value    float64     `json:"value"`
	Score    float64     `json:"score"`
	Type     AnomalyType `json:"type"`
	Expected *Range      `json:"expected,omitempty"`
}

var detectorRegistry = make(map[string]Detector)

// RegisterDetector adds a detector to the registry
func RegisterDetector(name string, detector Detector) {
	detectorRegistry[name] = detector
}

// GetDetector returns a detector by name
func GetDetector(name string) (Detector, error) {
	if detector, ok := detectorRegistry[name]; ok {
		return detector, nil
	}
	return nil, fmt.Errorf("unknown anomaly detector: %s", name)
}

// ListDetectors returns the registered detector names in sorted order
func ListDetectors() []string {
	names := make([]string, 0, len(detectorRegistry))
	for name := range detectorRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectAnomalies runs the named detector over values
func DetectAnomalies(algorithm string, values []float64, config DetectorConfig) ([]Result, error) {
	detector, err := GetDetector(algorithm)
	if err != nil {
		return nil, err
	}
	return detector.Detect(values, config), nil
}
