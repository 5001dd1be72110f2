package analysis

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vitalwatch/vitalwatch/internal/models"
)

// Status is the ordinal severity classification of one sample.
type Status string

const (
	StatusNormal   Status = "Normal"
	StatusWarning  Status = "Warning"
	StatusCritical Status = "Critical"
)

// rank maps a status to its position in the Normal < Warning < Critical order.
func (s Status) rank() int {
	switch s {
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	default:
		return 0
	}
}

// Escalate returns the more severe of the two statuses. Within a single
// evaluation status only ever moves up, never down.
func (s Status) Escalate(to Status) Status {
	if to.rank() > s.rank() {
		return to
	}
	return s
}

// Anomaly labels produced by the threshold rules.
const (
	AnomalyAbnormalHeartRate = "Abnormal Heart Rate"
	AnomalyHypoxiaRisk       = "Hypoxia Risk"
	AnomalyHypertension      = "Hypertension"
	AnomalyHypotension       = "Hypotension"
)

// Result is the outcome of classifying one sample. Anomalies are listed in
// detection order. ActivityLevel is a display-only metric with no decision
// weight.
type Result struct {
	Status        Status   `json:"status"`
	Anomalies     []string `json:"anomalies"`
	ActivityLevel float64  `json:"activity_level"`
}

// Thresholds holds the clinical limits the classifier evaluates against.
type Thresholds struct {
	HeartRateHigh int `yaml:"heart_rate_high"`
	HeartRateLow  int `yaml:"heart_rate_low"`
	SpO2Warning   int `yaml:"spo2_warning"`
	SpO2Critical  int `yaml:"spo2_critical"`
	SystolicHigh  int `yaml:"bp_systolic_high"`
	DiastolicHigh int `yaml:"bp_diastolic_high"`
	SystolicLow   int `yaml:"bp_systolic_low"`
	DiastolicLow  int `yaml:"bp_diastolic_low"`
}

// DefaultThresholds returns the standard adult vital-sign limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HeartRateHigh: 100,
		HeartRateLow:  60,
		SpO2Warning:   95,
		SpO2Critical:  90,
		SystolicHigh:  140,
		DiastolicHigh: 90,
		SystolicLow:   90,
		DiastolicLow:  60,
	}
}

// LoadThresholds reads a YAML thresholds file. Fields missing from the file
// keep their default values.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	return t, nil
}

// Classifier evaluates telemetry samples against clinical thresholds.
// Classify is pure with respect to the sample; per-patient history is
// reserved for medication-response tracking and not consulted yet.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

// Classify runs the threshold rules in fixed order. Each rule independently
// appends its anomaly and escalates the status; multiple triggered rules
// report the maximum severity.
func (c *Classifier) Classify(v models.SensorReadings) Result {
	t := c.thresholds
	result := Result{
		Status:    StatusNormal,
		Anomalies: []string{},
	}

	// 1. Heart rate
	if v.HeartRate > t.HeartRateHigh || v.HeartRate < t.HeartRateLow {
		result.Anomalies = append(result.Anomalies, AnomalyAbnormalHeartRate)
		result.Status = result.Status.Escalate(StatusWarning)
	}

	// 2. Oxygen saturation
	if v.SpO2 < t.SpO2Warning {
		result.Anomalies = append(result.Anomalies, AnomalyHypoxiaRisk)
		if v.SpO2 < t.SpO2Critical {
			result.Status = result.Status.Escalate(StatusCritical)
		} else {
			result.Status = result.Status.Escalate(StatusWarning)
		}
	}

	// 3. Blood pressure. High pressure takes precedence; hypertension and
	// hypotension are mutually exclusive within one evaluation.
	if v.BPSystolic > t.SystolicHigh || v.BPDiastolic > t.DiastolicHigh {
		result.Anomalies = append(result.Anomalies, AnomalyHypertension)
		result.Status = result.Status.Escalate(StatusWarning)
	} else if v.BPSystolic < t.SystolicLow || v.BPDiastolic < t.DiastolicLow {
		result.Anomalies = append(result.Anomalies, AnomalyHypotension)
		result.Status = result.Status.Escalate(StatusCritical)
	}

	result.ActivityLevel = 0.1 + rand.Float64()*0.8

	return result
}
