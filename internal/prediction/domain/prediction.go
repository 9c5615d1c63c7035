package prediction

import "time"

// ConsequenceLevel grades the impact of an asset failure.
type ConsequenceLevel string

// PriorityLevel grades the urgency of the recommended action.
type PriorityLevel string

const (
	ConsequenceLow      ConsequenceLevel = "low"
	ConsequenceMedium   ConsequenceLevel = "medium"
	ConsequenceHigh     ConsequenceLevel = "high"
	ConsequenceCritical ConsequenceLevel = "critical"

	PriorityLow      PriorityLevel = "low"
	PriorityMedium   PriorityLevel = "medium"
	PriorityHigh     PriorityLevel = "high"
	PriorityCritical PriorityLevel = "critical"
)

// Weight returns the numeric risk multiplier for the level. Ordering between
// levels is defined by weight, not by string comparison.
func (c ConsequenceLevel) Weight() float64 {
	switch c {
	case ConsequenceLow:
		return 1
	case ConsequenceMedium:
		return 2
	case ConsequenceHigh:
		return 3
	case ConsequenceCritical:
		return 4
	default:
		return 0
	}
}

// Valid returns true when the level is a known consequence grade.
func (c ConsequenceLevel) Valid() bool {
	return c.Weight() != 0
}

// Valid returns true when the level is a known priority grade.
func (p PriorityLevel) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// FailurePrediction is the scoring result for exactly one sensor reading.
// Predictions are immutable once stored and retained for audit history.
type FailurePrediction struct {
	ID                   int64
	SensorReadingID      int64
	InspectionID         int64
	ProbabilityOfFailure float64
	ConsequenceOfFailure ConsequenceLevel
	ConfidenceScore      float64
	RiskScore            float64
	RecommendedAction    string
	Priority             PriorityLevel
	ModelVersion         string
	PredictedAt          time.Time
}

// Assessment pairs a reading with its prediction.
type Assessment struct {
	Reading    SensorReading
	Prediction FailurePrediction
}
