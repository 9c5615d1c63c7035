package prediction

import "errors"

var (
	// ErrInspectionNotFound is returned when the referenced inspection does not exist.
	ErrInspectionNotFound = errors.New("prediction: inspection not found")
	// ErrInspectionNotEligible is returned when polling an inspection that is not in progress.
	ErrInspectionNotEligible = errors.New("prediction: inspection not eligible for polling")
	// ErrNoAssessment is returned when an inspection has no stored assessment yet.
	ErrNoAssessment = errors.New("prediction: no assessment found")
)
