package inspection

import (
	"errors"
	"time"
)

// Status marks where an inspection is in its field lifecycle.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on_hold"
	StatusCancelled  Status = "cancelled"
)

// Valid returns true when the status is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	default:
		return false
	}
}

// Inspection is a field inspection record. Only in-progress inspections are
// eligible for automatic sensor polling.
type Inspection struct {
	ID                 int64
	AssetID            int64
	Status             Status
	PrimaryInspectorID int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Pollable reports whether the inspection can receive automatic readings.
func (i Inspection) Pollable() bool {
	return i.Status == StatusInProgress
}

// ErrNotFound indicates a missing inspection record.
var ErrNotFound = errors.New("inspection: not found")
