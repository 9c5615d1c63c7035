package notify

import (
	"context"
	"errors"
	"log"

	"inspection-cloud/internal/prediction/application"
)

// LogNotifier writes escalation events to a logger.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier constructs a log notifier.
func NewLogNotifier(logger *log.Logger) (*LogNotifier, error) {
	if logger == nil {
		return nil, errors.New("log notifier: nil logger")
	}
	return &LogNotifier{logger: logger}, nil
}

// Notify records the event.
func (n *LogNotifier) Notify(_ context.Context, event application.EscalationEvent) {
	if n == nil || n.logger == nil {
		return
	}
	n.logger.Printf(
		"escalation: inspection=%d asset=%d pof=%.2f risk=%.2f action=%s",
		event.InspectionID, event.AssetID,
		event.Prediction.ProbabilityOfFailure, event.Prediction.RiskScore,
		event.Prediction.RecommendedAction,
	)
}

var _ application.Notifier = (*LogNotifier)(nil)
