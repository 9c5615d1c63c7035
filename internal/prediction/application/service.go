package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	inspection "inspection-cloud/internal/inspection/domain"
	"inspection-cloud/internal/observability/metrics"
	prediction "inspection-cloud/internal/prediction/domain"
	"inspection-cloud/internal/prediction/engine"
)

// InspectionRepository loads inspection records.
type InspectionRepository interface {
	GetByID(ctx context.Context, id int64) (*inspection.Inspection, error)
	ListByStatus(ctx context.Context, status inspection.Status) ([]inspection.Inspection, error)
}

// AssessmentRepository persists readings with their predictions.
type AssessmentRepository interface {
	InsertAssessment(ctx context.Context, reading *prediction.SensorReading, pred *prediction.FailurePrediction) error
	LatestByInspection(ctx context.Context, inspectionID int64) (*prediction.Assessment, error)
	HistoryByInspection(ctx context.Context, inspectionID int64, limit int) ([]prediction.Assessment, error)
}

// ReadingInput carries raw channel values before persistence.
type ReadingInput struct {
	Pressure      *float64
	Temperature   *float64
	WallThickness *float64
	CorrosionRate *float64
	Vibration     *float64
	FlowRate      *float64
	Notes         string
}

// SensorSource supplies a reading for an inspection. Production deployments
// plug a real feed here; demos use the simulator.
type SensorSource interface {
	Read(ctx context.Context, item inspection.Inspection) (ReadingInput, error)
}

// EscalationEvent is emitted when a prediction lands at critical priority.
type EscalationEvent struct {
	InspectionID int64                        `json:"inspection_id"`
	AssetID      int64                        `json:"asset_id"`
	Prediction   prediction.FailurePrediction `json:"prediction"`
}

// Notifier consumes escalation events.
type Notifier interface {
	Notify(ctx context.Context, event EscalationEvent)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service scores sensor readings and manages assessment history.
type Service struct {
	inspections InspectionRepository
	assessments AssessmentRepository
	engine      *engine.Engine
	source      SensorSource
	notifier    Notifier
	clock       Clock
	logger      *log.Logger
}

// ServiceOption customizes the assessment service.
type ServiceOption func(*Service)

// WithNotifier assigns an escalation notifier.
func WithNotifier(notifier Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithEngine overrides the default scoring engine.
func WithEngine(e *engine.Engine) ServiceOption {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// NewService constructs an assessment service.
func NewService(inspections InspectionRepository, assessments AssessmentRepository, source SensorSource, logger *log.Logger, opts ...ServiceOption) (*Service, error) {
	if inspections == nil {
		return nil, errors.New("assessment service: nil inspection repository")
	}
	if assessments == nil {
		return nil, errors.New("assessment service: nil assessment repository")
	}
	if source == nil {
		return nil, errors.New("assessment service: nil sensor source")
	}
	if logger == nil {
		return nil, errors.New("assessment service: nil logger")
	}
	service := &Service{
		inspections: inspections,
		assessments: assessments,
		engine:      engine.New(),
		source:      source,
		clock:       systemClock{},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Assess scores one reading for an inspection and persists the pair
// atomically. The inspection must exist; eligibility is not checked here so
// manually entered readings work on any inspection.
func (s *Service) Assess(ctx context.Context, inspectionID int64, input ReadingInput, recordedByID int64) (*prediction.Assessment, error) {
	if s == nil {
		return nil, errors.New("assessment service: nil")
	}
	item, err := s.inspections.GetByID(ctx, inspectionID)
	if err != nil {
		if errors.Is(err, inspection.ErrNotFound) {
			return nil, prediction.ErrInspectionNotFound
		}
		return nil, err
	}
	return s.assess(ctx, *item, input, recordedByID)
}

// TriggerPoll runs the full poll path for one inspection on demand: pulls a
// reading from the sensor source and scores it. Returns
// prediction.ErrInspectionNotFound or prediction.ErrInspectionNotEligible
// when the inspection cannot be polled.
func (s *Service) TriggerPoll(ctx context.Context, inspectionID int64) (*prediction.Assessment, error) {
	if s == nil {
		return nil, errors.New("assessment service: nil")
	}
	item, err := s.inspections.GetByID(ctx, inspectionID)
	if err != nil {
		if errors.Is(err, inspection.ErrNotFound) {
			return nil, prediction.ErrInspectionNotFound
		}
		return nil, err
	}
	if !item.Pollable() {
		return nil, fmt.Errorf("%w: status=%s", prediction.ErrInspectionNotEligible, item.Status)
	}
	return s.PollInspection(ctx, *item)
}

// PollableInspections lists every inspection eligible for automatic polling.
func (s *Service) PollableInspections(ctx context.Context) ([]inspection.Inspection, error) {
	if s == nil {
		return nil, errors.New("assessment service: nil")
	}
	return s.inspections.ListByStatus(ctx, inspection.StatusInProgress)
}

// PollInspection draws one reading from the sensor source and scores it.
// The caller has already established eligibility.
func (s *Service) PollInspection(ctx context.Context, item inspection.Inspection) (*prediction.Assessment, error) {
	if s == nil {
		return nil, errors.New("assessment service: nil")
	}
	input, err := s.source.Read(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("sensor read for inspection %d: %w", item.ID, err)
	}
	if input.Notes == "" {
		input.Notes = fmt.Sprintf("Automatic sensor reading at %s", s.clock.Now().Format(time.RFC3339))
	}
	return s.assess(ctx, item, input, item.PrimaryInspectorID)
}

func (s *Service) assess(ctx context.Context, item inspection.Inspection, input ReadingInput, recordedByID int64) (*prediction.Assessment, error) {
	started := s.clock.Now()

	reading := prediction.SensorReading{
		InspectionID:  item.ID,
		Pressure:      input.Pressure,
		Temperature:   input.Temperature,
		WallThickness: input.WallThickness,
		CorrosionRate: input.CorrosionRate,
		Vibration:     input.Vibration,
		FlowRate:      input.FlowRate,
		Notes:         input.Notes,
		RecordedByID:  recordedByID,
		RecordedAt:    started,
	}

	pred := s.engine.ScoreReading(reading)
	pred.PredictedAt = started

	if err := s.assessments.InsertAssessment(ctx, &reading, &pred); err != nil {
		return nil, fmt.Errorf("persist assessment for inspection %d: %w", item.ID, err)
	}

	elapsed := s.clock.Now().Sub(started)
	metrics.ObservePrediction(string(pred.Priority), elapsed)

	s.logger.Printf(
		"prediction stored: inspection=%d pof=%.2f cof=%s confidence=%.2f priority=%s",
		item.ID, pred.ProbabilityOfFailure, pred.ConsequenceOfFailure, pred.ConfidenceScore, pred.Priority,
	)

	if pred.Priority == prediction.PriorityCritical {
		s.logger.Printf(
			"CRITICAL CONDITION detected for inspection %d: asset=%d recommendation=%s",
			item.ID, item.AssetID, pred.RecommendedAction,
		)
		metrics.ObserveEscalation()
		if s.notifier != nil {
			s.notifier.Notify(ctx, EscalationEvent{
				InspectionID: item.ID,
				AssetID:      item.AssetID,
				Prediction:   pred,
			})
		}
	}

	return &prediction.Assessment{Reading: reading, Prediction: pred}, nil
}

// Latest returns the newest assessment for an inspection.
func (s *Service) Latest(ctx context.Context, inspectionID int64) (*prediction.Assessment, error) {
	if s == nil {
		return nil, errors.New("assessment service: nil")
	}
	return s.assessments.LatestByInspection(ctx, inspectionID)
}

// History returns assessments newest-first, bounded by limit.
func (s *Service) History(ctx context.Context, inspectionID int64, limit int) ([]prediction.Assessment, error) {
	if s == nil {
		return nil, errors.New("assessment service: nil")
	}
	return s.assessments.HistoryByInspection(ctx, inspectionID, limit)
}
