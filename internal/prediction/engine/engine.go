package engine

import (
	"math"
	"math/rand"
	"time"

	prediction "inspection-cloud/internal/prediction/domain"
)

// ModelVersion tags every prediction produced by this rule set.
const ModelVersion = "rules_v1.0"

// thresholds holds the safe/warning/critical boundaries for one channel and
// the bucket scores assigned at each band.
type thresholds struct {
	safe     float64
	warning  float64
	critical float64

	criticalScore float64
	warningScore  float64
	safeScore     float64
	baseScore     float64
}

var (
	pressureThresholds      = thresholds{safe: 10, warning: 15, critical: 20, criticalScore: 90, warningScore: 60, safeScore: 30, baseScore: 10}
	temperatureThresholds   = thresholds{safe: 80, warning: 100, critical: 120, criticalScore: 85, warningScore: 55, safeScore: 25, baseScore: 5}
	wallThicknessThresholds = thresholds{safe: 10, warning: 7, critical: 5, criticalScore: 95, warningScore: 65, safeScore: 35, baseScore: 15}
	corrosionThresholds     = thresholds{safe: 0.1, warning: 0.3, critical: 0.5, criticalScore: 88, warningScore: 58, safeScore: 28, baseScore: 8}
	vibrationThresholds     = thresholds{safe: 2.8, warning: 4.5, critical: 7.0, criticalScore: 80, warningScore: 50, safeScore: 20, baseScore: 5}
	flowRateThresholds      = thresholds{safe: 50, warning: 80, critical: 100, criticalScore: 75, warningScore: 45, safeScore: 15, baseScore: 5}
)

const (
	// emptyReadingPoF is returned when no channel carries a value.
	emptyReadingPoF = 15.00

	// criticalScoreFloor is the per-channel bucket score that counts toward
	// the multi-critical PoF boost. Kept as a literal score cutoff rather
	// than re-derived from the threshold bands; the two are not equivalent.
	criticalScoreFloor = 75

	minConfidence = 30
	maxConfidence = 95
)

// JitterSource supplies the declared randomness in the confidence estimate.
// It must return a uniform value in [-5, +5].
type JitterSource func() float64

// Engine scores sensor readings into failure predictions.
type Engine struct {
	jitter JitterSource
}

// Option configures the engine.
type Option func(*Engine)

// WithJitterSource overrides the confidence jitter source.
func WithJitterSource(source JitterSource) Option {
	return func(e *Engine) {
		if source != nil {
			e.jitter = source
		}
	}
}

// New constructs an engine with a time-seeded jitter source.
func New(opts ...Option) *Engine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	e := &Engine{
		jitter: func() float64 { return rng.Float64()*10 - 5 },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// score buckets a "higher is worse" channel value.
func (t thresholds) score(value float64) float64 {
	switch {
	case value >= t.critical:
		return t.criticalScore
	case value >= t.warning:
		return t.warningScore
	case value >= t.safe:
		return t.safeScore
	default:
		return t.baseScore
	}
}

// scoreInverse buckets a "lower is worse" channel value (wall thickness).
func (t thresholds) scoreInverse(value float64) float64 {
	switch {
	case value <= t.critical:
		return t.criticalScore
	case value <= t.warning:
		return t.warningScore
	case value <= t.safe:
		return t.safeScore
	default:
		return t.baseScore
	}
}

func channelScores(reading prediction.SensorReading) []float64 {
	scores := make([]float64, 0, 6)
	if reading.Pressure != nil {
		scores = append(scores, pressureThresholds.score(*reading.Pressure))
	}
	if reading.Temperature != nil {
		scores = append(scores, temperatureThresholds.score(*reading.Temperature))
	}
	if reading.WallThickness != nil {
		scores = append(scores, wallThicknessThresholds.scoreInverse(*reading.WallThickness))
	}
	if reading.CorrosionRate != nil {
		scores = append(scores, corrosionThresholds.score(*reading.CorrosionRate))
	}
	if reading.Vibration != nil {
		scores = append(scores, vibrationThresholds.score(*reading.Vibration))
	}
	if reading.FlowRate != nil {
		scores = append(scores, flowRateThresholds.score(*reading.FlowRate))
	}
	return scores
}

// CalculatePoF estimates probability of failure (0-100) from the present
// channels. Missing channels are skipped; a fully empty reading scores 15.00.
func (e *Engine) CalculatePoF(reading prediction.SensorReading) float64 {
	scores := channelScores(reading)
	if len(scores) == 0 {
		return emptyReadingPoF
	}

	sum := 0.0
	criticalCount := 0
	for _, score := range scores {
		sum += score
		if score >= criticalScoreFloor {
			criticalCount++
		}
	}
	pof := sum / float64(len(scores))

	if criticalCount >= 3 {
		pof = math.Min(95, pof*1.2)
	} else if criticalCount >= 2 {
		pof = math.Min(90, pof*1.1)
	}

	return round2(pof)
}

// CalculateCoF grades the consequence of failure. Channels at their critical
// boundary add points, wall thinning weighted highest, and a high PoF raises
// the assessed consequence.
func (e *Engine) CalculateCoF(reading prediction.SensorReading, pof float64) prediction.ConsequenceLevel {
	points := 0
	if reading.Pressure != nil && *reading.Pressure >= pressureThresholds.critical {
		points += 3
	}
	if reading.Temperature != nil && *reading.Temperature >= temperatureThresholds.critical {
		points += 3
	}
	if reading.WallThickness != nil && *reading.WallThickness <= wallThicknessThresholds.critical {
		points += 4
	}
	if reading.CorrosionRate != nil && *reading.CorrosionRate >= corrosionThresholds.critical {
		points += 3
	}

	if pof >= 80 {
		points += 2
	} else if pof >= 60 {
		points++
	}

	switch {
	case points >= 8:
		return prediction.ConsequenceCritical
	case points >= 5:
		return prediction.ConsequenceHigh
	case points >= 3:
		return prediction.ConsequenceMedium
	default:
		return prediction.ConsequenceLow
	}
}

// CalculateConfidence estimates how trustworthy the prediction is from data
// completeness. Missing wall thickness or corrosion rate carries an extra
// penalty; the result includes the declared jitter and clamps to [30, 95].
func (e *Engine) CalculateConfidence(reading prediction.SensorReading) float64 {
	base := float64(reading.ChannelCount()) / 6 * 100

	if reading.WallThickness == nil || reading.CorrosionRate == nil {
		base *= 0.8
	}

	confidence := base + e.jitter()
	confidence = math.Max(minConfidence, math.Min(maxConfidence, confidence))
	return round2(confidence)
}

// GenerateRecommendation maps the PoF/CoF pair onto an action and priority.
func (e *Engine) GenerateRecommendation(pof float64, cof prediction.ConsequenceLevel) (string, prediction.PriorityLevel) {
	switch {
	case cof == prediction.ConsequenceCritical || pof >= 80:
		return "IMMEDIATE ACTION REQUIRED: Schedule emergency inspection and shutdown if necessary. Inspect asset integrity immediately.", prediction.PriorityCritical
	case cof == prediction.ConsequenceHigh || pof >= 60:
		return "Schedule urgent inspection within 24-48 hours. Monitor parameters continuously. Prepare maintenance plan.", prediction.PriorityHigh
	case cof == prediction.ConsequenceMedium || pof >= 40:
		return "Plan inspection within 1-2 weeks. Increase monitoring frequency. Review maintenance schedule.", prediction.PriorityMedium
	default:
		return "Continue routine monitoring. Schedule inspection as per normal maintenance plan. No immediate action required.", prediction.PriorityLow
	}
}

// ScoreReading runs the full rule set over one reading and returns an unsaved
// prediction. Persistence identifiers and timestamps are left to the caller.
func (e *Engine) ScoreReading(reading prediction.SensorReading) prediction.FailurePrediction {
	pof := e.CalculatePoF(reading)
	cof := e.CalculateCoF(reading, pof)
	confidence := e.CalculateConfidence(reading)
	action, priority := e.GenerateRecommendation(pof, cof)

	return prediction.FailurePrediction{
		InspectionID:         reading.InspectionID,
		ProbabilityOfFailure: pof,
		ConsequenceOfFailure: cof,
		ConfidenceScore:      confidence,
		RiskScore:            round2(pof * cof.Weight()),
		RecommendedAction:    action,
		Priority:             priority,
		ModelVersion:         ModelVersion,
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
