package simulator

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	inspection "inspection-cloud/internal/inspection/domain"
	"inspection-cloud/internal/prediction/application"
)

// Mode selects the risk posture of synthesized readings.
type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeWarning  Mode = "warning"
	ModeCritical Mode = "critical"
	ModeRandom   Mode = "random"
)

// Valid returns true when the mode is supported.
func (m Mode) Valid() bool {
	switch m {
	case ModeNormal, ModeWarning, ModeCritical, ModeRandom:
		return true
	default:
		return false
	}
}

type channel int

const (
	channelPressure channel = iota
	channelTemperature
	channelWallThickness
	channelCorrosionRate
	channelVibration
	channelFlowRate
	channelCount
)

// band is a closed value range one channel draws from under one mode.
type band struct {
	min float64
	max float64
}

var (
	normalBands = [channelCount]band{
		channelPressure:      {8.0, 12.0},
		channelTemperature:   {70.0, 85.0},
		channelWallThickness: {9.0, 12.0},
		channelCorrosionRate: {0.05, 0.15},
		channelVibration:     {1.5, 3.0},
		channelFlowRate:      {40.0, 60.0},
	}
	warningBands = [channelCount]band{
		channelPressure:      {14.0, 17.0},
		channelTemperature:   {95.0, 105.0},
		channelWallThickness: {7.0, 8.5},
		channelCorrosionRate: {0.25, 0.35},
		channelVibration:     {4.0, 5.5},
		channelFlowRate:      {75.0, 85.0},
	}
	criticalBands = [channelCount]band{
		channelPressure:      {20.0, 25.0},
		channelTemperature:   {120.0, 135.0},
		channelWallThickness: {4.0, 5.5},
		channelCorrosionRate: {0.5, 0.7},
		channelVibration:     {7.0, 9.0},
		channelFlowRate:      {100.0, 120.0},
	}
)

const (
	fullReadingProbability = 0.8
	partialMinChannels     = 3
	partialMaxChannels     = 5
)

// Simulator synthesizes plausible sensor readings so the scoring engine and
// scheduler can run without real instrumentation.
type Simulator struct {
	mode Mode
	rng  *rand.Rand
}

// Option configures the simulator.
type Option func(*Simulator)

// WithRand overrides the random source for deterministic tests.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// New constructs a simulator. An invalid mode falls back to random.
func New(mode Mode, opts ...Option) *Simulator {
	if !mode.Valid() {
		mode = ModeRandom
	}
	s := &Simulator{
		mode: mode,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read implements application.SensorSource.
func (s *Simulator) Read(_ context.Context, _ inspection.Inspection) (application.ReadingInput, error) {
	if s == nil {
		return application.ReadingInput{}, errors.New("simulator: nil")
	}
	return s.reading(), nil
}

// reading synthesizes one reading, full or partial.
func (s *Simulator) reading() application.ReadingInput {
	present := [channelCount]bool{}
	if s.rng.Float64() < fullReadingProbability {
		for c := channel(0); c < channelCount; c++ {
			present[c] = true
		}
	} else {
		count := partialMinChannels + s.rng.Intn(partialMaxChannels-partialMinChannels+1)
		for _, c := range s.rng.Perm(int(channelCount))[:count] {
			present[c] = true
		}
	}

	var input application.ReadingInput
	for c := channel(0); c < channelCount; c++ {
		if !present[c] {
			continue
		}
		value := s.value(c)
		switch c {
		case channelPressure:
			input.Pressure = &value
		case channelTemperature:
			input.Temperature = &value
		case channelWallThickness:
			input.WallThickness = &value
		case channelCorrosionRate:
			input.CorrosionRate = &value
		case channelVibration:
			input.Vibration = &value
		case channelFlowRate:
			input.FlowRate = &value
		}
	}
	return input
}

// value draws one channel value for the simulator's mode. Random mode picks
// a posture per channel at 70/20/10 weights.
func (s *Simulator) value(c channel) float64 {
	mode := s.mode
	if mode == ModeRandom {
		switch draw := s.rng.Float64(); {
		case draw < 0.7:
			mode = ModeNormal
		case draw < 0.9:
			mode = ModeWarning
		default:
			mode = ModeCritical
		}
	}

	switch mode {
	case ModeWarning:
		return s.draw(warningBands[c], c)
	case ModeCritical:
		return s.draw(criticalBands[c], c)
	default:
		// Normal readings get a small jitter on top of the baseline band.
		value := s.draw(normalBands[c], c)
		value += value * (s.rng.Float64()*0.1 - 0.05)
		return roundChannel(value, c)
	}
}

func (s *Simulator) draw(b band, c channel) float64 {
	return roundChannel(b.min+s.rng.Float64()*(b.max-b.min), c)
}

// Corrosion rates are tiny; keep four decimals for them, two for the rest.
func roundChannel(value float64, c channel) float64 {
	if c == channelCorrosionRate {
		return math.Round(value*10000) / 10000
	}
	return math.Round(value*100) / 100
}
