package simulator

import (
	"context"
	"math/rand"
	"testing"

	inspection "inspection-cloud/internal/inspection/domain"
	"inspection-cloud/internal/prediction/application"
)

func testSimulator(mode Mode, seed int64) *Simulator {
	return New(mode, WithRand(rand.New(rand.NewSource(seed))))
}

func presentChannels(input application.ReadingInput) []*float64 {
	channels := []*float64{
		input.Pressure,
		input.Temperature,
		input.WallThickness,
		input.CorrosionRate,
		input.Vibration,
		input.FlowRate,
	}
	present := make([]*float64, 0, len(channels))
	for _, c := range channels {
		if c != nil {
			present = append(present, c)
		}
	}
	return present
}

func TestNormalModeStaysInSafeBounds(t *testing.T) {
	sim := testSimulator(ModeNormal, 1)

	for i := 0; i < 200; i++ {
		input, err := sim.Read(context.Background(), inspection.Inspection{ID: 1})
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if input.Pressure != nil && (*input.Pressure < 7 || *input.Pressure > 13) {
			t.Fatalf("normal pressure %v out of band", *input.Pressure)
		}
		if input.Temperature != nil && (*input.Temperature < 66 || *input.Temperature > 90) {
			t.Fatalf("normal temperature %v out of band", *input.Temperature)
		}
		if input.WallThickness != nil && (*input.WallThickness < 8.5 || *input.WallThickness > 12.7) {
			t.Fatalf("normal wall thickness %v out of band", *input.WallThickness)
		}
		if input.CorrosionRate != nil && (*input.CorrosionRate < 0.04 || *input.CorrosionRate > 0.16) {
			t.Fatalf("normal corrosion rate %v out of band", *input.CorrosionRate)
		}
	}
}

func TestWarningModeStaysInWarningBands(t *testing.T) {
	sim := testSimulator(ModeWarning, 2)

	for i := 0; i < 200; i++ {
		input, err := sim.Read(context.Background(), inspection.Inspection{ID: 1})
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if input.Pressure != nil && (*input.Pressure < 14 || *input.Pressure > 17) {
			t.Fatalf("warning pressure %v out of band", *input.Pressure)
		}
		if input.Vibration != nil && (*input.Vibration < 4 || *input.Vibration > 5.5) {
			t.Fatalf("warning vibration %v out of band", *input.Vibration)
		}
		if input.WallThickness != nil && (*input.WallThickness < 7 || *input.WallThickness > 8.5) {
			t.Fatalf("warning wall thickness %v out of band", *input.WallThickness)
		}
	}
}

func TestCriticalModeReachesCriticalThresholds(t *testing.T) {
	sim := testSimulator(ModeCritical, 3)

	for i := 0; i < 200; i++ {
		input, err := sim.Read(context.Background(), inspection.Inspection{ID: 1})
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if input.Pressure != nil && *input.Pressure < 20 {
			t.Fatalf("critical pressure %v below critical threshold", *input.Pressure)
		}
		if input.Temperature != nil && *input.Temperature < 120 {
			t.Fatalf("critical temperature %v below critical threshold", *input.Temperature)
		}
		if input.WallThickness != nil && *input.WallThickness > 5.5 {
			t.Fatalf("critical wall thickness %v above critical band", *input.WallThickness)
		}
		if input.CorrosionRate != nil && *input.CorrosionRate < 0.5 {
			t.Fatalf("critical corrosion rate %v below critical threshold", *input.CorrosionRate)
		}
	}
}

func TestReadingChannelCounts(t *testing.T) {
	sim := testSimulator(ModeRandom, 4)

	sawFull := false
	sawPartial := false
	for i := 0; i < 500; i++ {
		input, err := sim.Read(context.Background(), inspection.Inspection{ID: 1})
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		count := len(presentChannels(input))
		switch {
		case count == 6:
			sawFull = true
		case count >= 3 && count <= 5:
			sawPartial = true
		default:
			t.Fatalf("reading has %d channels, want 6 or 3-5", count)
		}
	}
	if !sawFull {
		t.Fatalf("never produced a full reading")
	}
	if !sawPartial {
		t.Fatalf("never produced a partial reading")
	}
}

func TestInvalidModeFallsBackToRandom(t *testing.T) {
	sim := New(Mode("bogus"), WithRand(rand.New(rand.NewSource(5))))
	if sim.mode != ModeRandom {
		t.Fatalf("mode = %v, want random fallback", sim.mode)
	}
}
