package prediction

import "time"

// SensorReading is one measurement snapshot for an inspection. Every channel
// is optional; a nil channel means the sensor was offline or not installed.
type SensorReading struct {
	ID            int64
	InspectionID  int64
	Pressure      *float64 // bar
	Temperature   *float64 // Celsius
	WallThickness *float64 // mm
	CorrosionRate *float64 // mm/year
	Vibration     *float64 // mm/s
	FlowRate      *float64 // m3/h
	Notes         string
	RecordedByID  int64
	RecordedAt    time.Time
}

// ChannelCount returns how many of the six channels carry a value.
func (r SensorReading) ChannelCount() int {
	count := 0
	for _, v := range []*float64{r.Pressure, r.Temperature, r.WallThickness, r.CorrosionRate, r.Vibration, r.FlowRate} {
		if v != nil {
			count++
		}
	}
	return count
}
