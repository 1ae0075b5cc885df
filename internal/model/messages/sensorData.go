package messages

// SensorReading is the payload a sensor publishes on its base topic at
// every tick: {"value": <number>}.
type SensorReading struct {
	Value float64 `json:"value"`
}
