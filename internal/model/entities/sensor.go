package entities

import "time"

// SensorKind identifies what a sensor measures. It is also the last segment
// of the sensor's base topic.
type SensorKind string

const (
	SoilMoisture SensorKind = "soil-moisture"
	Light        SensorKind = "light"
	Humidity     SensorKind = "humidity"
	Temperature  SensorKind = "temperature"
)

// SensorKinds lists every supported sensor kind.
var SensorKinds = []SensorKind{SoilMoisture, Light, Humidity, Temperature}

// MeasurementUnit is the unit a sensor reports its value in.
type MeasurementUnit string

const (
	UnitPercent MeasurementUnit = "%"
	UnitCelsius MeasurementUnit = "°C"
	UnitLux     MeasurementUnit = "lux"
)

// SensorSpec describes one sensor of a field in the device roster.
type SensorSpec struct {
	Kind     SensorKind    `json:"kind" yaml:"kind"`
	Value    float64       `json:"value" yaml:"value"` // initial reading
	Min      float64       `json:"min" yaml:"min"`
	Max      float64       `json:"max" yaml:"max"`
	Interval time.Duration `json:"interval,omitempty" yaml:"interval,omitempty"` // 0 = kind default
}
