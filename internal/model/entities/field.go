package entities

// FieldSpec represents a cultivated area of a zone, e.g. a tomato plot,
// with the devices installed on it.
type FieldSpec struct {
	Name      string         `json:"name" yaml:"name"`
	Sensors   []SensorSpec   `json:"sensors" yaml:"sensors"`
	Actuators []ActuatorSpec `json:"actuators" yaml:"actuators"`
}
