package entities

// ActuatorKind identifies the irrigation hardware an actuator drives.
type ActuatorKind string

const (
	DripIrrigation ActuatorKind = "drip-irrigation"
	Sprinkler      ActuatorKind = "sprinkler"
)

// ActuatorKinds lists every supported actuator kind.
var ActuatorKinds = []ActuatorKind{DripIrrigation, Sprinkler}

// ActuatorSpec describes one actuator of a field in the device roster.
type ActuatorSpec struct {
	Kind  ActuatorKind `json:"kind" yaml:"kind"`
	Value float64      `json:"value" yaml:"value"` // initial setpoint
	Min   float64      `json:"min" yaml:"min"`
	Max   float64      `json:"max" yaml:"max"`
}
