package device

import "errors"

var (
	// ErrUnknownSensorKind is returned by SensorFactory.Create for a kind
	// missing from the blueprint table.
	ErrUnknownSensorKind = errors.New("device: unknown sensor kind")

	// ErrUnknownActuatorKind is returned by ActuatorFactory.Create for a kind
	// missing from the blueprint table.
	ErrUnknownActuatorKind = errors.New("device: unknown actuator kind")

	// ErrNotActive is returned by commands issued to a device that holds no
	// messaging connection.
	ErrNotActive = errors.New("device: not active")
)
