package farm

import "errors"

var (
	ErrSensorNotFound   = errors.New("farm: sensor not found")
	ErrActuatorNotFound = errors.New("farm: actuator not found")
	ErrFieldNotFound    = errors.New("farm: field not found")
)
