package device

import "fmt"

// Class is the device category embedded in topics.
type Class string

const (
	ClassSensor   Class = "sensor"
	ClassActuator Class = "actuator"
)

const (
	activateSuffix   = "/activate"
	deactivateSuffix = "/deactivate"
)

// Topics holds every topic name derived for a device.
type Topics struct {
	Base         string `json:"base"`
	Activation   string `json:"activation"`
	Deactivation string `json:"deactivation"`
	Publish      string `json:"publish,omitempty"` // sensors only
}

// BaseTopic returns zone/{zone}/field/{field}/{class}/{id}/{kind}.
func BaseTopic(zoneID, fieldID int, class Class, id int, kind string) string {
	return fmt.Sprintf("zone/%d/field/%d/%s/%d/%s", zoneID, fieldID, class, id, kind)
}

// SensorTopics derives the topics of a sensor. The publish topic is the base topic.
func SensorTopics(zoneID, fieldID, id int, kind string) Topics {
	base := BaseTopic(zoneID, fieldID, ClassSensor, id, kind)
	return Topics{
		Base:         base,
		Activation:   base + activateSuffix,
		Deactivation: base + deactivateSuffix,
		Publish:      base,
	}
}

// ActuatorTopics derives the topics of an actuator.
func ActuatorTopics(zoneID, fieldID, id int, kind string) Topics {
	base := BaseTopic(zoneID, fieldID, ClassActuator, id, kind)
	return Topics{
		Base:         base,
		Activation:   base + activateSuffix,
		Deactivation: base + deactivateSuffix,
	}
}
