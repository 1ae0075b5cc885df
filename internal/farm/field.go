// Package farm holds the containment hierarchy of the simulation: zones own
// fields and fields own devices.
package farm

import (
	"fmt"

	"github.com/LeonardoBeccarini/field_simulator/internal/device"
	"github.com/LeonardoBeccarini/field_simulator/internal/model"
	"github.com/LeonardoBeccarini/field_simulator/internal/model/entities"
)

// Conditions are the field-level aggregates of the sensor readings.
type Conditions struct {
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	Light        float64 `json:"light"`
	SoilMoisture float64 `json:"soil_moisture"`
}

// Field is a cultivated area of a zone with its devices.
type Field struct {
	id     int
	name   string
	zoneID int

	sensors   children[*device.Sensor]
	actuators children[*device.Actuator]
}

func NewField(id int, name string, zoneID int) *Field {
	return &Field{id: id, name: name, zoneID: zoneID}
}

func (f *Field) ID() int      { return f.id }
func (f *Field) Name() string { return f.name }
func (f *Field) ZoneID() int  { return f.zoneID }

// Sensors returns the current sensors. The slice must not be modified.
func (f *Field) Sensors() []*device.Sensor { return f.sensors.load() }

// Actuators returns the current actuators. The slice must not be modified.
func (f *Field) Actuators() []*device.Actuator { return f.actuators.load() }

func (f *Field) AddSensor(s *device.Sensor)     { f.sensors.add(s) }
func (f *Field) AddActuator(a *device.Actuator) { f.actuators.add(a) }

func (f *Field) SensorByID(id int) (*device.Sensor, bool) {
	return find(f.sensors.load(), func(s *device.Sensor) bool { return s.ID() == id })
}

func (f *Field) ActuatorByID(id int) (*device.Actuator, bool) {
	return find(f.actuators.load(), func(a *device.Actuator) bool { return a.ID() == id })
}

func (f *Field) SensorsByKind(kind model.SensorKind) []*device.Sensor {
	var out []*device.Sensor
	for _, s := range f.sensors.load() {
		if s.Kind() == kind {
			out = append(out, s)
		}
	}
	return out
}

func (f *Field) ActuatorsByKind(kind model.ActuatorKind) []*device.Actuator {
	var out []*device.Actuator
	for _, a := range f.actuators.load() {
		if a.Kind() == kind {
			out = append(out, a)
		}
	}
	return out
}

// DeleteSensor destroys the sensor and then removes it from the field.
func (f *Field) DeleteSensor(id int) error {
	ok := f.sensors.remove(
		func(s *device.Sensor) bool { return s.ID() == id },
		func(s *device.Sensor) { s.Destroy() },
	)
	if !ok {
		return fmt.Errorf("%w: id %d in field %d", ErrSensorNotFound, id, f.id)
	}
	return nil
}

// DeleteActuator destroys the actuator and then removes it from the field.
func (f *Field) DeleteActuator(id int) error {
	ok := f.actuators.remove(
		func(a *device.Actuator) bool { return a.ID() == id },
		func(a *device.Actuator) { a.Destroy() },
	)
	if !ok {
		return fmt.Errorf("%w: id %d in field %d", ErrActuatorNotFound, id, f.id)
	}
	return nil
}

func (f *Field) Temperature() float64  { return f.mean(entities.Temperature) }
func (f *Field) Humidity() float64     { return f.mean(entities.Humidity) }
func (f *Field) Light() float64        { return f.mean(entities.Light) }
func (f *Field) SoilMoisture() float64 { return f.mean(entities.SoilMoisture) }

func (f *Field) Conditions() Conditions {
	return Conditions{
		Temperature:  f.Temperature(),
		Humidity:     f.Humidity(),
		Light:        f.Light(),
		SoilMoisture: f.SoilMoisture(),
	}
}

// mean averages the current values of the sensors of kind; 0 when there are none.
func (f *Field) mean(kind model.SensorKind) float64 {
	var sum float64
	var n int
	for _, s := range f.sensors.load() {
		if s.Kind() == kind {
			sum += s.Value()
			n++
		}
	}
	return sum / float64(max(1, n))
}

// Destroy destroys every sensor and actuator of the field.
func (f *Field) Destroy() {
	f.sensors.drain(func(s *device.Sensor) { s.Destroy() })
	f.actuators.drain(func(a *device.Actuator) { a.Destroy() })
}
