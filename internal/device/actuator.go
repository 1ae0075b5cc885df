package device

import (
	"sync"

	"github.com/LeonardoBeccarini/field_simulator/internal/model"
)

// Regulator maps a requested setpoint to the value an actuator accepts.
type Regulator interface {
	Regulate(v, min, max float64) float64
}

// DripRegulator drives a drip irrigation line.
type DripRegulator struct{}

func (DripRegulator) Regulate(v, min, max float64) float64 { return clamp(v, min, max) }

// SprinklerRegulator drives a sprinkler.
type SprinklerRegulator struct{}

func (SprinklerRegulator) Regulate(v, min, max float64) float64 { return clamp(v, min, max) }

// Actuator is a device holding a setpoint within [min,max].
type Actuator struct {
	*Device

	kind      model.ActuatorKind
	regulator Regulator
	min, max  float64

	valueMu sync.RWMutex
	value   float64
}

func (a *Actuator) Kind() model.ActuatorKind   { return a.kind }
func (a *Actuator) Bounds() (min, max float64) { return a.min, a.max }

func (a *Actuator) Value() float64 {
	a.valueMu.RLock()
	defer a.valueMu.RUnlock()
	return a.value
}

// SetValue stores v clamped to the actuator bounds and returns what was stored.
func (a *Actuator) SetValue(v float64) float64 {
	a.valueMu.Lock()
	defer a.valueMu.Unlock()
	a.value = a.regulator.Regulate(v, a.min, a.max)
	return a.value
}
