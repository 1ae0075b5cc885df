package device

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/field_simulator/internal/model"
)

// Sensor is a device that periodically synthesises a reading and publishes it
// on its base topic.
type Sensor struct {
	*Device

	kind      model.SensorKind
	unit      model.MeasurementUnit
	interval  time.Duration
	generator Generator
	min, max  float64

	valueMu sync.RWMutex
	value   float64

	// runMu orders ticks against halt.
	runMu  sync.Mutex
	halted bool
	loop   *periodicTask
}

// Reading is a snapshot of a sensor's latest value.
type Reading struct {
	ID      int                   `json:"id"`
	Kind    model.SensorKind      `json:"kind"`
	Value   float64               `json:"value"`
	Unit    model.MeasurementUnit `json:"unit"`
	ZoneID  int                   `json:"zone_id"`
	FieldID int                   `json:"field_id"`
}

func (s *Sensor) Kind() model.SensorKind      { return s.kind }
func (s *Sensor) Unit() model.MeasurementUnit { return s.unit }
func (s *Sensor) Interval() time.Duration     { return s.interval }
func (s *Sensor) Bounds() (min, max float64)  { return s.min, s.max }

func (s *Sensor) Value() float64 {
	s.valueMu.RLock()
	defer s.valueMu.RUnlock()
	return s.value
}

func (s *Sensor) Reading() Reading {
	return Reading{
		ID:      s.ID(),
		Kind:    s.kind,
		Value:   s.Value(),
		Unit:    s.unit,
		ZoneID:  s.ZoneID(),
		FieldID: s.FieldID(),
	}
}

// Tick generates the next value, stores it and publishes it. It does nothing
// unless the sensor is active. A failed publish keeps the new value.
func (s *Sensor) Tick() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.halted {
		return
	}
	conn, ok := s.current()
	if !ok {
		return
	}

	s.valueMu.Lock()
	s.value = s.generator.Next(s.value, s.min, s.max)
	next := s.value
	s.valueMu.Unlock()

	payload, err := json.Marshal(model.SensorReading{Value: next})
	if err != nil {
		s.logger.Error("encode reading failed", "device", s.Name(), "error", err)
		return
	}
	if err := conn.Publish(s.topics.Publish, payload); err != nil {
		s.recorder.PublishFailed(string(s.kind))
		s.logger.Error("publish reading failed", "device", s.Name(), "topic", s.topics.Publish, "error", err)
		return
	}
	s.recorder.ReadingPublished(string(s.kind))
	s.logger.Info("reading published", "device", s.Name(), "topic", s.topics.Publish, "value", next)
}

func (s *Sensor) start() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.halted || s.loop != nil {
		return
	}
	s.loop = startPeriodic(s.interval, s.Tick)
}

// halt stops the loop. After it returns no tick is running or will run.
func (s *Sensor) halt() {
	s.runMu.Lock()
	s.halted = true
	loop := s.loop
	s.loop = nil
	s.runMu.Unlock()

	if loop != nil {
		loop.Stop()
	}
}
