// Package field_simulator builds the simulated fleet from a roster and owns
// it for the lifetime of the process.
package field_simulator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/LeonardoBeccarini/field_simulator/internal/device"
	"github.com/LeonardoBeccarini/field_simulator/internal/farm"
	"github.com/LeonardoBeccarini/field_simulator/internal/model"
)

var ErrZoneNotFound = errors.New("field simulator: zone not found")

// Stats counts the devices currently owned by the simulator.
type Stats struct {
	Zones     int `json:"zones"`
	Fields    int `json:"fields"`
	Sensors   int `json:"sensors"`
	Actuators int `json:"actuators"`
	Active    int `json:"active"`
}

// Simulator is the root of the Zone -> Field -> device tree.
type Simulator struct {
	ids       *IDAllocator
	sensors   *device.SensorFactory
	actuators *device.ActuatorFactory
	logger    device.Logger

	mu    sync.RWMutex
	zones []*farm.Zone
	built atomic.Bool
}

func NewSimulator(sensors *device.SensorFactory, actuators *device.ActuatorFactory, logger device.Logger) *Simulator {
	return &Simulator{
		ids:       &IDAllocator{},
		sensors:   sensors,
		actuators: actuators,
		logger:    logger,
	}
}

// Build creates every zone, field and device of the roster top-down,
// assigning ids in roster order. Devices connect concurrently and are
// attached in roster order once every device is created. An unknown kind
// aborts the build: whatever was already created is destroyed and the error
// is returned.
func (s *Simulator) Build(ctx context.Context, roster model.Roster) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)

	var pending []*pendingField
	for _, zs := range roster.Zones {
		zone := farm.NewZone(s.ids.Next(), zs.Name, zs.Latitude, zs.Longitude)
		s.addZone(zone)

		for _, fs := range zs.Fields {
			pending = append(pending, s.buildField(gctx, g, zone, zs.Name, fs))
		}
	}

	if err := g.Wait(); err != nil {
		for _, pf := range pending {
			pf.destroy()
		}
		s.Shutdown()
		return err
	}
	for _, pf := range pending {
		pf.attach()
	}

	s.built.Store(true)
	st := s.Stats()
	s.logger.Info("simulation built",
		"zones", st.Zones, "fields", st.Fields, "sensors", st.Sensors, "actuators", st.Actuators, "active", st.Active)
	return nil
}

// buildConcurrency caps the devices connecting at the same time.
const buildConcurrency = 64

// pendingField holds the devices of a field until the whole roster is built.
type pendingField struct {
	field     *farm.Field
	sensors   []*device.Sensor
	actuators []*device.Actuator
}

func (pf *pendingField) attach() {
	for _, sn := range pf.sensors {
		pf.field.AddSensor(sn)
	}
	for _, a := range pf.actuators {
		pf.field.AddActuator(a)
	}
}

func (pf *pendingField) destroy() {
	for _, sn := range pf.sensors {
		if sn != nil {
			sn.Destroy()
		}
	}
	for _, a := range pf.actuators {
		if a != nil {
			a.Destroy()
		}
	}
}

// buildField assigns ids synchronously and schedules the device creations
// on g. Each goroutine writes only its own slot.
func (s *Simulator) buildField(ctx context.Context, g *errgroup.Group, zone *farm.Zone, zoneName string, fs model.FieldSpec) *pendingField {
	field := farm.NewField(s.ids.Next(), fs.Name, zone.ID())
	zone.AddField(field)
	pf := &pendingField{
		field:     field,
		sensors:   make([]*device.Sensor, len(fs.Sensors)),
		actuators: make([]*device.Actuator, len(fs.Actuators)),
	}

	for i, spec := range fs.Sensors {
		params := device.SensorParams{
			ID:       s.ids.Next(),
			FieldID:  field.ID(),
			ZoneID:   zone.ID(),
			Value:    spec.Value,
			Min:      spec.Min,
			Max:      spec.Max,
			Interval: spec.Interval,
		}
		g.Go(func() error {
			sensor, err := s.sensors.Create(ctx, spec.Kind, params)
			if err != nil {
				return fmt.Errorf("zone %q field %q: %w", zoneName, fs.Name, err)
			}
			pf.sensors[i] = sensor
			return nil
		})
	}

	for i, spec := range fs.Actuators {
		params := device.ActuatorParams{
			ID:      s.ids.Next(),
			FieldID: field.ID(),
			ZoneID:  zone.ID(),
			Value:   spec.Value,
			Min:     spec.Min,
			Max:     spec.Max,
		}
		g.Go(func() error {
			actuator, err := s.actuators.Create(ctx, spec.Kind, params)
			if err != nil {
				return fmt.Errorf("zone %q field %q: %w", zoneName, fs.Name, err)
			}
			pf.actuators[i] = actuator
			return nil
		})
	}
	return pf
}

func (s *Simulator) addZone(z *farm.Zone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones = append(s.zones, z)
}

// Zones returns a snapshot of the current zones.
func (s *Simulator) Zones() []*farm.Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.zones)
}

func (s *Simulator) ZoneByID(id int) (*farm.Zone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.zones, func(z *farm.Zone) bool { return z.ID() == id })
	if i < 0 {
		return nil, false
	}
	return s.zones[i], true
}

// RemoveZone destroys the zone with everything in it and then detaches it.
func (s *Simulator) RemoveZone(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.zones, func(z *farm.Zone) bool { return z.ID() == id })
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrZoneNotFound, id)
	}
	s.zones[i].Destroy()
	s.zones = slices.Delete(s.zones, i, i+1)
	s.logger.Info("zone removed", "zone_id", id)
	return nil
}

// Shutdown destroys every zone. The simulator is no longer ready afterwards.
func (s *Simulator) Shutdown() {
	s.built.Store(false)

	s.mu.Lock()
	zones := s.zones
	s.zones = nil
	s.mu.Unlock()

	for _, z := range zones {
		z.Destroy()
	}
}

// Built reports whether Build completed and Shutdown has not run since.
func (s *Simulator) Built() bool {
	return s.built.Load()
}

// Ready reports whether the simulation is built and at least one device is
// active.
func (s *Simulator) Ready() bool {
	return s.Built() && s.Stats().Active > 0
}

func (s *Simulator) Stats() Stats {
	var st Stats
	for _, z := range s.Zones() {
		st.Zones++
		for _, f := range z.Fields() {
			st.Fields++
			for _, sn := range f.Sensors() {
				st.Sensors++
				if sn.Active() {
					st.Active++
				}
			}
			for _, a := range f.Actuators() {
				st.Actuators++
				if a.Active() {
					st.Active++
				}
			}
		}
	}
	return st
}
