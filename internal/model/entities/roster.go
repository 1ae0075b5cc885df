package entities

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidRoster is wrapped by every roster validation failure.
var ErrInvalidRoster = errors.New("invalid roster")

// Validate checks names, kinds and bounds of every entry.
func (r Roster) Validate() error {
	var errs []error
	for zi, z := range r.Zones {
		if strings.TrimSpace(z.Name) == "" {
			errs = append(errs, fmt.Errorf("zones[%d]: name is empty", zi))
		}
		for fi, f := range z.Fields {
			path := fmt.Sprintf("zones[%d].fields[%d]", zi, fi)
			if strings.TrimSpace(f.Name) == "" {
				errs = append(errs, fmt.Errorf("%s: name is empty", path))
			}
			for si, s := range f.Sensors {
				if !slices.Contains(SensorKinds, s.Kind) {
					errs = append(errs, fmt.Errorf("%s.sensors[%d]: unknown kind %q", path, si, s.Kind))
				}
				if s.Min > s.Max {
					errs = append(errs, fmt.Errorf("%s.sensors[%d]: min %v > max %v", path, si, s.Min, s.Max))
				}
				if s.Interval < 0 {
					errs = append(errs, fmt.Errorf("%s.sensors[%d]: negative interval", path, si))
				}
			}
			for ai, a := range f.Actuators {
				if !slices.Contains(ActuatorKinds, a.Kind) {
					errs = append(errs, fmt.Errorf("%s.actuators[%d]: unknown kind %q", path, ai, a.Kind))
				}
				if a.Min > a.Max {
					errs = append(errs, fmt.Errorf("%s.actuators[%d]: min %v > max %v", path, ai, a.Min, a.Max))
				}
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRoster, errors.Join(errs...))
	}
	return nil
}

// DeviceCount returns the number of sensors and actuators in the roster.
func (r Roster) DeviceCount() (sensors, actuators int) {
	for _, z := range r.Zones {
		for _, f := range z.Fields {
			sensors += len(f.Sensors)
			actuators += len(f.Actuators)
		}
	}
	return sensors, actuators
}
