package fleet

import (
	"github.com/LeonardoBeccarini/field_simulator/internal/device"
	"github.com/LeonardoBeccarini/field_simulator/internal/farm"
	"github.com/LeonardoBeccarini/field_simulator/internal/model"
)

type zoneView struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Fields    []fieldSummary `json:"fields"`
}

type fieldSummary struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Sensors    int             `json:"sensors"`
	Actuators  int             `json:"actuators"`
	Conditions farm.Conditions `json:"conditions"`
}

type fieldView struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	ZoneID     int             `json:"zone_id"`
	Conditions farm.Conditions `json:"conditions"`
	Sensors    []sensorView    `json:"sensors"`
	Actuators  []actuatorView  `json:"actuators"`
}

type sensorView struct {
	ID       int                   `json:"id"`
	Kind     model.SensorKind      `json:"kind"`
	Unit     model.MeasurementUnit `json:"unit"`
	Value    float64               `json:"value"`
	Min      float64               `json:"min"`
	Max      float64               `json:"max"`
	Interval string                `json:"interval"`
	Status   device.Status         `json:"status"`
	Topics   device.Topics         `json:"topics"`
}

type actuatorView struct {
	ID     int                `json:"id"`
	Kind   model.ActuatorKind `json:"kind"`
	Value  float64            `json:"value"`
	Min    float64            `json:"min"`
	Max    float64            `json:"max"`
	Status device.Status      `json:"status"`
	Topics device.Topics      `json:"topics"`
}

type valueRequest struct {
	Value *float64 `json:"value"`
}

type valueResponse struct {
	Value float64 `json:"value"`
}

func newZoneView(z *farm.Zone) zoneView {
	fields := z.Fields()
	v := zoneView{
		ID:        z.ID(),
		Name:      z.Name(),
		Latitude:  z.Latitude(),
		Longitude: z.Longitude(),
		Fields:    make([]fieldSummary, 0, len(fields)),
	}
	for _, f := range fields {
		v.Fields = append(v.Fields, fieldSummary{
			ID:         f.ID(),
			Name:       f.Name(),
			Sensors:    len(f.Sensors()),
			Actuators:  len(f.Actuators()),
			Conditions: f.Conditions(),
		})
	}
	return v
}

func newFieldView(f *farm.Field) fieldView {
	sensors, actuators := f.Sensors(), f.Actuators()
	v := fieldView{
		ID:         f.ID(),
		Name:       f.Name(),
		ZoneID:     f.ZoneID(),
		Conditions: f.Conditions(),
		Sensors:    make([]sensorView, 0, len(sensors)),
		Actuators:  make([]actuatorView, 0, len(actuators)),
	}
	for _, s := range sensors {
		lo, hi := s.Bounds()
		v.Sensors = append(v.Sensors, sensorView{
			ID:       s.ID(),
			Kind:     s.Kind(),
			Unit:     s.Unit(),
			Value:    s.Value(),
			Min:      lo,
			Max:      hi,
			Interval: s.Interval().String(),
			Status:   s.Status(),
			Topics:   s.Topics(),
		})
	}
	for _, a := range actuators {
		lo, hi := a.Bounds()
		v.Actuators = append(v.Actuators, actuatorView{
			ID:     a.ID(),
			Kind:   a.Kind(),
			Value:  a.Value(),
			Min:    lo,
			Max:    hi,
			Status: a.Status(),
			Topics: a.Topics(),
		})
	}
	return v
}
