package device

import (
	"context"
	"fmt"
	"time"

	"github.com/LeonardoBeccarini/field_simulator/internal/model"
	"github.com/LeonardoBeccarini/field_simulator/internal/model/entities"
)

// SensorParams carries the per-instance values of a sensor to build.
type SensorParams struct {
	ID       int
	FieldID  int
	ZoneID   int
	Value    float64
	Min      float64
	Max      float64
	Interval time.Duration // 0 = kind default
}

// ActuatorParams carries the per-instance values of an actuator to build.
type ActuatorParams struct {
	ID      int
	FieldID int
	ZoneID  int
	Value   float64
	Min     float64
	Max     float64
}

type sensorBlueprint struct {
	unit      model.MeasurementUnit
	interval  time.Duration
	generator func(Random) Generator
}

var sensorBlueprints = map[model.SensorKind]sensorBlueprint{
	entities.SoilMoisture: {
		unit:      entities.UnitPercent,
		interval:  5 * time.Minute,
		generator: func(r Random) Generator { return SoilMoistureGenerator{Rand: r} },
	},
	entities.Light: {
		unit:      entities.UnitLux,
		interval:  time.Minute,
		generator: func(r Random) Generator { return LightGenerator{Rand: r} },
	},
	entities.Humidity: {
		unit:      entities.UnitPercent,
		interval:  5 * time.Minute,
		generator: func(r Random) Generator { return HumidityGenerator{Rand: r} },
	},
	entities.Temperature: {
		unit:      entities.UnitCelsius,
		interval:  5 * time.Minute,
		generator: func(r Random) Generator { return TemperatureGenerator{Rand: r} },
	},
}

var actuatorBlueprints = map[model.ActuatorKind]func() Regulator{
	entities.DripIrrigation: func() Regulator { return DripRegulator{} },
	entities.Sprinkler:      func() Regulator { return SprinklerRegulator{} },
}

// DefaultInterval returns the sampling interval of a sensor kind.
func DefaultInterval(kind model.SensorKind) (time.Duration, bool) {
	bp, ok := sensorBlueprints[kind]
	return bp.interval, ok
}

type factoryOptions struct {
	recorder Recorder
	rand     Random
}

// Option configures a factory.
type Option func(*factoryOptions)

// WithRecorder sets the instrumentation sink of every device built.
func WithRecorder(r Recorder) Option {
	return func(o *factoryOptions) { o.recorder = r }
}

// WithRandom sets the randomness source of sensor generators. The source
// is shared by all sensors and must be safe for concurrent use.
func WithRandom(r Random) Option {
	return func(o *factoryOptions) { o.rand = r }
}

func buildOptions(opts []Option) factoryOptions {
	o := factoryOptions{recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rand == nil {
		o.rand = newDefaultRandom()
	}
	return o
}

// SensorFactory builds sensors by kind and connects them.
type SensorFactory struct {
	dialer Dialer
	logger Logger
	opts   factoryOptions
}

func NewSensorFactory(dialer Dialer, logger Logger, opts ...Option) *SensorFactory {
	return &SensorFactory{dialer: dialer, logger: logger, opts: buildOptions(opts)}
}

// Create builds a sensor of the given kind and tries to connect it. A sensor
// whose connection fails is still returned, inert. Only an unknown kind is
// an error.
func (f *SensorFactory) Create(ctx context.Context, kind model.SensorKind, p SensorParams) (*Sensor, error) {
	bp, ok := sensorBlueprints[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSensorKind, kind)
	}
	interval := bp.interval
	if p.Interval > 0 {
		interval = p.Interval
	}

	s := &Sensor{
		kind:      kind,
		unit:      bp.unit,
		interval:  interval,
		generator: bp.generator(f.opts.rand),
		min:       p.Min,
		max:       p.Max,
		value:     p.Value,
	}
	s.Device = newDevice(ClassSensor, string(kind), p.ID, p.FieldID, p.ZoneID,
		SensorTopics(p.ZoneID, p.FieldID, p.ID, string(kind)), f.logger, f.opts.recorder)
	s.Device.halt = s.halt

	if s.connect(ctx, f.dialer) {
		s.start()
	}
	return s, nil
}

// ActuatorFactory builds actuators by kind and connects them.
type ActuatorFactory struct {
	dialer Dialer
	logger Logger
	opts   factoryOptions
}

func NewActuatorFactory(dialer Dialer, logger Logger, opts ...Option) *ActuatorFactory {
	return &ActuatorFactory{dialer: dialer, logger: logger, opts: buildOptions(opts)}
}

// Create builds an actuator of the given kind and tries to connect it.
func (f *ActuatorFactory) Create(ctx context.Context, kind model.ActuatorKind, p ActuatorParams) (*Actuator, error) {
	newRegulator, ok := actuatorBlueprints[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActuatorKind, kind)
	}

	a := &Actuator{
		kind:      kind,
		regulator: newRegulator(),
		min:       p.Min,
		max:       p.Max,
	}
	a.SetValue(p.Value)
	a.Device = newDevice(ClassActuator, string(kind), p.ID, p.FieldID, p.ZoneID,
		ActuatorTopics(p.ZoneID, p.FieldID, p.ID, string(kind)), f.logger, f.opts.recorder)

	a.connect(ctx, f.dialer)
	return a, nil
}
