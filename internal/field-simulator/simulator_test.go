package field_simulator

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/field_simulator/internal/device"
	"github.com/LeonardoBeccarini/field_simulator/internal/model"
	"github.com/LeonardoBeccarini/field_simulator/internal/model/entities"
)

type memConn struct {
	mu    sync.Mutex
	ended bool
}

func (c *memConn) Publish(string, []byte) error                 { return nil }
func (c *memConn) Subscribe(string) error                       { return nil }
func (c *memConn) Unsubscribe(string) error                     { return nil }
func (c *memConn) OnMessage(func(topic string, payload []byte)) {}

func (c *memConn) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended = true
	return nil
}

func (c *memConn) isEnded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

type memDialer struct {
	mu    sync.Mutex
	fail  bool
	conns []*memConn
}

func (d *memDialer) Dial(context.Context, string) (device.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return nil, assert.AnError
	}
	c := &memConn{}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *memDialer) allEnded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.conns {
		if !c.isEnded() {
			return false
		}
	}
	return true
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSimulator(dialer device.Dialer) *Simulator {
	logger := discard()
	return NewSimulator(
		device.NewSensorFactory(dialer, logger),
		device.NewActuatorFactory(dialer, logger),
		logger,
	)
}

// hourly keeps sensor loops idle for the duration of a test.
func hourly(r model.Roster) model.Roster {
	for zi := range r.Zones {
		for fi := range r.Zones[zi].Fields {
			f := &r.Zones[zi].Fields[fi]
			sensors := make([]model.SensorSpec, len(f.Sensors))
			copy(sensors, f.Sensors)
			for i := range sensors {
				sensors[i].Interval = time.Hour
			}
			f.Sensors = sensors
		}
	}
	return r
}

func TestBuild_SeedRoster(t *testing.T) {
	roster, err := LoadRoster("")
	require.NoError(t, err)

	sim := newSimulator(&memDialer{})
	require.NoError(t, sim.Build(context.Background(), hourly(roster)))
	t.Cleanup(sim.Shutdown)

	assert.Equal(t, Stats{Zones: 2, Fields: 6, Sensors: 120, Actuators: 36, Active: 156}, sim.Stats())
	assert.True(t, sim.Ready())

	zones := sim.Zones()
	require.Len(t, zones, 2)
	coppito := zones[0]
	assert.Equal(t, 0, coppito.ID())
	assert.Equal(t, "Coppito", coppito.Name())

	pomodori := coppito.Fields()[0]
	assert.Equal(t, 1, pomodori.ID())
	assert.Equal(t, "Pomodori", pomodori.Name())

	first := pomodori.Sensors()[0]
	assert.Equal(t, 2, first.ID())
	assert.Equal(t, "zone/0/field/1/sensor/2/soil-moisture", first.Topics().Base)

	drip := pomodori.Actuators()[0]
	assert.Equal(t, 22, drip.ID())
	assert.Equal(t, "zone/0/field/1/actuator/22/drip-irrigation", drip.Topics().Base)

	zucchine := coppito.Fields()[1]
	assert.Equal(t, 28, zucchine.ID())

	collebrincioni := zones[1]
	assert.Equal(t, 1+3*27, collebrincioni.ID())
}

func TestBuild_UnknownKindTearsDown(t *testing.T) {
	dialer := &memDialer{}
	sim := newSimulator(dialer)
	roster := model.Roster{Zones: []model.ZoneSpec{
		{Name: "Coppito", Fields: []model.FieldSpec{
			{Name: "Pomodori",
				Sensors:   []model.SensorSpec{{Kind: entities.Light, Max: 3000, Interval: time.Hour}},
				Actuators: []model.ActuatorSpec{{Kind: entities.Sprinkler, Max: 100}},
			},
		}},
		{Name: "Collebrincioni", Fields: []model.FieldSpec{
			{Name: "Zucchine", Sensors: []model.SensorSpec{
				{Kind: entities.Humidity, Max: 100, Interval: time.Hour},
				{Kind: "wind"},
			}},
		}},
	}}

	err := sim.Build(context.Background(), roster)

	require.ErrorIs(t, err, device.ErrUnknownSensorKind)
	assert.Contains(t, err.Error(), "Zucchine")
	assert.Empty(t, sim.Zones())
	assert.False(t, sim.Ready())
	assert.Len(t, dialer.conns, 3)
	assert.True(t, dialer.allEnded(), "every connection built before the failure is released")
}

func TestBuild_UnknownActuatorKind(t *testing.T) {
	sim := newSimulator(&memDialer{})
	roster := model.Roster{Zones: []model.ZoneSpec{{Name: "Z", Fields: []model.FieldSpec{
		{Name: "F", Actuators: []model.ActuatorSpec{{Kind: "pivot"}}},
	}}}}

	assert.ErrorIs(t, sim.Build(context.Background(), roster), device.ErrUnknownActuatorKind)
}

func TestBuild_ConnectionFailuresLeaveDevicesInert(t *testing.T) {
	sim := newSimulator(&memDialer{fail: true})
	roster := model.Roster{Zones: []model.ZoneSpec{{Name: "Z", Fields: []model.FieldSpec{
		{Name: "F",
			Sensors:   []model.SensorSpec{{Kind: entities.Temperature, Min: -20, Max: 80}},
			Actuators: []model.ActuatorSpec{{Kind: entities.DripIrrigation, Max: 100}},
		},
	}}}}

	require.NoError(t, sim.Build(context.Background(), roster))
	t.Cleanup(sim.Shutdown)

	assert.True(t, sim.Built())
	assert.False(t, sim.Ready())
	st := sim.Stats()
	assert.Equal(t, 2, st.Sensors+st.Actuators)
	assert.Zero(t, st.Active)
}

func TestRemoveZone(t *testing.T) {
	dialer := &memDialer{}
	sim := newSimulator(dialer)
	roster := model.Roster{Zones: []model.ZoneSpec{
		{Name: "A", Fields: []model.FieldSpec{{Name: "F", Actuators: []model.ActuatorSpec{{Kind: entities.Sprinkler, Max: 1}}}}},
		{Name: "B"},
	}}
	require.NoError(t, sim.Build(context.Background(), roster))
	t.Cleanup(sim.Shutdown)

	zone, ok := sim.ZoneByID(0)
	require.True(t, ok)
	actuator := zone.Fields()[0].Actuators()[0]

	require.NoError(t, sim.RemoveZone(0))

	assert.Equal(t, device.StatusDestroyed, actuator.Status())
	_, ok = sim.ZoneByID(0)
	assert.False(t, ok)
	assert.Len(t, sim.Zones(), 1)
	assert.ErrorIs(t, sim.RemoveZone(0), ErrZoneNotFound)
}

func TestShutdown(t *testing.T) {
	dialer := &memDialer{}
	sim := newSimulator(dialer)
	roster, err := LoadRoster("")
	require.NoError(t, err)
	require.NoError(t, sim.Build(context.Background(), hourly(roster)))

	sim.Shutdown()

	assert.Empty(t, sim.Zones())
	assert.False(t, sim.Built())
	assert.True(t, dialer.allEnded())
}

func TestIDAllocator(t *testing.T) {
	var ids IDAllocator
	assert.Equal(t, 0, ids.Next())
	assert.Equal(t, 1, ids.Next())

	seen := make(map[int]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := ids.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}
