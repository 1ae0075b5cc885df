package field_simulator

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/field_simulator/internal/device"
	"github.com/LeonardoBeccarini/field_simulator/internal/model"
	"github.com/LeonardoBeccarini/field_simulator/internal/model/entities"
	"github.com/LeonardoBeccarini/field_simulator/pkg/broker"
	"github.com/LeonardoBeccarini/field_simulator/pkg/rabbitmq"
)

type observed struct {
	topic   string
	payload []byte
}

// observer records every message on zone/#.
type observer struct {
	client mqtt.Client
	mu     sync.Mutex
	msgs   []observed
}

func newObserver(t *testing.T, port int) *observer {
	t.Helper()
	o := &observer{}
	opts := mqtt.NewClientOptions().
		AddBroker("tcp://127.0.0.1:" + strconv.Itoa(port)).
		SetClientID("observer").
		SetOrderMatters(false)
	o.client = mqtt.NewClient(opts)
	tok := o.client.Connect()
	require.True(t, tok.WaitTimeout(3*time.Second))
	require.NoError(t, tok.Error())

	tok = o.client.Subscribe("zone/#", 0, func(_ mqtt.Client, m mqtt.Message) {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.msgs = append(o.msgs, observed{topic: m.Topic(), payload: m.Payload()})
	})
	require.True(t, tok.WaitTimeout(3*time.Second))
	require.NoError(t, tok.Error())
	t.Cleanup(func() { o.client.Disconnect(100) })
	return o
}

func (o *observer) on(topic string) []observed {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []observed
	for _, m := range o.msgs {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func (o *observer) publish(t *testing.T, topic string) {
	t.Helper()
	tok := o.client.Publish(topic, 0, false, []byte("bye"))
	require.True(t, tok.WaitTimeout(3*time.Second))
	require.NoError(t, tok.Error())
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func startBroker(t *testing.T) int {
	t.Helper()
	port := freePort(t)
	b, err := broker.New(discard(), "127.0.0.1:"+strconv.Itoa(port))
	require.NoError(t, err)
	require.NoError(t, b.Start())
	t.Cleanup(func() { _ = b.Close() })
	return port
}

func mqttConfig(port, retries int) rabbitmq.RabbitMQConfig {
	return rabbitmq.RabbitMQConfig{
		Host:            "127.0.0.1",
		Port:            port,
		ClientID:        "it",
		ConnectTimeout:  2 * time.Second,
		PublishTimeout:  time.Second,
		ConnectRetries:  retries,
		BreakerFailures: 3,
		BreakerOpenFor:  time.Second,
	}
}

func newMQTTSimulator(t *testing.T, cfg rabbitmq.RabbitMQConfig) *Simulator {
	t.Helper()
	logger := discard()
	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	dialer := MQTTDialer(rabbitmq.NewDialer(cfg, logger))
	sim := NewSimulator(
		device.NewSensorFactory(dialer, logger, device.WithRecorder(metrics)),
		device.NewActuatorFactory(dialer, logger, device.WithRecorder(metrics)),
		logger,
	)
	t.Cleanup(sim.Shutdown)
	return sim
}

func TestSimulation_OverMQTT(t *testing.T) {
	port := startBroker(t)
	obs := newObserver(t, port)
	sim := newMQTTSimulator(t, mqttConfig(port, 3))

	roster := model.Roster{Zones: []model.ZoneSpec{{
		Name: "Coppito", Latitude: 42.3702262, Longitude: 13.3267021,
		Fields: []model.FieldSpec{{
			Name:      "Pomodori",
			Sensors:   []model.SensorSpec{{Kind: entities.SoilMoisture, Value: 50, Min: 0, Max: 100, Interval: 20 * time.Millisecond}},
			Actuators: []model.ActuatorSpec{{Kind: entities.DripIrrigation, Value: 0, Min: 0, Max: 100}},
		}},
	}}}
	require.NoError(t, sim.Build(context.Background(), roster))
	require.True(t, sim.Ready())

	sensorBase := "zone/0/field/1/sensor/2/soil-moisture"
	actuatorBase := "zone/0/field/1/actuator/3/drip-irrigation"

	require.Eventually(t, func() bool {
		return len(obs.on(sensorBase+"/activate")) == 1 && len(obs.on(actuatorBase+"/activate")) == 1
	}, 3*time.Second, 10*time.Millisecond, "both devices announce themselves")
	assert.Empty(t, obs.on(sensorBase + "/activate")[0].payload)

	require.Eventually(t, func() bool { return len(obs.on(sensorBase)) >= 3 },
		3*time.Second, 10*time.Millisecond, "sensor publishes readings")
	for _, m := range obs.on(sensorBase) {
		var r model.SensorReading
		require.NoError(t, json.Unmarshal(m.payload, &r))
		assert.GreaterOrEqual(t, r.Value, 0.0)
		assert.LessOrEqual(t, r.Value, 100.0)
	}

	field := sim.Zones()[0].Fields()[0]
	actuator := field.Actuators()[0]
	sensor := field.Sensors()[0]
	assert.Equal(t, 100.0, actuator.SetValue(150))

	obs.publish(t, actuatorBase+"/deactivate")
	require.Eventually(t, func() bool { return actuator.Status() == device.StatusDestroyed },
		3*time.Second, 10*time.Millisecond)
	assert.Equal(t, device.StatusActive, sensor.Status(), "deactivation is per device")

	obs.publish(t, sensorBase+"/deactivate")
	require.Eventually(t, func() bool { return sensor.Status() == device.StatusDestroyed },
		3*time.Second, 10*time.Millisecond)

	// let readings already in flight reach the observer
	time.Sleep(50 * time.Millisecond)
	n := len(obs.on(sensorBase))
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, obs.on(sensorBase), n, "no readings after destruction")
	assert.False(t, sim.Ready())
}

func TestSimulation_SoilSensorHundredTicks(t *testing.T) {
	port := startBroker(t)
	obs := newObserver(t, port)
	sim := newMQTTSimulator(t, mqttConfig(port, 3))

	roster := model.Roster{Zones: []model.ZoneSpec{{
		Name: "Coppito",
		Fields: []model.FieldSpec{{
			Name:      "Pomodori",
			Sensors:   []model.SensorSpec{{Kind: entities.SoilMoisture, Value: 50, Min: 0, Max: 100, Interval: time.Hour}},
			Actuators: []model.ActuatorSpec{{Kind: entities.DripIrrigation, Value: 0, Min: 0, Max: 100}},
		}},
	}}}
	require.NoError(t, sim.Build(context.Background(), roster))
	sensor := sim.Zones()[0].Fields()[0].Sensors()[0]
	require.Equal(t, device.StatusActive, sensor.Status())

	for i := 0; i < 100; i++ {
		sensor.Tick()
		v := sensor.Value()
		require.GreaterOrEqual(t, v, 0.0, "tick %d", i)
		require.LessOrEqual(t, v, 100.0, "tick %d", i)
	}

	topic := sensor.Topics().Publish
	require.Eventually(t, func() bool { return len(obs.on(topic)) == 100 },
		5*time.Second, 10*time.Millisecond, "every tick is published")
	for _, m := range obs.on(topic) {
		var r model.SensorReading
		require.NoError(t, json.Unmarshal(m.payload, &r))
		assert.GreaterOrEqual(t, r.Value, 0.0)
		assert.LessOrEqual(t, r.Value, 100.0)
	}
}

func TestBuild_UnreachableBrokerDoesNotSerialiseConnects(t *testing.T) {
	port := freePort(t) // nothing listens here
	sim := newMQTTSimulator(t, mqttConfig(port, 5))

	sensors := make([]model.SensorSpec, 20)
	for i := range sensors {
		sensors[i] = model.SensorSpec{Kind: entities.Light, Value: 100, Min: 0, Max: 3000, Interval: time.Hour}
	}
	roster := model.Roster{Zones: []model.ZoneSpec{{
		Name:   "Coppito",
		Fields: []model.FieldSpec{{Name: "Pomodori", Sensors: sensors}},
	}}}

	start := time.Now()
	require.NoError(t, sim.Build(context.Background(), roster))
	elapsed := time.Since(start)

	// one device spends about 1.6s in connect backoff; twenty in a row take >30s
	assert.Less(t, elapsed, 8*time.Second)
	st := sim.Stats()
	assert.Equal(t, 20, st.Sensors)
	assert.Zero(t, st.Active)

	field := sim.Zones()[0].Fields()[0]
	for i, s := range field.Sensors() {
		assert.Equal(t, 2+i, s.ID(), "children keep roster order")
	}
}
