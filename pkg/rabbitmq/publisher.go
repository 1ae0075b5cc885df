package rabbitmq

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/field_simulator/pkg/dedup"
)

// Conn is one MQTT session owned by a single device. It publishes through a
// circuit breaker and dispatches inbound messages to one handler.
type Conn struct {
	client         mqtt.Client
	qos            byte
	publishTimeout time.Duration
	breaker        *gobreaker.CircuitBreaker
	deduper        *dedup.Deduper
	logger         *slog.Logger

	mu      sync.RWMutex
	handler func(topic string, payload []byte)
	subs    map[string]struct{} // restored on reconnect
}

func newConn(client mqtt.Client, cfg *RabbitMQConfig, logger *slog.Logger) *Conn {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &Conn{
		client:         client,
		qos:            cfg.QoS,
		publishTimeout: timeout,
		breaker:        newBreaker(cfg),
		deduper:        dedup.New(2*time.Minute, 1000), // TTL e cap
		logger:         logger,
		subs:           make(map[string]struct{}),
	}
}

func newBreaker(cfg *RabbitMQConfig) *gobreaker.CircuitBreaker {
	fails := cfg.BreakerFailures
	if fails < 1 {
		fails = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    cfg.ClientID,
		Timeout: cfg.BreakerOpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
	})
}

// Publish sends payload on topic, not retained. While the breaker is open
// it fails immediately.
func (c *Conn) Publish(topic string, payload []byte) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		token := c.client.Publish(topic, c.qos, false, payload)
		if !token.WaitTimeout(c.publishTimeout) {
			return nil, ErrTimeout
		}
		return nil, token.Error()
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}

// BreakerState reports the publish breaker state, e.g. "closed" or "open".
func (c *Conn) BreakerState() string {
	return c.breaker.State().String()
}

func (c *Conn) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// End disconnects the client. Further calls do nothing.
func (c *Conn) End() error {
	CloseRabbitMQConn(c.client)
	return nil
}
