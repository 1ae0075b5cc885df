// Package broker runs an in-process MQTT broker for local runs and tests.
package broker

import (
	"fmt"
	"log/slog"

	mqttbroker "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
)

// Broker is an embedded MQTT broker listening on a single TCP address.
type Broker struct {
	server *mqttbroker.Server
	addr   string
	logger *slog.Logger
}

// New binds the TCP listener on addr. Every client is allowed.
func New(logger *slog.Logger, addr string) (*Broker, error) {
	server := mqttbroker.New(&mqttbroker.Options{
		Logger: logger.With(slog.String("component", "mqtt-broker")),
	})
	tcp := listeners.NewTCP(listeners.Config{ID: "tcp", Address: addr})

	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("broker listener %s: %w", addr, err)
	}
	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("broker auth hook: %w", err)
	}
	return &Broker{server: server, addr: tcp.Address(), logger: logger}, nil
}

// Start begins accepting clients. It does not block.
func (b *Broker) Start() error {
	if err := b.server.Serve(); err != nil {
		return fmt.Errorf("broker serve: %w", err)
	}
	b.logger.Info("MQTT broker listening", slog.String("address", b.addr))
	return nil
}

// Addr is the address the listener is bound to.
func (b *Broker) Addr() string { return b.addr }

func (b *Broker) Close() error {
	return b.server.Close()
}
