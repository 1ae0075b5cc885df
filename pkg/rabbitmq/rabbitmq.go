package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	disconnectQuiesceMs   = 250
	defaultConnectTimeout = 5 * time.Second
	defaultPublishTimeout = 2 * time.Second
)

type RabbitMQConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	ClientID string
	QoS      byte

	ConnectTimeout time.Duration
	PublishTimeout time.Duration
	ConnectRetries int // attempts, at least 1

	BreakerFailures int
	BreakerOpenFor  time.Duration
}

func (cfg *RabbitMQConfig) brokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)
}

// NewRabbitMQConn connects a new MQTT client, retrying with exponential
// backoff up to cfg.ConnectRetries attempts or until ctx is done. onConnect,
// if set, runs after the first connection and after every automatic
// reconnect.
func NewRabbitMQConn(cfg *RabbitMQConfig, ctx context.Context, logger *slog.Logger, onConnect mqtt.OnConnectHandler) (mqtt.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	connAddr := cfg.brokerURL()
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(connAddr)
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(timeout)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	// handlers run on their own goroutine so they may call back into the client
	opts.SetOrderMatters(false)
	if onConnect != nil {
		opts.SetOnConnectHandler(onConnect)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "client_id", cfg.ClientID, "error", err)
	})

	// Exponential backoff per le retry in caso di fail
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 10 * time.Second
	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		token := client.Connect()
		if !token.WaitTimeout(timeout) {
			client.Disconnect(0)
			return ErrTimeout
		}
		if err := token.Error(); err != nil {
			logger.Warn("MQTT connect attempt failed", "client_id", cfg.ClientID, "error", err)
			return err
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(retries-1)), ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrConnectionFailed, connAddr, retries, err)
	}

	logger.Debug("connected to MQTT broker", "address", connAddr, "client_id", cfg.ClientID)
	return client, nil
}

func CloseRabbitMQConn(client mqtt.Client) {
	if client.IsConnected() {
		client.Disconnect(disconnectQuiesceMs)
	}
}
