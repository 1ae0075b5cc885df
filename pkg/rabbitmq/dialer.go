package rabbitmq

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Dialer opens one Conn per caller, each with its own client id.
type Dialer struct {
	cfg    RabbitMQConfig
	logger *slog.Logger
}

func NewDialer(cfg RabbitMQConfig, logger *slog.Logger) *Dialer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dialer{cfg: cfg, logger: logger}
}

// Dial connects a new session. name is folded into the client id together
// with a random suffix so two sessions never collide on the broker.
func (d *Dialer) Dial(ctx context.Context, name string) (*Conn, error) {
	cfg := d.cfg
	cfg.ClientID = clientID(d.cfg.ClientID, name)

	conn := newConn(nil, &cfg, d.logger.With("client_id", cfg.ClientID))
	client, err := NewRabbitMQConn(&cfg, ctx, d.logger, conn.restoreSubscriptions)
	if err != nil {
		return nil, err
	}
	conn.client = client
	return conn, nil
}

func clientID(prefix, name string) string {
	id := uuid.NewString()[:8]
	switch {
	case prefix == "" && name == "":
		return id
	case prefix == "":
		return name + "-" + id
	case name == "":
		return prefix + "-" + id
	default:
		return prefix + "-" + name + "-" + id
	}
}
