package field_simulator

import (
	"context"

	"github.com/LeonardoBeccarini/field_simulator/internal/device"
	"github.com/LeonardoBeccarini/field_simulator/pkg/rabbitmq"
)

// MQTTDialer gives every device its own paho session.
func MQTTDialer(d *rabbitmq.Dialer) device.Dialer {
	return device.DialerFunc(func(ctx context.Context, name string) (device.Connection, error) {
		conn, err := d.Dial(ctx, name)
		if err != nil {
			return nil, err
		}
		return conn, nil
	})
}
