// Package device implements the simulated field devices: the shared
// lifecycle driven over MQTT topics, the sensor sampling loop, actuator
// setpoints and the kind-dispatch factories.
package device

import (
	"context"
	"fmt"
	"sync"
)

// Device holds what sensors and actuators have in common: identity, topics,
// lifecycle status and the messaging connection it owns.
type Device struct {
	id      int
	fieldID int
	zoneID  int
	class   Class
	kind    string
	topics  Topics

	logger   Logger
	recorder Recorder

	mu     sync.Mutex
	status Status
	conn   Connection

	// halt stops kind-specific work. Destroy calls it before the connection
	// is released.
	halt func()
}

func newDevice(class Class, kind string, id, fieldID, zoneID int, topics Topics, logger Logger, recorder Recorder) *Device {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Device{
		id:       id,
		fieldID:  fieldID,
		zoneID:   zoneID,
		class:    class,
		kind:     kind,
		topics:   topics,
		logger:   logger,
		recorder: recorder,
		status:   StatusCreated,
	}
}

func (d *Device) ID() int        { return d.id }
func (d *Device) FieldID() int   { return d.fieldID }
func (d *Device) ZoneID() int    { return d.zoneID }
func (d *Device) Class() Class   { return d.class }
func (d *Device) Topics() Topics { return d.topics }

// Name is the identifier used in logs and client ids, e.g. "sensor-7-light".
func (d *Device) Name() string {
	return fmt.Sprintf("%s-%d-%s", d.class, d.id, d.kind)
}

// Status returns the current lifecycle status.
func (d *Device) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Active reports whether the device holds a live connection.
func (d *Device) Active() bool {
	return d.Status() == StatusActive
}

// connect acquires the device's connection, subscribes to the deactivation
// topic and announces itself on the activation topic. It reports whether the
// device became active.
func (d *Device) connect(ctx context.Context, dialer Dialer) bool {
	d.mu.Lock()
	if d.status != StatusCreated {
		d.mu.Unlock()
		return false
	}
	d.status = StatusConnecting
	d.mu.Unlock()
	d.recorder.StatusChanged(d.class, StatusCreated, StatusConnecting)

	conn, err := dialer.Dial(ctx, d.Name())
	if err != nil {
		d.logger.Error("messaging connection failed", "device", d.Name(), "error", err)
		return false
	}

	conn.OnMessage(d.handleMessage)
	if err := conn.Subscribe(d.topics.Deactivation); err != nil {
		d.logger.Error("subscribe to deactivation topic failed",
			"device", d.Name(), "topic", d.topics.Deactivation, "error", err)
		d.release(conn, false)
		return false
	}
	if err := conn.Publish(d.topics.Activation, nil); err != nil {
		d.logger.Error("activation publish failed",
			"device", d.Name(), "topic", d.topics.Activation, "error", err)
		d.release(conn, true)
		return false
	}

	d.mu.Lock()
	if d.status != StatusConnecting {
		// destroyed while the connection was being set up
		d.mu.Unlock()
		d.release(conn, true)
		return false
	}
	d.conn = conn
	d.status = StatusActive
	d.mu.Unlock()
	d.recorder.StatusChanged(d.class, StatusConnecting, StatusActive)

	d.logger.Info("device active", "device", d.Name(), "topic", d.topics.Base)
	return true
}

// handleMessage destroys the device when a message arrives on exactly its
// deactivation topic. Every other topic is ignored.
func (d *Device) handleMessage(topic string, _ []byte) {
	if topic == "" || topic != d.topics.Deactivation {
		return
	}
	d.logger.Info("deactivation received", "device", d.Name(), "topic", topic)
	d.Destroy()
}

// Activate publishes an empty payload on the activation topic. The publish
// runs outside the status lock.
func (d *Device) Activate() error {
	conn, ok := d.current()
	if !ok {
		return fmt.Errorf("%w: %s is %s", ErrNotActive, d.Name(), d.Status())
	}
	if err := conn.Publish(d.topics.Activation, nil); err != nil {
		return fmt.Errorf("activate %s: %w", d.Name(), err)
	}
	return nil
}

// Destroy stops the device and releases its connection. It is safe to call
// on a device that never became active and on one already destroyed.
func (d *Device) Destroy() {
	if d.halt != nil {
		d.halt()
	}

	d.mu.Lock()
	if d.status == StatusDestroyed {
		d.mu.Unlock()
		return
	}
	from := d.status
	conn := d.conn
	d.status = StatusDestroyed
	d.conn = nil
	d.mu.Unlock()
	d.recorder.StatusChanged(d.class, from, StatusDestroyed)

	if conn != nil {
		d.release(conn, true)
	}
	d.logger.Info("device destroyed", "device", d.Name())
}

// current returns the connection if the device is active.
func (d *Device) current() (Connection, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status != StatusActive || d.conn == nil {
		return nil, false
	}
	return d.conn, true
}

func (d *Device) release(conn Connection, subscribed bool) {
	if subscribed {
		if err := conn.Unsubscribe(d.topics.Deactivation); err != nil {
			d.logger.Warn("unsubscribe failed", "device", d.Name(), "topic", d.topics.Deactivation, "error", err)
		}
	}
	if err := conn.End(); err != nil {
		d.logger.Warn("connection close failed", "device", d.Name(), "error", err)
	}
}
