package device

import "context"

// Connection is a single messaging session owned by exactly one device.
type Connection interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string) error
	Unsubscribe(topic string) error
	// OnMessage registers the callback for every message received on any
	// subscribed topic. It replaces a previously registered callback.
	OnMessage(handler func(topic string, payload []byte))
	End() error
}

// Dialer acquires a new Connection. name is a human readable hint the
// implementation may use to build a client id.
type Dialer interface {
	Dial(ctx context.Context, name string) (Connection, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, name string) (Connection, error)

func (f DialerFunc) Dial(ctx context.Context, name string) (Connection, error) {
	return f(ctx, name)
}

// Logger is the logging capability devices need. *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Recorder receives device events for instrumentation.
type Recorder interface {
	ReadingPublished(kind string)
	PublishFailed(kind string)
	StatusChanged(class Class, from, to Status)
}

type nopRecorder struct{}

func (nopRecorder) ReadingPublished(string)             {}
func (nopRecorder) PublishFailed(string)                {}
func (nopRecorder) StatusChanged(Class, Status, Status) {}
