package device

// Status is a device lifecycle state.
//
//	created -> connecting -> active -> destroyed
//
// A device whose connection could not be acquired stays in connecting
// without a connection and never simulates; it can still be destroyed.
type Status int

const (
	StatusCreated Status = iota
	StatusConnecting
	StatusActive
	StatusDestroyed
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusConnecting:
		return "connecting"
	case StatusActive:
		return "active"
	case StatusDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
