package field_simulator

import "sync/atomic"

// IDAllocator hands out the identifiers shared by zones, fields, sensors
// and actuators. The first id is 0; ids are never reused.
type IDAllocator struct {
	next atomic.Int64
}

func (a *IDAllocator) Next() int {
	return int(a.next.Add(1) - 1)
}
