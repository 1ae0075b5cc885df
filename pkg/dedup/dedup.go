// Package dedup remembers MQTT packet ids per topic so QoS 1 redeliveries
// are handed to a handler only once.
package dedup

import (
	"sync"
	"time"
)

const (
	defaultTTL = 10 * time.Minute
	defaultMax = 10000
)

type key struct {
	topic string
	id    uint16
}

type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	now  func() time.Time
	seen map[key]time.Time // expiry
}

func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if max <= 0 {
		max = defaultMax
	}
	return &Deduper{ttl: ttl, max: max, now: time.Now, seen: make(map[key]time.Time)}
}

// Redelivery records (topic, id) and reports whether the message is a
// broker redelivery of a packet already seen. Only messages flagged dup
// are dropped; id 0 (QoS 0) is never tracked.
func (d *Deduper) Redelivery(topic string, id uint16, dup bool) bool {
	if id == 0 {
		return false
	}
	k := key{topic: topic, id: id}
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.seen[k]
	seen := ok && now.Before(exp)
	d.seen[k] = now.Add(d.ttl)
	if len(d.seen) > d.max {
		d.evict(now)
	}
	return seen && dup
}

// evict drops expired entries, then the ones closest to expiry until the
// set fits max.
func (d *Deduper) evict(now time.Time) {
	for k, exp := range d.seen {
		if !now.Before(exp) {
			delete(d.seen, k)
		}
	}
	for len(d.seen) > d.max {
		var oldest key
		var oldestExp time.Time
		first := true
		for k, exp := range d.seen {
			if first || exp.Before(oldestExp) {
				oldest, oldestExp, first = k, exp, false
			}
		}
		delete(d.seen, oldest)
	}
}

func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
