package sensor

import (
	"time"
)

// Store holds the bounded rolling history for every tracked sensor. It is
// mutated only by the incremental reader and read only by the stats engine
// on the same goroutine (single-writer, same-thread reader), so it carries
// no internal locking.
type Store struct {
	capacity int
	order    []string
	sensors  map[string]*trackedSensor
}

type trackedSensor struct {
	def  Definition
	ring *ring
}

// NewStore creates a store whose per-sensor rings hold capacity readings.
func NewStore(capacity int) *Store {
	return &Store{
		capacity: capacity,
		sensors:  make(map[string]*trackedSensor),
	}
}

// Track registers a sensor definition. Tracking is idempotent; the first
// definition wins, matching the immutability of header-derived definitions.
func (s *Store) Track(def Definition) {
	name := def.Column()
	if _, exists := s.sensors[name]; exists {
		return
	}
	s.sensors[name] = &trackedSensor{
		def:  def,
		ring: newRing(s.capacity),
	}
	s.order = append(s.order, name)
}

// Append adds a reading to the named sensor's history, evicting the oldest
// reading when the ring is full. Appends to untracked sensors are dropped.
func (s *Store) Append(name string, reading Reading) {
	ts, exists := s.sensors[name]
	if !exists {
		return
	}
	ts.ring.Append(reading)
}

// Since returns the contiguous suffix of the named sensor's history with
// Timestamp >= cutoff, in arrival order. An unknown sensor or an empty
// window yields an empty slice, not an error.
func (s *Store) Since(name string, cutoff time.Time) []Reading {
	ts, exists := s.sensors[name]
	if !exists {
		return nil
	}
	return ts.ring.Since(cutoff)
}

// Definition returns the stored definition for a sensor.
func (s *Store) Definition(name string) (Definition, bool) {
	ts, exists := s.sensors[name]
	if !exists {
		return Definition{}, false
	}
	return ts.def, true
}

// Names returns the tracked sensor names in registration (header) order.
func (s *Store) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns how many readings the named sensor currently holds.
func (s *Store) Len(name string) int {
	ts, exists := s.sensors[name]
	if !exists {
		return 0
	}
	return ts.ring.Len()
}

// Count returns the number of tracked sensors.
func (s *Store) Count() int {
	return len(s.sensors)
}
