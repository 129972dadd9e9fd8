package sensor

import (
	"time"
)

// ring is a fixed-capacity circular buffer of readings. Appends are O(1);
// when full the oldest reading is evicted. Unlike a consume-oriented queue
// the ring retains its contents, so windowed reads are suffix slices over
// arrival order.
//
// The ring is deliberately not synchronized: the Store has exactly one
// writer (the incremental reader) and its reader (the stats engine) runs on
// the same goroutine, so no concurrent access ever occurs.
type ring struct {
	items    []Reading
	capacity int
	size     int
	head     int // next write position
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 1 // minimum capacity
	}
	return &ring{
		items:    make([]Reading, capacity),
		capacity: capacity,
	}
}

// Append adds a reading, evicting the oldest when the ring is full.
func (r *ring) Append(item Reading) {
	r.items[r.head] = item
	r.head = (r.head + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
}

// Len returns the current number of readings in the ring.
func (r *ring) Len() int {
	return r.size
}

// Cap returns the maximum number of readings the ring can hold.
func (r *ring) Cap() int {
	return r.capacity
}

// at returns the i-th oldest reading, 0 <= i < size.
func (r *ring) at(i int) Reading {
	start := (r.head - r.size + r.capacity*2) % r.capacity
	return r.items[(start+i)%r.capacity]
}

// Snapshot returns all readings in arrival order.
func (r *ring) Snapshot() []Reading {
	out := make([]Reading, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.at(i)
	}
	return out
}

// Since returns the contiguous suffix of readings with Timestamp >= cutoff.
// Readings are ordered by non-decreasing timestamp, so binary search finds
// the suffix start. Returns an empty slice when none qualify.
func (r *ring) Since(cutoff time.Time) []Reading {
	// Binary search for the first index with Timestamp >= cutoff.
	lo, hi := 0, r.size
	for lo < hi {
		mid := (lo + hi) / 2
		if r.at(mid).Timestamp.Before(cutoff) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	out := make([]Reading, 0, r.size-lo)
	for i := lo; i < r.size; i++ {
		out = append(out, r.at(i))
	}
	return out
}
