package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/JuanjoFuchs/hwinfo-tui/sensor"
	"github.com/JuanjoFuchs/hwinfo-tui/stats"
	"github.com/JuanjoFuchs/hwinfo-tui/units"
)

// SensorSnapshot is the per-sensor portion of a snapshot: the header-derived
// definition, the display axis, the windowed statistics, and the windowed
// readings that produced them.
type SensorSnapshot struct {
	Definition sensor.Definition
	Axis       units.Axis
	Summary    stats.Summary
	Window     []sensor.Reading
}

// Snapshot is one immutable view of the engine state, produced once per tick
// and swapped in atomically. Consumers may hold a snapshot indefinitely;
// nothing in it is ever mutated after publication.
type Snapshot struct {
	ID       uuid.UUID
	TakenAt  time.Time
	Sensors  []SensorSnapshot
	Excluded []units.Rejection
}

// Sensor returns the snapshot entry for the named sensor column.
func (s *Snapshot) Sensor(name string) (SensorSnapshot, bool) {
	for _, ss := range s.Sensors {
		if ss.Definition.Column() == name {
			return ss, true
		}
	}
	return SensorSnapshot{}, false
}
