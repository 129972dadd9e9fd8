// Package sensor owns the per-sensor data model: timestamped readings,
// immutable sensor definitions, and the bounded circular history each
// sensor keeps.
package sensor

import (
	"fmt"
	"time"
)

// Definition describes one sensor column from the log header. Created once
// per distinct column at header parse and immutable thereafter.
type Definition struct {
	// Name is the display name without the bracketed unit token.
	Name string
	// RawUnit is the unit token exactly as it appeared in the header,
	// empty for unitless columns.
	RawUnit string
	// Unit is the canonical unit after synonym folding.
	Unit string
}

// Column returns the full column identity as it appears in the header,
// e.g. "CPU Package [°C]".
func (d Definition) Column() string {
	if d.RawUnit == "" {
		return d.Name
	}
	return fmt.Sprintf("%s [%s]", d.Name, d.RawUnit)
}

// Reading is one timestamped sample for one sensor. Missing marks tokens
// that were neither numeric nor boolean; such readings are excluded from
// statistics and never coerced to zero.
type Reading struct {
	Timestamp time.Time
	Value     float64
	Missing   bool
}
