package units

// Axis identifies which of the two display axes a sensor was assigned to.
type Axis int

const (
	// AxisNone marks a rejected sensor.
	AxisNone Axis = 0
	// AxisPrimary is the first distinct canonical unit observed.
	AxisPrimary Axis = 1
	// AxisSecondary is the second distinct canonical unit observed.
	AxisSecondary Axis = 2
)

// Group is one admitted unit group and its member sensors in admission order.
type Group struct {
	Unit    string
	Members []string
}

// Rejection records a sensor excluded because its unit would be the third
// distinct unit. The decision is permanent for the run.
type Rejection struct {
	Sensor   string
	Unit     string
	Accepted [2]string
}

// Grouper admits sensors into at most two unit groups. Admission order is
// the caller's sensor order; the first distinct canonical unit becomes the
// primary axis, the second the secondary axis, and any further distinct
// unit is permanently rejected.
type Grouper struct {
	groups     []*Group
	assignment map[string]Axis
	rejections []Rejection
}

// NewGrouper creates an empty grouper.
func NewGrouper() *Grouper {
	return &Grouper{
		assignment: make(map[string]Axis),
	}
}

// Admit processes one sensor. It returns the axis assignment, or AxisNone
// with ok=false when the sensor's unit would be a third distinct unit, in
// which case the rejection is recorded for diagnostic reporting.
func (g *Grouper) Admit(sensorName, rawUnit string) (Axis, bool) {
	unit := Normalize(rawUnit)

	for i, group := range g.groups {
		if group.Unit == unit {
			group.Members = append(group.Members, sensorName)
			axis := Axis(i + 1)
			g.assignment[sensorName] = axis
			return axis, true
		}
	}

	if len(g.groups) < 2 {
		g.groups = append(g.groups, &Group{Unit: unit, Members: []string{sensorName}})
		axis := Axis(len(g.groups))
		g.assignment[sensorName] = axis
		return axis, true
	}

	g.rejections = append(g.rejections, Rejection{
		Sensor:   sensorName,
		Unit:     unit,
		Accepted: [2]string{g.groups[0].Unit, g.groups[1].Unit},
	})
	return AxisNone, false
}

// Assignment returns the axis previously assigned to a sensor.
func (g *Grouper) Assignment(sensorName string) (Axis, bool) {
	axis, ok := g.assignment[sensorName]
	return axis, ok
}

// Groups returns copies of the admitted groups in axis order.
func (g *Grouper) Groups() []Group {
	out := make([]Group, len(g.groups))
	for i, group := range g.groups {
		members := make([]string, len(group.Members))
		copy(members, group.Members)
		out[i] = Group{Unit: group.Unit, Members: members}
	}
	return out
}

// Rejections returns the permanent exclusion records in admission order.
func (g *Grouper) Rejections() []Rejection {
	out := make([]Rejection, len(g.rejections))
	copy(out, g.rejections)
	return out
}
