package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"°C", "°C"},
		{"C", "°C"},
		{"c", "°C"},
		{"degC", "°C"},
		{"%", "%"},
		{"percent", "%"},
		{"Percent", "%"},
		{"W", "W"},
		{"Watts", "W"},
		{"MHz", "MHz"},
		{"Mhz", "MHz"},
		{"RPM", "RPM"},
		{"rpm", "RPM"},
		{"Yes/No", "Yes/No"},
		{"", Unitless},
		{"  ", Unitless},
		{"GB/s", "GB/s"}, // unknown tokens normalize to themselves
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.raw), "Normalize(%q)", tt.raw)
	}
}

func TestGrouperTwoUnitLimit(t *testing.T) {
	g := NewGrouper()

	// Header units [°C, °C, %, W]: admit {°C, %}, exclude W.
	axis, ok := g.Admit("CPU Package", "°C")
	require.True(t, ok)
	assert.Equal(t, AxisPrimary, axis)

	axis, ok = g.Admit("GPU Temp", "°C")
	require.True(t, ok)
	assert.Equal(t, AxisPrimary, axis)

	axis, ok = g.Admit("Total CPU Usage", "%")
	require.True(t, ok)
	assert.Equal(t, AxisSecondary, axis)

	axis, ok = g.Admit("CPU Package Power", "W")
	assert.False(t, ok)
	assert.Equal(t, AxisNone, axis)

	rejections := g.Rejections()
	require.Len(t, rejections, 1)
	assert.Equal(t, "CPU Package Power", rejections[0].Sensor)
	assert.Equal(t, "W", rejections[0].Unit)
	assert.Equal(t, [2]string{"°C", "%"}, rejections[0].Accepted)

	groups := g.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "°C", groups[0].Unit)
	assert.Equal(t, []string{"CPU Package", "GPU Temp"}, groups[0].Members)
	assert.Equal(t, "%", groups[1].Unit)
	assert.Equal(t, []string{"Total CPU Usage"}, groups[1].Members)
}

func TestGrouperSynonymsShareGroup(t *testing.T) {
	g := NewGrouper()

	_, ok := g.Admit("A", "°C")
	require.True(t, ok)
	axis, ok := g.Admit("B", "C")
	require.True(t, ok, "C and °C must fold into one group")
	assert.Equal(t, AxisPrimary, axis)

	assert.Len(t, g.Groups(), 1)
}

func TestGrouperUnitlessIsADistinctUnit(t *testing.T) {
	g := NewGrouper()

	axis, ok := g.Admit("Raw Counter", "")
	require.True(t, ok)
	assert.Equal(t, AxisPrimary, axis)

	axis, ok = g.Admit("Temp", "°C")
	require.True(t, ok)
	assert.Equal(t, AxisSecondary, axis)

	_, ok = g.Admit("Usage", "%")
	assert.False(t, ok)
}

func TestGrouperAssignmentLookup(t *testing.T) {
	g := NewGrouper()
	_, _ = g.Admit("A", "°C")
	_, _ = g.Admit("B", "%")
	_, _ = g.Admit("C", "W")

	axis, ok := g.Assignment("A")
	require.True(t, ok)
	assert.Equal(t, AxisPrimary, axis)

	axis, ok = g.Assignment("B")
	require.True(t, ok)
	assert.Equal(t, AxisSecondary, axis)

	_, ok = g.Assignment("C")
	assert.False(t, ok, "rejected sensors have no assignment")
}

func TestGrouperRejectionIsPermanent(t *testing.T) {
	g := NewGrouper()
	_, _ = g.Admit("A", "°C")
	_, _ = g.Admit("B", "%")

	_, ok := g.Admit("C", "W")
	assert.False(t, ok)
	// Same sensor re-presented is rejected again, never retried.
	_, ok = g.Admit("C", "W")
	assert.False(t, ok)
	assert.Len(t, g.Rejections(), 2)
}
