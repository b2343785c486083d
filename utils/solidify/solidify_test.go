package solidify_test

import (
	"testing"

	"github.com/setanarut/v"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setanarut/pbd/utils/solidify"
)

var square = []v.Vec{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}

func TestWindingNumber(t *testing.T) {
	assert.InDelta(t, 1.0, solidify.WindingNumber(square, v.Vec{X: 0, Y: 0}), 1e-9)
	assert.InDelta(t, 1.0, solidify.WindingNumber(square, v.Vec{X: 0.9, Y: -0.9}), 1e-9)
	assert.InDelta(t, 0.0, solidify.WindingNumber(square, v.Vec{X: 2, Y: 0}), 1e-9)
	assert.InDelta(t, 0.0, solidify.WindingNumber(square, v.Vec{X: -3, Y: 5}), 1e-9)
}

// A doubled polygon winds twice; the winding number doubles with it.
func TestWindingNumberDoubled(t *testing.T) {
	doubled := append(append([]v.Vec{}, square...), square...)
	assert.InDelta(t, 2.0, solidify.WindingNumber(doubled, v.Vec{X: 0, Y: 0}), 1e-9)
}

func TestSolidifySquare(t *testing.T) {
	rect := solidify.Rect{L: -2, B: -2, R: 2, T: 2}
	set := solidify.Solidify(square, rect, 32, 32)

	require.Len(t, set.Lines, 1)
	line := set.Lines[0]
	require.True(t, line.IsClosed())

	// Every outline vertex hugs the square's boundary.
	for _, vert := range line.Verts {
		maxAxis := vert.X
		if -vert.X > maxAxis {
			maxAxis = -vert.X
		}
		if vert.Y > maxAxis {
			maxAxis = vert.Y
		}
		if -vert.Y > maxAxis {
			maxAxis = -vert.Y
		}
		assert.InDelta(t, 1.0, maxAxis, 0.2)
	}
}

// Tracing a figure with duplicated geometry still yields a single clean
// outline, which is the point of marching the winding field.
func TestSolidifyDuplicatedGeometry(t *testing.T) {
	doubled := append(append([]v.Vec{}, square...), square...)
	rect := solidify.Rect{L: -2, B: -2, R: 2, T: 2}
	set := solidify.Solidify(doubled, rect, 32, 32)

	require.Len(t, set.Lines, 1)
	require.True(t, set.Lines[0].IsClosed())
}

func TestMarchSoftCircle(t *testing.T) {
	sample := func(point v.Vec) float64 {
		return 1.0 - (point.X*point.X + point.Y*point.Y)
	}
	seg := func(v0, v1 v.Vec, set *solidify.PolyLineSet) {
		set.Push(v0, v1)
	}
	rect := solidify.Rect{L: -2, B: -2, R: 2, T: 2}
	set := solidify.MarchSoft(rect, 40, 40, 0.0, seg, sample)

	require.Len(t, set.Lines, 1)
	line := set.Lines[0]
	require.True(t, line.IsClosed())
	for _, vert := range line.Verts {
		assert.InDelta(t, 1.0, vert.Mag(), 0.05)
	}
}

func TestMarchHardSnapsToMidpoints(t *testing.T) {
	sample := func(point v.Vec) float64 {
		return 1.0 - (point.X*point.X + point.Y*point.Y)
	}
	seg := func(v0, v1 v.Vec, set *solidify.PolyLineSet) {
		set.Push(v0, v1)
	}
	rect := solidify.Rect{L: -2, B: -2, R: 2, T: 2}
	set := solidify.MarchHard(rect, 20, 20, 0.0, seg, sample)

	require.NotEmpty(t, set.Lines)
	require.True(t, set.Lines[0].IsClosed())
}

func TestPolyLineSetPush(t *testing.T) {
	set := &solidify.PolyLineSet{}

	a := v.Vec{X: 0, Y: 0}
	b := v.Vec{X: 1, Y: 0}
	c := v.Vec{X: 1, Y: 1}

	set.Push(a, b)
	require.Len(t, set.Lines, 1)
	require.False(t, set.Lines[0].IsClosed())

	set.Push(b, c)
	require.Len(t, set.Lines, 1)
	require.Len(t, set.Lines[0].Verts, 3)

	// Closing segment.
	set.Push(c, a)
	require.Len(t, set.Lines, 1)
	require.True(t, set.Lines[0].IsClosed())
}

func TestPolyLineSetJoin(t *testing.T) {
	set := &solidify.PolyLineSet{}

	set.Push(v.Vec{X: 0, Y: 0}, v.Vec{X: 1, Y: 0})
	set.Push(v.Vec{X: 2, Y: 0}, v.Vec{X: 3, Y: 0})
	require.Len(t, set.Lines, 2)

	// The connector merges both chains into one.
	set.Push(v.Vec{X: 1, Y: 0}, v.Vec{X: 2, Y: 0})
	require.Len(t, set.Lines, 1)
	require.Len(t, set.Lines[0].Verts, 4)
}
