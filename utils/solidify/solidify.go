// Package solidify reconstructs closed outlines from implicit scalar
// fields with marching squares. The field can be anything samplable; the
// package ships a generalized winding number sampler that classifies
// inside/outside robustly even for self-intersecting or open polygons.
package solidify

import (
	"math"

	"github.com/setanarut/v"
)

// Rect is the axis-aligned sampling region.
type Rect struct {
	L, B, R, T float64
}

// SampleFunc evaluates the implicit field at a point. It is called for
// every grid sample the march takes; you can use it to sample an image,
// a tile map, or any 2d matrix you define.
type SampleFunc func(point v.Vec) float64

// SegFunc receives every crossing segment the march emits. In most cases
// you want PolyLineSet.Push.
type SegFunc func(v0, v1 v.Vec, set *PolyLineSet)

// CellFunc turns one sampled cell into crossing segments.
type CellFunc func(t, a, b, c, d, x0, x1, y0, y1 float64, seg SegFunc, set *PolyLineSet)

// MarchCells samples an xSamples by ySamples grid over rect and runs cell
// on every cell with its four corner values. Rows are sampled once and
// reused for the row above, so sample is called exactly xSamples*ySamples
// times.
func MarchCells(
	rect Rect,
	xSamples, ySamples int64,
	t float64,
	seg SegFunc,
	sample SampleFunc,
	cell CellFunc,
) *PolyLineSet {
	xDenom := 1.0 / float64(xSamples-1)
	yDenom := 1.0 / float64(ySamples-1)

	buffer := make([]float64, xSamples)
	for i := int64(0); i < xSamples; i++ {
		buffer[i] = sample(v.Vec{X: lerp(rect.L, rect.R, float64(i)*xDenom), Y: rect.B})
	}
	set := &PolyLineSet{}

	for j := int64(0); j < ySamples-1; j++ {
		y0 := lerp(rect.B, rect.T, float64(j+0)*yDenom)
		y1 := lerp(rect.B, rect.T, float64(j+1)*yDenom)

		b := buffer[0]
		d := sample(v.Vec{X: rect.L, Y: y1})
		buffer[0] = d

		for i := int64(0); i < xSamples-1; i++ {
			x0 := lerp(rect.L, rect.R, float64(i+0)*xDenom)
			x1 := lerp(rect.L, rect.R, float64(i+1)*xDenom)

			a := b
			b = buffer[i+1]
			c := d
			d = sample(v.Vec{X: x1, Y: y1})
			buffer[i+1] = d

			cell(t, a, b, c, d, x0, x1, y0, y1, seg, set)
		}
	}

	return set
}

// MarchSoft traces an anti-aliased contour of the field along threshold t:
// crossing points are interpolated along the cell edges.
func MarchSoft(rect Rect, xSamples, ySamples int64, t float64, seg SegFunc, sample SampleFunc) *PolyLineSet {
	return MarchCells(rect, xSamples, ySamples, t, seg, sample, CellSoft)
}

// MarchHard traces an aliased contour of the field along threshold t:
// crossings snap to cell edge midpoints.
func MarchHard(rect Rect, xSamples, ySamples int64, t float64, seg SegFunc, sample SampleFunc) *PolyLineSet {
	return MarchCells(rect, xSamples, ySamples, t, seg, sample, CellHard)
}

func emit(v0, v1 v.Vec, seg SegFunc, set *PolyLineSet) {
	if !v0.Equals(v1) {
		seg(v1, v0, set)
	}
}

func midlerp(x0, x1, s0, s1, t float64) float64 {
	return lerp(x0, x1, (t-s0)/(s1-s0))
}

// CellSoft emits the interpolated crossing segments of one cell. Corner
// values a,b,c,d are bottom-left, bottom-right, top-left, top-right; the
// 16 corner sign cases reduce to at most two segments, with the two
// ambiguous saddle cases (0x6, 0x9) resolved as split corners.
func CellSoft(t, a, b, c, d, x0, x1, y0, y1 float64, seg SegFunc, set *PolyLineSet) {
	// Interpolated crossing points on the four cell edges.
	bottom := func() v.Vec { return v.Vec{X: midlerp(x0, x1, a, b, t), Y: y0} }
	top := func() v.Vec { return v.Vec{X: midlerp(x0, x1, c, d, t), Y: y1} }
	left := func() v.Vec { return v.Vec{X: x0, Y: midlerp(y0, y1, a, c, t)} }
	right := func() v.Vec { return v.Vec{X: x1, Y: midlerp(y0, y1, b, d, t)} }

	switch cellCase(t, a, b, c, d) {
	case 0x1:
		emit(left(), bottom(), seg, set)
	case 0x2:
		emit(bottom(), right(), seg, set)
	case 0x3:
		emit(left(), right(), seg, set)
	case 0x4:
		emit(top(), left(), seg, set)
	case 0x5:
		emit(top(), bottom(), seg, set)
	case 0x6:
		emit(bottom(), right(), seg, set)
		emit(top(), left(), seg, set)
	case 0x7:
		emit(top(), right(), seg, set)
	case 0x8:
		emit(right(), top(), seg, set)
	case 0x9:
		emit(left(), bottom(), seg, set)
		emit(right(), top(), seg, set)
	case 0xA:
		emit(bottom(), top(), seg, set)
	case 0xB:
		emit(left(), top(), seg, set)
	case 0xC:
		emit(right(), left(), seg, set)
	case 0xD:
		emit(right(), bottom(), seg, set)
	case 0xE:
		emit(bottom(), left(), seg, set)
	}
}

// CellHard emits the midpoint-snapped crossing segments of one cell,
// routing through the cell center so corners stay square.
func CellHard(t, a, b, c, d, x0, x1, y0, y1 float64, seg SegFunc, set *PolyLineSet) {
	xm := lerp(x0, x1, 0.5)
	ym := lerp(y0, y1, 0.5)

	corner := func(p0, p1, p2 v.Vec) {
		emit(p1, p2, seg, set)
		emit(p0, p1, seg, set)
	}
	bottom := v.Vec{X: xm, Y: y0}
	top := v.Vec{X: xm, Y: y1}
	left := v.Vec{X: x0, Y: ym}
	right := v.Vec{X: x1, Y: ym}
	center := v.Vec{X: xm, Y: ym}

	switch cellCase(t, a, b, c, d) {
	case 0x1:
		corner(left, center, bottom)
	case 0x2:
		corner(bottom, center, right)
	case 0x3:
		emit(left, right, seg, set)
	case 0x4:
		corner(top, center, left)
	case 0x5:
		emit(top, bottom, seg, set)
	case 0x6:
		corner(bottom, center, left)
		corner(top, center, right)
	case 0x7:
		corner(top, center, right)
	case 0x8:
		corner(right, center, top)
	case 0x9:
		corner(right, center, bottom)
		corner(left, center, top)
	case 0xA:
		emit(bottom, top, seg, set)
	case 0xB:
		corner(left, center, top)
	case 0xC:
		emit(right, left, seg, set)
	case 0xD:
		corner(right, center, bottom)
	case 0xE:
		corner(bottom, center, left)
	}
}

func cellCase(t, a, b, c, d float64) int {
	bits := 0
	if a > t {
		bits |= 0x1
	}
	if b > t {
		bits |= 0x2
	}
	if c > t {
		bits |= 0x4
	}
	if d > t {
		bits |= 0x8
	}
	return bits
}

// WindingNumber returns the generalized winding number of the closed
// polygon verts at point p: ~1 inside, ~0 outside, fractional near open or
// self-intersecting geometry.
func WindingNumber(verts []v.Vec, p v.Vec) float64 {
	sum := 0.0
	for i := range verts {
		v0 := verts[i].Sub(p)
		v1 := verts[(i+1)%len(verts)].Sub(p)
		sum += math.Atan2(v0.Cross(v1), v0.Dot(v1))
	}
	return sum / (2 * math.Pi)
}

// Solidify extracts the closed outline of the region the polygon winds
// around, marching the winding number field at the 0.5 isovalue. Unlike
// tracing the polygon itself, this survives self-intersections and
// duplicated geometry.
func Solidify(verts []v.Vec, rect Rect, xSamples, ySamples int64) *PolyLineSet {
	sample := func(point v.Vec) float64 {
		return WindingNumber(verts, point)
	}
	seg := func(v0, v1 v.Vec, set *PolyLineSet) {
		set.Push(v0, v1)
	}
	return MarchSoft(rect, xSamples, ySamples, 0.5, seg, sample)
}

func lerp(f1, f2, t float64) float64 {
	return f1*(1.0-t) + f2*t
}
