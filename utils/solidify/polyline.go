package solidify

import "github.com/setanarut/v"

// PolyLine is an open or closed chain of vertices.
type PolyLine struct {
	Verts []v.Vec
}

// IsClosed reports whether the first and last vertices coincide.
func (pl *PolyLine) IsClosed() bool {
	return len(pl.Verts) > 1 && pl.Verts[0].Equals(pl.Verts[len(pl.Verts)-1])
}

// PolyLineSet incrementally assembles crossing segments into polylines.
// Segments produced by the march share exact endpoint coordinates with
// their neighbors, so matching is by vertex equality.
type PolyLineSet struct {
	Lines []*PolyLine
}

// Push adds one segment to the set, extending, joining or closing existing
// polylines where the endpoints connect.
func (set *PolyLineSet) Push(v0, v1 v.Vec) {
	before := set.findEnds(v0)
	after := set.findStarts(v1)

	switch {
	case before == nil && after == nil:
		set.Lines = append(set.Lines, &PolyLine{Verts: []v.Vec{v0, v1}})
	case before != nil && after == nil:
		before.Verts = append(before.Verts, v1)
	case before == nil && after != nil:
		after.Verts = append([]v.Vec{v0}, after.Verts...)
	case before == after:
		// Loop closed.
		before.Verts = append(before.Verts, v1)
	default:
		before.Verts = append(before.Verts, after.Verts...)
		set.remove(after)
	}
}

// findEnds returns the line ending at p, nil if none.
func (set *PolyLineSet) findEnds(p v.Vec) *PolyLine {
	for _, line := range set.Lines {
		if line.Verts[len(line.Verts)-1].Equals(p) {
			return line
		}
	}
	return nil
}

// findStarts returns the line starting at p, nil if none.
func (set *PolyLineSet) findStarts(p v.Vec) *PolyLine {
	for _, line := range set.Lines {
		if line.Verts[0].Equals(p) {
			return line
		}
	}
	return nil
}

func (set *PolyLineSet) remove(line *PolyLine) {
	for i := range set.Lines {
		if set.Lines[i] == line {
			set.Lines = append(set.Lines[:i], set.Lines[i+1:]...)
			return
		}
	}
}
