// Package criticalpath implements spec.md §4.7: given the fire point an
// asset arrival (or any other query) resolved to, walk its PrevPoint chain
// back to the vertex's origin and export the trail as an ordered polyline.
package criticalpath

import (
	"github.com/wise-sim/firesim/internal/firepoint"
	"github.com/wise-sim/firesim/internal/geom"
)

// coincidentEpsilon bounds how close two consecutive positions must be to
// collapse into a single polyline vertex — growFront snapshots a vertex's
// position every step even when growth stalled it in place.
const coincidentEpsilon = 1e-9

// Vertex is one point along a traced path, carrying the fire behaviour
// results firepoint.FirePoint computed at that position.
type Vertex struct {
	Pos         geom.XyPoint
	ROS         float64
	CFB         float64
	CFC         float64
	SFC         float64
	TFC         float64
	FI          float64
	FlameLength float64
}

func vertexOf(fp *firepoint.FirePoint) Vertex {
	return Vertex{
		Pos:         fp.Pos,
		ROS:         fp.VectorROS,
		CFB:         fp.VectorCFB,
		CFC:         fp.VectorCFC,
		SFC:         fp.VectorSFC,
		TFC:         fp.VectorTFC,
		FI:          fp.VectorFI,
		FlameLength: fp.FlameLength,
	}
}

// Trace walks start's PrevPoint chain back to its origin, returning the
// points in arrival-to-origin order (start first). Consecutive points whose
// positions differ by less than coincidentEpsilon collapse to the later
// (more fully grown) one, since a vertex that didn't move still gets a fresh
// snapshot every step.
func Trace(start *firepoint.FirePoint) []*firepoint.FirePoint {
	if start == nil {
		return nil
	}
	path := []*firepoint.FirePoint{start}
	for curr := start.PrevPoint; curr != nil; curr = curr.PrevPoint {
		last := path[len(path)-1]
		if last.Pos.Dist(curr.Pos) < coincidentEpsilon {
			continue
		}
		path = append(path, curr)
	}
	return path
}

// Polyline traces start back to its origin and returns the path in forward
// chronological order, origin first.
func Polyline(start *firepoint.FirePoint) []Vertex {
	trace := Trace(start)
	out := make([]Vertex, len(trace))
	for i, fp := range trace {
		out[len(trace)-1-i] = vertexOf(fp)
	}
	return out
}
