// Package firefront implements FireFront, one oriented ring or polyline of
// FirePoints, and the per-perimeter algorithms that operate on it: point
// densification, simplification, grid/vector tracking, and advance.
package firefront

import (
	"math"

	"github.com/wise-sim/firesim/internal/firepoint"
	"github.com/wise-sim/firesim/internal/geom"
)

// Interpret selects whether a FireFront's point list closes into a polygon
// or remains an open polyline (spec.md §3).
type Interpret int

const (
	Polygon Interpret = iota
	Polyline
)

// FireFront is an ordered slice of FirePoints, read as a closed ring
// (Polygon) or an open list (Polyline).
// Invariants: a Polygon front has >= 3 points; a Polyline front has >= 2.
type FireFront struct {
	Points    []*firepoint.FirePoint
	Interpret Interpret
	Interior  bool // a hole, per geom.Ring.Interior

	cachedArea    float64
	areaValid     bool
}

// New builds a FireFront from an ordered point list.
func New(points []*firepoint.FirePoint, interp Interpret) *FireFront {
	return &FireFront{Points: points, Interpret: interp}
}

func (f *FireFront) closed() bool { return f.Interpret == Polygon }

// Valid reports whether the ring satisfies its minimum-point invariant.
func (f *FireFront) Valid() bool {
	if f.Interpret == Polygon {
		return len(f.Points) >= 3
	}
	return len(f.Points) >= 2
}

// at returns the point at ring-wrapped index i.
func (f *FireFront) at(i int) *firepoint.FirePoint {
	n := len(f.Points)
	if f.closed() {
		return f.Points[((i%n)+n)%n]
	}
	if i < 0 {
		return f.Points[0]
	}
	if i >= n {
		return f.Points[n-1]
	}
	return f.Points[i]
}

// edgeCount returns the number of edges to visit: n edges for a
// polygon (wrapping), n-1 for a polyline.
func (f *FireFront) edgeCount() int {
	if f.closed() {
		return len(f.Points)
	}
	if len(f.Points) == 0 {
		return 0
	}
	return len(f.Points) - 1
}

// Positions extracts the plain point list.
func (f *FireFront) Positions() geom.Poly {
	p := make(geom.Poly, len(f.Points))
	for i, fp := range f.Points {
		p[i] = fp.Pos
	}
	return p
}

// Area returns the cached unsigned polygon area, recomputing on demand
// (spec.md §3: "Owns a cached area").
func (f *FireFront) Area() float64 {
	if !f.areaValid {
		f.cachedArea = f.Positions().Area()
		f.areaValid = true
	}
	return f.cachedArea
}

// InvalidateArea marks the cached area stale; called after any vertex
// mutation.
func (f *FireFront) InvalidateArea() { f.areaValid = false }

// interiorAngle returns the interior angle (radians, 0..2pi) at
// point i, formed by the incoming edge (prev->curr) and outgoing edge
// (curr->succ).
func (f *FireFront) interiorAngle(i int) float64 {
	prev := f.at(i - 1).Pos
	curr := f.at(i).Pos
	succ := f.at(i + 1).Pos
	v1 := prev.Sub(curr)
	v2 := succ.Sub(curr)
	a1 := math.Atan2(v1.Y, v1.X)
	a2 := math.Atan2(v2.Y, v2.X)
	angle := a2 - a1
	for angle < 0 {
		angle += 2 * math.Pi
	}
	for angle >= 2*math.Pi {
		angle -= 2 * math.Pi
	}
	return angle
}

// AddPoints densifies edges that have stretched beyond perimeterResolution,
// and softens gratuitous densification at sharp concavities when
// suppressTightConcave is set (spec.md §4.3.1).
func (f *FireFront) AddPoints(perimeterResolution float64, suppressTightConcave bool) {
	if len(f.Points) == 0 || perimeterResolution <= 0 {
		return
	}
	var out []*firepoint.FirePoint
	n := len(f.Points)
	edges := f.edgeCount()
	for i := 0; i < n; i++ {
		out = append(out, f.Points[i])
		if i >= edges {
			continue
		}
		curr := f.at(i)
		next := f.at(i + 1)
		edgeLen := curr.Pos.Dist(next.Pos)
		distanceFactor := edgeLen / perimeterResolution

		angle := f.interiorAngle(i)
		if suppressTightConcave {
			deg := angle * 180 / math.Pi
			if deg > 225 {
				deg = 225 + (deg-225)/1.625
				angle = deg * math.Pi / 180
			}
		}

		if distanceFactor > 2 {
			count := int(math.Floor(distanceFactor)) - 1
			for k := 1; k <= count; k++ {
				t := float64(k) / float64(count+1)
				pos := curr.Pos.Add(next.Pos.Sub(curr.Pos).Scale(t))
				out = append(out, firepoint.NewNormal(pos))
			}
		} else {
			// Repeated bisection: insert midpoints while the sin/edge-ratio
			// test indicates the edge is still too coarse for the local
			// curvature.
			segStart, segEnd := curr.Pos, next.Pos
			for k := 0; k < 3; k++ {
				factor := segStart.Dist(segEnd) / perimeterResolution
				if factor <= 0.001 || math.Sin(angle/2) >= factor {
					break
				}
				mid := segStart.Add(segEnd.Sub(segStart).Scale(0.5))
				out = append(out, firepoint.NewNormal(mid))
				segEnd = mid
			}
		}
	}
	f.Points = out
	f.InvalidateArea()
}

// Simplify removes redundant vertices (spec.md §4.3.2). It is a no-op when
// fewer than 3 vertices remain, or when priorMinROSRatio indicates the
// front is still in its acceleration phase (ratio < 0.9: must not sparsify
// while points are catching up to equilibrium spread rate).
func (f *FireFront) Simplify(perimeterResolution, maxEdge, perimeterSpacing, priorMinROSRatio float64) {
	if len(f.Points) < 3 || priorMinROSRatio < 0.9 {
		return
	}
	pr := math.Min(maxEdge, perimeterResolution)

	for len(f.Points) > 3 {
		removed := false
		for i := 0; i < len(f.Points); i++ {
			if f.at(i).Status != firepoint.Normal {
				continue
			}
			candidatePeer := -1
			bestEdge := math.Inf(1)
			bestSin := -1.0
			for _, offset := range []int{1, -1} {
				j := i + offset
				peer := f.at(j)
				if peer.Status != firepoint.Normal {
					continue
				}
				if f.peerEligible(i, j, pr, perimeterSpacing) {
					edgeLen := f.at(i).Pos.Dist(peer.Pos)
					sinAngle := math.Sin(f.interiorAngle(j) / 2)
					if edgeLen < bestEdge || (edgeLen == bestEdge && sinAngle > bestSin) {
						candidatePeer = f.indexOf(j)
						bestEdge = edgeLen
						bestSin = sinAngle
					}
				}
			}
			if candidatePeer >= 0 {
				f.removeAt(candidatePeer)
				removed = true
				break
			}
		}
		if !removed {
			break
		}
	}
	f.InvalidateArea()
}

func (f *FireFront) indexOf(i int) int {
	n := len(f.Points)
	return ((i % n) + n) % n
}

func (f *FireFront) removeAt(i int) {
	f.Points = append(f.Points[:i], f.Points[i+1:]...)
}

// peerEligible implements the (a)/(b) eligibility test of spec.md §4.3.2:
// a short incident edge makes the peer eligible unconditionally; otherwise
// the neighbourhood angle must be gentle enough that AddPoints would not
// reintroduce the vertex after removal.
func (f *FireFront) peerEligible(i, j int, pr, perimeterSpacing float64) bool {
	edgeLen := f.at(i).Pos.Dist(f.at(j).Pos)
	if edgeLen < perimeterSpacing {
		return true
	}
	angle := f.interiorAngle(j)
	factor := edgeLen / pr
	return factor > 0.001 && math.Sin(angle/2) < factor
}

// TrackGrid ray-traces each vertex's previous-step segment through the
// regular grid, stopping the vertex at a non-fuel cell boundary unless the
// cumulative non-fuel distance since entry stays within the breaching
// budget of 1.5x the vertex's (pre-advance) flame length (spec.md §4.3.3).
func (f *FireFront) TrackGrid(resolution float64, offset geom.XyPoint, isNonFuel func(cell geom.GridCell) bool, breachingAllowed bool) {
	for i := range f.Points {
		curr := f.Points[i]
		if curr.Status != firepoint.Normal || curr.PrevPoint == nil {
			continue
		}
		prevPos := curr.PrevPoint.Pos
		startCell := cellOf(prevPos, resolution, offset)
		endCell := cellOf(curr.Pos, resolution, offset)
		if startCell == endCell {
			continue
		}

		var nonFuelDist float64
		breached := true
		path := curr.Pos.Sub(prevPos)
		geom.RayTrace(prevPos, path, resolution, offset, func(cell geom.GridCell, entry, exit float64) bool {
			if !isNonFuel(cell) {
				return true
			}
			segLen := (exit - entry) * path.Length()
			if !breachingAllowed {
				curr.Pos = prevPos.Add(path.Scale(entry))
				curr.Status = firepoint.NoFuel
				breached = false
				return false
			}
			nonFuelDist += segLen
			if nonFuelDist > 1.5*curr.PrevPoint.FlameLength {
				curr.Pos = prevPos.Add(path.Scale(entry))
				curr.Status = firepoint.NoFuel
				breached = false
				return false
			}
			return true
		})
		if breached && nonFuelDist > 0 {
			curr.SuccessfulBreach = true
		}
	}
}

func cellOf(pt geom.XyPoint, resolution float64, offset geom.XyPoint) geom.GridCell {
	return geom.GridCell{
		Col: int(math.Floor((pt.X - offset.X) / resolution)),
		Row: int(math.Floor((pt.Y - offset.Y) / resolution)),
	}
}

// TrackVectorPassA pulls each Normal vertex back to the nearest
// intersection with another fire's polygon whose area is >= this fire's
// own area, stamping it Fire (spec.md §4.3.4 pass A).
func TrackVectorPassA(f *FireFront, ownArea float64, others []geom.Poly, otherAreas []float64) {
	for _, curr := range f.Points {
		if curr.Status != firepoint.Normal || curr.PrevPoint == nil {
			continue
		}
		pullBackToNearestCrossing(curr, others, otherAreas, ownArea, firepoint.Fire)
	}
}

// TrackVectorPassB intersects against dynamic and static vector breaks,
// applying the same flame-length breaching budget as TrackGrid, or snapping
// to nearby breaks/edges within perimeterSpacing when breaching is off
// (spec.md §4.3.4 pass B).
func TrackVectorPassB(f *FireFront, breaks []geom.Poly, breachingAllowed bool, perimeterSpacing float64) {
	for _, curr := range f.Points {
		if curr.Status != firepoint.Normal || curr.PrevPoint == nil {
			continue
		}
		prevPos := curr.PrevPoint.Pos
		nearest, dist, ok := nearestCrossing(prevPos, curr.Pos, breaks)
		if ok {
			if breachingAllowed {
				if dist <= 1.5*curr.PrevPoint.FlameLength {
					curr.SuccessfulBreach = true
					continue
				}
			}
			curr.Pos = nearest
			curr.Status = firepoint.Vector
			continue
		}
		if !breachingAllowed && perimeterSpacing > 0 {
			if pt, within := nearestWithinSpacing(curr.Pos, breaks, perimeterSpacing); within {
				curr.Pos = pt
			}
		}
	}
}

func pullBackToNearestCrossing(curr *firepoint.FirePoint, others []geom.Poly, otherAreas []float64, ownArea float64, status firepoint.Status) {
	prevPos := curr.PrevPoint.Pos
	var best geom.XyPoint
	bestDist := math.Inf(1)
	found := false
	for idx, poly := range others {
		if otherAreas[idx] < ownArea {
			continue
		}
		if pt, dist, ok := segmentVsPolyNearest(prevPos, curr.Pos, poly); ok {
			if dist < bestDist {
				best, bestDist, found = pt, dist, true
			}
		}
	}
	if found {
		curr.Pos = best
		curr.Status = status
	}
}

func nearestCrossing(a, b geom.XyPoint, polys []geom.Poly) (geom.XyPoint, float64, bool) {
	var best geom.XyPoint
	bestDist := math.Inf(1)
	found := false
	for _, poly := range polys {
		if pt, dist, ok := segmentVsPolyNearest(a, b, poly); ok {
			if dist < bestDist {
				best, bestDist, found = pt, dist, true
			}
		}
	}
	return best, bestDist, found
}

func segmentVsPolyNearest(a, b geom.XyPoint, poly geom.Poly) (geom.XyPoint, float64, bool) {
	n := len(poly)
	if n < 2 {
		return geom.XyPoint{}, 0, false
	}
	found := false
	var best geom.XyPoint
	bestT := math.Inf(1)
	for i := 0; i < n; i++ {
		p1, p2 := poly[i], poly[(i+1)%n]
		pos, t, _, ok := geom.SegmentIntersect(a, b, p1, p2)
		if !ok {
			continue
		}
		if t < bestT {
			best, bestT, found = pos, t, true
		}
	}
	if !found {
		return geom.XyPoint{}, 0, false
	}
	return best, a.Dist(best), true
}

func nearestWithinSpacing(pt geom.XyPoint, polys []geom.Poly, spacing float64) (geom.XyPoint, bool) {
	bestDist := math.Inf(1)
	var best geom.XyPoint
	found := false
	for _, poly := range polys {
		n := len(poly)
		for i := 0; i < n; i++ {
			near, _ := geom.NearestPointOnSegment(pt, poly[i], poly[(i+1)%n])
			d := pt.Dist(near)
			if d < bestDist {
				bestDist, best, found = d, near, true
			}
		}
	}
	if found && bestDist <= spacing {
		return best, true
	}
	return geom.XyPoint{}, false
}

// Advance moves every Normal vertex by its scaled ellipse ROS (spec.md
// §4.3.5).
func (f *FireFront) Advance(stepSeconds, internalPerMinuteUnit float64) {
	for _, p := range f.Points {
		p.Advance(stepSeconds, internalPerMinuteUnit)
	}
	f.InvalidateArea()
}
