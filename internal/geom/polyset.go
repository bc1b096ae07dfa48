package geom

import (
	"math"
	"sort"

	"github.com/wise-sim/firesim/internal/wtime"
)

// ClipOp selects the boolean set operation performed by Clip.
type ClipOp int

const (
	Union ClipOp = iota
	Intersect
	Diff
)

// Vertex is one point of a ring together with the application-defined
// payload T (e.g. a FirePoint status).
type Vertex[T any] struct {
	Pos  XyPoint
	Meta T
}

// Ring is an ordered, implicitly-closed sequence of vertices: a polygon
// (interior=false, the outer boundary of one component) or a hole
// (interior=true).
type Ring[T any] struct {
	Verts    []Vertex[T]
	Interior bool
}

// BoundingBox returns the ring's axis-aligned bounding box.
func (r Ring[T]) BoundingBox() Rect {
	box := NewEmptyRect()
	for _, v := range r.Verts {
		box = box.Extend(v.Pos)
	}
	return box
}

// SignedArea returns the shoelace signed area of the ring.
func (r Ring[T]) SignedArea() float64 {
	n := len(r.Verts)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += r.Verts[i].Pos.X*r.Verts[j].Pos.Y - r.Verts[j].Pos.X*r.Verts[i].Pos.Y
	}
	return sum / 2
}

// Area returns the unsigned area of the ring.
func (r Ring[T]) Area() float64 { return math.Abs(r.SignedArea()) }

// Positions returns the ring's points as a plain Poly, discarding metadata.
func (r Ring[T]) Positions() Poly {
	p := make(Poly, len(r.Verts))
	for i, v := range r.Verts {
		p[i] = v.Pos
	}
	return p
}

// PolySet is a collection of rings, e.g. the set of FireFronts making up one
// ScenarioFire's polygon, or the set of static breaks.
type PolySet[T any] []Ring[T]

// Area returns the sum of signed areas across all rings (outer rings add,
// holes subtract because their winding is opposite).
func (s PolySet[T]) Area() float64 {
	total := 0.0
	for _, r := range s {
		total += r.SignedArea()
	}
	return math.Abs(total)
}

// BoundingBox returns the union of every ring's bounding box.
func (s PolySet[T]) BoundingBox() Rect {
	box := NewEmptyRect()
	for _, r := range s {
		box = box.Union(r.BoundingBox())
	}
	return box
}

// ContainsPoint reports whether pt is inside the set under the even-odd
// rule across all rings (a point inside an outer ring and inside a nested
// hole is considered outside).
func (s PolySet[T]) ContainsPoint(pt XyPoint) bool {
	inside := false
	for _, r := range s {
		if r.Positions().ContainsPoint(pt) {
			inside = !inside
		}
	}
	return inside
}

// Owner supplies the application-defined hooks a set operation calls back
// into: constructing metadata for newly created vertices, arbitrating
// between coincident vertices, and deciding whether a resulting polygon or
// ring participates at all.
type Owner[T any] interface {
	// NewVertex builds the metadata for a vertex introduced at pos by a set
	// operation; fromA/fromB report which operand(s) contributed it.
	NewVertex(pos XyPoint, fromA, fromB bool) T
	// ChooseToKeep arbitrates between two coincident vertices (within
	// epsilon of each other) and returns the metadata to retain.
	ChooseToKeep(a, b T) T
	// KeepPolygon reports whether a ring produced by the operation should
	// be retained in the result.
	KeepPolygon(r Ring[T], op ClipOp) bool
	// Participates reports whether a ring of the second operand takes part
	// in the operation at all, e.g. a static break whose activation time is
	// after t.
	Participates(r Ring[T], t *wtime.Time) bool
}

// Metrics accumulates the counters a set operation is required to report.
type Metrics struct {
	Intersections       int
	UniqueIntersections int
	FudgedIntersections int
	NewVertices         int
	PolygonsRetained    int
	PolygonsRemoved     int
}

// Epsilon is the default fudge distance: an intersection within this
// distance of an existing vertex snaps to that vertex instead of creating a
// new one, preserving mesh sanity (spec.md §4.1).
const Epsilon = 1e-6

type crossing struct {
	t        float64 // parametric position along the owning edge, [0,1)
	pos      XyPoint
	otherIdx int // index of the intersected edge in the other ring
	otherT   float64
	entry    bool // true if this crossing transitions A from outside to inside B
}

// Clip runs a Weiler-Atherton-class boolean operation between a and b. It
// reports intersection/vertex/polygon counts through metrics (nil is
// accepted and simply not populated). at, if non-nil, filters which rings
// of b participate (time-gated static breaks).
func Clip[T any](a, b PolySet[T], op ClipOp, owner Owner[T], at *wtime.Time, metrics *Metrics) PolySet[T] {
	if metrics == nil {
		metrics = &Metrics{}
	}

	activeB := make(PolySet[T], 0, len(b))
	for _, r := range b {
		if owner.Participates(r, at) {
			activeB = append(activeB, r)
		}
	}

	var result PolySet[T]
	for _, ringA := range a {
		clipped := clipRingAgainstSet(ringA, activeB, op, owner, metrics)
		result = append(result, clipped...)
	}

	if op == Union {
		// Any ring of B wholly outside every ring of A contributes unchanged.
		for _, ringB := range activeB {
			disjoint := true
			for _, ringA := range a {
				if ringA.BoundingBox().Intersects(ringB.BoundingBox()) {
					disjoint = false
					break
				}
			}
			if disjoint {
				result = append(result, ringB)
			}
		}
	}

	filtered := make(PolySet[T], 0, len(result))
	for _, r := range result {
		if len(r.Verts) < 3 {
			metrics.PolygonsRemoved++
			continue
		}
		if owner.KeepPolygon(r, op) {
			metrics.PolygonsRetained++
			filtered = append(filtered, r)
		} else {
			metrics.PolygonsRemoved++
		}
	}
	return filtered
}

// clipRingAgainstSet clips a single ring against every ring of other,
// sequentially, folding each pairwise result into the next.
func clipRingAgainstSet[T any](ring Ring[T], other PolySet[T], op ClipOp, owner Owner[T], metrics *Metrics) PolySet[T] {
	current := PolySet[T]{ring}
	for _, o := range other {
		var next PolySet[T]
		for _, c := range current {
			next = append(next, clipPair(c, o, op, owner, metrics)...)
		}
		current = next
		if len(current) == 0 {
			break
		}
	}
	return current
}

// clipPair performs the operation between exactly one ring of A and one
// ring of B.
func clipPair[T any](a, b Ring[T], op ClipOp, owner Owner[T], metrics *Metrics) PolySet[T] {
	if !a.BoundingBox().Expanded(Epsilon).Intersects(b.BoundingBox().Expanded(Epsilon)) {
		return disjointResult(a, b, op)
	}

	aAug, bAug, anyCross := insertIntersections(a, b, owner, metrics)
	if !anyCross {
		return disjointOrContainedResult(a, b, op)
	}

	return walkClip(aAug, bAug, a, b, op, owner)
}

// disjointResult handles rings whose bounding boxes never meet.
func disjointResult[T any](a, b Ring[T], op ClipOp) PolySet[T] {
	switch op {
	case Union:
		return PolySet[T]{a, b}
	case Diff:
		return PolySet[T]{a}
	default: // Intersect
		return nil
	}
}

// disjointOrContainedResult handles rings whose bounding boxes overlap but
// whose boundaries never cross: one may still fully contain the other.
func disjointOrContainedResult[T any](a, b Ring[T], op ClipOp) PolySet[T] {
	aInB := len(a.Verts) > 0 && b.Positions().ContainsPoint(a.Verts[0].Pos)
	bInA := len(b.Verts) > 0 && a.Positions().ContainsPoint(b.Verts[0].Pos)

	switch op {
	case Union:
		if aInB {
			return PolySet[T]{b}
		}
		if bInA {
			return PolySet[T]{a}
		}
		return PolySet[T]{a, b}
	case Intersect:
		if aInB {
			return PolySet[T]{a}
		}
		if bInA {
			return PolySet[T]{b}
		}
		return nil
	default: // Diff: a minus b
		if aInB {
			return nil
		}
		if bInA {
			r := b
			r.Interior = true
			return PolySet[T]{a, r}
		}
		return PolySet[T]{a}
	}
}

type augVertex[T any] struct {
	Vertex[T]
	isCrossing bool
	entry      bool
	visited    bool
	partner    int // index in the other ring's augmented slice, valid if isCrossing
}

// insertIntersections computes every edge/edge intersection between a and
// b, fudges near-coincident hits to existing vertices, and returns both
// rings with intersection vertices spliced in at the correct parametric
// position.
func insertIntersections[T any](a, b Ring[T], owner Owner[T], metrics *Metrics) ([]augVertex[T], []augVertex[T], bool) {
	na, nb := len(a.Verts), len(b.Verts)
	aCross := make([]crossing, na)
	bCross := make([]crossing, nb)
	for i := range aCross {
		aCross[i].t = -1
	}
	for i := range bCross {
		bCross[i].t = -1
	}

	type hit struct {
		ai, bi   int
		t, u     float64
		pos      XyPoint
	}
	var hits []hit

	for i := 0; i < na; i++ {
		a1, a2 := a.Verts[i].Pos, a.Verts[(i+1)%na].Pos
		for j := 0; j < nb; j++ {
			b1, b2 := b.Verts[j].Pos, b.Verts[(j+1)%nb].Pos
			pos, t, u, ok := SegmentIntersect(a1, a2, b1, b2)
			if !ok {
				continue
			}
			metrics.Intersections++
			hits = append(hits, hit{i, j, t, u, pos})
		}
	}
	if len(hits) == 0 {
		return nil, nil, false
	}

	aIns := make(map[int][]crossing)
	bIns := make(map[int][]crossing)
	unique := 0
	for _, h := range hits {
		pos := h.pos
		fudged := false
		if near := nearestVertex(a, pos); near.valid && near.dist < Epsilon {
			pos = near.pos
			fudged = true
		} else if near := nearestVertex(b, pos); near.valid && near.dist < Epsilon {
			pos = near.pos
			fudged = true
		}
		if fudged {
			metrics.FudgedIntersections++
		} else {
			unique++
		}
		aIns[h.ai] = append(aIns[h.ai], crossing{t: h.t, pos: pos, otherIdx: h.bi, otherT: h.u})
		bIns[h.bi] = append(bIns[h.bi], crossing{t: h.u, pos: pos, otherIdx: h.ai, otherT: h.t})
	}
	metrics.UniqueIntersections += unique
	metrics.NewVertices += len(hits)

	augA := spliceRing(a, aIns, owner, true, metrics)
	augB := spliceRing(b, bIns, owner, false, metrics)
	linkCrossings(augA, augB)
	markEntryExit(augA, b)
	markEntryExit(augB, a)
	return augA, augB, true
}

type nearestResult struct {
	pos   XyPoint
	dist  float64
	valid bool
}

func nearestVertex[T any](r Ring[T], pos XyPoint) nearestResult {
	best := nearestResult{}
	for _, v := range r.Verts {
		d := v.Pos.Dist(pos)
		if !best.valid || d < best.dist {
			best = nearestResult{pos: v.Pos, dist: d, valid: true}
		}
	}
	return best
}

// spliceRing walks the original ring inserting crossing points in
// parametric order along each edge.
func spliceRing[T any](r Ring[T], ins map[int][]crossing, owner Owner[T], fromA bool, metrics *Metrics) []augVertex[T] {
	n := len(r.Verts)
	out := make([]augVertex[T], 0, n+2*len(ins))
	for i := 0; i < n; i++ {
		out = append(out, augVertex[T]{Vertex: r.Verts[i]})
		cs := ins[i]
		sort.Slice(cs, func(x, y int) bool { return cs[x].t < cs[y].t })
		for _, c := range cs {
			meta := owner.NewVertex(c.pos, fromA, !fromA)
			out = append(out, augVertex[T]{
				Vertex:     Vertex[T]{Pos: c.pos, Meta: meta},
				isCrossing: true,
			})
		}
	}
	return out
}

// linkCrossings pairs up crossing vertices between the two augmented rings
// by nearest position (after fudging, coincident crossings share a
// position).
func linkCrossings[T any](augA, augB []augVertex[T]) {
	for i := range augA {
		if !augA[i].isCrossing {
			continue
		}
		best, bestDist := -1, math.Inf(1)
		for j := range augB {
			if !augB[j].isCrossing || augB[j].visited {
				continue
			}
			d := augA[i].Pos.Dist(augB[j].Pos)
			if d < bestDist {
				best, bestDist = j, d
			}
		}
		if best >= 0 {
			augA[i].partner = best
			augB[best].partner = i
			augB[best].visited = true
		}
	}
	for j := range augB {
		augB[j].visited = false
	}
}

// markEntryExit tags each crossing on ring with whether the ring transitions
// into other's interior there, by testing the ring's next vertex against
// other's containment.
func markEntryExit[T any](ring []augVertex[T], other Ring[T]) {
	n := len(ring)
	otherPoly := other.Positions()
	for i := range ring {
		if !ring[i].isCrossing {
			continue
		}
		next := ring[(i+1)%n]
		ring[i].entry = otherPoly.ContainsPoint(next.Pos)
	}
}

// walkClip traverses the linked augmented rings to produce the output
// ring(s) for the requested operation, following the classic
// Weiler-Atherton entry/exit rule: union and intersect walk both rings
// forward, switching at each crossing; diff (a minus b) walks b backward
// after switching, which is equivalent to clipping against b's complement.
func walkClip[T any](augA, augB []augVertex[T], a, b Ring[T], op ClipOp, owner Owner[T]) PolySet[T] {
	startEntry := op != Union

	var results PolySet[T]
	for start := range augA {
		if !augA[start].isCrossing || augA[start].visited || augA[start].entry != startEntry {
			continue
		}
		var ring []Vertex[T]
		cur, idx := augA, start
		onA := true
		forward := true
		guard := 4 * (len(augA) + len(augB)) + 16
		for {
			v := &cur[idx]
			v.visited = true
			ring = append(ring, v.Vertex)

			if v.isCrossing {
				partner := v.partner
				onA = !onA
				if onA {
					cur = augA
					forward = true
				} else {
					cur = augB
					forward = op != Diff
				}
				idx = partner
			}
			if forward {
				idx = stepForward(len(cur), idx)
			} else {
				idx = stepBackward(len(cur), idx)
			}
			if onA && idx == start {
				break
			}
			guard--
			if guard <= 0 {
				break // pathological topology; drop rather than loop forever
			}
		}
		if len(ring) >= 3 {
			results = append(results, Ring[T]{Verts: ring})
		}
	}
	if len(results) == 0 {
		return disjointOrContainedResult(a, b, op)
	}
	_ = owner
	return results
}

func stepForward(n, i int) int  { return (i + 1) % n }
func stepBackward(n, i int) int { return (i - 1 + n) % n }

// Unwind removes self-intersections (knots) from a single polygon set
// without reference to another set, as used after vertex advance to repair
// a fire's own polygon. keepInterior controls whether sub-loops that wind
// opposite to the outer ring are retained as holes.
func Unwind[T any](a PolySet[T], keepInterior bool, owner Owner[T], metrics *Metrics) PolySet[T] {
	if metrics == nil {
		metrics = &Metrics{}
	}
	var out PolySet[T]
	for _, r := range a {
		pieces := unwindRing(r, owner, metrics)
		for _, p := range pieces {
			if len(p.Verts) < 3 {
				metrics.PolygonsRemoved++
				continue
			}
			if !keepInterior && p.Interior {
				metrics.PolygonsRemoved++
				continue
			}
			if owner.KeepPolygon(p, Union) {
				metrics.PolygonsRetained++
				out = append(out, p)
			} else {
				metrics.PolygonsRemoved++
			}
		}
	}
	return out
}

// unwindRing finds self-intersections of a single ring and splits it into
// simple sub-rings at each crossing, classifying sub-rings whose winding
// opposes the dominant (largest-area) piece as interior.
func unwindRing[T any](r Ring[T], owner Owner[T], metrics *Metrics) []Ring[T] {
	n := len(r.Verts)
	if n < 3 {
		return []Ring[T]{r}
	}

	type selfHit struct {
		i, j int
		ti   float64
		pos  XyPoint
	}
	var hits []selfHit
	for i := 0; i < n; i++ {
		a1, a2 := r.Verts[i].Pos, r.Verts[(i+1)%n].Pos
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent via wraparound
			}
			b1, b2 := r.Verts[j].Pos, r.Verts[(j+1)%n].Pos
			pos, t, _, ok := SegmentIntersect(a1, a2, b1, b2)
			if !ok {
				continue
			}
			metrics.Intersections++
			hits = append(hits, selfHit{i, j, t, pos})
		}
	}
	if len(hits) == 0 {
		return []Ring[T]{r}
	}
	metrics.NewVertices += len(hits)

	// Simple, conservative split: break the ring at the first detected
	// self-crossing into two loops and recurse on each; this removes knots
	// one at a time, which is sufficient for the single- and double-knot
	// cases produced by one step of vertex advance.
	h := hits[0]
	meta := owner.NewVertex(h.pos, true, true)
	v := Vertex[T]{Pos: h.pos, Meta: meta}

	loopA := append([]Vertex[T]{v}, r.Verts[h.i+1:h.j+1]...)
	loopB := append([]Vertex[T]{v}, r.Verts[h.j+1:]...)
	loopB = append(loopB, r.Verts[:h.i+1]...)

	ra := Ring[T]{Verts: loopA}
	rb := Ring[T]{Verts: loopB}
	areaA, areaB := ra.Area(), rb.Area()
	if areaB > areaA {
		ra, rb = rb, ra
	}
	rb.Interior = ra.SignedArea()*rb.SignedArea() > 0

	out := unwindRing(ra, owner, metrics)
	out = append(out, unwindRing(rb, owner, metrics)...)
	return out
}
