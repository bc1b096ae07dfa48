// Package query implements Scenario's get_stats techniques (spec.md §4.6):
// a point/time statistics engine layered over whatever perimeter vertices
// the caller hands it, independent of the simulation loop itself so it can
// be unit tested against synthetic vertex sets.
//
// Delaunay triangulation has no grounded third-party library in this
// module's dependency pack, so AREA_WEIGHTING/VORONOI_OVERLAP build
// Voronoi cells directly by half-plane clipping (a standard dual
// construction) instead of first building a Delaunay graph: a site's
// Voronoi cell is the bounding region clipped, one perpendicular bisector
// at a time, against every other site in its neighbourhood. This gets the
// same cell geometry the spec's techniques consume without an unimported
// triangulation dependency.
package query

import (
	"math"

	"github.com/wise-sim/firesim/internal/geom"
)

// Technique selects how get_stats turns a neighbourhood of perimeter
// vertices into one value at an arbitrary query point (spec.md §4.6).
type Technique int

const (
	Calculate Technique = iota
	ClosestVertex
	Discretize
	IDW
	AreaWeighting
	VoronoiOverlap
)

func (t Technique) String() string {
	switch t {
	case Calculate:
		return "CALCULATE"
	case ClosestVertex:
		return "CLOSEST_VERTEX"
	case Discretize:
		return "DISCRETIZE"
	case IDW:
		return "IDW"
	case AreaWeighting:
		return "AREA_WEIGHTING"
	case VoronoiOverlap:
		return "VORONOI_OVERLAP"
	default:
		return "UNKNOWN"
	}
}

// StatID names one scalar a query can extract from a vertex (spec.md §3's
// FBP/vector scalar list, plus an arrival-time stat derived by the caller
// as elapsed seconds since the query's min_time).
type StatID int

const (
	StatArrivalSeconds StatID = iota
	StatROS
	StatCFB
	StatCFC
	StatSFC
	StatTFC
	StatFI
	StatFlameLength
	StatRAZ
)

// Vertex is one perimeter vertex as seen by the query engine: a position
// plus whatever stats the caller chose to extract from the underlying
// firepoint.FirePoint.
type Vertex struct {
	Pos    geom.XyPoint
	Values map[StatID]float64
}

func (v Vertex) stat(id StatID) (float64, bool) {
	val, ok := v.Values[id]
	return val, ok
}

// NeighborhoodConfig is the expanding-radius neighbour search used by IDW,
// AREA_WEIGHTING, and VORONOI_OVERLAP (spec.md §4.6): start at
// 2×max(perimeterResolution, spatialThreshold), grow by GrowthFactor per
// retry, stop once MinNeighbors are found or MaxRetries is exhausted.
type NeighborhoodConfig struct {
	StartRadius  float64
	GrowthFactor float64
	MinNeighbors int
	MaxRetries   int
}

// DefaultNeighborhood builds the spec's default expanding-radius schedule.
func DefaultNeighborhood(perimeterResolution, spatialThreshold float64) NeighborhoodConfig {
	start := perimeterResolution
	if spatialThreshold > start {
		start = spatialThreshold
	}
	return NeighborhoodConfig{
		StartRadius:  2 * start,
		GrowthFactor: 1.25,
		MinNeighbors: 20,
		MaxRetries:   20,
	}
}

// Neighbors gathers the vertices of all within an expanding radius of pt,
// per cfg.
func Neighbors(pt geom.XyPoint, all []Vertex, cfg NeighborhoodConfig) []Vertex {
	radius := cfg.StartRadius
	if radius <= 0 {
		radius = 1
	}
	var found []Vertex
	for retry := 0; ; retry++ {
		found = found[:0]
		for _, v := range all {
			if v.Pos.Dist(pt) <= radius {
				found = append(found, v)
			}
		}
		if len(found) >= cfg.MinNeighbors || retry >= cfg.MaxRetries {
			break
		}
		radius *= cfg.GrowthFactor
	}
	out := make([]Vertex, len(found))
	copy(out, found)
	return out
}

// ClosestVertexQuery returns the vertex nearest pt (spec.md's CLOSEST_VERTEX
// technique).
func ClosestVertexQuery(pt geom.XyPoint, vertices []Vertex, stat StatID) (float64, bool) {
	var best *Vertex
	bestDist := math.Inf(1)
	for i := range vertices {
		d := vertices[i].Pos.Dist(pt)
		if d < bestDist {
			bestDist = d
			best = &vertices[i]
		}
	}
	if best == nil {
		return 0, false
	}
	return best.stat(stat)
}

// DiscretizeQuery subdivides the axis-aligned cell [lo, hi] into n×n sample
// points, evaluating sample at each and averaging the requested stat; it
// also reports the fraction of samples inside a fire, via inFire (spec.md's
// DISCRETIZE technique). n<1 is treated as 1.
func DiscretizeQuery(lo, hi geom.XyPoint, n int, stat StatID, sample func(geom.XyPoint) (float64, bool), inFire func(geom.XyPoint) bool) (value float64, burnedFraction float64) {
	if n < 1 {
		n = 1
	}
	var sum float64
	var count int
	var burned int
	for i := 0; i < n; i++ {
		fx := (float64(i) + 0.5) / float64(n)
		x := lo.X + fx*(hi.X-lo.X)
		for j := 0; j < n; j++ {
			fy := (float64(j) + 0.5) / float64(n)
			y := lo.Y + fy*(hi.Y-lo.Y)
			p := geom.XyPoint{X: x, Y: y}
			if inFire != nil && inFire(p) {
				burned++
			}
			if sample != nil {
				if v, ok := sample(p); ok {
					sum += v
					count++
				}
			}
		}
	}
	total := n * n
	if count > 0 {
		value = sum / float64(count)
	}
	if total > 0 {
		burnedFraction = float64(burned) / float64(total)
	}
	return value, burnedFraction
}

// IDWQuery inverse-distance-weights the requested stat across neighbors,
// power controlling falloff (2 is the usual default). A neighbor exactly at
// pt is returned directly to avoid a division by zero.
func IDWQuery(pt geom.XyPoint, neighbors []Vertex, stat StatID, power float64) (float64, bool) {
	if power <= 0 {
		power = 2
	}
	var weightSum, valueSum float64
	var matched bool
	for _, v := range neighbors {
		val, ok := v.stat(stat)
		if !ok {
			continue
		}
		matched = true
		d := v.Pos.Dist(pt)
		if d == 0 {
			return val, true
		}
		w := 1 / math.Pow(d, power)
		weightSum += w
		valueSum += w * val
	}
	if !matched || weightSum == 0 {
		return 0, false
	}
	return valueSum / weightSum, true
}

// rectPoly returns a CCW rectangle polygon for [lo, hi].
func rectPoly(lo, hi geom.XyPoint) geom.Poly {
	return geom.Poly{
		{X: lo.X, Y: lo.Y},
		{X: hi.X, Y: lo.Y},
		{X: hi.X, Y: hi.Y},
		{X: lo.X, Y: hi.Y},
	}
}

// clipHalfPlane clips poly (any orientation, need not be closed-loop
// validated) against the half-plane {p : normal·(p-linePt) >= 0}, a single
// Sutherland-Hodgman pass.
func clipHalfPlane(poly geom.Poly, linePt, normal geom.XyPoint) geom.Poly {
	n := len(poly)
	if n == 0 {
		return poly
	}
	var out geom.Poly
	for i := 0; i < n; i++ {
		curr := poly[i]
		prev := poly[(i-1+n)%n]
		currIn := normal.Dot(curr.Sub(linePt)) >= 0
		prevIn := normal.Dot(prev.Sub(linePt)) >= 0
		if currIn != prevIn {
			if ip, ok := halfPlaneIntersect(prev, curr, linePt, normal); ok {
				out = append(out, ip)
			}
		}
		if currIn {
			out = append(out, curr)
		}
	}
	return out
}

func halfPlaneIntersect(a, b, linePt, normal geom.XyPoint) (geom.XyPoint, bool) {
	d := b.Sub(a)
	denom := normal.Dot(d)
	if denom == 0 {
		return geom.XyPoint{}, false
	}
	t := normal.Dot(linePt.Sub(a)) / denom
	return a.Add(d.Scale(t)), true
}

// voronoiCell clips bounds down to the Voronoi region of site among sites,
// one perpendicular-bisector half-plane per other site.
func voronoiCell(site geom.XyPoint, sites []geom.XyPoint, bounds geom.Poly) geom.Poly {
	cell := bounds
	for _, other := range sites {
		if other == site {
			continue
		}
		mid := site.Add(other).Scale(0.5)
		normal := site.Sub(other).Normalized()
		cell = clipHalfPlane(cell, mid, normal)
		if len(cell) == 0 {
			break
		}
	}
	return cell
}

// convexIntersect clips convex polygon a against convex CCW polygon b.
func convexIntersect(a, b geom.Poly) geom.Poly {
	out := a
	n := len(b)
	for i := 0; i < n && len(out) > 0; i++ {
		v0, v1 := b[i], b[(i+1)%n]
		normal := v1.Sub(v0).Rotated(math.Pi / 2)
		out = clipHalfPlane(out, v0, normal)
	}
	return out
}

func polyArea(p geom.Poly) float64 { return p.Area() }

// AreaWeightingQuery intersects the discretization cell [lo, hi] with each
// neighbour's Voronoi cell (built over the neighbours alone as sites, bounded
// by the cell itself so the construction stays finite) and weights the
// requested stat by the fraction of the cell's area each neighbour's Voronoi
// cell covers (spec.md's AREA_WEIGHTING technique). pt is the query location
// the cell surrounds; it is not itself a site, only the neighbours partition
// the plane.
func AreaWeightingQuery(lo, hi geom.XyPoint, pt geom.XyPoint, neighbors []Vertex, stat StatID) (float64, bool) {
	if len(neighbors) == 0 {
		return 0, false
	}
	bounds := rectPoly(lo, hi)
	sites := make([]geom.XyPoint, 0, len(neighbors))
	for _, v := range neighbors {
		sites = append(sites, v.Pos)
	}
	cellArea := polyArea(bounds)
	if cellArea == 0 {
		return 0, false
	}
	var weightSum, valueSum float64
	for _, v := range neighbors {
		val, ok := v.stat(stat)
		if !ok {
			continue
		}
		region := voronoiCell(v.Pos, sites, bounds)
		overlap := convexIntersect(bounds, region)
		w := polyArea(overlap) / cellArea
		if w <= 0 {
			continue
		}
		weightSum += w
		valueSum += w * val
	}
	if weightSum == 0 {
		return 0, false
	}
	return valueSum / weightSum, true
}

// VoronoiOverlapQuery builds pt's own Voronoi cell among pt+neighbors
// (bounded by the neighbourhood's bounding box, expanded so no cell is
// clipped to a sliver), then for each neighbour asks how much of that cell
// falls inside the neighbour's PRE-DELETION cell — its Voronoi region over
// the neighbour-only site set, i.e. the territory it held before pt's site
// was inserted. Because inserting pt only ever carves territory away from
// its pre-existing neighbours, pt's cell is exactly tiled by these
// pre-deletion regions, so the overlap fractions are a principled
// interpolation weight (spec.md's VORONOI_OVERLAP technique).
func VoronoiOverlapQuery(pt geom.XyPoint, neighbors []Vertex, stat StatID) (float64, bool) {
	if len(neighbors) == 0 {
		return 0, false
	}
	box := geom.NewEmptyRect().Extend(pt)
	for _, v := range neighbors {
		box = box.Extend(v.Pos)
	}
	box = box.Expanded(boundsMargin(box))
	bounds := rectPoly(geom.XyPoint{X: box.Min.X, Y: box.Min.Y}, geom.XyPoint{X: box.Max.X, Y: box.Max.Y})

	sitesWithPt := make([]geom.XyPoint, 0, len(neighbors)+1)
	sitesWithPt = append(sitesWithPt, pt)
	neighborSites := make([]geom.XyPoint, 0, len(neighbors))
	for _, v := range neighbors {
		sitesWithPt = append(sitesWithPt, v.Pos)
		neighborSites = append(neighborSites, v.Pos)
	}

	ptCell := voronoiCell(pt, sitesWithPt, bounds)
	ptArea := polyArea(ptCell)
	if ptArea == 0 {
		return 0, false
	}

	var weightSum, valueSum float64
	for _, v := range neighbors {
		val, ok := v.stat(stat)
		if !ok {
			continue
		}
		preDeletionCell := voronoiCell(v.Pos, neighborSites, bounds)
		overlap := convexIntersect(ptCell, preDeletionCell)
		w := polyArea(overlap) / ptArea
		if w <= 0 {
			continue
		}
		weightSum += w
		valueSum += w * val
	}
	if weightSum == 0 {
		return 0, false
	}
	return valueSum / weightSum, true
}

func boundsMargin(r geom.Rect) float64 {
	dx := r.Max.X - r.Min.X
	dy := r.Max.Y - r.Min.Y
	m := dx
	if dy > m {
		m = dy
	}
	if m <= 0 {
		return 1
	}
	return m
}
