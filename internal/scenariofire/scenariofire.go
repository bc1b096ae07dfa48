// Package scenariofire groups the one or more FireFronts produced by a
// single ignition into a ScenarioFire, and implements the polygon
// bookkeeping that keeps that group self-consistent as it grows: removing
// self-overlap (unwind), then clipping away whatever area a larger sibling
// fire or a vector break already covers (spec.md §4.4). Fires keep their
// own identity through this clip; only the loser's polygon shrinks.
package scenariofire

import (
	"github.com/wise-sim/firesim/internal/firefront"
	"github.com/wise-sim/firesim/internal/firepoint"
	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/wtime"
)

// ScenarioFire is the set of FireFronts descended from one ignition.
// A single ignition may own more than one front after an unwind operation
// splits off an interior hole.
type ScenarioFire struct {
	ID     int
	Fronts []*firefront.FireFront

	// IgnitionTime anchors the earliest vertex this fire can claim during
	// vector tracking against other fires (spec.md §4.3.4: "whose area is
	// >= this fire's own").
	IgnitionTime wtime.Time
}

// New creates an empty ScenarioFire.
func New(id int, ignitionTime wtime.Time) *ScenarioFire {
	return &ScenarioFire{ID: id, IgnitionTime: ignitionTime}
}

// Area sums the unsigned area of every front, net of holes (holes carry
// Interior=true and their geom.Ring winding is already accounted for by
// toPolySet's signed-area bookkeeping).
func (s *ScenarioFire) Area() float64 {
	return toPolySet(s.Fronts).Area()
}

// owner adapts firepoint.FirePoint vertices to geom's generic Owner
// contract: new vertices from a clip/unwind split carry a fresh Normal
// point; coincident vertices prefer whichever is not already inert; every
// produced polygon participates (ScenarioFire never filters its own
// output, unlike a vector break set gated by activation time).
type owner struct{}

func (owner) NewVertex(pos geom.XyPoint, fromA, fromB bool) *firepoint.FirePoint {
	return firepoint.NewNormal(pos)
}

func (owner) ChooseToKeep(a, b *firepoint.FirePoint) *firepoint.FirePoint {
	if a.Inert() && !b.Inert() {
		return b
	}
	return a
}

func (owner) KeepPolygon(r geom.Ring[*firepoint.FirePoint], op geom.ClipOp) bool {
	return len(r.Verts) >= 3
}

func (owner) Participates(r geom.Ring[*firepoint.FirePoint], t *wtime.Time) bool { return true }

func toPolySet(fronts []*firefront.FireFront) geom.PolySet[*firepoint.FirePoint] {
	set := make(geom.PolySet[*firepoint.FirePoint], 0, len(fronts))
	for _, f := range fronts {
		verts := make([]geom.Vertex[*firepoint.FirePoint], len(f.Points))
		for i, p := range f.Points {
			verts[i] = geom.Vertex[*firepoint.FirePoint]{Pos: p.Pos, Meta: p}
		}
		set = append(set, geom.Ring[*firepoint.FirePoint]{Verts: verts, Interior: f.Interior})
	}
	return set
}

func fromPolySet(set geom.PolySet[*firepoint.FirePoint]) []*firefront.FireFront {
	fronts := make([]*firefront.FireFront, 0, len(set))
	for _, r := range set {
		pts := make([]*firepoint.FirePoint, len(r.Verts))
		for i, v := range r.Verts {
			pts[i] = v.Meta
		}
		ff := firefront.New(pts, firefront.Polygon)
		ff.Interior = r.Interior
		fronts = append(fronts, ff)
	}
	return fronts
}

// Unoverlap removes self-intersection from every front independently,
// splitting a figure-eight perimeter into an outer ring plus an interior
// hole, and drops holes entirely when keepInterior is false (a
// polygon-interior ignition that has fully consumed its unburned island;
// spec.md §4.4.1).
func (s *ScenarioFire) Unoverlap(keepInterior bool, metrics *geom.Metrics) {
	unwound := geom.Unwind(toPolySet(s.Fronts), keepInterior, owner{}, metrics)
	s.Fronts = fromPolySet(unwound)
}

// ClipAgainst removes any area other covers from s via a DIFF clip,
// leaving other's own fronts untouched. Used once two ScenarioFires'
// perimeters overlap: the smaller fire is clipped against the larger one,
// and both stay distinct ScenarioFires (spec.md §4.4: "unoverlap() clips
// each fire's polygon against every LARGER fire's polygon").
func (s *ScenarioFire) ClipAgainst(other *ScenarioFire, at wtime.Time, metrics *geom.Metrics) {
	clipped := geom.Clip(toPolySet(s.Fronts), toPolySet(other.Fronts), geom.Diff, owner{}, &at, metrics)
	s.Fronts = fromPolySet(clipped)
}

// Overlaps reports whether s and other share any area, the trigger
// condition for ClipAgainst.
func (s *ScenarioFire) Overlaps(other *ScenarioFire) bool {
	a := toPolySet(s.Fronts)
	b := toPolySet(other.Fronts)
	if !a.BoundingBox().Intersects(b.BoundingBox()) {
		return false
	}
	for _, r := range b {
		for _, v := range r.Verts {
			if a.ContainsPoint(v.Pos) {
				return true
			}
		}
	}
	for _, r := range a {
		for _, v := range r.Verts {
			if b.ContainsPoint(v.Pos) {
				return true
			}
		}
	}
	return false
}

func breaksToPolySet(breaks []geom.Poly) geom.PolySet[*firepoint.FirePoint] {
	set := make(geom.PolySet[*firepoint.FirePoint], 0, len(breaks))
	for _, poly := range breaks {
		verts := make([]geom.Vertex[*firepoint.FirePoint], len(poly))
		for i, pos := range poly {
			verts[i] = geom.Vertex[*firepoint.FirePoint]{Pos: pos, Meta: firepoint.NewNormal(pos)}
		}
		set = append(set, geom.Ring[*firepoint.FirePoint]{Verts: verts})
	}
	return set
}

// ClipAgainstBreaks removes any area the supplied static/dynamic break
// polygons cover from every front via a DIFF clip, run once per step
// alongside the sibling-fire unoverlap pass (spec.md §4.4's
// "every dynamic vector break, every static vector break").
func (s *ScenarioFire) ClipAgainstBreaks(breaks []geom.Poly, at wtime.Time, metrics *geom.Metrics) {
	if len(breaks) == 0 {
		return
	}
	clipped := geom.Clip(toPolySet(s.Fronts), breaksToPolySet(breaks), geom.Diff, owner{}, &at, metrics)
	s.Fronts = fromPolySet(clipped)
}

// AllPoints flattens every front's vertex list, for callers that need to
// iterate the whole fire without caring about ring boundaries (e.g. grid
// tracking, which operates per-vertex).
func (s *ScenarioFire) AllPoints() []*firepoint.FirePoint {
	var out []*firepoint.FirePoint
	for _, f := range s.Fronts {
		out = append(out, f.Points...)
	}
	return out
}
