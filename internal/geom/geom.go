// Package geom is the pure geometry substrate shared by every other package
// in the simulation: 2-D/3-D points, polygons, polygon sets with boolean set
// operations, and grid ray tracing. Nothing in this package knows about fire,
// fuel, or weather.
package geom

import "math"

// XyPoint is a 2-D point in internal (already false-origin/false-scaled)
// coordinates.
type XyPoint struct {
	X, Y float64
}

// Add returns p+q.
func (p XyPoint) Add(q XyPoint) XyPoint { return XyPoint{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p XyPoint) Sub(q XyPoint) XyPoint { return XyPoint{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by s.
func (p XyPoint) Scale(s float64) XyPoint { return XyPoint{p.X * s, p.Y * s} }

// Dot returns the dot product p.q.
func (p XyPoint) Dot(q XyPoint) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z-component of the 3-D cross product p x q.
func (p XyPoint) Cross(q XyPoint) float64 { return p.X*q.Y - p.Y*q.X }

// Length returns the Euclidean norm of p.
func (p XyPoint) Length() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func (p XyPoint) Dist(q XyPoint) float64 { return p.Sub(q).Length() }

// Normalized returns p scaled to unit length; the zero vector maps to itself.
func (p XyPoint) Normalized() XyPoint {
	l := p.Length()
	if l == 0 {
		return p
	}
	return p.Scale(1 / l)
}

// Rotated returns p rotated counter-clockwise by angle radians.
func (p XyPoint) Rotated(angle float64) XyPoint {
	s, c := math.Sincos(angle)
	return XyPoint{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

// Bearing returns the compass bearing (clockwise from north, radians) from p
// to q.
func (p XyPoint) Bearing(q XyPoint) float64 {
	d := q.Sub(p)
	b := math.Atan2(d.X, d.Y)
	if b < 0 {
		b += 2 * math.Pi
	}
	return b
}

// XyzPoint is a 3-D point; used for slope-aware (Richards) growth and for
// elevation/aspect queries.
type XyzPoint struct {
	X, Y, Z float64
}

// Sub returns p-q.
func (p XyzPoint) Sub(q XyzPoint) XyzPoint { return XyzPoint{p.X - q.X, p.Y - q.Y, p.Z - q.Z} }

// Cross returns the 3-D cross product p x q.
func (p XyzPoint) Cross(q XyzPoint) XyzPoint {
	return XyzPoint{
		p.Y*q.Z - p.Z*q.Y,
		p.Z*q.X - p.X*q.Z,
		p.X*q.Y - p.Y*q.X,
	}
}

// Dot returns the dot product p.q.
func (p XyzPoint) Dot(q XyzPoint) float64 { return p.X*q.X + p.Y*q.Y + p.Z*q.Z }

// Length returns the Euclidean norm of p.
func (p XyzPoint) Length() float64 { return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z) }

// Normalized returns p scaled to unit length; the zero vector maps to itself.
func (p XyzPoint) Normalized() XyzPoint {
	l := p.Length()
	if l == 0 {
		return p
	}
	return XyzPoint{p.X / l, p.Y / l, p.Z / l}
}

// XY drops the z-component.
func (p XyzPoint) XY() XyPoint { return XyPoint{p.X, p.Y} }

// Rect is an axis-aligned bounding box. A zero-value Rect is empty; use
// NewEmptyRect and Extend to build one incrementally.
type Rect struct {
	Min, Max XyPoint
	empty    bool
}

// NewEmptyRect returns a Rect with no extent, ready for Extend.
func NewEmptyRect() Rect {
	return Rect{
		Min:   XyPoint{X: math.Inf(1), Y: math.Inf(1)},
		Max:   XyPoint{X: math.Inf(-1), Y: math.Inf(-1)},
		empty: true,
	}
}

// Extend grows the rect to include p and returns the result.
func (r Rect) Extend(p XyPoint) Rect {
	if r.empty {
		return Rect{Min: p, Max: p}
	}
	return Rect{
		Min: XyPoint{X: math.Min(r.Min.X, p.X), Y: math.Min(r.Min.Y, p.Y)},
		Max: XyPoint{X: math.Max(r.Max.X, p.X), Y: math.Max(r.Max.Y, p.Y)},
	}
}

// Union returns the smallest rect containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.empty {
		return o
	}
	if o.empty {
		return r
	}
	return Rect{
		Min: XyPoint{X: math.Min(r.Min.X, o.Min.X), Y: math.Min(r.Min.Y, o.Min.Y)},
		Max: XyPoint{X: math.Max(r.Max.X, o.Max.X), Y: math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Empty reports whether the rect has no extent.
func (r Rect) Empty() bool { return r.empty }

// Contains reports whether p lies within the closed rect.
func (r Rect) Contains(p XyPoint) bool {
	return !r.empty && p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects reports whether r and o overlap, including touching edges.
func (r Rect) Intersects(o Rect) bool {
	if r.empty || o.empty {
		return false
	}
	return r.Min.X <= o.Max.X && r.Max.X >= o.Min.X && r.Min.Y <= o.Max.Y && r.Max.Y >= o.Min.Y
}

// Expanded returns r grown by margin on every side.
func (r Rect) Expanded(margin float64) Rect {
	if r.empty {
		return r
	}
	return Rect{
		Min: XyPoint{X: r.Min.X - margin, Y: r.Min.Y - margin},
		Max: XyPoint{X: r.Max.X + margin, Y: r.Max.Y + margin},
	}
}

// Poly is a flat, unlinked array of points; used for ignition/asset/break
// sources and anywhere ring topology is not required.
type Poly []XyPoint

// BoundingBox returns the axis-aligned bounding box of the polygon.
func (p Poly) BoundingBox() Rect {
	r := NewEmptyRect()
	for _, pt := range p {
		r = r.Extend(pt)
	}
	return r
}

// SignedArea returns the shoelace signed area; positive for
// counter-clockwise orientation.
func (p Poly) SignedArea() float64 {
	if len(p) < 3 {
		return 0
	}
	sum := 0.0
	n := len(p)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// Area returns the unsigned area.
func (p Poly) Area() float64 { return math.Abs(p.SignedArea()) }

// ContainsPoint reports whether pt lies inside the polygon (even-odd rule,
// ray cast along +X).
func (p Poly) ContainsPoint(pt XyPoint) bool {
	inside := false
	n := len(p)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			xIntersect := (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y) + a.X
			if pt.X < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// SegmentIntersect returns the intersection point of segments (p1,p2) and
// (p3,p4) and whether they properly intersect within both segments'
// parametric range [0,1].
func SegmentIntersect(p1, p2, p3, p4 XyPoint) (XyPoint, float64, float64, bool) {
	r := p2.Sub(p1)
	s := p4.Sub(p3)
	denom := r.Cross(s)
	if denom == 0 {
		return XyPoint{}, 0, 0, false
	}
	qp := p3.Sub(p1)
	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return XyPoint{}, t, u, false
	}
	return p1.Add(r.Scale(t)), t, u, true
}

// NearestPointOnSegment returns the closest point to pt lying on segment
// (a,b), and the parametric distance t along the segment.
func NearestPointOnSegment(pt, a, b XyPoint) (XyPoint, float64) {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return a, 0
	}
	t := pt.Sub(a).Dot(ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t)), t
}
