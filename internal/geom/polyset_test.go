package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wise-sim/firesim/internal/wtime"
)

// status is a stand-in application payload mirroring how FirePoint will use
// Vertex.Meta; the geometry layer never interprets it.
type status int

const (
	normal status = iota
	fromClip
)

type testOwner struct{}

func (testOwner) NewVertex(pos XyPoint, fromA, fromB bool) status { return fromClip }
func (testOwner) ChooseToKeep(a, b status) status                 { return a }
func (testOwner) KeepPolygon(r Ring[status], op ClipOp) bool       { return true }
func (testOwner) Participates(r Ring[status], t *wtime.Time) bool  { return true }

func ring(pts ...XyPoint) Ring[status] {
	verts := make([]Vertex[status], len(pts))
	for i, p := range pts {
		verts[i] = Vertex[status]{Pos: p, Meta: normal}
	}
	return Ring[status]{Verts: verts}
}

func squareRing(minX, minY, side float64) Ring[status] {
	return ring(
		XyPoint{X: minX, Y: minY},
		XyPoint{X: minX + side, Y: minY},
		XyPoint{X: minX + side, Y: minY + side},
		XyPoint{X: minX, Y: minY + side},
	)
}

func TestClipDisjointUnion(t *testing.T) {
	a := PolySet[status]{squareRing(0, 0, 10)}
	b := PolySet[status]{squareRing(100, 100, 10)}
	out := Clip(a, b, Union, testOwner{}, nil, nil)
	assert.Len(t, out, 2)
}

func TestClipDisjointIntersect(t *testing.T) {
	a := PolySet[status]{squareRing(0, 0, 10)}
	b := PolySet[status]{squareRing(100, 100, 10)}
	out := Clip(a, b, Intersect, testOwner{}, nil, nil)
	assert.Empty(t, out)
}

func TestClipIdenticalDiffIsEmpty(t *testing.T) {
	a := PolySet[status]{squareRing(0, 0, 10)}
	b := PolySet[status]{squareRing(0, 0, 10)}
	out := Clip(a, b, Diff, testOwner{}, nil, nil)
	assert.Empty(t, out)
}

func TestClipDiffAgainstEmptyIsUnchanged(t *testing.T) {
	a := PolySet[status]{squareRing(0, 0, 10)}
	var b PolySet[status]
	out := Clip(a, b, Diff, testOwner{}, nil, nil)
	assert.Len(t, out, 1)
	assert.InDelta(t, 100.0, out.Area(), 1e-6)
}

func TestClipOverlappingIntersectArea(t *testing.T) {
	a := PolySet[status]{squareRing(0, 0, 10)}
	b := PolySet[status]{squareRing(5, 0, 10)}
	var m Metrics
	out := Clip(a, b, Intersect, testOwner{}, nil, &m)
	assert.InDelta(t, 50.0, out.Area(), 1e-6)
	assert.Greater(t, m.Intersections, 0)
}

func TestClipContainedRing(t *testing.T) {
	a := PolySet[status]{squareRing(0, 0, 10)}
	b := PolySet[status]{squareRing(2, 2, 3)}
	out := Clip(a, b, Intersect, testOwner{}, nil, nil)
	assert.InDelta(t, 9.0, out.Area(), 1e-6)
}

func TestUnwindFigureEight(t *testing.T) {
	// A self-intersecting bowtie: two triangles sharing the crossing point.
	r := ring(
		XyPoint{X: 0, Y: 0},
		XyPoint{X: 10, Y: 10},
		XyPoint{X: 10, Y: 0},
		XyPoint{X: 0, Y: 10},
	)
	var m Metrics
	out := Unwind(PolySet[status]{r}, true, testOwner{}, &m)
	assert.NotEmpty(t, out)
	assert.Greater(t, m.Intersections, 0)
}

func TestRayTraceCoversWholeSegment(t *testing.T) {
	var cells []GridCell
	RayTrace(XyPoint{X: 0, Y: 0}, XyPoint{X: 25, Y: 0}, 10, XyPoint{}, func(c GridCell, entry, exit float64) bool {
		cells = append(cells, c)
		return true
	})
	assert.Equal(t, []GridCell{{Col: 0, Row: 0}, {Col: 1, Row: 0}, {Col: 2, Row: 0}}, cells)
}

func TestRayTraceEarlyStop(t *testing.T) {
	count := 0
	RayTrace(XyPoint{X: 0, Y: 0}, XyPoint{X: 25, Y: 0}, 10, XyPoint{}, func(c GridCell, entry, exit float64) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestRayTraceDiagonal(t *testing.T) {
	var cells []GridCell
	RayTrace(XyPoint{X: 0, Y: 0}, XyPoint{X: 20, Y: 20}, 10, XyPoint{}, func(c GridCell, entry, exit float64) bool {
		cells = append(cells, c)
		return true
	})
	assert.NotEmpty(t, cells)
	assert.Equal(t, GridCell{Col: 0, Row: 0}, cells[0])
	assert.Equal(t, GridCell{Col: 1, Row: 1}, cells[len(cells)-1])
}
