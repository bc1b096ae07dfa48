package geom

import "math"

// GridCell identifies one cell of a regular grid by its integer column/row.
type GridCell struct {
	Col, Row int
}

// RayTrace walks the regular grid of the given resolution from start along
// path (start+path is the segment's end), calling onCell for every cell the
// segment passes through with the fractional entry/exit distance (in path
// units, [0,1]) within that cell. offset shifts the grid origin so that cell
// (0,0) covers [offset, offset+resolution) on each axis. Traversal stops
// early if onCell returns false.
func RayTrace(start, path XyPoint, resolution float64, offset XyPoint, onCell func(cell GridCell, entry, exit float64) bool) {
	if resolution <= 0 {
		return
	}
	length := path.Length()
	if length == 0 {
		cell := cellAt(start, resolution, offset)
		onCell(cell, 0, 1)
		return
	}

	dx, dy := path.X, path.Y
	x0, y0 := start.X-offset.X, start.Y-offset.Y

	col := int(math.Floor(x0 / resolution))
	row := int(math.Floor(y0 / resolution))

	stepCol, stepRow := 0, 0
	var tMaxCol, tMaxRow, tDeltaCol, tDeltaRow float64 = math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1)

	if dx > 0 {
		stepCol = 1
		nextBoundary := float64(col+1) * resolution
		tMaxCol = (nextBoundary - x0) / dx
		tDeltaCol = resolution / dx
	} else if dx < 0 {
		stepCol = -1
		boundary := float64(col) * resolution
		tMaxCol = (boundary - x0) / dx
		tDeltaCol = resolution / -dx
	}
	if dy > 0 {
		stepRow = 1
		nextBoundary := float64(row+1) * resolution
		tMaxRow = (nextBoundary - y0) / dy
		tDeltaRow = resolution / dy
	} else if dy < 0 {
		stepRow = -1
		boundary := float64(row) * resolution
		tMaxRow = (boundary - y0) / dy
		tDeltaRow = resolution / -dy
	}

	t := 0.0
	for t < 1 {
		var next float64
		var advanceCol, advanceRow bool
		switch {
		case tMaxCol < tMaxRow:
			next = tMaxCol
			advanceCol = true
		case tMaxRow < tMaxCol:
			next = tMaxRow
			advanceRow = true
		default:
			next = tMaxCol
			advanceCol = true
			advanceRow = true
		}
		if next > 1 {
			next = 1
		}
		if !onCell(GridCell{Col: col, Row: row}, t, next) {
			return
		}
		t = next
		if t >= 1 {
			break
		}
		if advanceCol {
			col += stepCol
			tMaxCol += tDeltaCol
		}
		if advanceRow {
			row += stepRow
			tMaxRow += tDeltaRow
		}
	}
}

func cellAt(pt XyPoint, resolution float64, offset XyPoint) GridCell {
	return GridCell{
		Col: int(math.Floor((pt.X - offset.X) / resolution)),
		Row: int(math.Floor((pt.Y - offset.Y) / resolution)),
	}
}

// CellCenter returns the centre point of the given cell.
func CellCenter(cell GridCell, resolution float64, offset XyPoint) XyPoint {
	return XyPoint{
		X: offset.X + (float64(cell.Col)+0.5)*resolution,
		Y: offset.Y + (float64(cell.Row)+0.5)*resolution,
	}
}
