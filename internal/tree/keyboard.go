package tree

import "math"

// Direction is a keyboard arrow used to steer a move.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// KeyboardOffset returns the horizontal offset after a left or right key
// press. The offset changes by one indentation unit only while the
// projected depth can still move in that direction; otherwise ok is false.
func KeyboardOffset(dir Direction, p Projection, offset float64, indentation int) (float64, bool) {
	switch dir {
	case Left:
		if p.Depth > p.MinDepth {
			return offset - float64(indentation), true
		}
	case Right:
		if p.Depth < p.MaxDepth {
			return offset + float64(indentation), true
		}
	}
	return offset, false
}

// Rect is the rendered position of a droppable row.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) corners() [4][2]float64 {
	return [4][2]float64{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X, r.Y + r.Height},
		{r.X + r.Width, r.Y + r.Height},
	}
}

// Droppable is a candidate drop target with its rendered rectangle.
type Droppable struct {
	ID   string
	Rect Rect
}

// ClosestCorners returns the candidate whose corners are nearest, summed
// pairwise, to the corners of active.
func ClosestCorners(active Rect, candidates []Droppable) (string, bool) {
	best := ""
	bestDist := math.Inf(1)
	a := active.corners()
	for _, c := range candidates {
		b := c.Rect.corners()
		dist := 0.0
		for i := range a {
			dist += math.Hypot(a[i][0]-b[i][0], a[i][1]-b[i][1])
		}
		if dist < bestDist {
			best, bestDist = c.ID, dist
		}
	}
	return best, best != ""
}

// NextOver picks the droppable above (Up) or below (Down) the pointer rect
// using the closest-corners heuristic.
func NextOver(dir Direction, pointer Rect, candidates []Droppable) (string, bool) {
	var filtered []Droppable
	for _, c := range candidates {
		switch dir {
		case Up:
			if c.Rect.Y < pointer.Y {
				filtered = append(filtered, c)
			}
		case Down:
			if c.Rect.Y > pointer.Y {
				filtered = append(filtered, c)
			}
		default:
			return "", false
		}
	}
	return ClosestCorners(pointer, filtered)
}
