package graph

import "math"

// Radius is the distance between a parent and its children.
const Radius = 350.0

// LayoutChild places the index-th of count children discovered from a parent
// at the given BFS level. Children of the root are spread around a full
// circle; deeper children fan out over a quarter circle facing away from the
// root along the parent's own direction.
func LayoutChild(parent Position, index, count, level int) Position {
	if level <= 1 {
		return LayoutRing(parent, index, count)
	}
	if count < 1 {
		count = 1
	}
	step := (math.Pi / 2) / float64(count)
	base := math.Atan2(parent.Y, parent.X)
	angle := base - math.Pi/4 + float64(index)*step
	return polar(parent, angle)
}

// LayoutRing places the index-th of count children evenly around parent.
func LayoutRing(parent Position, index, count int) Position {
	if count < 1 {
		count = 1
	}
	step := (2 * math.Pi) / float64(count)
	return polar(parent, float64(index)*step)
}

func polar(origin Position, angle float64) Position {
	return Position{
		X: origin.X + math.Cos(angle)*Radius,
		Y: origin.Y + math.Sin(angle)*Radius,
	}
}
