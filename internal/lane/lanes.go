package lane

import (
	"github.com/gilbertgonz/lane-detection/internal/config"
	"github.com/gilbertgonz/lane-detection/pkg/geometry"
)

// Lanes holds both traced edges for one frame. Each edge runs bottom to top.
type Lanes struct {
	Left  []geometry.Point2D
	Right []geometry.Point2D
}

// StartWindow returns the configured starting window for a side.
func StartWindow(p config.Params, side Side) geometry.RectInt {
	if side == SideRight {
		return p.RightWindow
	}
	return p.LeftWindow
}

// TraceSide traces one lane edge from the side's starting window.
func TraceSide(mask Mask, side Side, p config.Params) []geometry.Point2D {
	return Trace(mask, StartWindow(p, side))
}

// TraceLanes traces both edges.
func TraceLanes(mask Mask, p config.Params) Lanes {
	var l Lanes
	for _, side := range Sides {
		l.Set(side, TraceSide(mask, side, p))
	}
	return l
}

// Edge returns the points for a side.
func (l Lanes) Edge(side Side) []geometry.Point2D {
	if side == SideRight {
		return l.Right
	}
	return l.Left
}

// Set replaces the points for a side.
func (l *Lanes) Set(side Side, points []geometry.Point2D) {
	if side == SideRight {
		l.Right = points
		return
	}
	l.Left = points
}

// Map returns a copy with fn applied to each edge, e.g. a homography.
func (l Lanes) Map(fn func([]geometry.Point2D) []geometry.Point2D) Lanes {
	var out Lanes
	for _, side := range Sides {
		out.Set(side, fn(l.Edge(side)))
	}
	return out
}

// Polygon returns the lane-area ring: the left edge bottom to top, then the
// right edge top to bottom.
func (l Lanes) Polygon() []geometry.Point2D {
	ring := make([]geometry.Point2D, 0, len(l.Left)+len(l.Right))
	ring = append(ring, l.Left...)
	for i := len(l.Right) - 1; i >= 0; i-- {
		ring = append(ring, l.Right[i])
	}
	return ring
}

// Area returns the area enclosed by Polygon.
func (l Lanes) Area() float64 {
	return geometry.PolygonArea(l.Polygon())
}
