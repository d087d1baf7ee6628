// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"image"
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// ImagePoint rounds to the nearest pixel, the way drawing routines expect it.
func (p Point2D) ImagePoint() image.Point {
	return image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// ImagePoints converts a polyline to pixel coordinates.
func ImagePoints(points []Point2D) []image.Point {
	out := make([]image.Point, len(points))
	for i, p := range points {
		out[i] = p.ImagePoint()
	}
	return out
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRectInt creates a new RectInt.
func NewRectInt(x, y, width, height int) RectInt {
	return RectInt{X: x, Y: y, Width: width, Height: height}
}

// WithX returns a copy moved horizontally to x.
func (r RectInt) WithX(x int) RectInt {
	r.X = x
	return r
}

// CenterX returns the horizontal center.
func (r RectInt) CenterX() float64 {
	return float64(r.X) + float64(r.Width)*0.5
}

// CenterY returns the vertical center.
func (r RectInt) CenterY() float64 {
	return float64(r.Y) + float64(r.Height)*0.5
}

// Right returns the exclusive right edge.
func (r RectInt) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge.
func (r RectInt) Bottom() int {
	return r.Y + r.Height
}

// Empty reports whether the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ToImage converts to an image.Rectangle.
func (r RectInt) ToImage() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Size represents an integer 2D size.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height int) Size {
	return Size{Width: width, Height: height}
}

// ToImage returns the size as an image.Point, as gocv expects for dsize arguments.
func (s Size) ToImage() image.Point {
	return image.Point{X: s.Width, Y: s.Height}
}

// Contains reports whether r lies entirely inside a frame of this size.
func (s Size) Contains(r RectInt) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= s.Width && r.Bottom() <= s.Height
}
