package shape

import "image"

// Rect is an axis-aligned rectangle in screen or image space.
type Rect struct {
	X int32
	Y int32
	W uint32
	H uint32
}

// NewRect creates a rectangle with its top-left corner at (x, y).
func NewRect(x, y int32, w, h uint32) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x coordinate one past the right edge.
func (r Rect) Right() int32 { return r.X + int32(r.W) }

// Bottom returns the y coordinate one past the bottom edge.
func (r Rect) Bottom() int32 { return r.Y + int32(r.H) }

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.W == 0 || r.H == 0 }

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.Right()), int(r.Bottom()))
}

// Point is a single pixel position.
type Point struct {
	X int32
	Y int32
}

// NewPoint creates a point at (x, y).
func NewPoint(x, y int32) Point {
	return Point{X: x, Y: y}
}

// Polygon is an ordered list of vertices. Drawing a polygon plots its
// vertices; it does not connect or fill them.
type Polygon []Point
